package pages

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pbutland/ai-darwin-awards/internal/phase"
)

const pageLayout = `<html><head><title>{{ .Title }} | {{ .SiteName }}</title>
<meta name="description" content="{{ .Description }}"></head>
<body><nav>{{ range .Phase.Navigation }}<a href="{{ $.Root }}{{ .Href }}"{{ if .IsCurrent }} class="current"{{ end }}>{{ .Label }}</a>{{ end }}</nav>
<main>{{ .Content }}</main>{{ template "footer.html" . }}</body></html>`

const altLayout = `<article data-path="{{ .Path }}">{{ .Content }}</article>`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestSite(t *testing.T) *Builder {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "layouts", "page.html"), pageLayout)
	writeFile(t, filepath.Join(dir, "layouts", "alt.html"), altLayout)
	writeFile(t, filepath.Join(dir, "layouts", "partials", "footer.html"), `<footer>{{ .SiteName }}</footer>`)

	writeFile(t, filepath.Join(dir, "content", "about.md"), "---\ntitle: About Us\ndescription: Who we are\n---\n## Our Mission\n\nWatch *closely*.\n")
	writeFile(t, filepath.Join(dir, "content", "guides", "how_to-vote.md"), "# Voting\n\nPick one.\n")
	writeFile(t, filepath.Join(dir, "content", "rules.md"), "---\nlayout: alt.html\nsummary: The rules\ndate: 2025-02-03\n---\nNo cheating.\n")

	b := NewBuilder(filepath.Join(dir, "content"), filepath.Join(dir, "layouts"), filepath.Join(dir, "docs"), zap.NewNop())
	b.SiteName = "AI Darwin Awards"
	b.Phase = phase.Derive(phase.Context{Phase: phase.Voting, CurrentYear: 2025, AwardsYear: 2025})
	return b
}

func TestCollect(t *testing.T) {
	b := newTestSite(t)
	pages, err := b.Collect()
	require.NoError(t, err)

	var got []string
	for _, p := range pages {
		got = append(got, p.Rel+"="+p.Title)
	}
	want := []string{"about.html=About Us", "guides/how_to-vote.html=How To Vote", "rules.html=Rules"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("collected pages mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "Who we are", pages[0].Description)
	assert.Contains(t, string(pages[0].Content), `<h2 id="our-mission">Our Mission</h2>`)
	assert.Contains(t, string(pages[0].Content), "<em>closely</em>")
	assert.Equal(t, "The rules", pages[2].Description)
	assert.Equal(t, 2025, pages[2].Date.Year())
}

func TestBuild(t *testing.T) {
	b := newTestSite(t)
	written, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"about.html", "guides/how_to-vote.html", "rules.html"}, written)

	about, err := os.ReadFile(filepath.Join(b.OutputDir, "about.html"))
	require.NoError(t, err)
	assert.Contains(t, string(about), "<title>About Us | AI Darwin Awards</title>")
	assert.Contains(t, string(about), `content="Who we are"`)
	assert.Contains(t, string(about), `<a href="index.html">Home</a>`)
	assert.Contains(t, string(about), "<footer>AI Darwin Awards</footer>")

	guide, err := os.ReadFile(filepath.Join(b.OutputDir, "guides", "how_to-vote.html"))
	require.NoError(t, err)
	assert.Contains(t, string(guide), `<a href="../index.html">Home</a>`)

	rules, err := os.ReadFile(filepath.Join(b.OutputDir, "rules.html"))
	require.NoError(t, err)
	assert.Equal(t, "<article data-path=\"rules.html\"><p>No cheating.</p>\n</article>", string(rules))
}

func TestBuildMarksCurrentNavigation(t *testing.T) {
	b := newTestSite(t)
	writeFile(t, filepath.Join(b.ContentDir, "index.md"), "Home page.\n")

	_, err := b.Build()
	require.NoError(t, err)

	index, err := os.ReadFile(filepath.Join(b.OutputDir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `<a href="index.html" class="current">Home</a>`)
}

func TestBuildNestedIndexIsNotHome(t *testing.T) {
	b := newTestSite(t)
	writeFile(t, filepath.Join(b.ContentDir, "about", "index.md"), "Nested.\n")

	_, err := b.Build()
	require.NoError(t, err)

	nested, err := os.ReadFile(filepath.Join(b.OutputDir, "about", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(nested), `<a href="../index.html">Home</a>`)
	assert.NotContains(t, string(nested), `class="current"`)
}

func TestBuildUnknownLayoutFallsBack(t *testing.T) {
	b := newTestSite(t)
	writeFile(t, filepath.Join(b.ContentDir, "faq.md"), "---\nlayout: missing.html\n---\nQ?\n")

	_, err := b.Build()
	require.NoError(t, err)

	faq, err := os.ReadFile(filepath.Join(b.OutputDir, "faq.html"))
	require.NoError(t, err)
	assert.Contains(t, string(faq), "<title>Faq | AI Darwin Awards</title>")
}

func TestBuildWithoutContentDir(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(filepath.Join(dir, "content"), filepath.Join(dir, "layouts"), dir, nil)
	written, err := b.Build()
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestBuildWithoutLayouts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "content", "a.md"), "a\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "layouts"), 0o755))

	b := NewBuilder(filepath.Join(dir, "content"), filepath.Join(dir, "layouts"), dir, nil)
	_, err := b.Build()
	assert.ErrorContains(t, err, "no .html layout files")
}
