package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/pbutland/ai-darwin-awards/internal/config"
	"github.com/pbutland/ai-darwin-awards/internal/model"
	"github.com/pbutland/ai-darwin-awards/internal/phase"
	"github.com/pbutland/ai-darwin-awards/internal/sitemap"
)

const fixtureNominees = `[
  {"id": "alpha-nominee", "title": "Alpha - Lost the Database", "category": "Ops", "badge": "Verified",
   "nominee": "Alpha Corp", "reportedBy": "Ops team", "reportedDate": "2025-07-01",
   "sections": [{"heading": "What happened", "content": "An agent dropped production."}],
   "sources": [{"name": "Postmortem", "url": "https://example.com/pm"}]},
  {"id": "beta-nominee", "slug": "beta-bot", "title": "Beta Bot", "category": "Legal", "badge": "Unverified",
   "nominee": "Beta LLP", "reportedBy": "Clerk", "reportedDate": "2025-08-15",
   "sections": [], "sources": []}
]`

const fixtureResults = `[
  {"id": "alpha-nominee", "eligible": true, "overallRationale": "Textbook.",
   "scores": {"lethality": 0, "hubris": 90, "stupidity": 85, "impact": 70, "baseScore": 70, "bonuses": [], "penalties": [], "finalScore": 80}},
  {"id": "beta-nominee", "eligible": false, "scores": {"finalScore": 10}}
]`

const fixtureListing = `<html><head><script type="application/ld+json">
{"hasPart": []}
</script></head><body>
<!-- BEGIN NOMINEES -->
<!-- END NOMINEES -->
</body></html>`

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fixtureSite(t *testing.T, phaseName string) config.Config {
	t.Helper()
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")

	writeFixture(t, filepath.Join(docs, "data", "v1", "nominees.json"), fixtureNominees)
	writeFixture(t, filepath.Join(docs, "data", "v1", "results.json"), fixtureResults)
	writeFixture(t, filepath.Join(docs, "nominees-2025.html"), fixtureListing)
	writeFixture(t, filepath.Join(docs, "index.html"), "<html>home</html>")
	writeFixture(t, filepath.Join(docs, "404.html"), "<html>missing</html>")
	writeFixture(t, filepath.Join(docs, "js", "countdown.js"), "const lastNomineeDate = '2025-01-01';\n")
	writeFixture(t, filepath.Join(dir, "templates", "nominee.html"), "<html><h1>x</h1>[Nominee Title]\n[Details, sources, quotes, images]</body></html>")
	writeFixture(t, filepath.Join(dir, "templates", "results.html"), "<h1>[YEAR]</h1>[WINNER_NAME] [WINNER_SCORE] [ELIGIBLE_COUNT]<tbody id=\"heat-map-body\"></tbody>")
	writeFixture(t, filepath.Join(dir, "templates", "nominee-results.html"), "[NOMINEE_NAME] [FINAL_SCORE]")
	writeFixture(t, filepath.Join(dir, "content", "faq.md"), "---\ntitle: FAQ\n---\n# Questions\n")
	writeFixture(t, filepath.Join(dir, "layouts", "page.html"), "<title>{{ .Title }}</title>{{ .Content }}")

	return config.Config{
		SiteName:    "AI Darwin Awards",
		BaseURL:     "https://aidarwinawards.org",
		DocsDir:     docs,
		Phase:       phaseName,
		CurrentYear: 2025,
		AwardsYear:  2025,
		Data: config.DataConfig{
			Nominees: filepath.Join(docs, "data", "v1", "nominees.json"),
			Results:  filepath.Join(docs, "data", "v1", "results.json"),
		},
		Templates: config.TemplateConfig{
			Nominee:        filepath.Join(dir, "templates", "nominee.html"),
			Results:        filepath.Join(dir, "templates", "results.html"),
			NomineeResults: filepath.Join(dir, "templates", "nominee-results.html"),
		},
		ContentDir: filepath.Join(dir, "content"),
		LayoutsDir: filepath.Join(dir, "layouts"),
		Sitemap:    config.SitemapConfig{Exclude: []string{"404.html"}},
		Feed:       config.FeedConfig{MaxItems: 20},
	}
}

func readDoc(t *testing.T, cfg config.Config, elem ...string) string {
	t.Helper()
	data, err := os.ReadFile(cfg.DocsPath(elem...))
	require.NoError(t, err)
	return string(data)
}

func TestRunBuildProcess(t *testing.T) {
	cfg := fixtureSite(t, "results_available")
	require.NoError(t, runBuildProcess(cfg, zap.NewNop()))

	assert.Contains(t, readDoc(t, cfg, "nominees", "alpha.html"), "<h1>Alpha</h1>Alpha - Lost the Database")
	assert.Contains(t, readDoc(t, cfg, "nominees", "beta-bot.html"), "<h1>Beta Bot</h1>")

	listing := readDoc(t, cfg, "nominees-2025.html")
	assert.Contains(t, listing, `id="alpha-nominee"`)
	assert.Contains(t, listing, `"url": "https://aidarwinawards.org/nominees/beta-bot.html"`)

	assert.Equal(t, "const lastNomineeDate = '2025-07-01';\n", readDoc(t, cfg, "js", "countdown.js"))

	assert.True(t, strings.HasPrefix(readDoc(t, cfg, "results", "2025", "results.html"), "<h1>2025</h1>Alpha 80 1<tbody id=\"heat-map-body\">"))
	assert.Equal(t, "Alpha <strong>80</strong>", readDoc(t, cfg, "results", "2025", "alpha-nominee.html"))
	assert.NoFileExists(t, cfg.DocsPath("results", "2025", "beta-nominee.html"))

	var phaseCfg phase.Config
	require.NoError(t, json.Unmarshal([]byte(readDoc(t, cfg, "data", "v1", "phase.json")), &phaseCfg))
	assert.Equal(t, phase.ResultsAvailable, phaseCfg.Phase)
	assert.Equal(t, "winners-2025.html", phaseCfg.PrimaryCTA.Href)

	assert.Equal(t, "<title>FAQ</title><h1 id=\"questions\">Questions</h1>\n", readDoc(t, cfg, "faq.html"))

	f, err := os.Open(cfg.DocsPath("sitemap.xml"))
	require.NoError(t, err)
	defer f.Close()
	doc, err := sitemap.Parse(f)
	require.NoError(t, err)
	var urls []string
	for _, r := range doc.Records {
		urls = append(urls, r.URL)
		assert.NotEmpty(t, r.LastMod, r.URL)
	}
	assert.Equal(t, "https://aidarwinawards.org", urls[0])
	assert.Contains(t, urls, "https://aidarwinawards.org/results/2025/results.html")
	assert.Contains(t, urls, "https://aidarwinawards.org/nominees/alpha.html")
	assert.Contains(t, urls, "https://aidarwinawards.org/faq.html")
	assert.NotContains(t, urls, "https://aidarwinawards.org/404.html")

	rss := readDoc(t, cfg, "rss.xml")
	assert.Contains(t, rss, "<![CDATA[AI Darwin Award 2025 Winner: Alpha]]>")
	assert.Contains(t, rss, "<link>https://aidarwinawards.org/nominees/beta-bot.html</link>")
}

func TestRunBuildProcessHoldsBackWinnerBeforeAnnouncement(t *testing.T) {
	cfg := fixtureSite(t, "voting")
	require.NoError(t, runBuildProcess(cfg, zap.NewNop()))
	assert.NotContains(t, readDoc(t, cfg, "rss.xml"), "Winner:")
}

func TestRunBuildProcessWithoutResults(t *testing.T) {
	cfg := fixtureSite(t, "nomination")
	require.NoError(t, os.Remove(cfg.Data.Results))
	require.NoError(t, runBuildProcess(cfg, zap.NewNop()))
	assert.NoDirExists(t, cfg.DocsPath("results"))
}

func TestRunBuildProcessMissingListing(t *testing.T) {
	cfg := fixtureSite(t, "nomination")
	require.NoError(t, os.Remove(cfg.DocsPath("nominees-2025.html")))
	assert.ErrorContains(t, runBuildProcess(cfg, zap.NewNop()), "listing page for 2025")
}

func TestRunBuildProcessIsRepeatable(t *testing.T) {
	cfg := fixtureSite(t, "nomination")
	require.NoError(t, runBuildProcess(cfg, zap.NewNop()))
	first := readDoc(t, cfg, "sitemap.xml")

	require.NoError(t, runBuildProcess(cfg, zap.NewNop()))
	assert.Equal(t, first, readDoc(t, cfg, "sitemap.xml"))
}

func TestWriteFeedReplacesWholeFile(t *testing.T) {
	cfg := fixtureSite(t, "nomination")
	cfg.DocsDir = filepath.Join(t.TempDir(), "fresh-docs")

	nominees, err := model.LoadNominees(cfg.Data.Nominees)
	require.NoError(t, err)
	ctx, err := cfg.PhaseContext()
	require.NoError(t, err)

	require.NoError(t, writeFeed(cfg, ctx, nominees, nil, zap.NewNop()))
	first := readDoc(t, cfg, "rss.xml")
	assert.Contains(t, first, "beta-bot.html")

	require.NoError(t, writeFeed(cfg, ctx, nominees[:1], nil, zap.NewNop()))
	second := readDoc(t, cfg, "rss.xml")
	assert.NotContains(t, second, "beta-bot.html")
	assert.True(t, strings.HasSuffix(second, "</rss>\n"))
}

func TestSerializedRebuildsDoNotOverlap(t *testing.T) {
	var running, overlaps, calls int32
	rebuild := serialized(func() error {
		if atomic.AddInt32(&running, 1) > 1 {
			atomic.AddInt32(&overlaps, 1)
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&calls, 1)
		atomic.AddInt32(&running, -1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, rebuild())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(8), calls)
	assert.Zero(t, overlaps)
}

func TestAnnounced(t *testing.T) {
	winners := []model.Winner{{Year: "2025", ID: "a"}, {Year: "2026", ID: "b"}}

	got := announced(phase.Context{Phase: phase.Nomination, CurrentYear: 2026, AwardsYear: 2026}, winners)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	got = announced(phase.Context{Phase: phase.ResultsAvailable, CurrentYear: 2026, AwardsYear: 2026}, winners)
	assert.Len(t, got, 2)

	assert.Empty(t, announced(phase.Context{Phase: phase.Voting, CurrentYear: 2025, AwardsYear: 2025}, winners))
}

func TestPrintPhase(t *testing.T) {
	cfg := phase.Derive(phase.Context{Phase: phase.Voting, CurrentYear: 2026, AwardsYear: 2025})

	var buf bytes.Buffer
	require.NoError(t, printPhase(&buf, cfg, "json"))
	var decoded phase.Config
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, cfg, decoded)

	buf.Reset()
	require.NoError(t, printPhase(&buf, cfg, "yaml"))
	var fromYAML phase.Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, cfg, fromYAML)
	assert.True(t, strings.HasPrefix(buf.String(), "phase: voting\n"))

	assert.ErrorContains(t, printPhase(&buf, cfg, "toml"), `unknown format "toml"`)
}

func TestFileHandler(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "index.html"), "home")
	writeFixture(t, filepath.Join(dir, "nominees", "a.html"), "a")

	h := fileHandler(dir)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nominees/a.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a", rec.Body.String())
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nominees/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home", rec.Body.String())
}

func TestWatchSetRelevant(t *testing.T) {
	ws := newWatchSet(config.Config{
		Data:       config.DataConfig{Nominees: "docs/data/v1/nominees.json"},
		Templates:  config.TemplateConfig{Nominee: "scripts/templates/nominee-template.html"},
		ContentDir: "content",
		LayoutsDir: "layouts",
	})

	assert.True(t, ws.relevant("docs/data/v1/nominees.json"))
	assert.True(t, ws.relevant("./scripts/templates/nominee-template.html"))
	assert.True(t, ws.relevant("content/guides/faq.md"))
	assert.True(t, ws.relevant("layouts/page.html"))
	assert.False(t, ws.relevant("docs/data/v1/phase.json"))
	assert.False(t, ws.relevant("contentious/file.md"))
	assert.False(t, ws.relevant("docs/sitemap.xml"))
}
