// Package pages renders the Markdown content pages of the site (about, FAQ,
// rules and the like) into the docs tree through html/template layouts.
package pages

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pbutland/ai-darwin-awards/internal/model"
	"github.com/pbutland/ai-darwin-awards/internal/phase"
)

// DefaultLayout is executed for pages whose frontmatter names no layout.
const DefaultLayout = "page.html"

var dateFormats = []string{"2006-01-02T15:04:05Z07:00", "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// Page is one Markdown source file after conversion.
type Page struct {
	Source      string
	Rel         string // output path relative to the docs root, slash separated
	Title       string
	Description string
	Layout      string
	Date        time.Time
	Content     template.HTML
	Frontmatter map[string]interface{}
}

// Builder converts a content directory into HTML pages.
type Builder struct {
	ContentDir string
	LayoutsDir string
	OutputDir  string
	SiteName   string
	BaseURL    string
	Phase      phase.Config

	md     goldmark.Markdown
	logger *zap.Logger
}

// NewBuilder returns a Builder writing into outputDir.
func NewBuilder(contentDir, layoutsDir, outputDir string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		ContentDir: contentDir,
		LayoutsDir: layoutsDir,
		OutputDir:  outputDir,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
			),
		),
		logger: logger,
	}
}

// Collect reads and converts every .md file under the content directory,
// ordered by output path.
func (b *Builder) Collect() ([]*Page, error) {
	var pages []*Page
	err := filepath.WalkDir(b.ContentDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("error accessing path '%s' during walk: %w", path, walkErr)
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		p, err := b.convert(path)
		if err != nil {
			return err
		}
		pages = append(pages, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Rel < pages[j].Rel })
	return pages, nil
}

func (b *Builder) convert(path string) (*Page, error) {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	var fmData map[string]interface{}
	body, err := frontmatter.Parse(bytes.NewReader(fileBytes), &fmData)
	if err != nil {
		b.logger.Warn("could not parse frontmatter, treating as plain markdown", zap.String("path", path), zap.Error(err))
		body = fileBytes
		fmData = nil
	}
	if fmData == nil {
		fmData = make(map[string]interface{})
	}

	var html bytes.Buffer
	if err := b.md.Convert(body, &html); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML for file '%s': %w", path, err)
	}

	rel, err := filepath.Rel(b.ContentDir, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get relative path for %s: %w", path, err)
	}
	rel = filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel))) + ".html"

	p := &Page{
		Source:      path,
		Rel:         rel,
		Title:       stringField(fmData, "title"),
		Description: stringField(fmData, "description"),
		Layout:      stringField(fmData, "layout"),
		Content:     template.HTML(html.String()),
		Frontmatter: fmData,
	}
	if p.Title == "" {
		p.Title = titleFromName(filepath.Base(path))
	}
	if p.Description == "" {
		p.Description = stringField(fmData, "summary")
	}
	switch date := fmData["date"].(type) {
	case time.Time:
		p.Date = date
	case string:
		if p.Date = parseDate(date); p.Date.IsZero() {
			b.logger.Warn("unrecognised date in frontmatter", zap.String("path", path), zap.String("date", date))
		}
	}
	return p, nil
}

func stringField(fm map[string]interface{}, key string) string {
	s, _ := fm[key].(string)
	return s
}

func titleFromName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ReplaceAll(strings.ReplaceAll(base, "-", " "), "_", " ")
	return cases.Title(language.English).String(base)
}

func parseDate(s string) time.Time {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Layouts parses every .html file under the layouts directory. Files are
// addressed by base name, so partials can be shared between layouts.
func (b *Builder) Layouts() (*template.Template, error) {
	var files []string
	err := filepath.WalkDir(b.LayoutsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout files in '%s': %w", b.LayoutsDir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .html layout files found in '%s'", b.LayoutsDir)
	}
	templates, err := template.ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout files: %w", err)
	}
	return templates, nil
}

// Build renders every content page and returns the output paths written,
// relative to the output directory. A missing content directory is not an
// error; there is simply nothing to build.
func (b *Builder) Build() ([]string, error) {
	if _, err := os.Stat(b.ContentDir); os.IsNotExist(err) {
		b.logger.Info("content directory not found, skipping pages", zap.String("dir", b.ContentDir))
		return nil, nil
	}

	pages, err := b.Collect()
	if err != nil {
		return nil, fmt.Errorf("error during content collection walk: %w", err)
	}
	if len(pages) == 0 {
		return nil, nil
	}
	templates, err := b.Layouts()
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(pages))
	for _, p := range pages {
		if err := b.render(templates, p); err != nil {
			return written, err
		}
		written = append(written, p.Rel)
	}
	return written, nil
}

func (b *Builder) render(templates *template.Template, p *Page) error {
	layout := DefaultLayout
	if p.Layout != "" {
		if templates.Lookup(p.Layout) != nil {
			layout = p.Layout
		} else {
			b.logger.Warn("frontmatter layout not found, using default",
				zap.String("page", p.Rel), zap.String("layout", p.Layout), zap.String("default", DefaultLayout))
		}
	}
	if templates.Lookup(layout) == nil {
		return fmt.Errorf("layout '%s' for page '%s' not found in '%s'", layout, p.Rel, b.LayoutsDir)
	}

	cfg := b.Phase
	cfg.Navigation = phase.MarkCurrent(cfg.Navigation, p.Rel)
	data := model.PageData{
		SiteName:    b.SiteName,
		BaseURL:     b.BaseURL,
		Title:       p.Title,
		Description: p.Description,
		Path:        p.Rel,
		Root:        strings.Repeat("../", strings.Count(p.Rel, "/")),
		Content:     p.Content,
		Phase:       cfg,
		Params:      p.Frontmatter,
	}

	var out bytes.Buffer
	if err := templates.ExecuteTemplate(&out, layout, data); err != nil {
		return fmt.Errorf("failed to execute template '%s' for page '%s': %w", layout, p.Rel, err)
	}

	outputPath := filepath.Join(b.OutputDir, filepath.FromSlash(p.Rel))
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", outputPath, err)
	}
	b.logger.Debug("generated page", zap.String("path", outputPath), zap.String("layout", layout))
	return nil
}
