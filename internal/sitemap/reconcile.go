package sitemap

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Stats summarises one reconciliation run.
type Stats struct {
	Pages     int
	Changed   int
	Unchanged int
	Carried   int
	Dropped   int
}

// Reconciler computes a fresh sitemap for the pages under Root.
type Reconciler struct {
	BaseURL   string
	Root      string
	Exclude   []string
	Snapshots Snapshotter
	logger    *zap.Logger
}

// NewReconciler creates a Reconciler. A nil snapshotter treats every page as
// changed.
func NewReconciler(baseURL, root string, exclude []string, snapshots Snapshotter, logger *zap.Logger) *Reconciler {
	if snapshots == nil {
		snapshots = NoSnapshots{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Root:      root,
		Exclude:   exclude,
		Snapshots: snapshots,
		logger:    logger,
	}
}

// URL resolves a page path to its public address. The root index maps to the
// bare base URL.
func (r *Reconciler) URL(rel string) string {
	if rel == "index.html" {
		return r.BaseURL
	}
	return r.BaseURL + "/" + rel
}

// Reconcile builds the new sitemap. prev may be nil, in which case every page
// is dated by its file modification time. Records for pages that are no
// longer discoverable are dropped.
func (r *Reconciler) Reconcile(prev *Document) (*Document, Stats, error) {
	var stats Stats
	pages, err := Discover(r.Root, r.Exclude)
	if err != nil {
		return nil, stats, err
	}
	previous := prev.LastMods()

	doc := &Document{Records: make([]Record, 0, len(pages))}
	seen := make(map[string]bool, len(pages))
	for _, page := range pages {
		url := r.URL(page.Path)
		seen[url] = true
		doc.Records = append(doc.Records, Record{
			URL:      url,
			LastMod:  r.lastMod(page.Path, url, previous, &stats),
			Priority: page.Priority,
		})
	}

	stats.Pages = len(doc.Records)
	if prev != nil {
		for _, rec := range prev.Records {
			if !seen[rec.URL] {
				stats.Dropped++
				r.logger.Debug("Dropping page no longer on disk", zap.String("url", rec.URL))
			}
		}
	}
	return doc, stats, nil
}

func (r *Reconciler) lastMod(rel, url string, previous map[string]string, stats *Stats) string {
	file := filepath.Join(r.Root, filepath.FromSlash(rel))
	info, err := os.Stat(file)
	if err != nil {
		r.logger.Warn("Could not stat page, omitting lastmod", zap.String("path", file), zap.Error(err))
		return ""
	}
	modified := info.ModTime().Local().Format(DateLayout)

	if !r.unchanged(file) {
		stats.Changed++
		return modified
	}
	stats.Unchanged++
	if last, ok := previous[url]; ok {
		stats.Carried++
		return last
	}
	// First appearance in the sitemap.
	return modified
}

// unchanged reports whether the file on disk is byte-identical to its
// committed version. Any lookup failure counts as changed.
func (r *Reconciler) unchanged(file string) bool {
	committed, err := r.Snapshots.Committed(file)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			r.logger.Warn("Snapshot lookup failed, treating page as changed", zap.String("path", file), zap.Error(err))
		}
		return false
	}
	current, err := os.ReadFile(file)
	if err != nil {
		r.logger.Warn("Could not read page, treating as changed", zap.String("path", file), zap.Error(err))
		return false
	}
	return bytes.Equal(committed, current)
}
