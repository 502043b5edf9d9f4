package sitemap

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Priority tiers, highest first.
const (
	PriorityHome    = 1.0
	PriorityListing = 0.9
	PriorityDetail  = 0.8
	PriorityOther   = 0.7
)

var (
	yearListingPattern = regexp.MustCompile(`^(nominees|winners)-\d{4}\.html$`)
	yearResultsPattern = regexp.MustCompile(`^results/\d{4}/results\.html$`)
	nomineePattern     = regexp.MustCompile(`^nominees/[^/]+\.html$`)
	resultPattern      = regexp.MustCompile(`^results/\d{4}/[^/]+\.html$`)
)

// Page is one discoverable page, identified by its slash-separated path
// relative to the content root.
type Page struct {
	Path     string
	Priority float64
}

// Classify maps a page path to its priority tier.
func Classify(rel string) float64 {
	switch {
	case rel == "index.html":
		return PriorityHome
	case rel == "winners.html", yearListingPattern.MatchString(rel), yearResultsPattern.MatchString(rel):
		return PriorityListing
	case nomineePattern.MatchString(rel), resultPattern.MatchString(rel):
		return PriorityDetail
	default:
		return PriorityOther
	}
}

// Discover walks root for renderable pages, skipping dot-directories and any
// path matching one of the exclude globs. Pages come back ordered by priority
// then path.
func Discover(root string, exclude []string) ([]Page, error) {
	var pages []Page
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			// An unreadable entry below the root only costs that entry.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", p, err)
		}
		rel = filepath.ToSlash(rel)
		if excluded(rel, exclude) {
			return nil
		}
		pages = append(pages, Page{Path: rel, Priority: Classify(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Priority != pages[j].Priority {
			return pages[i].Priority > pages[j].Priority
		}
		return pages[i].Path < pages[j].Path
	})
	return pages, nil
}

// excluded reports whether rel matches one of patterns. A pattern ending in
// "/*" excludes everything below that directory, at any depth.
func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if dir, ok := strings.CutSuffix(pattern, "/*"); ok && underDir(rel, dir) {
			return true
		}
	}
	return false
}

// underDir reports whether rel lies below a directory matching the dir glob.
func underDir(rel, dir string) bool {
	depth := strings.Count(dir, "/") + 1
	segs := strings.Split(rel, "/")
	if len(segs) <= depth {
		return false
	}
	ok, _ := path.Match(dir, strings.Join(segs[:depth], "/"))
	return ok
}
