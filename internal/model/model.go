package model

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// BadgeVerified marks a nominee whose story has been confirmed.
const BadgeVerified = "Verified"

// Section is one headed block of a nominee write-up.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// Source is a citation backing a nominee.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Nominee is one entry of nominees.json.
type Nominee struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug,omitempty"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Badge        string    `json:"badge"`
	Nominee      string    `json:"nominee"`
	ReportedBy   string    `json:"reportedBy"`
	ReportedDate string    `json:"reportedDate"`
	Summary      string    `json:"summary,omitempty"`
	Tagline      string    `json:"tagline,omitempty"`
	Image        string    `json:"image,omitempty"`
	Sections     []Section `json:"sections"`
	Sources      []Source  `json:"sources"`
}

// PageSlug is the file name stem of the nominee's detail page.
func (n *Nominee) PageSlug() string {
	if n.Slug != "" {
		return n.Slug
	}
	return strings.TrimSuffix(n.ID, "-nominee")
}

// DisplayName is the title up to the first " - ".
func (n *Nominee) DisplayName() string {
	if i := strings.Index(n.Title, " - "); i > 0 {
		return n.Title[:i]
	}
	return n.Title
}

// Description is the summary, falling back to the first 160 characters of
// the first section.
func (n *Nominee) Description() string {
	if n.Summary != "" {
		return n.Summary
	}
	if len(n.Sections) == 0 {
		return ""
	}
	runes := []rune(n.Sections[0].Content)
	if len(runes) > 160 {
		runes = runes[:160]
	}
	return string(runes)
}

// Reported parses ReportedDate. Only the date part is significant.
func (n *Nominee) Reported() (time.Time, bool) {
	if len(n.ReportedDate) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", n.ReportedDate[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Year is the year the nominee was reported in, or "" when unknown.
func (n *Nominee) Year() string {
	if t, ok := n.Reported(); ok {
		return fmt.Sprintf("%04d", t.Year())
	}
	return ""
}

// LoadNominees reads nominees.json.
func LoadNominees(path string) ([]*Nominee, error) {
	var nominees []*Nominee
	if err := loadJSON(path, &nominees); err != nil {
		return nil, err
	}
	for i, n := range nominees {
		if n == nil || n.ID == "" {
			return nil, fmt.Errorf("%s: nominee %d has no id", path, i)
		}
	}
	return nominees, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("error decoding %s: %w", path, err)
	}
	return nil
}

// NomineesByYear groups nominees by reporting year, keeping input order
// within a year. Nominees without a usable date are left out.
func NomineesByYear(nominees []*Nominee) map[string][]*Nominee {
	out := make(map[string][]*Nominee)
	for _, n := range nominees {
		if y := n.Year(); y != "" {
			out[y] = append(out[y], n)
		}
	}
	return out
}

// SortedYears returns the keys of a year map in ascending order.
func SortedYears[T any](m map[string]T) []string {
	years := make([]string, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// LatestVerified returns the newest reported date among verified nominees.
func LatestVerified(nominees []*Nominee) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, n := range nominees {
		if n.Badge != BadgeVerified {
			continue
		}
		if t, ok := n.Reported(); ok && (!found || t.After(latest)) {
			latest, found = t, true
		}
	}
	return latest, found
}
