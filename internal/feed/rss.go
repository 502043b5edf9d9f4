// Package feed builds the site's RSS 2.0 feed of new nominees and announced
// winners.
package feed

import (
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pbutland/ai-darwin-awards/internal/model"
)

const (
	// DefaultMaxItems caps the number of nominee items.
	DefaultMaxItems = 20
	// DefaultContact is the managing editor and webmaster address.
	DefaultContact = "contact@aidarwinawards.org (AI Darwin Awards)"

	atomNamespace = "http://www.w3.org/2005/Atom"
	pubDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"
	noDescription = "AI Darwin Award nominee details available on the main site."
)

// undated is where nominees without a reported date sort.
var undated = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Builder assembles the feed for one build.
type Builder struct {
	BaseURL  string
	Year     int
	MaxItems int
	Contact  string
	Now      time.Time
}

// NewBuilder returns a Builder with the default limits, dated now.
func NewBuilder(baseURL string, year int) *Builder {
	return &Builder{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Year:     year,
		MaxItems: DefaultMaxItems,
		Contact:  DefaultContact,
		Now:      time.Now(),
	}
}

// RSS is the root element of the feed.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Atom    string   `xml:"xmlns:atom,attr"`
	Channel Channel  `xml:"channel"`
}

// Channel holds the feed metadata and its items.
type Channel struct {
	Title          string   `xml:"title"`
	Description    string   `xml:"description"`
	Link           string   `xml:"link"`
	AtomLink       AtomLink `xml:"atom:link"`
	Language       string   `xml:"language"`
	LastBuildDate  string   `xml:"lastBuildDate"`
	PubDate        string   `xml:"pubDate"`
	TTL            int      `xml:"ttl"`
	ManagingEditor string   `xml:"managingEditor"`
	WebMaster      string   `xml:"webMaster"`
	Image          Image    `xml:"image"`
	Items          []Item   `xml:"item"`
}

// AtomLink is the channel's self reference.
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// Image is the channel logo.
type Image struct {
	URL    string `xml:"url"`
	Title  string `xml:"title"`
	Link   string `xml:"link"`
	Width  int    `xml:"width"`
	Height int    `xml:"height"`
}

// CDATA is character data written inside a CDATA section.
type CDATA struct {
	Text string `xml:",cdata"`
}

// GUID identifies an item.
type GUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Item is one feed entry.
type Item struct {
	Title       CDATA  `xml:"title"`
	Description CDATA  `xml:"description"`
	Link        string `xml:"link"`
	GUID        GUID   `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Category    string `xml:"category"`

	date time.Time
}

// Build assembles the feed: the newest nominees up to MaxItems plus one item
// per winner, all newest first.
func (b *Builder) Build(nominees []*model.Nominee, winners []model.Winner) *RSS {
	now := FormatDate(b.Now)

	items := make([]Item, 0, len(nominees)+len(winners))
	for _, n := range nominees {
		items = append(items, b.nomineeItem(n))
	}
	sortNewestFirst(items)
	if b.MaxItems > 0 && len(items) > b.MaxItems {
		items = items[:b.MaxItems]
	}
	for _, w := range winners {
		items = append(items, b.winnerItem(w))
	}
	sortNewestFirst(items)

	year := strconv.Itoa(b.Year)
	return &RSS{
		Version: "2.0",
		Atom:    atomNamespace,
		Channel: Channel{
			Title: "AI Darwin Awards " + year + " - New Nominees",
			Description: "Latest nominees for the most spectacular AI failures and misadventures of " + year +
				". Updates as new incidents are submitted and verified.",
			Link:           b.BaseURL + "/nominees-" + year + ".html",
			AtomLink:       AtomLink{Href: b.BaseURL + "/rss.xml", Rel: "self", Type: "application/rss+xml"},
			Language:       "en-US",
			LastBuildDate:  now,
			PubDate:        now,
			TTL:            60,
			ManagingEditor: b.Contact,
			WebMaster:      b.Contact,
			Image: Image{
				URL:    b.BaseURL + "/images/aidarwinawards-logo.svg",
				Title:  "AI Darwin Awards",
				Link:   b.BaseURL + "/",
				Width:  144,
				Height: 144,
			},
			Items: items,
		},
	}
}

func (b *Builder) nomineeItem(n *model.Nominee) Item {
	link := b.BaseURL + "/nominees/" + n.PageSlug() + ".html"

	description := noDescription
	if len(n.Sections) > 0 {
		description = n.Sections[0].Content
	}
	badge := n.Badge
	if badge == "" {
		badge = "Unverified"
	}

	date, ok := n.Reported()
	pubDate := FormatDate(b.Now)
	if ok {
		pubDate = FormatDate(date)
	} else {
		date = undated
	}

	return Item{
		Title: CDATA{n.Title},
		Description: CDATA{"\n" +
			"        <p><strong>Category:</strong> " + html.EscapeString(n.Category) + "</p>\n" +
			"        <p><strong>Reported by:</strong> " + html.EscapeString(n.ReportedBy) + "</p>\n" +
			"        <p>" + html.EscapeString(description) + "</p>\n" +
			"        <p><a href=\"" + link + "\">Read full details</a></p>\n      "},
		Link:     link,
		GUID:     GUID{IsPermaLink: true, Value: link},
		PubDate:  pubDate,
		Category: badge,
		date:     date,
	}
}

// AnnouncementDate is when the winner of an awards year is announced.
func AnnouncementDate(year int) time.Time {
	return time.Date(year+1, time.February, 14, 0, 0, 0, 0, time.UTC)
}

func (b *Builder) winnerItem(w model.Winner) Item {
	link := fmt.Sprintf("%s/results/%s/%s.html", b.BaseURL, w.Year, w.ID)
	name := w.ID
	if w.Nominee != nil {
		name = w.Nominee.DisplayName()
	}
	year, _ := strconv.Atoi(w.Year)
	date := AnnouncementDate(year)

	return Item{
		Title: CDATA{fmt.Sprintf("AI Darwin Award %s Winner: %s", w.Year, name)},
		Description: CDATA{fmt.Sprintf("\n        <p>%s takes the AI Darwin Award for %s with a final score of %d.</p>\n"+
			"        <p><a href=\"%s\">See the full results</a></p>\n      ",
			html.EscapeString(name), w.Year, w.Score, link)},
		Link:     link,
		GUID:     GUID{IsPermaLink: true, Value: link},
		PubDate:  FormatDate(date),
		Category: "Winner",
		date:     date,
	}
}

func sortNewestFirst(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].date.After(items[j].date)
	})
}

// FormatDate renders t the way RSS readers expect, in GMT.
func FormatDate(t time.Time) string {
	return t.UTC().Format(pubDateLayout)
}

// Encode writes the feed as indented XML with a declaration.
func (r *RSS) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode rss: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
