package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbutland/ai-darwin-awards/internal/model"
)

var buildTime = time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)

func newBuilder() *Builder {
	b := NewBuilder("https://aidarwinawards.org/", 2025)
	b.Now = buildTime
	return b
}

func nominee(id, date string) *model.Nominee {
	return &model.Nominee{
		ID:           id + "-nominee",
		Title:        "Title " + id,
		Category:     "Cat & Dog",
		Badge:        "Verified",
		ReportedBy:   "Someone",
		ReportedDate: date,
		Sections:     []model.Section{{Heading: "h", Content: "first <b>section</b>"}},
	}
}

func titles(r *RSS) []string {
	var out []string
	for _, it := range r.Channel.Items {
		out = append(out, it.Title.Text)
	}
	return out
}

func TestBuildOrdersNewestFirst(t *testing.T) {
	feed := newBuilder().Build([]*model.Nominee{
		nominee("a", "2025-03-01"),
		nominee("b", ""),
		nominee("c", "2025-07-15"),
		nominee("d", "2024-12-31"),
	}, nil)

	want := []string{"Title c", "Title a", "Title b", "Title d"}
	if diff := cmp.Diff(want, titles(feed)); diff != "" {
		t.Errorf("item order mismatch (-want +got):\n%s", diff)
	}

	undated := feed.Channel.Items[2]
	assert.Equal(t, FormatDate(buildTime), undated.PubDate)
	assert.Equal(t, "Tue, 15 Jul 2025 00:00:00 GMT", feed.Channel.Items[0].PubDate)
}

func TestBuildCapsNomineeItems(t *testing.T) {
	var nominees []*model.Nominee
	for i := 1; i <= 25; i++ {
		nominees = append(nominees, nominee(fmt.Sprintf("n%02d", i), fmt.Sprintf("2025-01-%02d", i)))
	}
	feed := newBuilder().Build(nominees, nil)

	require.Len(t, feed.Channel.Items, DefaultMaxItems)
	assert.Equal(t, "Title n25", feed.Channel.Items[0].Title.Text)
	assert.Equal(t, "Title n06", feed.Channel.Items[DefaultMaxItems-1].Title.Text)
}

func TestBuildWinnerItems(t *testing.T) {
	winner := nominee("w", "2025-05-05")
	winner.Title = "Big Fail - the long version"
	feed := newBuilder().Build(
		[]*model.Nominee{nominee("a", "2025-08-01"), winner},
		[]model.Winner{{Year: "2025", ID: "w-nominee", Score: 91, Nominee: winner}},
	)

	require.Len(t, feed.Channel.Items, 3)
	first := feed.Channel.Items[0]
	assert.Equal(t, "AI Darwin Award 2025 Winner: Big Fail", first.Title.Text)
	assert.Equal(t, "Sat, 14 Feb 2026 00:00:00 GMT", first.PubDate)
	assert.Equal(t, "https://aidarwinawards.org/results/2025/w-nominee.html", first.Link)
	assert.Equal(t, "Winner", first.Category)
	assert.Contains(t, first.Description.Text, "final score of 91")
}

func TestNomineeItem(t *testing.T) {
	n := nominee("x", "2025-02-02")
	n.Badge = ""
	item := newBuilder().nomineeItem(n)

	assert.Equal(t, "https://aidarwinawards.org/nominees/x.html", item.Link)
	assert.Equal(t, GUID{IsPermaLink: true, Value: item.Link}, item.GUID)
	assert.Equal(t, "Unverified", item.Category)
	assert.Contains(t, item.Description.Text, "<p><strong>Category:</strong> Cat &amp; Dog</p>")
	assert.Contains(t, item.Description.Text, "<p>first &lt;b&gt;section&lt;/b&gt;</p>")

	n.Sections = nil
	assert.Contains(t, newBuilder().nomineeItem(n).Description.Text, noDescription)
}

func TestEncode(t *testing.T) {
	feed := newBuilder().Build([]*model.Nominee{nominee("a", "2025-03-01")}, nil)

	var buf bytes.Buffer
	require.NoError(t, feed.Encode(&buf))
	out := buf.String()

	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	assert.Contains(t, out, `<title>AI Darwin Awards 2025 - New Nominees</title>`)
	assert.Contains(t, out, `<link>https://aidarwinawards.org/nominees-2025.html</link>`)
	assert.Contains(t, out, `<atom:link href="https://aidarwinawards.org/rss.xml" rel="self" type="application/rss+xml"></atom:link>`)
	assert.Contains(t, out, `<ttl>60</ttl>`)
	assert.Contains(t, out, `<width>144</width>`)
	assert.Contains(t, out, `<title><![CDATA[Title a]]></title>`)
	assert.Contains(t, out, `<guid isPermaLink="true">https://aidarwinawards.org/nominees/a.html</guid>`)
	assert.Contains(t, out, `<lastBuildDate>Mon, 01 Sep 2025 12:00:00 GMT</lastBuildDate>`)

	var parsed struct {
		Items []struct {
			Title string `xml:"title"`
			Link  string `xml:"link"`
		} `xml:"channel>item"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "Title a", parsed.Items[0].Title)
}
