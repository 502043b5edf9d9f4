// Package sitemap builds the site's sitemap.xml, carrying lastmod dates
// forward for pages whose content matches the last committed version.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Namespace is the sitemap protocol namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// DateLayout is the lastmod format.
const DateLayout = "2006-01-02"

// Record is one <url> entry. An empty LastMod is omitted.
type Record struct {
	URL      string
	LastMod  string
	Priority float64
}

// Document is an ordered sitemap.
type Document struct {
	Records []Record
}

// LastMods returns the url -> lastmod lookup for d. A nil document yields an
// empty lookup.
func (d *Document) LastMods() map[string]string {
	out := make(map[string]string)
	if d == nil {
		return out
	}
	for _, r := range d.Records {
		if r.LastMod != "" {
			out[r.URL] = r.LastMod
		}
	}
	return out
}

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc      string `xml:"loc"`
	LastMod  string `xml:"lastmod,omitempty"`
	Priority string `xml:"priority,omitempty"`
}

// Parse reads a sitemap document. A priority that is not a number is read
// as zero; only the structure of the document can make it fail.
func Parse(r io.Reader) (*Document, error) {
	var set xmlURLSet
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode sitemap: %w", err)
	}
	doc := &Document{Records: make([]Record, 0, len(set.URLs))}
	for _, u := range set.URLs {
		rec := Record{URL: u.Loc, LastMod: u.LastMod}
		if p, err := strconv.ParseFloat(strings.TrimSpace(u.Priority), 64); err == nil {
			rec.Priority = p
		}
		doc.Records = append(doc.Records, rec)
	}
	return doc, nil
}

// Encode writes d as sitemap XML. Output is deterministic for equal documents.
func (d *Document) Encode(w io.Writer) error {
	set := xmlURLSet{XMLNS: Namespace, URLs: make([]xmlURL, 0, len(d.Records))}
	for _, r := range d.Records {
		set.URLs = append(set.URLs, xmlURL{
			Loc:      r.URL,
			LastMod:  r.LastMod,
			Priority: strconv.FormatFloat(r.Priority, 'f', 1, 64),
		})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Bytes is Encode into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
