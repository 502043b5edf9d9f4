// Package render turns nominee and results records into the site's HTML by
// filling the placeholder templates kept alongside the generator.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/pbutland/ai-darwin-awards/internal/model"
)

// DefaultImage is used for nominees without an image of their own.
const DefaultImage = "aidarwinawards-banner.png"

var (
	nomineesRegion = regexp.MustCompile(`(?s)<!-- BEGIN NOMINEES -->.*?<!-- END NOMINEES -->`)
	hasPartArray   = regexp.MustCompile(`(?s)"hasPart": \[.*?\]`)
	firstHeading   = regexp.MustCompile(`<h1>.*?</h1>`)
	imageExt       = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|svg)$`)
)

// ErrNoNomineesRegion is returned for a listing page without the
// BEGIN/END NOMINEES markers.
var ErrNoNomineesRegion = errors.New("listing page has no <!-- BEGIN NOMINEES --> region")

// Renderer holds the site-wide values every page needs.
type Renderer struct {
	BaseURL string
}

// New creates a Renderer for a site published at baseURL.
func New(baseURL string) *Renderer {
	return &Renderer{BaseURL: strings.TrimRight(baseURL, "/")}
}

// NomineeURL is the absolute address of a nominee's detail page.
func (r *Renderer) NomineeURL(n *model.Nominee) string {
	return fmt.Sprintf("%s/nominees/%s.html", r.BaseURL, n.PageSlug())
}

type nomineeView struct {
	N        *model.Nominee
	ShareURL string
	PageURL  string
}

func (r *Renderer) view(n *model.Nominee) nomineeView {
	return nomineeView{
		N:        n,
		ShareURL: r.NomineeURL(n),
		PageURL:  "nominees/" + n.PageSlug() + ".html",
	}
}

// NomineeList renders the listing-page articles for nominees.
func (r *Renderer) NomineeList(nominees []*model.Nominee) (string, error) {
	views := make([]nomineeView, 0, len(nominees))
	for _, n := range nominees {
		views = append(views, r.view(n))
	}
	var buf bytes.Buffer
	if err := nomineeListTmpl.Execute(&buf, views); err != nil {
		return "", fmt.Errorf("render nominee list: %w", err)
	}
	return buf.String(), nil
}

// JSONLDAuthor is the schema.org author of an article.
type JSONLDAuthor struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// JSONLDArticle is one schema.org Article entry of a listing page.
type JSONLDArticle struct {
	Type        string       `json:"@type"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	Author      JSONLDAuthor `json:"author"`
}

// JSONLD builds the schema.org hasPart entries for nominees.
func (r *Renderer) JSONLD(nominees []*model.Nominee) []JSONLDArticle {
	parts := make([]JSONLDArticle, 0, len(nominees))
	for _, n := range nominees {
		parts = append(parts, JSONLDArticle{
			Type:        "Article",
			Name:        n.Title,
			Description: n.Description(),
			URL:         r.NomineeURL(n),
			Author:      JSONLDAuthor{Type: "Organization", Name: "AI Darwin Awards"},
		})
	}
	return parts
}

// Listing rewrites a nominees-YYYY.html page in place: the nominee articles
// between the BEGIN/END markers and the JSON-LD hasPart array.
func (r *Renderer) Listing(page []byte, nominees []*model.Nominee) ([]byte, error) {
	if !nomineesRegion.Match(page) {
		return nil, ErrNoNomineesRegion
	}
	list, err := r.NomineeList(nominees)
	if err != nil {
		return nil, err
	}
	region := []byte("<!-- BEGIN NOMINEES -->" + list + "\n            <!-- END NOMINEES -->")
	out := nomineesRegion.ReplaceAllLiteral(page, region)

	parts, err := json.MarshalIndent(r.JSONLD(nominees), "            ", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode JSON-LD: %w", err)
	}
	return replaceFirst(hasPartArray, out, append([]byte(`"hasPart": `), parts...)), nil
}

// NomineePage fills the nominee page template for n.
func (r *Renderer) NomineePage(tmpl string, n *model.Nominee) (string, error) {
	var details bytes.Buffer
	if err := nomineeDetailTmpl.Execute(&details, r.view(n)); err != nil {
		return "", fmt.Errorf("render nominee %s: %w", n.ID, err)
	}

	image := strings.TrimPrefix(n.Image, "docs/images/")
	if image == "" {
		image = DefaultImage
	}
	summary := html.EscapeString(n.Description())
	name := html.EscapeString(n.DisplayName())

	page := strings.ReplaceAll(tmpl, "[YEAR]", n.Year())
	page = string(replaceFirst(firstHeading, []byte(page), []byte("<h1>"+name+"</h1>")))
	page = strings.NewReplacer(
		"[Nominee Title]", html.EscapeString(n.Title),
		"[Nominee-specific description]", summary,
		"[Nominee description]", summary,
		"[Nominee Description]", summary,
		"[Nominee Breadcrumb Title]", name,
		"[nominee-slug]", html.EscapeString(n.PageSlug()),
		"[nominee-image]", html.EscapeString(imageExt.ReplaceAllString(image, "")),
		"[Image description]", html.EscapeString(n.Title),
		"[Nominee tagline]", html.EscapeString(n.Tagline),
	).Replace(page)
	page = strings.Replace(page, "[Details, sources, quotes, images]", details.String(), 1)

	if !strings.Contains(page, "nominee-actions.js") {
		page = strings.Replace(page, "</body>", "<script src=\"../js/nominee-actions.js\"></script>\n</body>", 1)
	}
	if !strings.Contains(page, `id="nominee-toast"`) {
		page = strings.Replace(page, "</body>", "<div id=\"nominee-toast\" style=\"display:none\"></div>\n</body>", 1)
	}
	return page, nil
}

func replaceFirst(re *regexp.Regexp, src, repl []byte) []byte {
	loc := re.FindIndex(src)
	if loc == nil {
		return src
	}
	out := make([]byte, 0, len(src)-(loc[1]-loc[0])+len(repl))
	out = append(out, src[:loc[0]]...)
	out = append(out, repl...)
	return append(out, src[loc[1]:]...)
}

func toLower(s string) string { return strings.ToLower(s) }
