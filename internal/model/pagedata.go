package model

import (
	"html/template"

	"github.com/pbutland/ai-darwin-awards/internal/phase"
)

// PageData is what a content page layout is executed with.
type PageData struct {
	SiteName    string
	BaseURL     string
	Title       string
	Description string
	Path        string // output path relative to the docs root
	Root        string // relative prefix back to the docs root, e.g. "../"
	Content     template.HTML
	Phase       phase.Config
	Params      map[string]interface{}
}
