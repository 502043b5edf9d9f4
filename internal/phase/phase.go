// Package phase derives the phase-dependent navigation, calls to action and
// status banner for the awards site from a fixed configuration.
package phase

import (
	"fmt"
	"path"
	"strings"
)

// Phase is one stage of the annual awards cycle.
type Phase string

const (
	Nomination       Phase = "nomination"
	Voting           Phase = "voting"
	ResultsPending   Phase = "results_pending"
	ResultsAvailable Phase = "results_available"
)

// FirstAwardsYear is the first year for which winners were announced.
const FirstAwardsYear = 2025

// All lists the phases in cycle order.
var All = []Phase{Nomination, Voting, ResultsPending, ResultsAvailable}

// Parse converts a configured phase name into a Phase.
func Parse(s string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown phase %q (want one of nomination, voting, results_pending, results_available)", s)
}

// Context is the configured state the site is rendered for.
type Context struct {
	Phase       Phase `json:"phase" yaml:"phase"`
	CurrentYear int   `json:"currentYear" yaml:"currentYear"`
	AwardsYear  int   `json:"awardsYear" yaml:"awardsYear"`
}

// Validate rejects contexts the derivations are not defined for.
func (c Context) Validate() error {
	if _, err := Parse(string(c.Phase)); err != nil {
		return err
	}
	if c.AwardsYear <= 0 || c.CurrentYear <= 0 {
		return fmt.Errorf("years must be positive (currentYear=%d, awardsYear=%d)", c.CurrentYear, c.AwardsYear)
	}
	if c.AwardsYear > c.CurrentYear {
		return fmt.Errorf("awardsYear %d is after currentYear %d", c.AwardsYear, c.CurrentYear)
	}
	return nil
}

// rolledOver reports whether a new nomination cycle has started while the
// awards year is still being judged.
func (c Context) rolledOver() bool {
	return c.CurrentYear > c.AwardsYear
}

// NavigationItem is one entry of the phase navigation bar.
type NavigationItem struct {
	Href        string `json:"href" yaml:"href"`
	Label       string `json:"label" yaml:"label"`
	IsCurrent   bool   `json:"isCurrent" yaml:"isCurrent"`
	Highlighted bool   `json:"highlighted" yaml:"highlighted"`
}

// CallToAction is a button or link urging the visitor somewhere.
type CallToAction struct {
	Href        string `json:"href" yaml:"href"`
	Text        string `json:"text" yaml:"text"`
	Subtext     string `json:"subtext,omitempty" yaml:"subtext,omitempty"`
	Highlighted bool   `json:"highlighted" yaml:"highlighted"`
}

// Severity styles the status banner.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// StatusMessage is the banner shown across the top of every page.
type StatusMessage struct {
	Severity    Severity `json:"severity" yaml:"severity"`
	Icon        string   `json:"icon" yaml:"icon"`
	Text        string   `json:"text" yaml:"text"`
	Dismissible bool     `json:"dismissible" yaml:"dismissible"`
}

const homePage = "index.html"

func nomineesPage(year int) string { return fmt.Sprintf("nominees-%d.html", year) }
func winnersPage(year int) string  { return fmt.Sprintf("winners-%d.html", year) }

func nomineesItem(year int) NavigationItem {
	return NavigationItem{Href: nomineesPage(year), Label: fmt.Sprintf("%d Nominees", year)}
}

// Navigation returns the navigation bar, home first.
func Navigation(ctx Context) []NavigationItem {
	items := []NavigationItem{{Href: homePage, Label: "Home"}}

	switch ctx.Phase {
	case Voting:
		items = append(items,
			nomineesItem(ctx.AwardsYear),
			NavigationItem{Href: "vote.html", Label: "Vote", Highlighted: true},
		)
	case ResultsPending:
		items = append(items, nomineesItem(ctx.AwardsYear))
	case ResultsAvailable:
		items = append(items, NavigationItem{
			Href:        winnersPage(ctx.AwardsYear),
			Label:       fmt.Sprintf("%d Winners", ctx.AwardsYear),
			Highlighted: true,
		})
	default:
		items = append(items, nomineesItem(ctx.CurrentYear))
		if ctx.CurrentYear > FirstAwardsYear {
			items = append(items, NavigationItem{
				Href:  winnersPage(ctx.AwardsYear),
				Label: fmt.Sprintf("%d Winners", ctx.AwardsYear),
			})
		}
	}

	if ctx.rolledOver() && !containsHref(items, nomineesPage(ctx.CurrentYear)) {
		items = append(items, nomineesItem(ctx.CurrentYear))
	}
	return items
}

func containsHref(items []NavigationItem, href string) bool {
	for _, it := range items {
		if it.Href == href {
			return true
		}
	}
	return false
}

// PrimaryCTA returns the single main call to action for the phase.
func PrimaryCTA(ctx Context) CallToAction {
	switch ctx.Phase {
	case Voting:
		return CallToAction{
			Href:        "vote.html",
			Text:        fmt.Sprintf("Vote for %d Winners", ctx.AwardsYear),
			Subtext:     "Voting Open Until January 31st",
			Highlighted: true,
		}
	case ResultsPending:
		return CallToAction{
			Href:    nomineesPage(ctx.AwardsYear),
			Text:    fmt.Sprintf("%d Nominees", ctx.AwardsYear),
			Subtext: "Results Coming Soon!",
		}
	case ResultsAvailable:
		return CallToAction{
			Href:        winnersPage(ctx.AwardsYear),
			Text:        fmt.Sprintf("See %d Winners", ctx.AwardsYear),
			Subtext:     "The Most Spectacular AI Failures",
			Highlighted: true,
		}
	default:
		return CallToAction{
			Href:    nomineesPage(ctx.CurrentYear),
			Text:    fmt.Sprintf("See the Latest Nominees for %d", ctx.CurrentYear),
			Subtext: "When AI Meets Human Overconfidence",
		}
	}
}

// SecondaryActions returns the extra links shown under the primary CTA. They
// only exist once the next cycle has started.
func SecondaryActions(ctx Context) []CallToAction {
	if !ctx.rolledOver() {
		return []CallToAction{}
	}
	switch ctx.Phase {
	case Voting:
		return []CallToAction{
			{Href: nomineesPage(ctx.AwardsYear), Text: fmt.Sprintf("View %d Nominees", ctx.AwardsYear)},
			{Href: nomineesPage(ctx.CurrentYear), Text: fmt.Sprintf("Browse %d Nominees", ctx.CurrentYear)},
		}
	case ResultsPending, ResultsAvailable:
		return []CallToAction{
			{Href: "nominate.html", Text: fmt.Sprintf("Nominate for %d", ctx.CurrentYear)},
			{Href: nomineesPage(ctx.CurrentYear), Text: fmt.Sprintf("View %d Nominees", ctx.CurrentYear)},
		}
	default:
		return []CallToAction{}
	}
}

// Status returns the banner for the phase, or nil during nominations.
func Status(ctx Context) *StatusMessage {
	switch ctx.Phase {
	case Voting:
		return &StatusMessage{
			Severity:    SeverityInfo,
			Icon:        "🗳️",
			Text:        fmt.Sprintf("Voting is now open for the %d AI Darwin Awards! Cast your vote by January 31st.", ctx.AwardsYear),
			Dismissible: true,
		}
	case ResultsPending:
		// Waiting does not change until the next phase is configured.
		return &StatusMessage{
			Severity: SeverityInfo,
			Icon:     "⏳",
			Text:     fmt.Sprintf("Voting has closed for %d. Results will be announced soon!", ctx.AwardsYear),
		}
	case ResultsAvailable:
		return &StatusMessage{
			Severity:    SeveritySuccess,
			Icon:        "🏆",
			Text:        fmt.Sprintf("The %d AI Darwin Award winners have been announced!", ctx.AwardsYear),
			Dismissible: true,
		}
	default:
		return nil
	}
}

// DismissalKey is the browser storage key recording that the banner was
// dismissed for this phase and awards year.
func DismissalKey(ctx Context) string {
	return fmt.Sprintf("status-banner-dismissed-%s-%d", ctx.Phase, ctx.AwardsYear)
}

// MarkCurrent returns a copy of items with IsCurrent set on the entries that
// point at page, a path relative to the site root. A current item is never
// highlighted.
func MarkCurrent(items []NavigationItem, page string) []NavigationItem {
	current := pagePath(page)
	out := make([]NavigationItem, len(items))
	for i, it := range items {
		if pagePath(it.Href) == current {
			it.IsCurrent = true
			it.Highlighted = false
		}
		out[i] = it
	}
	return out
}

// pagePath normalises a root-relative page reference so that "/", "" and
// "dir/" resolve to their index.html.
func pagePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	if p == "" || strings.HasSuffix(p, "/") {
		p += homePage
	}
	return path.Clean(p)
}

// Config is everything the browser UI needs to render the phase.
type Config struct {
	Context          `yaml:",inline"`
	ShowNavigation   bool             `json:"showNavigation" yaml:"showNavigation"`
	Navigation       []NavigationItem `json:"navigation" yaml:"navigation"`
	PrimaryCTA       CallToAction     `json:"primaryCTA" yaml:"primaryCTA"`
	SecondaryActions []CallToAction   `json:"secondaryActions" yaml:"secondaryActions"`
	Status           *StatusMessage   `json:"status,omitempty" yaml:"status,omitempty"`
	DismissalKey     string           `json:"dismissalKey" yaml:"dismissalKey"`
}

// Derive computes the full UI configuration for ctx.
func Derive(ctx Context) Config {
	nav := Navigation(ctx)
	return Config{
		Context:          ctx,
		ShowNavigation:   len(nav) > 1,
		Navigation:       nav,
		PrimaryCTA:       PrimaryCTA(ctx),
		SecondaryActions: SecondaryActions(ctx),
		Status:           Status(ctx),
		DismissalKey:     DismissalKey(ctx),
	}
}
