package model

import "fmt"

// Points is a bonus or penalty applied on top of the base score.
type Points struct {
	Type   string `json:"type"`
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

// Scores are the judged axes of a result, each 0-100.
type Scores struct {
	Lethality       int      `json:"lethality"`
	LethalityReason string   `json:"lethalityReason"`
	Hubris          int      `json:"hubris"`
	HubrisReason    string   `json:"hubrisReason"`
	Stupidity       int      `json:"stupidity"`
	StupidityReason string   `json:"stupidityReason"`
	Impact          int      `json:"impact"`
	ImpactReason    string   `json:"impactReason"`
	BaseScore       int      `json:"baseScore"`
	Bonuses         []Points `json:"bonuses"`
	Penalties       []Points `json:"penalties"`
	FinalScore      int      `json:"finalScore"`
}

// Result is one entry of results.json, keyed by nominee id.
type Result struct {
	ID               string `json:"id"`
	Eligible         bool   `json:"eligible"`
	Scores           Scores `json:"scores"`
	OverallRationale string `json:"overallRationale"`
}

// BonusTotal sums the bonus points.
func (s *Scores) BonusTotal() int { return sumPoints(s.Bonuses) }

// PenaltyTotal sums the penalty points. Penalties are recorded as negative
// deltas.
func (s *Scores) PenaltyTotal() int { return sumPoints(s.Penalties) }

func sumPoints(ps []Points) int {
	total := 0
	for _, p := range ps {
		total += p.Points
	}
	return total
}

// Radar is the [stupidity, hubris, impact, lethality] vector plotted by the
// results chart, clockwise from the top.
func (s *Scores) Radar() []int {
	return []int{s.Stupidity, s.Hubris, s.Impact, s.Lethality}
}

// LoadResults reads results.json.
func LoadResults(path string) ([]*Result, error) {
	var results []*Result
	if err := loadJSON(path, &results); err != nil {
		return nil, err
	}
	for i, r := range results {
		if r == nil || r.ID == "" {
			return nil, fmt.Errorf("%s: result %d has no id", path, i)
		}
	}
	return results, nil
}

// ResultsByYear groups results by the reporting year of the matching
// nominee. Results without a dated nominee are left out.
func ResultsByYear(results []*Result, nominees []*Nominee) map[string][]*Result {
	byID := NomineeIndex(nominees)
	out := make(map[string][]*Result)
	for _, r := range results {
		n, ok := byID[r.ID]
		if !ok {
			continue
		}
		if y := n.Year(); y != "" {
			out[y] = append(out[y], r)
		}
	}
	return out
}

// NomineeIndex maps nominee ids to nominees.
func NomineeIndex(nominees []*Nominee) map[string]*Nominee {
	byID := make(map[string]*Nominee, len(nominees))
	for _, n := range nominees {
		byID[n.ID] = n
	}
	return byID
}

// YearSummary describes the judging of one awards year.
type YearSummary struct {
	TotalNominees      int      `json:"totalNominees"`
	EligibleNominees   int      `json:"eligibleNominees"`
	ExcludedIneligible []string `json:"excludedIneligible"`
	Winner             string   `json:"winner"`
}

// Summarize computes the summary for one year's results. The winner is the
// first eligible result with the highest final score.
func Summarize(results []*Result) YearSummary {
	summary := YearSummary{TotalNominees: len(results), ExcludedIneligible: []string{}}
	var winner *Result
	for _, r := range results {
		if !r.Eligible {
			summary.ExcludedIneligible = append(summary.ExcludedIneligible, r.ID)
			continue
		}
		summary.EligibleNominees++
		if winner == nil || r.Scores.FinalScore > winner.Scores.FinalScore {
			winner = r
		}
	}
	if winner != nil {
		summary.Winner = winner.ID
	}
	return summary
}

// Winner is the announced winner of one awards year.
type Winner struct {
	Year    string
	ID      string
	Score   int
	Nominee *Nominee
}

// Winners extracts the winner of every year that has one, in year order.
func Winners(byYear map[string][]*Result, nominees []*Nominee) []Winner {
	byID := NomineeIndex(nominees)
	var winners []Winner
	for _, year := range SortedYears(byYear) {
		summary := Summarize(byYear[year])
		if summary.Winner == "" {
			continue
		}
		for _, r := range byYear[year] {
			if r.ID == summary.Winner {
				winners = append(winners, Winner{Year: year, ID: r.ID, Score: r.Scores.FinalScore, Nominee: byID[r.ID]})
				break
			}
		}
	}
	return winners
}
