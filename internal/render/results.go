package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pbutland/ai-darwin-awards/internal/model"
)

var heatMapBody = regexp.MustCompile(`(?s)<tbody id="heat-map-body">.*?</tbody>`)

// HeatClass is the background class for a score cell.
func HeatClass(score int) string {
	return fmt.Sprintf("heat-%d", floorDiv(score, 10))
}

// HeatTextClass is the text colour class for a score, capped at heat-text-10.
func HeatTextClass(score int) string {
	return fmt.Sprintf("heat-text-%d", min(floorDiv(score, 10), 10))
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

type radarSeries struct {
	Name       string `json:"name"`
	Data       []int  `json:"data"`
	FinalScore int    `json:"finalScore"`
}

type heatRow struct {
	ID             string
	Name           string
	Stupidity      int
	Hubris         int
	Impact         int
	Lethality      int
	FinalScore     int
	Bonuses        []model.Points
	Penalties      []model.Points
	BonusTotal     int
	BonusTooltip   string
	PenaltyTooltip string
	PenaltyLabel   string
}

func tooltip(ps []model.Points) string {
	lines := make([]string, 0, len(ps))
	for _, p := range ps {
		lines = append(lines, p.Type+": "+p.Reason)
	}
	return strings.Join(lines, "\n")
}

// YearResults is everything needed to render one year's results pages.
type YearResults struct {
	Year     string
	Results  []*model.Result
	Nominees map[string]*model.Nominee
	Summary  model.YearSummary
}

// NewYearResults prepares a year's results, computing its summary.
func NewYearResults(year string, results []*model.Result, nominees []*model.Nominee) *YearResults {
	return &YearResults{
		Year:     year,
		Results:  results,
		Nominees: model.NomineeIndex(nominees),
		Summary:  model.Summarize(results),
	}
}

// Eligible returns the eligible results, best final score first.
func (y *YearResults) Eligible() []*model.Result {
	var out []*model.Result
	for _, r := range y.Results {
		if r.Eligible {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Scores.FinalScore > out[j].Scores.FinalScore
	})
	return out
}

func (y *YearResults) name(id string) string {
	if n, ok := y.Nominees[id]; ok {
		return n.DisplayName()
	}
	return id
}

// Overview fills the year's results.html template.
func (y *YearResults) Overview(tmpl string) (string, error) {
	eligible := y.Eligible()

	winnerName, winnerScore := "Unknown", 0
	for _, r := range eligible {
		if r.ID == y.Summary.Winner {
			if _, ok := y.Nominees[r.ID]; ok {
				winnerName = y.name(r.ID)
			}
			winnerScore = r.Scores.FinalScore
			break
		}
	}

	rows := make([]heatRow, 0, len(eligible))
	radar := make([]radarSeries, 0, len(eligible))
	for _, r := range eligible {
		s := r.Scores
		row := heatRow{
			ID:             r.ID,
			Name:           y.name(r.ID),
			Stupidity:      s.Stupidity,
			Hubris:         s.Hubris,
			Impact:         s.Impact,
			Lethality:      s.Lethality,
			FinalScore:     s.FinalScore,
			Bonuses:        s.Bonuses,
			Penalties:      s.Penalties,
			BonusTotal:     s.BonusTotal(),
			BonusTooltip:   tooltip(s.Bonuses),
			PenaltyTooltip: tooltip(s.Penalties),
		}
		if p := s.PenaltyTotal(); p > 0 {
			row.PenaltyLabel = "-" + strconv.Itoa(p)
		} else {
			row.PenaltyLabel = strconv.Itoa(p)
		}
		rows = append(rows, row)
		radar = append(radar, radarSeries{Name: y.name(r.ID), Data: s.Radar(), FinalScore: s.FinalScore})
	}

	var body bytes.Buffer
	if err := heatMapRowsTmpl.Execute(&body, rows); err != nil {
		return "", fmt.Errorf("render heat map for %s: %w", y.Year, err)
	}
	radarJSON, err := json.MarshalIndent(radar, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode radar data for %s: %w", y.Year, err)
	}

	page := strings.NewReplacer(
		"[YEAR]", y.Year,
		"[WINNER_NAME]", html.EscapeString(winnerName),
		"[WINNER_SCORE]", strconv.Itoa(winnerScore),
		"[ELIGIBLE_COUNT]", strconv.Itoa(len(eligible)),
	).Replace(tmpl)
	page = string(replaceFirst(heatMapBody, []byte(page),
		[]byte(`<tbody id="heat-map-body">`+body.String()+"\n                    </tbody>")))
	page = strings.Replace(page, "[RADAR_DATA]", string(radarJSON), 1)
	return page, nil
}

// NomineeResult fills the per-nominee results template for r.
func (y *YearResults) NomineeResult(tmpl string, r *model.Result) (string, error) {
	s := r.Scores
	name := y.name(r.ID)

	radarJSON, err := json.MarshalIndent([]radarSeries{{Name: name, Data: s.Radar(), FinalScore: s.FinalScore}}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode radar data for %s: %w", r.ID, err)
	}

	bonuses := ""
	if b := s.BonusTotal(); b > 0 {
		bonuses = "+" + strconv.Itoa(b)
	}
	penalties := ""
	if p := s.PenaltyTotal(); p < 0 {
		penalties = strconv.Itoa(p)
	}
	rationale := html.EscapeString(r.OverallRationale)

	return strings.NewReplacer(
		"[YEAR]", y.Year,
		"[NOMINEE_NAME]", html.EscapeString(name),
		"[NOMINEE_ID]", strings.TrimSuffix(r.ID, "-nominee"),
		"[LETHALITY]", strconv.Itoa(s.Lethality),
		"[LETHALITY_CLASS]", HeatTextClass(s.Lethality),
		"[HUBRIS]", strconv.Itoa(s.Hubris),
		"[HUBRIS_CLASS]", HeatTextClass(s.Hubris),
		"[STUPIDITY]", strconv.Itoa(s.Stupidity),
		"[STUPIDITY_CLASS]", HeatTextClass(s.Stupidity),
		"[IMPACT]", strconv.Itoa(s.Impact),
		"[IMPACT_CLASS]", HeatTextClass(s.Impact),
		"[BASE_SCORE]", strconv.Itoa(s.BaseScore),
		"[BASE_SCORE_CLASS]", HeatTextClass(s.BaseScore),
		"[BONUSES]", `<span class="bonus-green">`+bonuses+`</span>`,
		"[PENALTIES]", `<span class="penalty-red">`+penalties+`</span>`,
		"[BONUS_REASONS]", reasonList(s.Bonuses),
		"[PENALTY_REASONS]", reasonList(s.Penalties),
		"[FINAL_SCORE]", "<strong>"+strconv.Itoa(s.FinalScore)+"</strong>",
		"[FINAL_SCORE_CLASS]", HeatTextClass(s.FinalScore),
		"[LETHALITY_REASON]", html.EscapeString(s.LethalityReason),
		"[HUBRIS_REASON]", html.EscapeString(s.HubrisReason),
		"[STUPIDITY_REASON]", html.EscapeString(s.StupidityReason),
		"[IMPACT_REASON]", html.EscapeString(s.ImpactReason),
		"[FINAL_SCORE_RATIONALE]", rationale,
		"[OVERALL_RATIONALE]", rationale,
		"[RADAR_DATA]", string(radarJSON),
	).Replace(tmpl), nil
}

func reasonList(ps []model.Points) string {
	if len(ps) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<ul class="supplementary-points-reasons">`)
	for _, p := range ps {
		b.WriteString("<li>" + html.EscapeString(p.Reason) + "</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}
