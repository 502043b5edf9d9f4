package render

import "html/template"

var funcs = template.FuncMap{
	"heat":  HeatClass,
	"lower": toLower,
}

// nomineeListTmpl renders one collapsible article per nominee on the year
// listing pages.
var nomineeListTmpl = template.Must(template.New("nominee-list").Funcs(funcs).Parse(`
{{- range . }}
            <article class="nominee" id="{{ .N.ID }}">
                <details>
                    <summary>
                        <span class="nominee-title">{{ .N.Title }}</span>
                        <h3 class="category">{{ .N.Category }}</h3>
                        <span class="{{ lower .N.Badge }}-badge">{{ .N.Badge }}</span>
                    </summary>
                    <div class="nominee-details">
                        <p class="attribution">
                            <strong>Nominee:</strong> {{ .N.Nominee }}
                        </p>
                        <p class="attribution">
                            <strong>Reported by:</strong> {{ .N.ReportedBy }}
                        </p>
                        <div class="nominee-actions">
                            <button class="share-button" data-share-url="{{ .ShareURL }}" title="Share this nominee" aria-label="Share this nominee">
                                <img src="images/share.svg" alt="Share this nominee" />
                            </button>
                            <button class="open-new-window-button" data-open-url="{{ .PageURL }}" title="Open in new window" aria-label="Open in new window">
                                <img src="images/open-new-window.svg" alt="Open in new window" />
                            </button>
                        </div>
                        {{- range .N.Sections }}
                        <div class="nominee-section">
                            <h3>{{ .Heading }}</h3>
                            <p>{{ .Content }}</p>
                        </div>
                        {{- end }}
                        <p>
                            <strong>Sources:</strong> {{ range $i, $s := .N.Sources }}{{ if $i }} | {{ end }}<a href="{{ $s.URL }}" target="_blank" rel="noopener">{{ $s.Name }}</a>{{ end }}
                        </p>
                    </div>
                </details>
            </article>
{{- end }}`))

// nomineeDetailTmpl is the body dropped into a nominee's own page.
var nomineeDetailTmpl = template.Must(template.New("nominee-detail").Funcs(funcs).Parse(`
        <div class="nominee-details">
          <div class="nominee-actions">
            <button class="share-button" data-share-url="{{ .ShareURL }}" title="Share this nominee" aria-label="Share this nominee">
              <img src="../images/share.svg" alt="Share this nominee" />
            </button>
            <span class="{{ lower .N.Badge }}-badge">{{ .N.Badge }}</span>
          </div>
          <p class="attribution"><strong>Nominee:</strong> {{ .N.Nominee }}</p>
          <p class="attribution"><strong>Reported by:</strong> {{ .N.ReportedBy }}</p>
          {{ range .N.Sections }}<div class="nominee-section"><h3>{{ .Heading }}</h3><p>{{ .Content }}</p></div>{{ end }}
          <p><strong>Sources:</strong> {{ range $i, $s := .N.Sources }}{{ if $i }} | {{ end }}<a href="{{ $s.URL }}" target="_blank" rel="noopener">{{ $s.Name }}</a>{{ end }}</p>
        </div>
      `))

// heatMapRowsTmpl renders the results table body.
var heatMapRowsTmpl = template.Must(template.New("heat-map-rows").Funcs(funcs).Parse(`
{{- range . }}
      <tr>
        <td class="col-nominee">
          <span class="nominee-flex">
            <a href="{{ .ID }}.html" class="nominee-name">{{ .Name }}</a>
            {{ template "icons" . }}
          </span>
        </td>
        <td class="col-stupidity {{ heat .Stupidity }}">{{ .Stupidity }}</td>
        <td class="col-hubris {{ heat .Hubris }}">{{ .Hubris }}</td>
        <td class="col-impact {{ heat .Impact }}">{{ .Impact }}</td>
        <td class="col-lethality {{ heat .Lethality }}">{{ .Lethality }}</td>
        <td class="col-final-score {{ heat .FinalScore }}" style="font-weight: bold;">{{ .FinalScore }}</td>
      </tr>
{{ end -}}
{{ define "icons" -}}
{{ if or .Bonuses .Penalties -}}
<span class="bonus-penalty-icons">
{{- with .Bonuses }}<span class="tooltip-icon bonus-icon" title="{{ $.BonusTooltip }}">+{{ $.BonusTotal }}</span>{{ end -}}
{{- with .Penalties }}<span class="tooltip-icon penalty-icon" title="{{ $.PenaltyTooltip }}">{{ $.PenaltyLabel }}</span>{{ end -}}
</span>
{{- end }}
{{- end }}`))
