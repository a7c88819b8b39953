// Package report renders one wellness session to a standalone HTML document.
// PDF conversion is left to the caller; the HTML is self-contained.
package report

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/session"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/triage"
)

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Wellness Check-In Report</title>
<style>
body { font-family: -apple-system, Helvetica, Arial, sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
.severity { display: inline-block; padding: 0.2rem 0.8rem; border-radius: 1rem; color: #fff; }
.severity.green { background: #2e7d32; }
.severity.yellow { background: #f9a825; }
.severity.red { background: #c62828; }
table { border-collapse: collapse; margin-top: 1rem; }
td, th { border: 1px solid #ddd; padding: 0.4rem 0.8rem; text-align: left; }
.footnote { margin-top: 2rem; font-size: 0.8rem; color: #777; }
</style>
</head>
<body>
<h1>Wellness Check-In &mdash; {{.Date}}</h1>
<p><span class="severity {{.Severity}}">{{.Severity}}</span></p>
<p>{{.Summary}}</p>
<table>
<tr><th>Metric</th><th>Value</th></tr>
{{range .Rows}}<tr><td>{{.Name}}</td><td>{{.Value}}</td></tr>
{{end}}</table>
{{if .Recommendations}}<h2>Recommendations</h2>
<ul>
{{range .Recommendations}}<li>{{.}}</li>
{{end}}</ul>{{end}}
{{if .Insights}}<h2>Trends</h2>
<ul>
{{range .Insights}}<li>{{.Message}}</li>
{{end}}</ul>{{end}}
<p class="footnote">Generated by an automated wellness companion ({{.Provenance}} analysis). Not medical advice.</p>
</body>
</html>
`

var tmpl = template.Must(template.New("report").Parse(reportTemplate))

type row struct {
	Name  string
	Value string
}

type reportData struct {
	Date            string
	Severity        triage.Severity
	Summary         string
	Rows            []row
	Recommendations []string
	Insights        []session.Insight
	Provenance      string
}

// Render writes the HTML report for one session. History, when provided,
// adds the trend insights section.
func Render(w io.Writer, sess *session.Session, history []session.Session) error {
	data := reportData{
		Date:            time.UnixMilli(sess.Timestamp).Format("Jan 2, 2006 15:04"),
		Severity:        sess.Triage.Severity,
		Summary:         sess.Triage.Summary,
		Recommendations: sess.Triage.Recommendations,
		Provenance:      string(sess.Triage.Provenance),
	}

	m := sess.Vitals
	if m.HeartRate != nil {
		data.Rows = append(data.Rows, row{"Heart rate", fmt.Sprintf("%.0f bpm", *m.HeartRate)})
	}
	if m.HRV != nil {
		data.Rows = append(data.Rows, row{"HRV", fmt.Sprintf("%.0f ms", *m.HRV)})
	}
	if m.BreathingRate != nil {
		data.Rows = append(data.Rows, row{"Breathing rate", fmt.Sprintf("%.0f breaths/min", *m.BreathingRate)})
	}
	if m.TremorIndex != nil {
		data.Rows = append(data.Rows, row{"Tremor index", fmt.Sprintf("%.2f", *m.TremorIndex)})
	}
	if m.Cough != nil {
		data.Rows = append(data.Rows, row{"Cough", string(*m.Cough)})
	}
	if m.SkinCondition != nil {
		data.Rows = append(data.Rows, row{"Skin condition", *m.SkinCondition})
	}
	if m.MoodScore != nil {
		data.Rows = append(data.Rows, row{"Mood score", fmt.Sprintf("%d/100", *m.MoodScore)})
	}
	if m.OverallMood != nil {
		data.Rows = append(data.Rows, row{"Overall mood", string(*m.OverallMood)})
	}

	if len(history) > 0 {
		data.Insights = session.TrendInsights(history)
	}

	return tmpl.Execute(w, data)
}
