package export

import (
	"html/template"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/patlytics/patscope/internal/domain/geography"
	"github.com/patlytics/patscope/internal/domain/quality"
	"github.com/patlytics/patscope/internal/domain/run"
	"github.com/patlytics/patscope/pkg/errors"
)

// ReportHTML is the human-readable artifact file name.
const ReportHTML = "report.html"

// topCountries caps the per-country table; the full table is in the CSV.
const topCountries = 20

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"comma": humanize.Comma,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Patent landscape report {{.Run.ID}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem auto; max-width: 60rem; color: #1a1a2e; }
h1 { border-bottom: 2px solid #0f3460; padding-bottom: .3rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #cbd5e1; padding: .35rem .8rem; text-align: left; }
th { background: #e8eef7; }
td.num { text-align: right; font-variant-numeric: tabular-nums; }
.score { font-size: 2.5rem; font-weight: 700; color: #0f3460; }
.meta { color: #64748b; font-size: .9rem; }
</style>
</head>
<body>
<h1>Patent landscape report</h1>
<p class="meta">Run {{.Run.ID}} · {{.Run.StartedAt.Format "2006-01-02 15:04 MST"}} · mode: {{.Run.Combine}}</p>

<h2>Quality score</h2>
<p class="score">{{.Score.Total}} / 100</p>
<table>
<tr><th>Dimension</th><th>Count</th><th>Points</th><th>Cap</th></tr>
<tr><td>Applications</td><td class="num">{{comma .Score.Applications.Count}}</td><td class="num">{{.Score.Applications.Points}}</td><td class="num">{{.Score.Applications.Cap}}</td></tr>
<tr><td>Citations</td><td class="num">{{comma .Score.Citations.Count}}</td><td class="num">{{.Score.Citations.Points}}</td><td class="num">{{.Score.Citations.Cap}}</td></tr>
<tr><td>Countries</td><td class="num">{{comma .Score.Countries.Count}}</td><td class="num">{{.Score.Countries.Points}}</td><td class="num">{{.Score.Countries.Cap}}</td></tr>
<tr><td>Families</td><td class="num">{{comma .Score.Families.Count}}</td><td class="num">{{.Score.Families.Points}}</td><td class="num">{{.Score.Families.Cap}}</td></tr>
</table>

<h2>Filter</h2>
<table>
<tr><th>Keywords</th><td>{{range $i, $k := .Run.Keywords}}{{if $i}}, {{end}}{{$k}}{{end}}</td></tr>
<tr><th>Class prefixes</th><td>{{range $i, $p := .Run.ClassPrefixes}}{{if $i}}, {{end}}{{$p}}{{end}}</td></tr>
<tr><th>Filing years</th><td>{{if .Run.YearFrom}}{{.Run.YearFrom}}{{else}}–{{end}} to {{if .Run.YearTo}}{{.Run.YearTo}}{{else}}–{{end}}</td></tr>
</table>

{{if .Countries}}
<h2>Applicant countries</h2>
<table>
<tr><th>Country</th><th>Region</th><th>Applications</th></tr>
{{range .Countries}}<tr><td>{{.Country}}</td><td>{{.Region}}</td><td class="num">{{comma .Applications}}</td></tr>
{{end}}</table>
{{end}}

{{if .Regions}}
<h2>Regions</h2>
<table>
<tr><th>Region</th><th>Applications</th></tr>
{{range .Regions}}<tr><td>{{.Name}}</td><td class="num">{{comma .Applications}}</td></tr>
{{end}}</table>
{{end}}
</body>
</html>
`))

type regionRow struct {
	Name         string
	Applications int64
}

type htmlData struct {
	Run       *run.Record
	Score     *quality.QualityScore
	Countries []geography.CountryCount
	Regions   []regionRow
}

// sortedRegions orders the region rollup by application count descending,
// name ascending on ties.
func sortedRegions(regions map[string]int64) []regionRow {
	rows := make([]regionRow, 0, len(regions))
	for name, count := range regions {
		rows = append(rows, regionRow{Name: name, Applications: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Applications != rows[j].Applications {
			return rows[i].Applications > rows[j].Applications
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func (e *Exporter) exportHTML(outDir string, report *Report) ([]string, error) {
	if report.Score == nil || report.Run == nil {
		return nil, errors.New(errors.CodeExportFormatError, "HTML report requires run and score")
	}

	data := htmlData{Run: report.Run, Score: report.Score}
	if report.Geo != nil {
		countries := report.Geo.Countries
		if len(countries) > topCountries {
			countries = countries[:topCountries]
		}
		data.Countries = countries
		data.Regions = sortedRegions(report.Geo.Regions)
	}

	path := filepath.Join(outDir, ReportHTML)
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExportWriteFailed, "failed to create HTML report")
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, data); err != nil {
		return nil, errors.Wrap(err, errors.CodeExportFormatError, "failed to render HTML report")
	}
	return []string{path}, nil
}
