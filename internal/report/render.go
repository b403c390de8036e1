package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
)

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	switch format {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render serializes r in format.
func Render(r Report, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return json.MarshalIndent(r, "", "  ")
	case FormatHTML:
		var buf bytes.Buffer
		if err := htmlTemplate.Execute(&buf, r); err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
		return buf.Bytes(), nil
	case FormatCSV:
		return renderCSV(r)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func renderCSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	records := [][]string{
		{"section", "label", "value", "benchmark"},
		{"report", "Company", r.CompanyName, ""},
		{"report", "Generated", r.GeneratedAt.Format("2006-01-02 15:04:05"), ""},
	}
	for _, s := range r.Sections {
		for _, f := range s.Fields {
			records = append(records, []string{s.Key, f.Label, f.Value, f.Benchmark})
		}
		for _, n := range s.Notes {
			records = append(records, []string{s.Key, "note", n, ""})
		}
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Report for {{.CompanyName}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; color: #1E1847; }
        h1 { border-bottom: 2px solid #1E1847; padding-bottom: 8px; }
        .section { margin: 24px 0; }
        table { border-collapse: collapse; width: 100%; max-width: 720px; }
        th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #ddd; }
        .meta { color: #666; font-size: 0.9em; }
        .note { margin: 6px 0; }
    </style>
</head>
<body>
    <h1>Report for {{.CompanyName}}</h1>
    <p class="meta">{{.Industry}} &middot; Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} UTC &middot; {{.Schedule}}</p>
    {{range .Sections}}
    <div class="section" id="{{.Key}}">
        <h2>{{.Title}}</h2>
        {{if .Fields}}
        <table>
            {{range .Fields}}
            <tr><th>{{.Label}}</th><td>{{.Value}}</td>{{if .Benchmark}}<td>{{.Benchmark}}</td>{{end}}</tr>
            {{end}}
        </table>
        {{end}}
        {{range .Notes}}<p class="note">{{.}}</p>{{end}}
    </div>
    {{end}}
</body>
</html>
`))
