package export

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trisk/internal/findings"
)

var checklistTmpl = template.Must(template.New("checklist").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Tester Scope Checklist: {{.ChangeID}}</title>
<style>
body{font-family:Arial,Helvetica,sans-serif;margin:24px;line-height:1.35;color:#111}
.card{border:1px solid #ddd;border-radius:12px;padding:14px 16px;margin-bottom:14px}
h1{margin:0 0 6px 0;font-size:22px}
.meta{color:#444;font-size:13px}
h2{font-size:16px;margin:0 0 8px 0}
ul{margin:8px 0 0 18px}
code{background:#f6f6f6;padding:2px 6px;border-radius:6px}
</style>
</head>
<body>
<div class="card">
<h1>Tester Scope Checklist</h1>
<div class="meta"><b>Change:</b> <code>{{.ChangeID}}</code> &nbsp;|&nbsp; <b>Generated:</b> {{.Generated}} &nbsp;|&nbsp; <b>Risk:</b> {{.Risk}}</div>
</div>
{{range .Sections}}<div class="card">
<h2>{{.Title}}</h2>
<ul>
{{range .Items}}<li>{{.}}</li>
{{end}}</ul>
</div>
{{end}}</body>
</html>
`))

type checklistView struct {
	ChangeID  string
	Generated string
	Risk      string
	Sections  []Section
}

// WriteHTML renders the checklist to an HTML file at path.
func WriteHTML(f *findings.Findings, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	view := checklistView{
		ChangeID:  f.ChangeID,
		Generated: time.Now().UTC().Format("2006-01-02 15:04"),
		Risk:      fmt.Sprintf("%d (%s)", f.Summary.RiskScore, f.Summary.RiskLevel),
	}
	for _, s := range BuildChecklist(f) {
		items := make([]string, 0, len(s.Items))
		for _, item := range s.Items {
			items = append(items, stripBullet(item))
		}
		view.Sections = append(view.Sections, Section{Title: s.Title, Items: items})
	}

	var sb strings.Builder
	if err := checklistTmpl.Execute(&sb, view); err != nil {
		return fmt.Errorf("failed to render checklist: %w", err)
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}
