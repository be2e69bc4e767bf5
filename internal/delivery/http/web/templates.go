package web

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go-jobmatch-web/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates(now func() time.Time) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs(now)).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func templateFuncs(now func() time.Time) template.FuncMap {
	return template.FuncMap{
		"date":     func(v any) string { return formatTime(v, "Jan 2, 2006") },
		"datetime": func(v any) string { return formatTime(v, "Jan 2, 2006 3:04 PM") },
		"join":     strings.Join,
		"statuses": domain.AllApplicationStatuses,
		"canApply": func(j domain.Job) bool { return j.CanApply(now()) },
		"deadlineNote": func(j domain.Job) string {
			days := j.DaysLeft(now())
			switch {
			case days == nil:
				return ""
			case *days > 0:
				return fmt.Sprintf("%d days left", *days)
			default:
				return "Deadline passed"
			}
		},
		"urgencyColor": func(j domain.Job) string {
			days := j.DaysLeft(now())
			switch {
			case days == nil:
				return ""
			case *days <= 3:
				return "#e74c3c"
			case *days <= 7:
				return "#f39c12"
			default:
				return "#27ae60"
			}
		},
	}
}

func formatTime(v any, layout string) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(layout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format(layout)
	}
	return ""
}
