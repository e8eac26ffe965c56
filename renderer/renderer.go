package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/perfledger"
)

//go:embed templates/*.md
var embedded embed.FS

// templates is the embedded templates directory.
var templates = mustSub(embedded, "templates")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// SeriesOptions holds configuration for rendering the daily history.
type SeriesOptions struct {
	Monthly bool // Only keep the last day of each month, and the last day.
}

// RenderResult renders the performance of one account to a markdown string.
func RenderResult(res *perfledger.Result) string {
	partials := map[string]string{
		"result_title":       "result_title.md",
		"result_summary":     "result_summary.md",
		"result_trailing":    "result_trailing.md",
		"result_adjustments": "result_adjustments.md",
		"result_issues":      "result_issues.md",
	}
	return renderTemplate("result", "result.md", partials, NewReport(res))
}

// RenderSeries renders the daily history of one account to a markdown string.
func RenderSeries(res *perfledger.Result, opts SeriesOptions) string {
	return renderTemplate("series", "series.md", nil, NewHistory(res, opts))
}

// RenderResults renders several accounts one after the other.
func RenderResults(results []*perfledger.Result) string {
	parts := make([]string, 0, len(results))
	for _, res := range results {
		parts = append(parts, RenderResult(res))
	}
	return strings.Join(parts, "\n")
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
