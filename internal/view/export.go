// ABOUTME: Writes the current item list as a standalone HTML page
// ABOUTME: Descriptions are treated as markdown and rendered with goldmark

package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"

	"github.com/2389/itemdesk/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

var exportTmpl = template.Must(template.ParseFS(templateFS, "templates/export.html"))

type exportItem struct {
	ID          string
	Name        string
	Price       string
	Description template.HTML
}

type exportData struct {
	Title     string
	Generated string
	Items     []exportItem
}

// Export renders items to w as HTML. Raw HTML inside descriptions is
// dropped by goldmark's default renderer.
func Export(w io.Writer, title string, items []catalog.Resource, now time.Time) error {
	data := exportData{
		Title:     title,
		Generated: now.UTC().Format(time.RFC1123),
		Items:     make([]exportItem, 0, len(items)),
	}

	for _, it := range items {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(it.Description), &buf); err != nil {
			return fmt.Errorf("rendering description of item %s: %w", it.ID, err)
		}
		data.Items = append(data.Items, exportItem{
			ID:          it.ID,
			Name:        it.Name,
			Price:       Price(it.Price),
			Description: template.HTML(buf.String()),
		})
	}

	if err := exportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("executing export template: %w", err)
	}
	return nil
}
