package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/wadjakorntonsri/deeplinker/pkg/core/breakout"
)

//go:embed templates/breakout.html
var templatesFS embed.FS

// BreakoutRenderer writes the page that moves visitors out of in-app browsers
type BreakoutRenderer struct {
	tmpl *template.Template
}

func NewBreakoutRenderer() *BreakoutRenderer {
	return &BreakoutRenderer{
		tmpl: template.Must(template.ParseFS(templatesFS, "templates/breakout.html")),
	}
}

type breakoutPage struct {
	Plan breakout.Plan
}

func (b *BreakoutRenderer) Render(w http.ResponseWriter, plan breakout.Plan) error {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, breakoutPage{Plan: plan}); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
