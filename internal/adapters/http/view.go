package httpadapter

import (
	"embed"
	"html/template"
	"io"

	"github.com/kirillkom/transcript-summarizer/internal/core/domain"
)

// The picker hint only; the remote service decides what it accepts.
const acceptedExtensions = ".vtt,.txt"

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageView struct {
	Snapshot domain.Snapshot
	Notice   string
	Accept   string
}

func (v pageView) UploadLabel() string {
	if v.Snapshot.Uploading() {
		return "Processing..."
	}
	return "Upload & Summarize"
}

func renderPage(w io.Writer, view pageView) error {
	return pageTemplate.ExecuteTemplate(w, "index.html", view)
}
