package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/kirillkom/transcript-summarizer/internal/config"
	"github.com/kirillkom/transcript-summarizer/internal/core/domain"
	"github.com/kirillkom/transcript-summarizer/internal/core/ports"
	"github.com/kirillkom/transcript-summarizer/internal/observability/metrics"
)

const (
	fileFieldName    = "file"
	summaryFieldName = "summary"

	// multipart framing on top of the file itself
	multipartOverhead = 1 << 20
	maxSummaryBytes   = 4 << 20
)

// TranscriptReader turns an uploaded part into a SelectedFile.
type TranscriptReader interface {
	Read(name, mimeType string, r io.Reader) (*domain.SelectedFile, error)
}

type Router struct {
	workflow       ports.UploadWorkflow
	reader         TranscriptReader
	metrics        *metrics.WebMetrics
	maxUploadBytes int64
	rateLimitRPS   float64
	rateLimitBurst int
}

func NewRouter(
	cfg config.Config,
	workflow ports.UploadWorkflow,
	reader TranscriptReader,
	webMetrics *metrics.WebMetrics,
) *Router {
	return &Router{
		workflow:       workflow,
		reader:         reader,
		metrics:        webMetrics,
		maxUploadBytes: cfg.MaxUploadBytes,
		rateLimitRPS:   cfg.UIRateLimitRPS,
		rateLimitBurst: cfg.UIRateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	limiter := newLimiter(rt.rateLimitRPS, rt.rateLimitBurst)
	onLimited := func(r *http.Request) {
		if rt.metrics != nil {
			rt.metrics.RecordRateLimited(r.URL.Path)
		}
	}
	limited := func(h http.HandlerFunc) http.Handler {
		return rateLimitMiddleware(h, limiter, onLimited)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /{$}", rt.page)
	mux.HandleFunc("GET /ui/state", rt.state)
	mux.Handle("POST /ui/file", limited(rt.selectFile))
	mux.Handle("POST /ui/file/clear", limited(rt.clearFile))
	mux.Handle("POST /ui/upload", limited(rt.submitUpload))
	mux.Handle("POST /ui/summary", limited(rt.editSummary))
	mux.Handle("POST /ui/copy", limited(rt.copySummary))

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) page(w http.ResponseWriter, r *http.Request) {
	view := pageView{
		Snapshot: rt.workflow.Snapshot(),
		Notice:   r.URL.Query().Get("notice"),
		Accept:   acceptedExtensions,
	}
	if err := renderPage(w, view); err != nil {
		slog.Error("render_page_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

func (rt *Router) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.workflow.Snapshot())
}

func (rt *Router) selectFile(w http.ResponseWriter, r *http.Request) {
	if rt.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes+multipartOverhead)
	}

	file, header, err := r.FormFile(fileFieldName)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			rt.fail(w, r, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		rt.fail(w, r, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	selected, err := rt.reader.Read(header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		rt.fail(w, r, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	rt.workflow.SelectFile(selected)
	rt.respond(w, r, http.StatusOK, rt.workflow.Snapshot(), "")
}

func (rt *Router) clearFile(w http.ResponseWriter, r *http.Request) {
	rt.workflow.SelectFile(nil)
	rt.respond(w, r, http.StatusOK, rt.workflow.Snapshot(), "")
}

func (rt *Router) submitUpload(w http.ResponseWriter, r *http.Request) {
	if _, accepted := rt.workflow.SubmitUpload(r.Context()); !accepted {
		snap := rt.workflow.Snapshot()
		err := domain.ErrNoFileSelected
		if snap.Uploading() {
			err = domain.ErrUploadInFlight
		}
		rt.fail(w, r, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	rt.respond(w, r, http.StatusAccepted, rt.workflow.Snapshot(), "")
}

func (rt *Router) editSummary(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSummaryBytes)

	text, err := readSummaryField(r)
	if err != nil {
		rt.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rt.workflow.EditSummary(text)
	rt.respond(w, r, http.StatusOK, rt.workflow.Snapshot(), "")
}

func (rt *Router) copySummary(w http.ResponseWriter, r *http.Request) {
	// The page's copy button shares the textarea form, so unsaved edits
	// arrive here and are applied before copying.
	r.Body = http.MaxBytesReader(w, r.Body, maxSummaryBytes)
	if text, err := readSummaryField(r); err == nil {
		rt.workflow.EditSummary(text)
	}

	copied, err := rt.workflow.CopySummary(r.Context())
	if err != nil {
		rt.fail(w, r, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	notice := ""
	if copied {
		notice = "Copied to clipboard"
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"copied": copied})
		return
	}
	redirectHome(w, r, notice)
}

func (rt *Router) respond(w http.ResponseWriter, r *http.Request, status int, payload any, notice string) {
	if wantsJSON(r) {
		writeJSON(w, status, payload)
		return
	}
	redirectHome(w, r, notice)
}

func (rt *Router) fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": message})
		return
	}
	redirectHome(w, r, message)
}

func readSummaryField(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req struct {
			Summary *string `json:"summary"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", errors.New("invalid json")
		}
		if req.Summary == nil {
			return "", errors.New("summary is required")
		}
		return *req.Summary, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", errors.New("invalid form body")
	}
	if _, ok := r.PostForm[summaryFieldName]; !ok {
		return "", errors.New("summary is required")
	}
	return r.PostForm.Get(summaryFieldName), nil
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func redirectHome(w http.ResponseWriter, r *http.Request, notice string) {
	target := "/"
	if notice != "" {
		target += "?" + url.Values{"notice": {notice}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
