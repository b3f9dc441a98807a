package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kirillkom/transcript-summarizer/internal/config"
	"github.com/kirillkom/transcript-summarizer/internal/core/domain"
	"github.com/kirillkom/transcript-summarizer/internal/infrastructure/filesource/localfs"
	"github.com/kirillkom/transcript-summarizer/internal/observability/metrics"
)

type workflowFake struct {
	selected    *domain.SelectedFile
	selectCalls int
	submitCalls int
	accept      bool
	summary     string
	copyErr     error
	copied      []string
	snapshot    domain.Snapshot
}

func (f *workflowFake) SelectFile(file *domain.SelectedFile) {
	f.selectCalls++
	f.selected = file
}

func (f *workflowFake) SubmitUpload(context.Context) (<-chan struct{}, bool) {
	f.submitCalls++
	done := make(chan struct{})
	close(done)
	return done, f.accept
}

func (f *workflowFake) EditSummary(text string) { f.summary = text }

func (f *workflowFake) CopySummary(context.Context) (bool, error) {
	if f.copyErr != nil {
		return false, f.copyErr
	}
	if f.summary == "" {
		return false, nil
	}
	f.copied = append(f.copied, f.summary)
	return true, nil
}

func (f *workflowFake) Snapshot() domain.Snapshot {
	snap := f.snapshot
	snap.Summary = f.summary
	if f.selected != nil {
		snap.FileName = f.selected.Name
		snap.FileSize = f.selected.Size()
	}
	return snap
}

func newTestHandler(cfg config.Config, workflow *workflowFake) http.Handler {
	return NewRouter(cfg, workflow, localfs.New(cfg.MaxUploadBytes), metrics.NewWebMetrics("test")).Handler()
}

func defaultTestConfig() config.Config {
	return config.Config{MaxUploadBytes: 1 << 20}
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestHandler(defaultTestConfig(), &workflowFake{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestPageRendersControls(t *testing.T) {
	workflow := &workflowFake{
		summary:  "Meeting covered budget.",
		snapshot: domain.Snapshot{State: domain.IdleState(), CanUpload: true, CanCopy: true},
	}
	workflow.selected = &domain.SelectedFile{Name: "notes.vtt", Content: []byte("0123456789")}
	handler := newTestHandler(defaultTestConfig(), workflow)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := res.Body.String()
	for _, want := range []string{
		`accept=".vtt,.txt"`,
		"Selected file: notes.vtt (10 bytes)",
		"Meeting covered budget.",
		"Upload &amp; Summarize",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
}

func TestPageShowsProcessingWhileUploading(t *testing.T) {
	workflow := &workflowFake{
		snapshot: domain.Snapshot{State: domain.UploadState{Phase: domain.PhaseUploading, AttemptID: "a-1"}},
	}
	handler := newTestHandler(defaultTestConfig(), workflow)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(res.Body.String(), "Processing...") {
		t.Fatalf("expected processing label")
	}
}

func TestUnknownPathIs404(t *testing.T) {
	handler := newTestHandler(defaultTestConfig(), &workflowFake{})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestSelectFileReadsMultipartPart(t *testing.T) {
	workflow := &workflowFake{}
	handler := newTestHandler(defaultTestConfig(), workflow)

	body, contentType := multipartBody(t, "file", "notes.vtt", "WEBVTT")
	req := httptest.NewRequest(http.MethodPost, "/ui/file", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if workflow.selected == nil || workflow.selected.Name != "notes.vtt" || string(workflow.selected.Content) != "WEBVTT" {
		t.Fatalf("unexpected selection %+v", workflow.selected)
	}

	var snap domain.Snapshot
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.FileName != "notes.vtt" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestSelectFileRedirectsBrowsers(t *testing.T) {
	handler := newTestHandler(defaultTestConfig(), &workflowFake{})

	body, contentType := multipartBody(t, "file", "notes.txt", "hello")
	req := httptest.NewRequest(http.MethodPost, "/ui/file", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if res.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %q", res.Header().Get("Location"))
	}
}

func TestSelectFileMissingMultipartField(t *testing.T) {
	workflow := &workflowFake{}
	handler := newTestHandler(defaultTestConfig(), workflow)

	req := httptest.NewRequest(http.MethodPost, "/ui/file", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if workflow.selectCalls != 0 {
		t.Fatalf("expected selection untouched")
	}
}

func TestClearFile(t *testing.T) {
	workflow := &workflowFake{selected: &domain.SelectedFile{Name: "a.txt"}}
	handler := newTestHandler(defaultTestConfig(), workflow)

	req := httptest.NewRequest(http.MethodPost, "/ui/file/clear", nil)
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if workflow.selected != nil {
		t.Fatalf("expected selection cleared")
	}
}

func TestSubmitUploadAccepted(t *testing.T) {
	workflow := &workflowFake{accept: true}
	handler := newTestHandler(defaultTestConfig(), workflow)

	req := httptest.NewRequest(http.MethodPost, "/ui/upload", nil)
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.Code)
	}
	if workflow.submitCalls != 1 {
		t.Fatalf("expected one submission, got %d", workflow.submitCalls)
	}
}

func TestSubmitUploadWithoutFileIs400(t *testing.T) {
	handler := newTestHandler(defaultTestConfig(), &workflowFake{accept: false})

	req := httptest.NewRequest(http.MethodPost, "/ui/upload", nil)
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestSubmitUploadWhileUploadingIs409(t *testing.T) {
	workflow := &workflowFake{
		accept:   false,
		snapshot: domain.Snapshot{State: domain.UploadState{Phase: domain.PhaseUploading}},
	}
	handler := newTestHandler(defaultTestConfig(), workflow)

	req := httptest.NewRequest(http.MethodPost, "/ui/upload", nil)
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}

func TestGetOnUploadIs405(t *testing.T) {
	handler := newTestHandler(defaultTestConfig(), &workflowFake{})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/ui/upload", nil))

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

func TestEditSummaryFromForm(t *testing.T) {
	workflow := &workflowFake{}
	handler := newTestHandler(defaultTestConfig(), workflow)

	form := url.Values{"summary": {"edited by hand"}}
	req := httptest.NewRequest(http.MethodPost, "/ui/summary", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if workflow.summary != "edited by hand" {
		t.Fatalf("unexpected summary %q", workflow.summary)
	}
}

func TestEditSummaryFromJSONAllowsEmpty(t *testing.T) {
	workflow := &workflowFake{summary: "old"}
	handler := newTestHandler(defaultTestConfig(), workflow)

	req := httptest.NewRequest(http.MethodPost, "/ui/summary", strings.NewReader(`{"summary":""}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if workflow.summary != "" {
		t.Fatalf("expected summary cleared, got %q", workflow.summary)
	}
}

func TestEditSummaryRequiresField(t *testing.T) {
	handler := newTestHandler(defaultTestConfig(), &workflowFake{})

	req := httptest.NewRequest(http.MethodPost, "/ui/summary", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestCopySummaryAppliesFormTextFirst(t *testing.T) {
	workflow := &workflowFake{summary: "saved"}
	handler := newTestHandler(defaultTestConfig(), workflow)

	form := url.Values{"summary": {"unsaved edit"}}
	req := httptest.NewRequest(http.MethodPost, "/ui/copy", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if len(workflow.copied) != 1 || workflow.copied[0] != "unsaved edit" {
		t.Fatalf("unexpected copies %v", workflow.copied)
	}
}

func TestCopySummaryEmptyReportsNotCopied(t *testing.T) {
	workflow := &workflowFake{}
	handler := newTestHandler(defaultTestConfig(), workflow)

	req := httptest.NewRequest(http.MethodPost, "/ui/copy", nil)
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["copied"] != false {
		t.Fatalf("expected copied=false, got %+v", resp)
	}
	if len(workflow.copied) != 0 {
		t.Fatalf("expected no clipboard write")
	}
}

func TestCopySummaryClipboardErrorIs500(t *testing.T) {
	workflow := &workflowFake{
		summary: "text",
		copyErr: domain.WrapError(domain.ErrClipboard, "copy summary", errors.New("no xclip")),
	}
	handler := newTestHandler(defaultTestConfig(), workflow)

	req := httptest.NewRequest(http.MethodPost, "/ui/copy", nil)
	req.Header.Set("Accept", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
}

func TestStateEndpointReturnsSnapshot(t *testing.T) {
	workflow := &workflowFake{
		summary:  "done",
		snapshot: domain.Snapshot{State: domain.UploadState{Phase: domain.PhaseSucceeded, Text: "done"}},
	}
	handler := newTestHandler(defaultTestConfig(), workflow)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/ui/state", nil))

	var snap domain.Snapshot
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.State.Phase != domain.PhaseSucceeded || snap.Summary != "done" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(defaultTestConfig(), &workflowFake{})
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "tsum_http_requests_total") {
		t.Fatalf("expected http metrics in exposition")
	}
}
