package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/transcript-summarizer/internal/core/domain"
	"github.com/kirillkom/transcript-summarizer/internal/core/ports"
)

// UploadController owns the selected file, the upload state and the summary
// text. At most one summarization request is in flight at a time.
type UploadController struct {
	summarizer ports.TranscriptSummarizer
	clipboard  ports.Clipboard
	observer   ports.UploadObserver

	mu      sync.Mutex
	file    *domain.SelectedFile
	state   domain.UploadState
	summary string
}

func NewUploadController(
	summarizer ports.TranscriptSummarizer,
	clipboard ports.Clipboard,
	observer ports.UploadObserver,
) *UploadController {
	if observer == nil {
		observer = noopObserver{}
	}
	return &UploadController{
		summarizer: summarizer,
		clipboard:  clipboard,
		observer:   observer,
		state:      domain.IdleState(),
	}
}

func (c *UploadController) SelectFile(file *domain.SelectedFile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if file == nil {
		c.file = nil
		return
	}
	selected := *file
	c.file = &selected
}

func (c *UploadController) SubmitUpload(ctx context.Context) (<-chan struct{}, bool) {
	c.mu.Lock()
	if err := c.canSubmitLocked(); err != nil {
		c.mu.Unlock()
		slog.Debug("upload_ignored", "reason", err.Error())
		return settled, false
	}

	file := c.file
	attemptID := uuid.NewString()
	c.state = domain.UploadState{Phase: domain.PhaseUploading, AttemptID: attemptID}
	c.summary = ""
	c.mu.Unlock()

	c.observer.UploadStarted()
	slog.Info("upload_started",
		"attempt_id", attemptID,
		"filename", file.Name,
		"bytes", file.Size(),
	)

	done := make(chan struct{})
	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		c.run(runCtx, attemptID, file)
	}()
	return done, true
}

func (c *UploadController) EditSummary(text string) {
	c.mu.Lock()
	c.summary = text
	c.mu.Unlock()
}

func (c *UploadController) CopySummary(ctx context.Context) (bool, error) {
	c.mu.Lock()
	text := c.summary
	c.mu.Unlock()

	if text == "" {
		return false, nil
	}
	if c.clipboard == nil {
		return false, domain.WrapError(domain.ErrClipboard, "copy summary", errors.New("clipboard is not configured"))
	}

	err := c.clipboard.WriteText(ctx, text)
	c.observer.SummaryCopied(err)
	if err != nil {
		slog.Warn("summary_copy_failed", "error", err)
		return false, domain.WrapError(domain.ErrClipboard, "copy summary", err)
	}
	slog.Info("summary_copied", "chars", len(text))
	return true, nil
}

func (c *UploadController) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := domain.Snapshot{
		State:   c.state,
		Summary: c.summary,
		CanCopy: c.summary != "",
	}
	if c.file != nil {
		snap.FileName = c.file.Name
		snap.FileSize = c.file.Size()
	}
	snap.CanUpload = c.canSubmitLocked() == nil
	return snap
}

func (c *UploadController) canSubmitLocked() error {
	if c.file == nil {
		return domain.ErrNoFileSelected
	}
	if c.state.Phase == domain.PhaseUploading {
		return domain.ErrUploadInFlight
	}
	return nil
}

func (c *UploadController) run(ctx context.Context, attemptID string, file *domain.SelectedFile) {
	start := time.Now()
	summary, err := c.summarize(ctx, file)
	elapsed := time.Since(start)
	c.observer.UploadFinished(elapsed, err)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = domain.UploadState{
			Phase:     domain.PhaseFailed,
			Reason:    err.Error(),
			AttemptID: attemptID,
		}
		slog.Warn("upload_failed",
			"attempt_id", attemptID,
			"filename", file.Name,
			"duration_ms", float64(elapsed.Microseconds())/1000.0,
			"error", err,
		)
		return
	}

	c.state = domain.UploadState{
		Phase:     domain.PhaseSucceeded,
		Text:      summary.Text,
		AttemptID: attemptID,
	}
	c.summary = summary.Text
	slog.Info("upload_succeeded",
		"attempt_id", attemptID,
		"filename", file.Name,
		"duration_ms", float64(elapsed.Microseconds())/1000.0,
		"summary_chars", len(summary.Text),
	)
}

// summarize converts a panicking summarizer into a failed attempt so the
// controller never stays stuck in the uploading phase.
func (c *UploadController) summarize(ctx context.Context, file *domain.SelectedFile) (summary domain.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.WrapError(domain.ErrTransport, "summarize", fmt.Errorf("panic: %v", r))
		}
	}()
	if c.summarizer == nil {
		return domain.Summary{}, domain.WrapError(domain.ErrTransport, "summarize", errors.New("summarizer is not configured"))
	}
	return c.summarizer.Summarize(ctx, file)
}

var settled = func() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

type noopObserver struct{}

func (noopObserver) UploadStarted()                       {}
func (noopObserver) UploadFinished(time.Duration, error) {}
func (noopObserver) SummaryCopied(error)                 {}
