package ports

import (
	"context"

	"github.com/kirillkom/transcript-summarizer/internal/core/domain"
)

// UploadWorkflow is the inbound contract the presentation layer dispatches to.
type UploadWorkflow interface {
	SelectFile(file *domain.SelectedFile)
	// SubmitUpload starts one summarization request. The returned channel is
	// closed when that request settles; accepted is false when the call was a
	// no-op.
	SubmitUpload(ctx context.Context) (done <-chan struct{}, accepted bool)
	EditSummary(text string)
	// CopySummary reports whether anything was written to the clipboard.
	CopySummary(ctx context.Context) (bool, error)
	Snapshot() domain.Snapshot
}
