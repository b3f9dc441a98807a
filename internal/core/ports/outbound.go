package ports

import (
	"context"
	"time"

	"github.com/kirillkom/transcript-summarizer/internal/core/domain"
)

// TranscriptSummarizer sends a transcript to the remote summarization service.
type TranscriptSummarizer interface {
	Summarize(ctx context.Context, file *domain.SelectedFile) (domain.Summary, error)
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// UploadObserver receives workflow events, typically for metrics.
type UploadObserver interface {
	UploadStarted()
	UploadFinished(duration time.Duration, err error)
	SummaryCopied(err error)
}
