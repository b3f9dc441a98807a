package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/transcript-summarizer/internal/core/domain"
	"github.com/kirillkom/transcript-summarizer/internal/infrastructure/resilience"
)

const (
	SummarizePath = "/api/v1/summarize"
	FileFieldName = "file"

	summarizeOperation = "summarize"
)

// Client posts transcripts to the remote summarization service. It issues
// exactly one HTTP request per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.Breaker
	contract   *responseContract
}

// New builds a client for baseURL. A zero timeout keeps the transport
// default. breaker may be nil.
func New(baseURL string, timeout time.Duration, breaker *resilience.Breaker) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("summarizer base url is required")
	}
	contract, err := loadResponseContract()
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		contract:   contract,
	}, nil
}

func (c *Client) Summarize(ctx context.Context, file *domain.SelectedFile) (domain.Summary, error) {
	if file == nil || len(file.Content) == 0 {
		return domain.Summary{}, domain.WrapError(domain.ErrInvalidInput, summarizeOperation, errors.New("transcript file is empty"))
	}

	var text string
	call := func(callCtx context.Context) error {
		var err error
		text, err = c.postTranscript(callCtx, file)
		return err
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(ctx, summarizeOperation, call, classifyTransportError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.Summary{}, wrapTemporaryIfNeeded(err)
	}
	return domain.Summary{Text: text}, nil
}
