package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/kirillkom/transcript-summarizer/internal/core/domain"
)

const (
	maxResponseBytes = 4 << 20
	maxErrorExcerpt  = 2048
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) postTranscript(ctx context.Context, file *domain.SelectedFile) (string, error) {
	body, contentType, err := encodeMultipart(file)
	if err != nil {
		return "", &TransportError{Operation: summarizeOperation, Err: fmt.Errorf("encode multipart body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SummarizePath, body)
	if err != nil {
		return "", &TransportError{Operation: summarizeOperation, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Operation: summarizeOperation, Err: err}
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &TransportError{
			Operation:  summarizeOperation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    errorDetail(raw),
		}
	}
	if readErr != nil {
		return "", &TransportError{
			Operation:  summarizeOperation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        fmt.Errorf("read response: %w", readErr),
		}
	}

	summary, err := c.contract.decode(raw)
	if err != nil {
		return "", &TransportError{
			Operation:  summarizeOperation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        err,
		}
	}
	return summary, nil
}

func encodeMultipart(file *domain.SelectedFile) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	contentType := strings.TrimSpace(file.MIMEType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FileFieldName, quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &body, writer.FormDataContentType(), nil
}

// errorDetail extracts a readable message from an error body. The service
// answers {"errors": [...]}; {"detail": ...} and plain text are accepted too.
func errorDetail(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}

	var payload struct {
		Errors []json.RawMessage `json:"errors"`
		Detail json.RawMessage   `json:"detail"`
	}
	if err := json.Unmarshal(trimmed, &payload); err == nil {
		parts := make([]string, 0, len(payload.Errors)+1)
		for _, item := range payload.Errors {
			parts = append(parts, rawMessageText(item))
		}
		if len(payload.Detail) > 0 {
			parts = append(parts, rawMessageText(payload.Detail))
		}
		if len(parts) > 0 {
			return truncate(strings.Join(parts, "; "))
		}
	}
	return truncate(string(trimmed))
}

func rawMessageText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrorExcerpt {
		return s
	}
	return s[:maxErrorExcerpt]
}
