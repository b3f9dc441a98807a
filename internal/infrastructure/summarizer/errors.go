package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/kirillkom/transcript-summarizer/internal/core/domain"
	"github.com/kirillkom/transcript-summarizer/internal/infrastructure/resilience"
)

// TransportError is any failure at or below the HTTP layer: connection
// errors, non-2xx statuses and malformed bodies. It matches
// domain.ErrTransport.
type TransportError struct {
	Operation  string
	StatusCode int
	Status     string
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "summarizer transport error"
	}
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("summarizer %s status: %s: %s", e.Operation, e.Status, e.Message)
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("summarizer %s response (%s): %v", e.Operation, e.Status, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("summarizer %s status: %s", e.Operation, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("summarizer %s request: %v", e.Operation, e.Err)
	default:
		return fmt.Sprintf("summarizer %s failed", e.Operation)
	}
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrTransport}
	}
	return []error{domain.ErrTransport, e.Err}
}

func classifyTransportError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{RecordFailure: false}
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode != 0 {
		if transportErr.StatusCode >= 500 {
			return resilience.ErrorClassification{RecordFailure: true}
		}
		if isUpstreamPressureStatus(transportErr.StatusCode) {
			return resilience.ErrorClassification{RecordFailure: true}
		}
		if transportErr.StatusCode >= 400 {
			return resilience.ErrorClassification{RecordFailure: false}
		}
		// 2xx with a body that breaks the contract.
		return resilience.ErrorClassification{RecordFailure: true}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{RecordFailure: true}
	}
	// Local failures such as encoding the body say nothing about the service.
	return resilience.ErrorClassification{RecordFailure: false}
}

func wrapTemporaryIfNeeded(err error) error {
	if err == nil {
		return nil
	}
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, summarizeOperation, fmt.Errorf("summarization service unavailable: %w", err))
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) && isUpstreamPressureStatus(transportErr.StatusCode) {
		return domain.WrapError(domain.ErrTemporary, summarizeOperation, err)
	}
	return err
}

func isUpstreamPressureStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
