package httpadapter

import (
	"net/http"

	"github.com/kirillkom/transcript-summarizer/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput), domain.IsKind(err, domain.ErrNoFileSelected):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUploadInFlight):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
