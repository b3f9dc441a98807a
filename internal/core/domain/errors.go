package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoFileSelected = errors.New("no file selected")
	ErrUploadInFlight = errors.New("upload already in progress")
	ErrInvalidInput   = errors.New("invalid input")
	ErrTransport      = errors.New("transport failure")
	ErrTemporary      = errors.New("temporary failure")
	ErrClipboard      = errors.New("clipboard failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
