package localfs

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/transcript-summarizer/internal/core/domain"
)

// Source reads transcripts from the local filesystem into memory.
type Source struct {
	maxBytes int64
}

// New returns a Source that refuses files larger than maxBytes. Zero or a
// negative value means no limit.
func New(maxBytes int64) *Source {
	return &Source{maxBytes: maxBytes}
}

func (s *Source) Open(_ context.Context, path string) (*domain.SelectedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	return s.Read(filepath.Base(path), "", f)
}

// Read builds a SelectedFile from an arbitrary reader, e.g. a multipart part.
// An empty mimeType is derived from the file extension, then the content.
func (s *Source) Read(name, mimeType string, r io.Reader) (*domain.SelectedFile, error) {
	reader := r
	if s.maxBytes > 0 {
		reader = io.LimitReader(r, s.maxBytes+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read transcript", fmt.Errorf("file exceeds %d bytes", s.maxBytes))
	}

	return &domain.SelectedFile{
		Name:     name,
		MIMEType: detectMIMEType(name, mimeType, content),
		Content:  content,
	}, nil
}

func detectMIMEType(name, declared string, content []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".vtt":
		return "text/vtt"
	case ".txt":
		return "text/plain"
	}
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt
	}
	if len(content) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(content)
}
