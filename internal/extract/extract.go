// Package extract turns uploaded file bytes into plain text, dispatched
// by mime type over a fixed set of supported formats.
package extract

import (
	"context"
	"fmt"

	"docflow/internal/models"
)

// Supported mime types. Anything else is rejected before enqueue and, as
// a defense in depth, again inside the worker.
const (
	MimePDF  = "application/pdf"
	MimeText = "text/plain"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

// Extractor decodes one document format into text. Implementations are
// pure functions of their inputs aside from CPU/IO consumption.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Registry maps mime types to extractors. Adding a format means adding an
// entry here; the worker coordinator never changes.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry builds the default registry covering PDF, plain text, DOCX
// and OCR-backed JPEG/PNG. tesseractPath may be empty to use the binary
// from PATH.
func NewRegistry(tesseractPath string) *Registry {
	ocr := NewImageExtractor(tesseractPath)
	return &Registry{extractors: map[string]Extractor{
		MimePDF:  &PDFExtractor{},
		MimeText: &PlainTextExtractor{},
		MimeDocx: &DocxExtractor{},
		MimeJPEG: ocr,
		MimePNG:  ocr,
	}}
}

// Register installs or replaces the extractor for a mime type.
func (r *Registry) Register(mimeType string, e Extractor) {
	r.extractors[mimeType] = e
}

// Supported reports whether the mime type has an extractor.
func (r *Registry) Supported(mimeType string) bool {
	_, ok := r.extractors[mimeType]
	return ok
}

// Extract dispatches to the extractor for mimeType. An unknown mime type
// is a permanent, job-fatal error: models.ErrUnsupportedFormat.
func (r *Registry) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	e, ok := r.extractors[mimeType]
	if !ok {
		return "", fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, mimeType)
	}
	text, err := e.Extract(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", mimeType, err)
	}
	return text, nil
}

// SupportedMimeTypes returns the fixed upload whitelist.
func SupportedMimeTypes() []string {
	return []string{MimePDF, MimeText, MimeDocx, MimeJPEG, MimePNG}
}
