package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/legalease/legalease/internal/core/domain"
	"github.com/legalease/legalease/internal/core/ports"
)

// DegradedText is returned when a format-specific parser fails on a readable
// file. Parser failures degrade; only storage I/O failures propagate.
const DegradedText = "Document uploaded successfully. Text extraction requires additional processing."

// OCRBackend is an optional higher-fidelity extraction backend (cloud
// document OCR). Any error from it falls back to local parsing, invisibly to
// the caller.
type OCRBackend interface {
	ProcessDocument(ctx context.Context, raw []byte, contentType string) (string, error)
	Supports(format Format) bool
}

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatDOCX  Format = "docx"
	FormatDOC   Format = "doc"
	FormatPlain Format = "txt"
)

// Extractor dispatches stored documents to format-specific text extraction.
type Extractor struct {
	storage ports.ObjectStorage
	ocr     OCRBackend
}

func New(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

// WithOCR enables the cloud OCR backend, tried first for supported formats.
func (e *Extractor) WithOCR(ocr OCRBackend) *Extractor {
	e.ocr = ocr
	return e
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	format, err := detectFormat(doc.OriginalName, doc.ContentType)
	if err != nil {
		return "", err
	}

	reader, err := e.storage.Open(ctx, doc.StorageKey)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	if e.ocr != nil && e.ocr.Supports(format) {
		text, ocrErr := e.ocr.ProcessDocument(ctx, raw, doc.ContentType)
		if ocrErr == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), nil
		}
		if ocrErr != nil {
			slog.Warn("ocr_backend_fallback", "document_id", doc.ID, "format", format, "error", ocrErr)
		}
	}

	text, err := extractLocal(format, raw)
	if err != nil {
		slog.Warn("local_extraction_degraded", "document_id", doc.ID, "format", format, "error", err)
		return DegradedText, nil
	}
	return strings.TrimSpace(text), nil
}

func extractLocal(format Format, raw []byte) (string, error) {
	switch format {
	case FormatPDF:
		return extractPDF(raw)
	case FormatDOCX:
		return extractDOCX(raw)
	case FormatDOC:
		return extractDOC(raw)
	case FormatPlain:
		return extractPlainText(raw)
	default:
		return "", fmt.Errorf("no extractor for format %q", format)
	}
}

// detectFormat prefers the file extension and falls back to the declared
// MIME type for extensionless uploads.
func detectFormat(filename, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".doc":
		return FormatDOC, nil
	case ".txt":
		return FormatPlain, nil
	}

	mimeType := contentType
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	switch strings.TrimSpace(strings.ToLower(mimeType)) {
	case "application/pdf":
		return FormatPDF, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return FormatDOCX, nil
	case "application/msword":
		return FormatDOC, nil
	case "text/plain":
		return FormatPlain, nil
	}

	return "", domain.WrapError(domain.ErrUnsupportedFormat, "detect format",
		fmt.Errorf("filename %q, content type %q", filename, contentType))
}
