package extractor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/legalease/legalease/internal/core/domain"
)

type storageFake struct {
	data    map[string][]byte
	openErr error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader, _ int64, _ string) error {
	raw, _ := io.ReadAll(data)
	if f.data == nil {
		f.data = make(map[string][]byte)
	}
	f.data[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(bytes.NewReader(f.data[key])), nil
}

func (f *storageFake) Remove(context.Context, string) error { return nil }

type ocrFake struct {
	text string
	err  error
}

func (f *ocrFake) ProcessDocument(context.Context, []byte, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *ocrFake) Supports(format Format) bool {
	return format == FormatPDF
}

func doc(name, contentType, key string) *domain.Document {
	return &domain.Document{ID: "doc-1", OriginalName: name, ContentType: contentType, StorageKey: key}
}

func TestExtractPlainText(t *testing.T) {
	storage := &storageFake{data: map[string][]byte{"k": []byte("  hello contract  ")}}
	e := New(storage)

	text, err := e.Extract(context.Background(), doc("notes.txt", "text/plain", "k"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "hello contract" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractRejectsUnsupportedFormat(t *testing.T) {
	e := New(&storageFake{})

	_, err := e.Extract(context.Background(), doc("image.png", "image/png", "k"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractDetectsFormatFromContentType(t *testing.T) {
	storage := &storageFake{data: map[string][]byte{"k": []byte("plain body")}}
	e := New(storage)

	text, err := e.Extract(context.Background(), doc("upload", "text/plain; charset=utf-8", "k"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "plain body" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractSurfacesStorageFailures(t *testing.T) {
	e := New(&storageFake{openErr: errors.New("bucket gone")})

	_, err := e.Extract(context.Background(), doc("a.txt", "text/plain", "k"))
	if err == nil {
		t.Fatalf("expected storage failure to surface")
	}
}

func TestExtractDegradesOnBrokenPDF(t *testing.T) {
	storage := &storageFake{data: map[string][]byte{"k": []byte("not a real pdf")}}
	e := New(storage)

	text, err := e.Extract(context.Background(), doc("broken.pdf", "application/pdf", "k"))
	if err != nil {
		t.Fatalf("parser failures must degrade, got error %v", err)
	}
	if text != DegradedText {
		t.Fatalf("expected degraded placeholder, got %q", text)
	}
}

func TestExtractPrefersOCRWhenAvailable(t *testing.T) {
	storage := &storageFake{data: map[string][]byte{"k": []byte("not a real pdf")}}
	e := New(storage).WithOCR(&ocrFake{text: "ocr extracted text"})

	text, err := e.Extract(context.Background(), doc("scan.pdf", "application/pdf", "k"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "ocr extracted text" {
		t.Fatalf("expected OCR output, got %q", text)
	}
}

func TestExtractFallsBackToLocalWhenOCRFails(t *testing.T) {
	storage := &storageFake{data: map[string][]byte{"k": []byte("local text")}}
	e := New(storage).WithOCR(&ocrFake{err: errors.New("quota exceeded")})

	// txt is not OCR-supported in the fake, so the pdf path exercises the
	// fallback and the txt path never consults OCR.
	text, err := e.Extract(context.Background(), doc("scan.pdf", "application/pdf", "k"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != DegradedText {
		t.Fatalf("expected local degraded fallback after OCR failure, got %q", text)
	}

	text, err = e.Extract(context.Background(), doc("notes.txt", "text/plain", "k"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "local text" {
		t.Fatalf("expected plain extraction, got %q", text)
	}
}

func TestExtractDOCReturnsConversionHint(t *testing.T) {
	storage := &storageFake{data: map[string][]byte{"k": []byte{0xd0, 0xcf, 0x11, 0xe0}}}
	e := New(storage)

	text, err := e.Extract(context.Background(), doc("legacy.doc", "application/msword", "k"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text == "" || text == DegradedText {
		t.Fatalf("expected conversion hint text, got %q", text)
	}
}
