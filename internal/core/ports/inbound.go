package ports

import (
	"context"
	"io"

	"github.com/legalease/legalease/internal/core/domain"
)

// DocumentIngestor is the inbound contract for upload orchestration and the
// explicit lifecycle operations outside the automatic pipeline flow.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (*domain.Document, error)
	Reprocess(ctx context.Context, documentID string) error
	Delete(ctx context.Context, documentID string) error
}

// DocumentProcessor runs the pipeline for a registered document.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// QuestionAnswerer answers a question against a processed document and lists
// the document's past exchanges.
type QuestionAnswerer interface {
	Answer(ctx context.Context, documentID, question string) (*domain.QAResult, error)
	History(ctx context.Context, documentID string) ([]domain.Conversation, error)
}

// Translator and SpeechSynthesizer are the stateless text transformations.
// Both degrade to deterministic placeholders instead of failing outward.
type Translator interface {
	Translate(ctx context.Context, text string, target domain.LanguageCode) (string, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, lang domain.LanguageCode) (string, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
