package ports

import (
	"context"
	"io"

	"github.com/legalease/legalease/internal/core/domain"
)

// DocumentRepository persists document state. The pipeline orchestrator is
// the only writer of status transitions.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveResults(ctx context.Context, id string, result domain.ProcessingResult) error
	ListByStatus(ctx context.Context, status domain.DocumentStatus) ([]domain.Document, error)
}

// ConversationStore appends and lists Q&A exchanges for a document.
type ConversationStore interface {
	Append(ctx context.Context, conv *domain.Conversation) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.Conversation, error)
}

// ObjectStorage stores raw uploaded files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// MessageQueue hands pipeline jobs from the API to the worker.
type MessageQueue interface {
	PublishProcessDocument(ctx context.Context, documentID string) error
	SubscribeProcessDocument(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor converts a stored document into plain text. Parser failures
// degrade to placeholder text inside the extractor; only storage read
// failures and unsupported formats surface as errors.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// ClauseSimplifier is the external language-understanding capability. Errors
// are surfaced so the caller can decide to fall back to the rule engine.
type ClauseSimplifier interface {
	Simplify(ctx context.Context, text string) ([]domain.SimplifiedClause, error)
}

// FallbackSimplifier is the deterministic local substitute used when the
// external simplifier errors. It is pure and cannot fail.
type FallbackSimplifier interface {
	SimplifyLocal(text string) []domain.SimplifiedClause
}

// Summarizer and TermExtractor are the enrichment capabilities of the
// pipeline's fan-out stage.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type TermExtractor interface {
	ExtractTerms(ctx context.Context, text string) ([]string, error)
}

// AnswerGenerator produces the user-facing Q&A answer from the question, the
// full document text and the retrieved clauses.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question, documentText string, clauses []domain.SimplifiedClause) (string, error)
}

// TranslationProvider and SpeechProvider back the stateless transformations.
type TranslationProvider interface {
	Translate(ctx context.Context, text string, target domain.LanguageCode) (string, error)
}

type SpeechProvider interface {
	Synthesize(ctx context.Context, text string, lang domain.LanguageCode) (string, error)
}

// ClauseIndex holds per-document retrieval structures. Implementations must
// replace a document's entry atomically on rebuild and isolate documents from
// each other; the in-memory keyword scorer is substitutable by a real vector
// store without changing this contract.
type ClauseIndex interface {
	Index(ctx context.Context, documentID string, clauses []domain.SimplifiedClause) error
	Retrieve(ctx context.Context, documentID, query string, limit int) ([]domain.SimplifiedClause, error)
	Invalidate(ctx context.Context, documentID string)
	Has(ctx context.Context, documentID string) bool
}
