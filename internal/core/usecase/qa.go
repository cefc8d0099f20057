package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalease/legalease/internal/core/domain"
	"github.com/legalease/legalease/internal/core/ports"
)

const defaultRetrieveLimit = 3

// FallbackAnswer is returned when the answering capability is unavailable so
// the user always gets some answer.
const FallbackAnswer = "I understand you're asking about specific terms in your document. " +
	"While I can see this is an important question, I recommend reviewing the relevant " +
	"sections of your contract carefully. If you need clarification on specific clauses, " +
	"please point me to the exact section you're concerned about."

type AnswerQuestionUseCase struct {
	repo          ports.DocumentRepository
	index         ports.ClauseIndex
	generator     ports.AnswerGenerator
	conversations ports.ConversationStore
	retrieveLimit int
}

func NewAnswerQuestionUseCase(
	repo ports.DocumentRepository,
	index ports.ClauseIndex,
	generator ports.AnswerGenerator,
	conversations ports.ConversationStore,
) *AnswerQuestionUseCase {
	return &AnswerQuestionUseCase{
		repo:          repo,
		index:         index,
		generator:     generator,
		conversations: conversations,
		retrieveLimit: defaultRetrieveLimit,
	}
}

// Answer retrieves the most relevant clauses for the question, composes an
// answer from them plus the full extracted text, and appends the exchange to
// the document's conversation trail.
func (uc *AnswerQuestionUseCase) Answer(ctx context.Context, documentID, question string) (*domain.QAResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer question", fmt.Errorf("question is empty"))
	}

	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.Ready() {
		return nil, domain.WrapError(domain.ErrDocumentNotReady, "answer question",
			fmt.Errorf("document %s has no extracted text", documentID))
	}

	clauses := uc.retrieveClauses(ctx, doc, question)

	answer, err := uc.generator.GenerateAnswer(ctx, question, doc.OriginalText, clauses)
	if err != nil {
		slog.Warn("qa_answer_degraded", "document_id", documentID, "error", err)
		answer = FallbackAnswer
	}

	conv := &domain.Conversation{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Question:   question,
		Answer:     answer,
		Language:   string(domain.LangEnglish),
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.conversations.Append(ctx, conv); err != nil {
		return nil, fmt.Errorf("append conversation: %w", err)
	}

	ids := make([]int, 0, len(clauses))
	for _, clause := range clauses {
		ids = append(ids, clause.ID)
	}
	return &domain.QAResult{Answer: answer, RelevantClauseIDs: ids}, nil
}

// History lists the append-only Q&A trail for a document.
func (uc *AnswerQuestionUseCase) History(ctx context.Context, documentID string) ([]domain.Conversation, error) {
	if _, err := uc.repo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return uc.conversations.ListByDocument(ctx, documentID)
}

// retrieveClauses rebuilds the index lazily when the pipeline's best-effort
// build was missed (e.g. after a worker restart). Retrieval failures degrade
// to an empty context; the answer generator still runs on the full text.
func (uc *AnswerQuestionUseCase) retrieveClauses(ctx context.Context, doc *domain.Document, question string) []domain.SimplifiedClause {
	if !uc.index.Has(ctx, doc.ID) && len(doc.Clauses) > 0 {
		if err := uc.index.Index(ctx, doc.ID, doc.Clauses); err != nil {
			slog.Warn("clause_index_lazy_rebuild_failed", "document_id", doc.ID, "error", err)
		}
	}

	clauses, err := uc.index.Retrieve(ctx, doc.ID, question, uc.retrieveLimit)
	if err != nil {
		slog.Warn("clause_retrieval_failed", "document_id", doc.ID, "error", err)
		return nil
	}
	return clauses
}
