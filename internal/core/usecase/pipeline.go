package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/legalease/legalease/internal/core/domain"
	"github.com/legalease/legalease/internal/core/ports"
)

const defaultStageTimeout = 2 * time.Minute

// PlaceholderSummary substitutes a failed summary branch; summaries are
// enrichment, not core output.
const PlaceholderSummary = "Summary unavailable. The document was processed, but no summary could be generated."

// PipelineObserver receives degradation signals from the pipeline. Optional.
type PipelineObserver interface {
	StageFallback(stage string)
}

type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	extractor  ports.TextExtractor
	simplifier ports.ClauseSimplifier
	fallback   ports.FallbackSimplifier
	summarizer ports.Summarizer
	terms      ports.TermExtractor
	index      ports.ClauseIndex

	stageTimeout time.Duration
	observer     PipelineObserver

	// Serializes pipeline runs per document id so a reprocess enqueued while
	// a previous run is still in flight cannot race on persisted results.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	simplifier ports.ClauseSimplifier,
	fallback ports.FallbackSimplifier,
	summarizer ports.Summarizer,
	terms ports.TermExtractor,
	index ports.ClauseIndex,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:         repo,
		extractor:    extractor,
		simplifier:   simplifier,
		fallback:     fallback,
		summarizer:   summarizer,
		terms:        terms,
		index:        index,
		stageTimeout: defaultStageTimeout,
		locks:        make(map[string]*sync.Mutex),
	}
}

// WithStageTimeout bounds each fan-out branch. Zero keeps the default.
func (uc *ProcessDocumentUseCase) WithStageTimeout(d time.Duration) *ProcessDocumentUseCase {
	if d > 0 {
		uc.stageTimeout = d
	}
	return uc
}

func (uc *ProcessDocumentUseCase) WithObserver(o PipelineObserver) *ProcessDocumentUseCase {
	uc.observer = o
	return uc
}

// ProcessByID drives one document through extract, the parallel
// summary/terms/simplify branches, index build and persist. Only extraction
// I/O failures, an empty clause set after both simplify paths, and
// persistence failures mark the document failed; every other capability
// error degrades in place.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	unlock := uc.lockDocument(documentID)
	defer unlock()

	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}
	if doc.Status == domain.StatusDeleted {
		slog.Warn("pipeline_skip_deleted", "document_id", documentID)
		return nil
	}
	if !doc.Status.CanTransition(domain.StatusProcessing) {
		slog.Warn("pipeline_skip_status", "document_id", documentID, "status", doc.Status)
		return nil
	}

	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return uc.fail(ctx, documentID, fmt.Errorf("extract text: %w", err))
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	summary, keyTerms, clauses, err := uc.fanOut(ctx, documentID, text)
	if err != nil {
		return uc.fail(ctx, documentID, err)
	}

	// Best-effort: a missed index build is rebuilt lazily on the first Q&A
	// call, so it never changes document status.
	if err := uc.index.Index(ctx, documentID, clauses); err != nil {
		slog.Warn("clause_index_build_failed", "document_id", documentID, "error", err)
	}

	result := domain.ProcessingResult{
		OriginalText: text,
		Clauses:      clauses,
		Summary:      summary,
		KeyTerms:     keyTerms,
	}
	if err := uc.repo.SaveResults(ctx, documentID, result); err != nil {
		return uc.fail(ctx, documentID, fmt.Errorf("persist results: %w", err))
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusCompleted, ""); err != nil {
		return fmt.Errorf("set status=completed: %w", err)
	}
	return nil
}

// fanOut runs the three independent transformations concurrently and applies
// the per-branch fallback policy after all of them settle.
func (uc *ProcessDocumentUseCase) fanOut(
	ctx context.Context,
	documentID, text string,
) (summary string, keyTerms []string, clauses []domain.SimplifiedClause, err error) {
	var (
		wg          sync.WaitGroup
		summaryErr  error
		termsErr    error
		simplifyErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		branchCtx, cancel := context.WithTimeout(ctx, uc.stageTimeout)
		defer cancel()
		summary, summaryErr = uc.summarizer.Summarize(branchCtx, text)
	}()
	go func() {
		defer wg.Done()
		branchCtx, cancel := context.WithTimeout(ctx, uc.stageTimeout)
		defer cancel()
		keyTerms, termsErr = uc.terms.ExtractTerms(branchCtx, text)
	}()
	go func() {
		defer wg.Done()
		branchCtx, cancel := context.WithTimeout(ctx, uc.stageTimeout)
		defer cancel()
		clauses, simplifyErr = uc.simplifier.Simplify(branchCtx, text)
	}()
	wg.Wait()

	if summaryErr != nil {
		slog.Warn("summary_degraded", "document_id", documentID, "error", summaryErr)
		uc.stageFallback("summary")
		summary = PlaceholderSummary
	}
	if termsErr != nil {
		slog.Warn("key_terms_degraded", "document_id", documentID, "error", termsErr)
		uc.stageFallback("terms")
		keyTerms = []string{}
	}
	if keyTerms == nil {
		keyTerms = []string{}
	}

	if simplifyErr != nil {
		slog.Warn("simplifier_fallback", "document_id", documentID, "error", simplifyErr)
		uc.stageFallback("simplify")
		clauses = uc.fallback.SimplifyLocal(text)
	}
	clauses = domain.NormalizeClauses(clauses)
	if len(clauses) == 0 {
		// The rule fallback guarantees at least one clause; reaching this
		// means both paths are unusable.
		return "", nil, nil, fmt.Errorf("simplify document: no clauses produced")
	}

	return summary, keyTerms, clauses, nil
}

func (uc *ProcessDocumentUseCase) fail(ctx context.Context, documentID string, processErr error) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, processErr.Error()); err != nil {
		return fmt.Errorf("%w; mark failed status: %v", processErr, err)
	}
	return processErr
}

func (uc *ProcessDocumentUseCase) stageFallback(stage string) {
	if uc.observer != nil {
		uc.observer.StageFallback(stage)
	}
}

func (uc *ProcessDocumentUseCase) lockDocument(documentID string) func() {
	uc.locksMu.Lock()
	lock, ok := uc.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		uc.locks[documentID] = lock
	}
	uc.locksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}
