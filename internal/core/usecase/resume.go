package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/legalease/legalease/internal/core/domain"
	"github.com/legalease/legalease/internal/core/ports"
)

// ResumeStuckDocumentsUseCase re-enqueues documents left in "processing" by a
// crashed or restarted worker. Runs periodically from the worker's cron.
type ResumeStuckDocumentsUseCase struct {
	repo       ports.DocumentRepository
	queue      ports.MessageQueue
	stuckAfter time.Duration
}

func NewResumeStuckDocumentsUseCase(
	repo ports.DocumentRepository,
	queue ports.MessageQueue,
	stuckAfter time.Duration,
) *ResumeStuckDocumentsUseCase {
	if stuckAfter <= 0 {
		stuckAfter = 10 * time.Minute
	}
	return &ResumeStuckDocumentsUseCase{
		repo:       repo,
		queue:      queue,
		stuckAfter: stuckAfter,
	}
}

// Resume returns the number of documents re-enqueued.
func (uc *ResumeStuckDocumentsUseCase) Resume(ctx context.Context) (int, error) {
	docs, err := uc.repo.ListByStatus(ctx, domain.StatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("list processing documents: %w", err)
	}

	cutoff := time.Now().UTC().Add(-uc.stuckAfter)
	resumed := 0
	for _, doc := range docs {
		if doc.UpdatedAt.After(cutoff) {
			continue
		}
		// Re-enter at "uploaded" so the pipeline's status guard lets the
		// run through; the per-document lock serializes against any run
		// still in flight.
		if err := uc.repo.UpdateStatus(ctx, doc.ID, domain.StatusUploaded, ""); err != nil {
			slog.Warn("resume_reset_status_failed", "document_id", doc.ID, "error", err)
			continue
		}
		if err := uc.queue.PublishProcessDocument(ctx, doc.ID); err != nil {
			slog.Warn("resume_publish_failed", "document_id", doc.ID, "error", err)
			continue
		}
		resumed++
	}
	return resumed, nil
}
