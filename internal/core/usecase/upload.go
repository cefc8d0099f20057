package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalease/legalease/internal/core/domain"
	"github.com/legalease/legalease/internal/core/ports"
)

type UploadDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	index   ports.ClauseIndex
}

func NewUploadDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	index ports.ClauseIndex,
) *UploadDocumentUseCase {
	return &UploadDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		index:   index,
	}
}

// Upload registers a new document and enqueues its pipeline run. The caller
// gets the document id back immediately; processing happens in the worker.
func (uc *UploadDocumentUseCase) Upload(
	ctx context.Context,
	filename, contentType string,
	body io.Reader,
) (*domain.Document, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("empty file"))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(raw), int64(len(raw)), contentType); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:           id,
		FileName:     storageKey,
		OriginalName: filename,
		ContentType:  contentType,
		SizeBytes:    int64(len(raw)),
		StorageKey:   storageKey,
		Status:       domain.StatusUploaded,
		UploadedAt:   now,
		UpdatedAt:    now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishProcessDocument(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish process job: %w", err)
	}

	return doc, nil
}

// Reprocess re-enters the state machine at "uploaded" and enqueues a fresh
// pipeline run. The old clause index entry is invalidated immediately so
// retrieval can never serve a mix of old and new clauses.
func (uc *UploadDocumentUseCase) Reprocess(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status == domain.StatusDeleted {
		return domain.WrapError(domain.ErrInvalidInput, "reprocess", fmt.Errorf("document is deleted"))
	}
	if !doc.Status.CanTransition(domain.StatusUploaded) && doc.Status != domain.StatusUploaded {
		return domain.WrapError(domain.ErrInvalidInput, "reprocess",
			fmt.Errorf("cannot reprocess document in status %q", doc.Status))
	}

	uc.index.Invalidate(ctx, documentID)

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusUploaded, ""); err != nil {
		return fmt.Errorf("reset status for reprocess: %w", err)
	}
	if err := uc.queue.PublishProcessDocument(ctx, documentID); err != nil {
		return fmt.Errorf("publish reprocess job: %w", err)
	}
	return nil
}

// Delete marks the document deleted (terminal) and best-effort removes the
// raw bytes and the index entry.
func (uc *UploadDocumentUseCase) Delete(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Status == domain.StatusDeleted {
		return nil
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusDeleted, ""); err != nil {
		return fmt.Errorf("mark document deleted: %w", err)
	}

	uc.index.Invalidate(ctx, documentID)
	if doc.StorageKey != "" {
		if err := uc.storage.Remove(ctx, doc.StorageKey); err != nil {
			slog.Warn("delete_raw_object_failed", "document_id", documentID, "error", err)
		}
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
