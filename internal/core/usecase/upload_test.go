package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/legalease/legalease/internal/core/domain"
)

func TestUploadStoresAndEnqueues(t *testing.T) {
	repo := &repoFake{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewUploadDocumentUseCase(repo, storage, queue, &indexFake{})

	doc, err := uc.Upload(context.Background(), "Loan Agreement.pdf", "application/pdf", bytes.NewReader([]byte("pdf bytes")))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected uploaded status, got %s", doc.Status)
	}
	if doc.SizeBytes != int64(len("pdf bytes")) {
		t.Fatalf("unexpected size: %d", doc.SizeBytes)
	}
	if !strings.HasSuffix(doc.StorageKey, "_Loan_Agreement.pdf") {
		t.Fatalf("expected sanitized storage key, got %q", doc.StorageKey)
	}
	if _, ok := storage.saved[doc.StorageKey]; !ok {
		t.Fatalf("expected raw bytes saved under %q", doc.StorageKey)
	}
	if repo.created == nil || repo.created.ID != doc.ID {
		t.Fatalf("expected metadata persisted")
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("expected pipeline job published, got %v", queue.published)
	}
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	uc := NewUploadDocumentUseCase(&repoFake{}, &storageFake{}, &queueFake{}, &indexFake{})

	_, err := uc.Upload(context.Background(), "empty.pdf", "application/pdf", bytes.NewReader(nil))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReprocessInvalidatesIndexAndRepublishes(t *testing.T) {
	repo := &repoFake{doc: &domain.Document{ID: "doc-1", Status: domain.StatusCompleted}}
	queue := &queueFake{}
	idx := &indexFake{}
	uc := NewUploadDocumentUseCase(repo, &storageFake{}, queue, idx)

	if err := uc.Reprocess(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Reprocess() error = %v", err)
	}
	if len(idx.invalidated) != 1 || idx.invalidated[0] != "doc-1" {
		t.Fatalf("expected index invalidated, got %v", idx.invalidated)
	}
	if len(repo.statusCalls) != 1 || repo.statusCalls[0].status != domain.StatusUploaded {
		t.Fatalf("expected status reset to uploaded, got %+v", repo.statusCalls)
	}
	if len(queue.published) != 1 {
		t.Fatalf("expected reprocess job published, got %v", queue.published)
	}
}

func TestReprocessRejectsDeletedDocument(t *testing.T) {
	repo := &repoFake{doc: &domain.Document{ID: "doc-1", Status: domain.StatusDeleted}}
	uc := NewUploadDocumentUseCase(repo, &storageFake{}, &queueFake{}, &indexFake{})

	err := uc.Reprocess(context.Background(), "doc-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteMarksDeletedAndCleansUp(t *testing.T) {
	repo := &repoFake{doc: &domain.Document{ID: "doc-1", Status: domain.StatusCompleted, StorageKey: "doc-1_a.pdf"}}
	storage := &storageFake{}
	idx := &indexFake{}
	uc := NewUploadDocumentUseCase(repo, storage, &queueFake{}, idx)

	if err := uc.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(repo.statusCalls) != 1 || repo.statusCalls[0].status != domain.StatusDeleted {
		t.Fatalf("expected deleted status, got %+v", repo.statusCalls)
	}
	if len(idx.invalidated) != 1 {
		t.Fatalf("expected index invalidated, got %v", idx.invalidated)
	}
	if len(storage.removed) != 1 || storage.removed[0] != "doc-1_a.pdf" {
		t.Fatalf("expected raw object removed, got %v", storage.removed)
	}
}

func TestDeleteSucceedsWhenObjectRemovalFails(t *testing.T) {
	repo := &repoFake{doc: &domain.Document{ID: "doc-1", Status: domain.StatusCompleted, StorageKey: "doc-1_a.pdf"}}
	storage := &storageFake{removeErr: errors.New("bucket gone")}
	uc := NewUploadDocumentUseCase(repo, storage, &queueFake{}, &indexFake{})

	if err := uc.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Delete() should tolerate object removal failures, got %v", err)
	}
}

func TestDeleteIsIdempotentForDeletedDocument(t *testing.T) {
	repo := &repoFake{doc: &domain.Document{ID: "doc-1", Status: domain.StatusDeleted}}
	uc := NewUploadDocumentUseCase(repo, &storageFake{}, &queueFake{}, &indexFake{})

	if err := uc.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(repo.statusCalls) != 0 {
		t.Fatalf("expected no status update for already deleted document, got %+v", repo.statusCalls)
	}
}
