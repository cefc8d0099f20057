package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
	StatusDeleted    DocumentStatus = "deleted"
)

// CanTransition reports whether the status machine allows moving to the given
// status. Reprocessing re-enters at "uploaded" and is the only way out of
// "completed" or "failed" other than deletion. Nothing leaves "deleted".
func (s DocumentStatus) CanTransition(to DocumentStatus) bool {
	if to == StatusDeleted {
		return s != StatusDeleted
	}
	switch s {
	case StatusUploaded:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	case StatusCompleted, StatusFailed:
		return to == StatusUploaded
	default:
		return false
	}
}

func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusDeleted
}

type Document struct {
	ID           string             `json:"id"`
	FileName     string             `json:"file_name"`
	OriginalName string             `json:"original_name"`
	ContentType  string             `json:"content_type"`
	SizeBytes    int64              `json:"size_bytes"`
	StorageKey   string             `json:"storage_key"`
	OwnerID      string             `json:"owner_id,omitempty"`
	Status       DocumentStatus     `json:"status"`
	Error        string             `json:"error,omitempty"`
	OriginalText string             `json:"original_text,omitempty"`
	Clauses      []SimplifiedClause `json:"simplified_clauses,omitempty"`
	Summary      string             `json:"summary,omitempty"`
	KeyTerms     []string           `json:"key_terms,omitempty"`
	UploadedAt   time.Time          `json:"uploaded_at"`
	ProcessedAt  *time.Time         `json:"processed_at,omitempty"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// Ready reports whether the document has extracted text available for Q&A.
func (d *Document) Ready() bool {
	return d != nil && d.Status != StatusDeleted && d.OriginalText != ""
}

// ProcessingResult carries everything the pipeline persists on completion.
type ProcessingResult struct {
	OriginalText string             `json:"original_text"`
	Clauses      []SimplifiedClause `json:"simplified_clauses"`
	Summary      string             `json:"summary"`
	KeyTerms     []string           `json:"key_terms"`
}
