package domain

import "time"

// Conversation is one question/answer exchange against a document. Records
// are append-only; nothing reads them back into the answering logic.
type Conversation struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Language   string    `json:"language,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// QAResult is the outcome of answering one question.
type QAResult struct {
	Answer            string `json:"answer"`
	RelevantClauseIDs []int  `json:"relevant_clauses"`
}
