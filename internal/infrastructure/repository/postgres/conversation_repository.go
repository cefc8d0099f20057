package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/legalease/legalease/internal/core/domain"
)

type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Append(ctx context.Context, conv *domain.Conversation) error {
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversations (id, document_id, question, answer, language, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, conv.ID, conv.DocumentID, conv.Question, conv.Answer, conv.Language, conv.CreatedAt)
	if err != nil {
		return fmt.Errorf("append conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, question, answer, language, created_at
FROM conversations
WHERE document_id = $1
ORDER BY created_at ASC
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Conversation, 0)
	for rows.Next() {
		var conv domain.Conversation
		if err := rows.Scan(
			&conv.ID,
			&conv.DocumentID,
			&conv.Question,
			&conv.Answer,
			&conv.Language,
			&conv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return out, nil
}
