package sqlite

import (
	"context"
	"fmt"

	"github.com/therabot/therabot/internal/core/domain"
	"github.com/therabot/therabot/internal/core/repository"
)

type chatRepository struct {
	db *DB
}

func NewChatRepository(db *DB) repository.ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Append(ctx context.Context, record *domain.ChatRecord) error {
	query := `
		INSERT INTO chat_history (user_id, message, response, timestamp)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		record.UserID,
		record.Message,
		record.Response,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append chat record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get chat record id: %w", err)
	}
	record.ID = id

	return nil
}

func (r *chatRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM chat_history WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count chat records: %w", err)
	}
	return count, nil
}
