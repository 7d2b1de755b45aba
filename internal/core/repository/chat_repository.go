package repository

import (
	"context"

	"github.com/therabot/therabot/internal/core/domain"
)

type ChatRepository interface {
	Append(ctx context.Context, record *domain.ChatRecord) error
	CountByUser(ctx context.Context, userID int64) (int, error)
}
