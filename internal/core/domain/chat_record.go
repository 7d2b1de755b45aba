package domain

import "time"

// ChatRecord is one persisted chat turn. Records are never updated or deleted.
type ChatRecord struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Message   string    `db:"message"`
	Response  string    `db:"response"`
	Timestamp time.Time `db:"timestamp"`
}

func NewChatRecord(userID int64, message, response string) *ChatRecord {
	return &ChatRecord{
		UserID:    userID,
		Message:   message,
		Response:  response,
		Timestamp: time.Now().UTC(),
	}
}
