package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/therabot/therabot/internal/core/repository"
	"github.com/therabot/therabot/internal/infrastructure/sqlite"
	"github.com/therabot/therabot/internal/logger"
)

type testStores struct {
	db    *sqlite.DB
	users repository.UserRepository
	chats repository.ChatRepository
}

func newTestStores(t *testing.T) *testStores {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "therabot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &testStores{
		db:    db,
		users: sqlite.NewUserRepository(db),
		chats: sqlite.NewChatRepository(db),
	}
}

// fakeCompleter records the last call and returns a canned reply or error.
type fakeCompleter struct {
	reply string
	err   error

	calls        int
	utterance    string
	systemPrompt string
	hadDeadline  bool
}

func (f *fakeCompleter) Complete(ctx context.Context, utterance, systemPrompt string) (string, error) {
	f.calls++
	f.utterance = utterance
	f.systemPrompt = systemPrompt
	_, f.hadDeadline = ctx.Deadline()
	return f.reply, f.err
}

var testLog = logger.Discard()
