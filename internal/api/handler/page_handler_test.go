package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicPages(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		path     string
		contains string
	}{
		{"/", "Welcome to Therabot"},
		{"/signin", "handleSignIn"},
		{"/signup", "handleSignUp"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := env.get(t, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestChatPageRedirectsAnonymousUsers(t *testing.T) {
	env := setupTestEnv(t)

	w := env.get(t, "/chat")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/signin", w.Header().Get("Location"))
}

func TestChatPageWithSession(t *testing.T) {
	env := setupTestEnv(t)
	env.signup(t, "alice", "secret1")
	session := env.signin(t, "alice", "secret1")

	w := env.get(t, "/chat", session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="chatMessages"`)
	assert.Contains(t, w.Body.String(), "alice")
}
