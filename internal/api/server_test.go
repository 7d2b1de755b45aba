package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therabot/therabot/internal/api/dto"
	"github.com/therabot/therabot/internal/core/service"
	"github.com/therabot/therabot/internal/infrastructure/sqlite"
	"github.com/therabot/therabot/internal/logger"
	"github.com/therabot/therabot/pkg/config"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(context.Context, string, string) (string, error) {
	return s.reply, s.err
}

type testServer struct {
	url    string
	client *http.Client
	db     *sqlite.DB
	stub   *stubCompleter
}

func newTestServer(t *testing.T, swagger bool) *testServer {
	t.Helper()

	cfg := &config.Config{
		APIHost:        config.DefaultAPIHost,
		APIPort:        config.DefaultAPIPort,
		DBPath:         filepath.Join(t.TempDir(), "therabot.db"),
		LLMModel:       config.DefaultLLMModel,
		SessionCookie:  config.DefaultSessionCookie,
		PasswordHasher: config.DefaultPasswordHasher,
		LogFormat:      config.DefaultLogFormat,
		SwaggerEnabled: swagger,
	}

	db, err := sqlite.New(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.Discard()
	stub := &stubCompleter{reply: "Thank you for sharing that with me."}

	authService := service.NewAuthService(sqlite.NewUserRepository(db), service.SHA256Hasher{}, log)
	chatService := service.NewChatService(sqlite.NewChatRepository(db), stub, cfg.SystemPrompt, cfg.LLMTimeout, log)
	sessionService, err := service.NewSessionService(cfg.SessionSecret, cfg.SessionMaxAge)
	require.NoError(t, err)

	server, err := NewServer(cfg, log, authService, sessionService, chatService)
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testServer{
		url: ts.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		db:   db,
		stub: stub,
	}
}

func (s *testServer) postJSON(t *testing.T, path string, body any) (int, dto.Envelope) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := s.client.Post(s.url+path, "application/json", strings.NewReader(string(payload)))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env dto.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (s *testServer) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()

	resp, err := s.client.Get(s.url + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestAliceScenario(t *testing.T) {
	s := newTestServer(t, false)

	// Before signing in, the chat page bounces to the sign-in page
	resp, _ := s.get(t, "/chat")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/signin", resp.Header.Get("Location"))

	status, env := s.postJSON(t, "/signup", dto.CredentialsRequest{Username: "alice", Password: "secret1"})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = s.postJSON(t, "/signin", dto.CredentialsRequest{Username: "alice", Password: "secret1"})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	resp, body := s.get(t, "/chat")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="chatMessages"`)

	status, env = s.postJSON(t, "/api/chat", dto.ChatRequest{Message: "I have been stressed at work"})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "Thank you for sharing that with me.", env.Response)

	// Provider outage: still a successful turn, with the fallback persisted
	s.stub.err = errors.New("503 service unavailable")
	status, env = s.postJSON(t, "/api/chat", dto.ChatRequest{Message: "are you there?"})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, service.FallbackResponse, env.Response)

	var responses []string
	require.NoError(t, s.db.Select(&responses, "SELECT response FROM chat_history ORDER BY id"))
	assert.Equal(t, []string{"Thank you for sharing that with me.", service.FallbackResponse}, responses)

	// Logout ends the session
	resp, _ = s.get(t, "/logout")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = s.get(t, "/chat")
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	status, env = s.postJSON(t, "/api/chat", dto.ChatRequest{Message: "hello again"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Please log in first", env.Message)
}

func TestAPIChatWithoutSession(t *testing.T) {
	s := newTestServer(t, false)

	status, env := s.postJSON(t, "/api/chat", dto.ChatRequest{Message: "hello"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.Envelope{Success: false, Message: "Please log in first"}, env)
}

func TestStaticHealthAndDocs(t *testing.T) {
	s := newTestServer(t, true)

	resp, body := s.get(t, "/static/script.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "sendMessage")

	resp, _ = s.get(t, "/static/style.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "ok", health.Status)

	resp, body = s.get(t, "/swagger/doc.json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/api/chat")
}

func TestSwaggerDisabledByDefault(t *testing.T) {
	s := newTestServer(t, false)

	resp, _ := s.get(t, "/swagger/doc.json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionCookieLifetimeFollowsSessionService(t *testing.T) {
	cfg := &config.Config{
		DBPath:         ":memory:",
		LLMModel:       config.DefaultLLMModel,
		SessionCookie:  config.DefaultSessionCookie,
		PasswordHasher: config.DefaultPasswordHasher,
		LogFormat:      config.DefaultLogFormat,
	}

	db, err := sqlite.New(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.Discard()
	authService := service.NewAuthService(sqlite.NewUserRepository(db), service.SHA256Hasher{}, log)
	chatService := service.NewChatService(sqlite.NewChatRepository(db), &stubCompleter{}, "", 0, log)
	sessionService, err := service.NewSessionService("lifetime-secret", time.Hour)
	require.NoError(t, err)

	server, err := NewServer(cfg, log, authService, sessionService, chatService)
	require.NoError(t, err)

	body := `{"username": "alice", "password": "secret1"}`
	for _, path := range []string{"/signup", "/signin"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		if path == "/signin" {
			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, config.DefaultSessionCookie, cookies[0].Name)
			assert.Equal(t, 3600, cookies[0].MaxAge)
		}
	}
}
