package handler

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/therabot/therabot/internal/api/dto"
	"github.com/therabot/therabot/internal/api/middleware"
	"github.com/therabot/therabot/internal/core/service"
	"github.com/therabot/therabot/internal/infrastructure/sqlite"
	"github.com/therabot/therabot/internal/logger"
	"github.com/therabot/therabot/internal/web"
)

const testCookieName = "therabot_session"

// fakeCompleter stands in for the completion provider
type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

// testEnv holds all test dependencies
type testEnv struct {
	db        *sqlite.DB
	router    *gin.Engine
	completer *fakeCompleter
	sessions  *service.SessionService
}

// setupTestEnv creates a test environment with in-memory SQLite database
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Use in-memory SQLite database
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logger.Discard()

	// Create repositories and services
	userRepo := sqlite.NewUserRepository(db)
	chatRepo := sqlite.NewChatRepository(db)

	completer := &fakeCompleter{reply: "It sounds like a lot. What has been on your mind?"}
	authService := service.NewAuthService(userRepo, service.SHA256Hasher{}, log)
	chatService := service.NewChatService(chatRepo, completer, "", 0, log)
	sessionService, err := service.NewSessionService("test-secret", 0)
	if err != nil {
		t.Fatalf("failed to create session service: %v", err)
	}

	cookie := middleware.SessionCookie{Name: testCookieName}

	// Create handlers
	authHandler := NewAuthHandler(authService, sessionService, cookie)
	chatHandler := NewChatHandler(chatService)
	pageHandler := NewPageHandler()

	// Setup gin router in test mode
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.SetHTMLTemplate(template.Must(web.Templates()))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.Session(sessionService, authService, cookie, log))

	router.GET("/", pageHandler.Home)
	router.GET("/signin", pageHandler.SigninPage)
	router.GET("/signup", pageHandler.SignupPage)
	router.GET("/chat", middleware.RequirePage(), pageHandler.ChatPage)
	router.POST("/signup", authHandler.Signup)
	router.POST("/signin", authHandler.Signin)
	router.GET("/logout", authHandler.Logout)
	router.POST("/api/chat", middleware.RequireAPI(), chatHandler.Chat)

	return &testEnv{
		db:        db,
		router:    router,
		completer: completer,
		sessions:  sessionService,
	}
}

// post sends a JSON body, attaching cookies when given
func (env *testEnv) post(t *testing.T, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// get performs a GET request, attaching cookies when given
func (env *testEnv) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// signup registers an account and fails the test on error
func (env *testEnv) signup(t *testing.T, username, password string) {
	t.Helper()

	w := env.post(t, "/signup", credentials(username, password))
	if w.Code != http.StatusOK {
		t.Fatalf("signup failed: %d %s", w.Code, w.Body.String())
	}
}

// signin returns the session cookie for a registered account
func (env *testEnv) signin(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	w := env.post(t, "/signin", credentials(username, password))
	if w.Code != http.StatusOK {
		t.Fatalf("signin failed: %d %s", w.Code, w.Body.String())
	}

	cookie := findCookie(w, testCookieName)
	if cookie == nil {
		t.Fatalf("signin did not set %s cookie", testCookieName)
	}
	return cookie
}

func (env *testEnv) countChatRecords(t *testing.T) int {
	t.Helper()

	var count int
	if err := env.db.Get(&count, "SELECT COUNT(*) FROM chat_history"); err != nil {
		t.Fatalf("failed to count chat records: %v", err)
	}
	return count
}

func credentials(username, password string) string {
	body, _ := json.Marshal(dto.CredentialsRequest{Username: username, Password: password})
	return string(body)
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// parseEnvelope parses the response body into an Envelope
func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.Envelope {
	t.Helper()

	var resp dto.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v\nBody: %s", err, w.Body.String())
	}
	return resp
}
