package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/therabot/therabot/docs"
	"github.com/therabot/therabot/internal/api/dto"
	"github.com/therabot/therabot/internal/api/handler"
	"github.com/therabot/therabot/internal/api/middleware"
	"github.com/therabot/therabot/internal/core/service"
	"github.com/therabot/therabot/internal/web"
	"github.com/therabot/therabot/pkg/config"
)

// writeSlack is added to llm_timeout to bound response writes.
const writeSlack = 15 * time.Second

type Server struct {
	router *gin.Engine
	srv    *http.Server
	config *config.Config
	log    logrus.FieldLogger
}

// NewServer creates a new API server
func NewServer(
	cfg *config.Config,
	log logrus.FieldLogger,
	authService *service.AuthService,
	sessionService *service.SessionService,
	chatService *service.ChatService,
) (*Server, error) {
	// Set Gin mode
	if !cfg.IsDevMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	corsMiddleware, err := middleware.CORSMiddleware(cfg.CORSOrigins)
	if err != nil {
		return nil, err
	}

	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(templates)

	cookie := middleware.SessionCookie{
		Name:   cfg.SessionCookie,
		MaxAge: sessionService.MaxAge(),
		Secure: cfg.SecureCookies,
	}

	// Global middleware
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(corsMiddleware)
	router.Use(middleware.Session(sessionService, authService, cookie, log))

	// Initialize handlers
	pageHandler := handler.NewPageHandler()
	authHandler := handler.NewAuthHandler(authService, sessionService, cookie)
	chatHandler := handler.NewChatHandler(chatService)

	// Pages
	router.GET("/", pageHandler.Home)
	router.GET("/signin", pageHandler.SigninPage)
	router.GET("/signup", pageHandler.SignupPage)
	router.GET("/chat", middleware.RequirePage(), pageHandler.ChatPage)
	router.StaticFS("/static", web.Static())

	// Account and session
	router.POST("/signup", authHandler.Signup)
	router.POST("/signin", authHandler.Signin)
	router.GET("/logout", authHandler.Logout)

	// Chat API (session required)
	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.RequireAPI())
	{
		apiGroup.POST("/chat", chatHandler.Chat)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{
			Status: "ok",
			Time:   time.Now().Format(time.RFC3339),
		})
	})

	if cfg.SwaggerEnabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	server := &Server{
		router: router,
		config: cfg,
		log:    log,
	}

	return server, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := s.config.Addr()

	// Chat turns wait on the completion provider; with no llm_timeout the
	// write side is left unbounded as well.
	var writeTimeout time.Duration
	if s.config.LLMTimeout > 0 {
		writeTimeout = s.config.LLMTimeout + writeSlack
	}

	s.srv = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start with or without SSL
	if s.config.SSLCert != "" && s.config.SSLKey != "" {
		s.log.WithField("addr", addr).Info("Starting HTTPS server")
		return s.srv.ListenAndServeTLS(s.config.SSLCert, s.config.SSLKey)
	}

	s.log.WithField("addr", addr).Info("Starting HTTP server")
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
