package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/therabot/therabot/internal/adapter/completion"
	"github.com/therabot/therabot/internal/core/repository"
	"github.com/therabot/therabot/internal/core/service"
	"github.com/therabot/therabot/internal/infrastructure/sqlite"
	"github.com/therabot/therabot/internal/logger"
	"github.com/therabot/therabot/pkg/config"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "therabot",
	Short: "Therabot - a supportive chat companion",
	Long: `Therabot is a small web application where users sign up, sign in and talk
to an empathetic assistant backed by an OpenAI-compatible completion API.

Every exchange is stored in a local SQLite database.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, optional)")
}

// bootstrap loads configuration, builds the logger and wires every service.
func bootstrap() (*Services, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, logCloser, err := logger.New(cfg.LogLevel, cfg.LogFile, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	services, err := initServices(cfg, log)
	if err != nil {
		logCloser.Close()
		return nil, err
	}
	services.logCloser = logCloser

	return services, nil
}

// initServices initializes all services
func initServices(cfg *config.Config, log *logrus.Logger) (*Services, error) {
	// Initialize database
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	userRepo := sqlite.NewUserRepository(db)
	chatRepo := sqlite.NewChatRepository(db)

	hasher, err := service.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionService, err := service.NewSessionService(cfg.SessionSecret, cfg.SessionMaxAge)
	if err != nil {
		db.Close()
		return nil, err
	}

	completionClient := completion.NewClient(completion.Config{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
	})

	// Initialize services
	authService := service.NewAuthService(userRepo, hasher, log)
	chatService := service.NewChatService(chatRepo, completionClient, cfg.SystemPrompt, cfg.LLMTimeout, log)

	return &Services{
		Config:         cfg,
		Log:            log,
		DB:             db,
		UserRepo:       userRepo,
		ChatRepo:       chatRepo,
		AuthService:    authService,
		SessionService: sessionService,
		ChatService:    chatService,
		Model:          completionClient.Model(),
	}, nil
}

// Services holds all initialized services
type Services struct {
	Config         *config.Config
	Log            *logrus.Logger
	DB             *sqlite.DB
	UserRepo       repository.UserRepository
	ChatRepo       repository.ChatRepository
	AuthService    *service.AuthService
	SessionService *service.SessionService
	ChatService    *service.ChatService
	Model          string

	logCloser io.Closer
}

// Close closes all resources
func (s *Services) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
	if s.logCloser != nil {
		s.logCloser.Close()
	}
}
