package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/therabot/therabot/internal/api"
)

const shutdownTimeout = 10 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the web server",
	Long:  "Serve the Therabot pages, the account endpoints and the chat API",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := bootstrap()
		if err != nil {
			return err
		}
		defer services.Close()

		cfg := services.Config
		log := services.Log

		if cfg.LLMAPIKey == "" {
			log.Warn("llm_api_key is not set, every chat reply will be the fallback message")
		}
		if cfg.SessionSecret == "" {
			log.Info("session_secret is not set, sessions will not survive a restart")
		}

		server, err := api.NewServer(
			cfg,
			log,
			services.AuthService,
			services.SessionService,
			services.ChatService,
		)
		if err != nil {
			return err
		}

		// Start server in goroutine
		serverErr := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		// Wait for interrupt signal or server error
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		log.WithField("model", services.Model).Info("Server is ready. Press Ctrl+C to stop.")

		select {
		case err := <-serverErr:
			return fmt.Errorf("server error: %w", err)
		case <-sigChan:
			log.Info("Shutting down gracefully...")
		}

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		log.Info("Server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
