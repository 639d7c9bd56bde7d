package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Arthurk12/racha-ai/internal/api"
	"github.com/Arthurk12/racha-ai/internal/auth"
	"github.com/Arthurk12/racha-ai/internal/service"
	"github.com/Arthurk12/racha-ai/internal/storage/sqlite"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the Racha AI HTTP server. Groups whose retention window has
expired are purged once a day while the server runs.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tokenTTL, err := cfg.TokenTTL()
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.Database.Path)

	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, tokenTTL)
	groups := service.NewGroupService(store, jwt)
	expenses := service.NewExpenseService(store, groups)

	server := api.NewServer(groups, expenses, jwt)
	server.EnableMetrics()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if maxAge := cfg.GroupMaxAge(); maxAge > 0 {
		go purgeLoop(ctx, groups, maxAge)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}

// purgeLoop deletes inactive groups once a day until ctx is cancelled. The
// first pass runs immediately so a long-stopped server catches up on start.
func purgeLoop(ctx context.Context, groups *service.GroupService, maxAge time.Duration) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		if _, err := groups.PurgeInactive(ctx, maxAge); err != nil {
			slog.Error("purge failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
