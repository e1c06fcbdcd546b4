// Package main запускает терминал MotoSync: локальный HTTP API поверх удалённого REST API магазина.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/motosync-terminal/internal/api"
	"github.com/mmeshcher/motosync-terminal/internal/config"
	"github.com/mmeshcher/motosync-terminal/internal/handler"
	"github.com/mmeshcher/motosync-terminal/internal/middleware"
	"github.com/mmeshcher/motosync-terminal/internal/repository"
	"github.com/mmeshcher/motosync-terminal/internal/service"
	"github.com/mmeshcher/motosync-terminal/internal/session"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.Level())
	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger initialization error:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	sess := session.New(cfg.SessionFile)
	if err := sess.Load(); err != nil {
		sugar.Warnw("session file ignored", "path", cfg.SessionFile, "error", err.Error())
	}

	client, err := api.NewClient(cfg.APIBaseURL, sess, cfg.RequestTimeout)
	if err != nil {
		sugar.Fatalw("api client initialization error", "error", err.Error())
	}

	var opts []service.Option
	if cfg.DatabaseURI != "" {
		repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		opts = append(opts, service.WithJournal(repo))
	}

	svc := service.NewService(client, sess, logger, opts...)
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(sess)
	h := handler.NewHandler(svc, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting motosync terminal",
			"addr", cfg.RunAddress,
			"api", client.BaseURL(),
			"journal", cfg.DatabaseURI != "",
			"loggedIn", sess.Active(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Остановка по сигналу или при ошибке сервера.
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
