// Package main запускает кухонный дисплей.
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

	"github.com/mmeshcher/kitchen-display/internal/backend"
	"github.com/mmeshcher/kitchen-display/internal/config"
	"github.com/mmeshcher/kitchen-display/internal/handler"
	"github.com/mmeshcher/kitchen-display/internal/metrics"
	"github.com/mmeshcher/kitchen-display/internal/service"
	"github.com/mmeshcher/kitchen-display/internal/session"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	sessions, err := session.NewStore(cfg.SessionFile)
	if err != nil {
		sugar.Fatalw("session store initialization error", "error", err.Error())
	}

	client := backend.NewClient(cfg.BackendAddress, sessions.Token)

	reg := metrics.NewRegistry()

	svc := service.NewService(client, logger, service.NewLogNotifier(logger), reg, func() {
		// Бэкенд отверг сессию: локальная копия сбрасывается,
		// дисплей возвращается на экран входа.
		if err := sessions.Clear(); err != nil {
			logger.Error("clear session error", zap.Error(err))
		}
		logger.Warn("session expired, login required")
	})

	h := handler.NewHandler(svc, client, sessions, logger, reg.Handler())

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск фонового опроса заказов и уведомлений
	g.Go(func() error {
		svc.Run(ctx)
		return nil
	})

	// Запуск HTTP-сервера дисплея
	g.Go(func() error {
		sugar.Infow("starting kitchen display", "addr", cfg.RunAddress, "backend", cfg.BackendAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down display...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("display stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
