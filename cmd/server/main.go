package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"btcpay-plugins/internal/cash"
	"btcpay-plugins/internal/config"
	"btcpay-plugins/internal/database"
	"btcpay-plugins/internal/logging"
	"btcpay-plugins/internal/payroll"
	"btcpay-plugins/internal/server"
	"btcpay-plugins/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Configure(cfg.AppEnv, cfg.LogLevel)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := database.EnsureDefaultAdmin(ctx, db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	files, err := storage.NewStorage(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	addresses, err := payroll.NewAddressValidator(cfg.BitcoinNetwork)
	if err != nil {
		return err
	}

	r := server.NewRouter(server.Deps{
		Config:  cfg,
		DB:      db,
		Cash:    cash.NewService(db),
		Payroll: payroll.NewService(db, files, addresses),
	})

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":    addr,
			"network": cfg.BitcoinNetwork,
			"storage": cfg.StorageType,
		}).Info("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
