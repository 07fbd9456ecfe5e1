package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/qrgen/internal/db"
	"github.com/nkiryanov/qrgen/internal/handlers"
	"github.com/nkiryanov/qrgen/internal/logger"
	"github.com/nkiryanov/qrgen/internal/repository"
	"github.com/nkiryanov/qrgen/internal/repository/postgres"
	"github.com/nkiryanov/qrgen/internal/service/auth"
	"github.com/nkiryanov/qrgen/internal/service/auth/cookiestore"
	"github.com/nkiryanov/qrgen/internal/service/qrcode"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger

	// Nil in demo mode
	pool *pgxpool.Pool
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	mode, err := c.BackendMode()
	if err != nil {
		return nil, fmt.Errorf("error while resolving backend mode. Err: %w", err)
	}

	codec, err := cookiestore.New(cookiestore.Config{SecretKey: c.SecretKey, Secure: c.CookieSecure})
	if err != nil {
		return nil, fmt.Errorf("error while creating cookie codec. Err: %w", err)
	}

	// Connect to the database and run migrations, demo mode works without it
	var pool *pgxpool.Pool
	var repo repository.QRCodeRepo
	if mode == qrcode.ModeLive {
		pool, err = db.ConnectAndMigrate(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
		}
		repo = postgres.NewStorage(pool).QRCode()
	}

	qrService, err := qrcode.NewService(qrcode.Config{Mode: mode, DemoDelay: c.DemoDelay}, repo, logger)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("error while creating qr code service. Err: %w", err)
	}

	storage := func(w http.ResponseWriter, r *http.Request) auth.Storage {
		return codec.Storage(w, r)
	}

	logger.Info("app initialized", "mode", string(mode))

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    handlers.NewRouter(storage, qrService, logger),
		Logger:     logger,
		pool:       pool,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}

// Close releases database connections
func (s *ServerApp) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
