package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/rl1809/library/internal/adapter/handler"
	"github.com/rl1809/library/internal/adapter/storage"
	"github.com/rl1809/library/internal/config"
	"github.com/rl1809/library/internal/core/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg, envErr := config.FromEnv(os.Getenv)

	cmd := &cobra.Command{
		Use:          "library",
		Short:        "Library management API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cfg.BindFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize store
	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer closeStore()
	logger.Info("store ready", "store", cfg.Store)

	// Initialize services
	books := service.NewBookService(store)
	members := service.NewMemberService(store)
	loans := service.NewLoanService(store, books)
	stats := service.NewStatsService(store)

	// Initialize gRPC server
	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryLoggingInterceptor(logger)))
		handler.RegisterLoanDeskServer(grpcServer, handler.NewGRPCHandler(loans, stats, logger))

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(books, members, loans, stats, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Timeout(cfg.RequestTimeout)(httpHandler.Routes()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
		if runErr != nil {
			logger.Error("HTTP server error", "error", runErr)
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown", "error", err)
	}
	logger.Info("HTTP server stopped")

	if grpcServer != nil {
		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
	}
	return runErr
}
