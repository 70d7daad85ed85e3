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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"calc-editor/internal/calculator"
	"calc-editor/internal/config"
	"calc-editor/internal/editor"
	"calc-editor/internal/evaluator"
	"calc-editor/internal/observability"
	"calc-editor/internal/server"
	"calc-editor/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve editor sessions over HTTP",
	Long: `Starts the HTTP API. Sessions live in memory unless redis_addr is set.
Set otlp: true to export traces, metrics and logs over OTLP/HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
			cfg.Addr = addr
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}

func serve(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Logger
	if err := observability.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		return err
	}
	defer observability.SyncLogger()

	// Telemetry
	if cfg.OTLP {
		stop, err := initTelemetry(ctx, cfg.ServiceName)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer stop(context.Background())
	} else if err := calculator.InitMetrics(); err != nil {
		return err
	}

	// Sessions
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions := session.NewManager(store, session.WithLogger(observability.Logger))
	active := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "calc_sessions_active",
		Help: "Number of live editor sessions.",
	}, calculator.SessionsGauge(sessions))

	// Router
	handler := calculator.NewHandler(sessions, editor.NewMachine(evaluator.New()))
	router := server.NewRouter(handler, active)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		observability.Logger.Info("server started", zap.String("addr", cfg.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	return waitForShutdown(srv, serverErrors)
}

// openStore picks the Redis store when an address is configured and the
// in-memory store otherwise.
func openStore(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	if cfg.RedisAddr == "" {
		observability.Logger.Info("using in-memory session store")
		return session.NewMemoryStore(), func() {}, nil
	}

	store := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
		session.WithTTL(cfg.SessionTTL),
		session.WithPrefix(cfg.SessionPrefix),
	)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	observability.Logger.Info("using redis session store",
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.SessionTTL),
	)
	return store, func() { _ = store.Close() }, nil
}

func waitForShutdown(srv *http.Server, serverErrors <-chan error) error {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		observability.Logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
