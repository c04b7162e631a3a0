package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quantfold/odte/internal/app"
	"github.com/quantfold/odte/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serveInterval time.Duration
	serveAddr     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run decision cycles on an interval",
	Long: `serve runs one decision cycle immediately, then again on every tick of
the configured interval, and exposes prometheus metrics over HTTP.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 15*time.Minute, "time between decision cycles")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":9090", "metrics listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.Metrics(), promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: serveAddr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", zap.Error(err))
		}
	}()

	log.Info("starting decision loop",
		zap.Duration("interval", serveInterval),
		zap.String("metrics_addr", serveAddr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	cycle := func() {
		if _, err := a.Run(ctx, time.Now().UTC()); err != nil {
			log.Error("decision cycle failed", zap.Error(err))
		}
	}
	cycle()

	ticker := time.NewTicker(serveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			log.Info("shutting down")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		case <-ticker.C:
			cycle()
		}
	}
}
