// Gogogated polls a GoGoGate2 garage door controller, serves its state as
// Prometheus metrics, and optionally bridges it to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pcurrier/gogogate2/internal/bridge"
	"github.com/pcurrier/gogogate2/internal/config"
	"github.com/pcurrier/gogogate2/internal/gogogate"
	"github.com/pcurrier/gogogate2/internal/logging"
	"github.com/pcurrier/gogogate2/internal/server"
	"github.com/pcurrier/gogogate2/internal/version"
)

func main() {
	configPath := flag.String("config", envOrDefault("GOGOGATE_CONFIG", "/etc/gogogate2/config.yaml"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	client, err := gogogate.NewClient(gogogate.Config{
		Host:     cfg.Device.Host,
		Username: cfg.Device.Username,
		Password: cfg.Device.Password,
		Timeout:  cfg.Device.Timeout,
	})
	if err != nil {
		logger.Fatal("device client", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "gogogate2_build_info",
		Help:        "Build information",
		ConstLabels: prometheus.Labels{"version": version.Version},
	}, func() float64 { return 1 }))
	registry.MustRegister(gogogate.NewMetricsCollector(client))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MQTT.Enabled {
		b, err := bridge.New(client, bridge.Config{
			Broker:       cfg.MQTT.Broker,
			Username:     cfg.MQTT.Username,
			Password:     cfg.MQTT.Password,
			TLS:          cfg.MQTT.TLS,
			TopicPrefix:  cfg.MQTT.TopicPrefix,
			PollInterval: cfg.MQTT.PollInterval,
		}, logger)
		if err != nil {
			logger.Fatal("mqtt bridge", zap.Error(err))
		}
		go func() {
			if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("mqtt bridge stopped", zap.Error(err))
			}
		}()
		logger.Info("mqtt bridge started",
			zap.String("broker", cfg.MQTT.Broker),
			zap.String("prefix", cfg.MQTT.TopicPrefix))
	}

	httpServer := server.New(cfg.HTTP.Addr, registry)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("serving",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("device", cfg.Device.Host),
		zap.String("version", version.Version))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http serve", zap.Error(err))
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
