package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mgwoorl/coursework/internal/config"
	"github.com/mgwoorl/coursework/internal/feed"
	"github.com/mgwoorl/coursework/internal/httpapi"
	"github.com/mgwoorl/coursework/internal/metrics"
	"github.com/mgwoorl/coursework/internal/mqtt"
	"github.com/mgwoorl/coursework/internal/udp"
	"github.com/mgwoorl/coursework/internal/weather"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"feedAddr", cfg.FeedAddr(),
		"feedInterval", cfg.FeedInterval,
		"httpAddr", cfg.HTTPAddr,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	sender, err := udp.Open(cfg.FeedAddr())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sender.Close(); closeErr != nil {
			slog.Error("udp close", "error", closeErr)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := feed.Options{
		Interval:  cfg.FeedInterval,
		Generator: weather.NewGenerator(weather.DefaultLayout()),
		Sender:    sender,
		Metrics:   metrics.NewFeed(reg),
		Logger:    slog.Default(),
	}

	if cfg.MQTTEnabled() {
		publisher := mqtt.NewPublisher(cfg, slog.Default())
		// The datagram loop starts without waiting for the broker.
		connected := publisher.ConnectAsync(ctx)
		defer func() {
			publisher.Disconnect()
			<-connected
		}()
		opts.Mirror = publisher
	}

	emitter, err := feed.NewEmitter(opts)
	if err != nil {
		return err
	}

	var srv *http.Server
	serveDone := make(chan struct{})
	if cfg.HTTPAddr != "" {
		srv = httpapi.NewServer(cfg.HTTPAddr, httpapi.NewMux(emitter, reg))
		go func() {
			slog.Info("http listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server failed", "error", err)
			}
			close(serveDone)
		}()
	}

	runErr := emitter.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("http shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown", "error", err)
		}
		<-serveDone
	}

	return runErr
}
