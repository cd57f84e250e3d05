package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kilianp07/productionplan/api"
	"github.com/kilianp07/productionplan/config"
	"github.com/kilianp07/productionplan/core/dispatch"
	coremetrics "github.com/kilianp07/productionplan/core/metrics"
	coremon "github.com/kilianp07/productionplan/core/monitoring"
	"github.com/kilianp07/productionplan/infra/logger"
	"github.com/kilianp07/productionplan/infra/metrics"
	"github.com/kilianp07/productionplan/infra/monitoring"
	"github.com/kilianp07/productionplan/infra/mqtt"
)

// Service wires the planner behind the HTTP API.
type Service struct {
	Planner *dispatch.Planner

	server          *http.Server
	client          *mqtt.PahoClient
	sink            coremetrics.MetricsSink
	log             logger.Logger
	metricsAddr     string
	shutdownTimeout time.Duration
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	opts := []dispatch.Option{
		dispatch.WithLogger(logger.New("planner")),
		dispatch.WithMetrics(sink),
	}
	var client *mqtt.PahoClient
	if cfg.MQTT.Enabled() {
		client, err = mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		opts = append(opts,
			dispatch.WithPublisher(client),
			dispatch.WithPublishTimeout(time.Duration(cfg.MQTT.PublishTimeoutMS)*time.Millisecond),
		)
	}
	planner := dispatch.NewPlanner(opts...)

	handler := api.NewRouter(api.RouterConfig{
		Planner:     planner,
		Logger:      logger.New("http"),
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	return &Service{
		Planner:         planner,
		server:          srv,
		client:          client,
		sink:            sink,
		log:             logg,
		metricsAddr:     cfg.Metrics.ListenAddr,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}, nil
}

// Handler returns the HTTP routes of the service.
func (s *Service) Handler() http.Handler { return s.server.Handler }

// Run serves the HTTP API and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	if s.metricsAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.metricsAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("production plan API listening on %s", ln.Addr())
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.log.Infof("shutting down HTTP server")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.client != nil {
		s.client.Disconnect()
	}
	closeSink(s.sink)
	coremon.Flush(2 * time.Second)
	return nil
}

func closeSink(sink coremetrics.MetricsSink) {
	switch v := sink.(type) {
	case *coremetrics.MultiSink:
		for _, s := range v.Sinks {
			closeSink(s)
		}
	case interface{ Close() }:
		v.Close()
	}
}
