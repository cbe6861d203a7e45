// Package app wires the workspace engine, its backend client and the
// observers into a runnable service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apiworkspace "github.com/pcouderc/worksched/api/workspace"
	"github.com/pcouderc/worksched/config"
	coremetrics "github.com/pcouderc/worksched/core/metrics"
	coremon "github.com/pcouderc/worksched/core/monitoring"
	"github.com/pcouderc/worksched/core/workspace"
	"github.com/pcouderc/worksched/infra/logger"
	"github.com/pcouderc/worksched/infra/metrics"
	"github.com/pcouderc/worksched/infra/monitoring"
	"github.com/pcouderc/worksched/infra/notify"
	"github.com/pcouderc/worksched/infra/rest"
	"github.com/pcouderc/worksched/internal/eventbus"
)

// Service orchestrates the workspace and its observers.
type Service struct {
	Workspace *workspace.Workspace

	cfg      *config.Config
	bus      *eventbus.Bus
	notifier *notify.Notifier
	monitor  coremon.Monitor
	sink     coremetrics.Sink
	server   *http.Server
	log      logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.SetGlobalLevel(cfg.Logging.Level)
	logg := logger.New("service")

	monitor, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	client, err := rest.NewClient(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	bus := eventbus.New()
	ws, err := workspace.New(cfg.Scope, client, cfg.Workspace, logger.New("workspace"), sink, bus)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}

	notifier, err := notify.NewNotifier(cfg.Notify, bus)
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}

	svc := &Service{
		Workspace: ws,
		cfg:       cfg,
		bus:       bus,
		notifier:  notifier,
		monitor:   monitor,
		sink:      sink,
		log:       logg,
	}
	svc.server = &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           apiworkspace.NewHandler(ws),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return svc, nil
}

// Run loads the initial baseline, starts the HTTP servers and the
// periodic capacity export, then blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Workspace.Refresh(ctx); err != nil {
		s.monitor.CaptureException(err, map[string]string{"stage": "initial_refresh"})
		return fmt.Errorf("initial refresh: %w", err)
	}
	if err := s.Workspace.RefreshConflicts(ctx); err != nil {
		s.log.Warnf("conflict refresh: %v", err)
	}

	go func() {
		s.log.Infof("dashboard api listening on %s", s.cfg.API.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.monitor.CaptureException(err, map[string]string{"stage": "api_server"})
			s.log.Errorf("api server: %v", err)
		}
	}()
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go s.exportCapacity(ctx)

	<-ctx.Done()

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutCtx)
}

// exportCapacity snapshots the capacity report on a timer and feeds it to
// the metrics sinks.
func (s *Service) exportCapacity(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Export.IntervalDuration())
	defer ticker.Stop()
	scope := s.Workspace.Scope().String()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report := s.Workspace.CapacityReport()
			points := make([]coremetrics.CapacityPoint, 0, len(report.Series))
			for _, sample := range report.Series {
				points = append(points, coremetrics.CapacityPoint{
					Scope: scope,
					Date:  sample.Date,
					Hours: sample.Hours,
					Band:  string(sample.Band),
				})
			}
			if err := s.sink.RecordCapacity(points); err != nil {
				s.log.Warnf("capacity export: %v", err)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Workspace.CancelRefresh()
	s.notifier.Close()
	s.bus.Close()
	s.monitor.Flush()
	return nil
}
