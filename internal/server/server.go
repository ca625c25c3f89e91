// Package server wires configuration, the application service and the HTTP
// adapters into a runnable process.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/lingprofile/internal/adapters/http/api"
	"github.com/okian/lingprofile/internal/adapters/http/site"
	"github.com/okian/lingprofile/internal/adapters/http/swagger"
	service "github.com/okian/lingprofile/internal/app"
	"github.com/okian/lingprofile/internal/config"
	"github.com/okian/lingprofile/internal/radar"
	"github.com/okian/lingprofile/pkg/logger"
	"github.com/okian/lingprofile/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

// ErrServe wraps listener failures returned by Run.
var ErrServe = errors.New("http server failed")

// Server is the assembled process: one service behind one HTTP listener.
type Server struct {
	cfg  *config.Config
	svc  *service.Service
	http *http.Server
	log  logger.Logger
}

// Option customizes a Server.
type Option func(*options)

type options struct {
	log     logger.Logger
	service []service.Option
}

// WithLogger sets the process logger; by default the global logger is used.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithServiceOptions appends options applied after the ones derived from the
// configuration.
func WithServiceOptions(opts ...service.Option) Option {
	return func(o *options) { o.service = append(o.service, opts...) }
}

// InitLogging initializes the global logger from cfg: stdout plus an
// optional rotating file, at the configured level.
func InitLogging(cfg *config.Config) error {
	err := logger.Init(logger.WithFile(logger.FileOutput{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   true,
	}))
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(context.Background(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// ServiceOptions maps cfg onto service options.
func ServiceOptions(cfg *config.Config) []service.Option {
	return []service.Option{
		service.WithStoreDriver(cfg.StoreDriver, cfg.StoreDSN),
		service.WithExportDir(cfg.ExportDir),
		service.WithQueueSize(cfg.ExportQueueSize),
		service.WithWorkerCount(cfg.ExportWorkers),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithSettingsPath(cfg.SettingsPath),
		service.WithChart(float64(cfg.ChartWidth), cfg.ChartDPR, cfg.ChartZoom, cfg.ChartAnimation()),
		service.WithFrameInterval(cfg.FrameInterval()),
	}
}

// New assembles a Server from cfg. Nothing is started until Run.
func New(cfg *config.Config, opts ...Option) *Server {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get()
	}

	svcOpts := append(ServiceOptions(cfg), service.WithLogger(o.log.Named("service")))
	svcOpts = append(svcOpts, o.service...)
	svc := service.New(svcOpts...)

	s := &Server{cfg: cfg, svc: svc, log: o.log}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(context.Background()),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func (s *Server) routes(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	api.NewServer(s.svc, api.WithChartOptions(
		radar.WithContainerWidth(float64(s.cfg.ChartWidth)),
		radar.WithDevicePixelRatio(s.cfg.ChartDPR),
		radar.WithZoom(s.cfg.ChartZoom),
	)).Register(ctx, mux)
	return mux
}

// Handler returns the HTTP handler with every route registered.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Service returns the application service.
func (s *Server) Service() *service.Service { return s.svc }

// Start starts the service without opening the listener.
func (s *Server) Start(ctx context.Context) error {
	if err := s.svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	return nil
}

// Run starts the service, serves HTTP until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.svc.Stop()

	go s.updateSystemMetrics(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "starting HTTP server", logger.String("addr", s.cfg.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%w: %w", ErrServe, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	s.log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	s.log.Info(ctx, "server stopped")
	return nil
}

func (s *Server) updateSystemMetrics(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateSystemMetrics()
			s.svc.GetStats()
		}
	}
}
