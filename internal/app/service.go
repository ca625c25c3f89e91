// Package service owns the application state behind the HTTP API: saved
// work, the test catalog, export jobs, user settings and the live
// workspace chart.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/lingprofile/internal/adapters/mq/queue"
	"github.com/okian/lingprofile/internal/adapters/mq/worker"
	"github.com/okian/lingprofile/internal/adapters/repository"
	"github.com/okian/lingprofile/internal/domain/catalog"
	"github.com/okian/lingprofile/internal/domain/dedupe"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/radar"
	"github.com/okian/lingprofile/internal/settings"
	"github.com/okian/lingprofile/pkg/logger"
	"github.com/okian/lingprofile/pkg/metrics"
)

// ErrNotStarted is returned by operations that need Start to have run.
var ErrNotStarted = errors.New("service not started")

// Service implements the dependencies required by the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	registry *catalog.Registry
	deduper  dedupe.Deduper
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	watcher  *settings.Watcher

	// Live workspace: one case and its animated chart.
	wsMu      sync.Mutex
	workspace *model.Case
	wsDirty   bool // workspace edits not yet stored
	chart     *radar.Chart
	scheduler radar.Scheduler
	ticker    *radar.TickerScheduler

	jobsMu sync.Mutex
	jobs   map[string]model.ExportStatus

	// Configuration
	storeDriver   string
	storeDSN      string
	ownStore      bool
	exportDir     string
	queueSize     int
	workerCount   int
	dedupeSize    int
	settingsPath  string
	chartWidth    float64
	chartDPR      float64
	chartZoom     float64
	animation     time.Duration
	frameInterval time.Duration
	now           func() time.Time

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore uses an already opened store. The service does not close it.
func WithStore(s repository.Store) Option {
	return func(svc *Service) {
		if s != nil {
			svc.store = s
		}
	}
}

// WithStoreDriver selects the store opened by Start.
func WithStoreDriver(driver, dsn string) Option {
	return func(s *Service) {
		s.storeDriver = driver
		s.storeDSN = dsn
	}
}

// WithExportDir sets where export jobs write their files.
func WithExportDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.exportDir = dir
		}
	}
}

// WithQueueSize bounds the export queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of export workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDedupeSize bounds the number of remembered export job ids.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSettingsPath sets the watched settings file. Empty disables watching.
func WithSettingsPath(path string) Option {
	return func(s *Service) {
		s.settingsPath = path
	}
}

// WithChart configures the workspace chart and PNG exports.
func WithChart(width, dpr, zoom float64, animation time.Duration) Option {
	return func(s *Service) {
		if width > 0 {
			s.chartWidth = width
		}
		if dpr > 0 {
			s.chartDPR = dpr
		}
		if zoom > 0 {
			s.chartZoom = zoom
		}
		if animation >= 0 {
			s.animation = animation
		}
	}
}

// WithFrameInterval sets the tick of the workspace chart's scheduler.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.frameInterval = d
		}
	}
}

// WithScheduler drives the workspace chart with sched instead of a ticker.
func WithScheduler(sched radar.Scheduler) Option {
	return func(s *Service) {
		s.scheduler = sched
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeDriver:   repository.DriverMemory,
		exportDir:     "exports",
		queueSize:     256,
		workerCount:   runtime.NumCPU(),
		dedupeSize:    50_000,
		chartWidth:    radar.DefaultContainerWidth,
		chartDPR:      1,
		chartZoom:     1,
		animation:     radar.DefaultAnimationDuration,
		frameInterval: radar.DefaultFrameInterval,
		now:           time.Now,
		jobs:          make(map[string]model.ExportStatus),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store, loads custom tests, starts export workers and the
// settings watcher, and creates the workspace chart.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting lingprofile service...")

	if s.store == nil {
		st, err := repository.Open(ctx, s.storeDriver, s.storeDSN, repository.WithLogger(s.logger.Named("store")))
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = st
		s.ownStore = true
	}

	custom, err := s.store.ListCustomTests(ctx)
	if err != nil {
		s.closeStoreLocked()
		return fmt.Errorf("load custom tests: %w", err)
	}
	s.registry = catalog.NewRegistry(custom...)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.store,
		worker.WithExportDir(s.exportDir),
		worker.WithChartOptions(s.chartOptions()...),
		worker.WithClock(s.now),
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithResultFunc(s.recordResult),
	)
	s.pool.Start(runCtx)

	prefs := settings.Default()
	if s.settingsPath != "" {
		s.watcher = settings.NewWatcher(s.settingsPath, s.applySettings, settings.WithLogger(s.logger.Named("settings")))
		prefs = s.watcher.Current()
	}

	if s.scheduler == nil {
		s.ticker = radar.NewTickerScheduler(runCtx, s.frameInterval)
		s.scheduler = s.ticker
	}
	chart := radar.New(append(s.chartOptions(),
		radar.WithScheduler(s.scheduler),
		radar.WithAnimationDuration(s.animation),
		radar.WithDarkMode(prefs.Dark()),
		radar.WithLogger(s.logger.Named("chart")),
	)...)
	s.wsMu.Lock()
	s.chart = chart
	s.wsMu.Unlock()

	if s.watcher != nil {
		if err := s.watcher.Start(runCtx); err != nil {
			s.logger.Warn(ctx, "settings watch disabled", logger.Error(err))
			s.watcher = nil
		}
	}

	s.started = true
	s.logger.Info(ctx, "lingprofile service started",
		logger.String("store", s.storeDriver),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.String("exportDir", s.exportDir),
	)
	return nil
}

func (s *Service) chartOptions() []radar.Option {
	return []radar.Option{
		radar.WithContainerWidth(s.chartWidth),
		radar.WithDevicePixelRatio(s.chartDPR),
		radar.WithZoom(s.chartZoom),
	}
}

// Stop drains queued exports and releases every resource Start acquired.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping lingprofile service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "export workers did not drain", logger.Error(err))
		}
	}
	if s.watcher != nil {
		_ = s.watcher.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
		s.scheduler = nil
		s.ticker = nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.closeStoreLocked()

	s.wsMu.Lock()
	s.workspace, s.wsDirty = nil, false
	s.wsMu.Unlock()

	s.started = false
	s.logger.Info(ctx, "lingprofile service stopped")
}

func (s *Service) closeStoreLocked() {
	if s.ownStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(context.Background(), "close store", logger.Error(err))
		}
		s.store = nil
		s.ownStore = false
	}
}

// running returns the store when the service is started.
func (s *Service) running() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Settings returns the current user preferences.
func (s *Service) Settings() settings.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.watcher == nil {
		return settings.Default()
	}
	return s.watcher.Current()
}

// applySettings forwards a changed theme to the workspace chart. It runs on
// the watcher goroutine and must not take s.mu, which Stop holds while
// waiting for the watcher.
func (s *Service) applySettings(p settings.Settings) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	if s.chart != nil {
		s.chart.SetDarkMode(p.Dark())
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"storeDriver": s.storeDriver,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	if n, err := s.store.CountCases(context.Background()); err == nil {
		stats["cases"] = n
		metrics.UpdateCasesStored(n)
	}
	stats["queueLength"] = s.queue.Len()
	stats["exportsProcessed"] = s.pool.Processed()
	stats["exportsFailed"] = s.pool.Failed()
	stats["jobsRemembered"] = s.deduper.Size()
	stats["customTests"] = len(s.registry.All()) - len(catalog.System())

	s.wsMu.Lock()
	stats["chartAnimating"] = s.chart.Animating()
	if s.workspace != nil {
		stats["workspaceCase"] = s.workspace.ID
		stats["workspaceUnsaved"] = s.wsDirty
	}
	s.wsMu.Unlock()

	metrics.UpdateQueueSize(s.queue.Len())
	return stats
}
