// Package worker provides the local HTTP service that presentation shells
// use to read and write zenplan data.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/thebtf/zenplan/internal/activity"
	"github.com/thebtf/zenplan/internal/catalog"
	"github.com/thebtf/zenplan/internal/config"
	"github.com/thebtf/zenplan/internal/storage"
	"github.com/thebtf/zenplan/internal/watcher"
	"github.com/thebtf/zenplan/internal/worker/sse"
	"github.com/thebtf/zenplan/pkg/models"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// echoWindow is how long a watcher report about a file the worker itself
// just wrote is treated as that write's echo.
const echoWindow = time.Second

// Service is the zenplan worker.
type Service struct {
	version        string
	config         *config.Config
	gateway        *storage.Gateway
	aggregator     *activity.Aggregator
	catalog        *catalog.Catalog
	sseBroadcaster *sse.Broadcaster
	metrics        *Metrics
	router         chi.Router
	server         *http.Server
	watcher        *watcher.Watcher
	scans          singleflight.Group
	writes         *writeLog
	ctx            context.Context
	cancel         context.CancelFunc
	startTime      time.Time
	now            func() time.Time
	ready          atomic.Bool
	watching       atomic.Bool
	mu             sync.Mutex
}

// NewService creates the worker around cfg.DataDir. The data directory is
// created here so a broken location fails fast instead of on the first save.
func NewService(cfg *config.Config, version string) (*Service, error) {
	gateway := storage.NewGateway(cfg.DataDir)
	dir, err := gateway.ResolveDataDirectory()
	if err != nil {
		return nil, err
	}

	subjects, err := catalog.Load(config.CatalogPath())
	if err != nil {
		log.Warn().Err(err).Str("path", config.CatalogPath()).Msg("Failed to load subject catalog, using defaults")
		subjects = catalog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	svc := &Service{
		version:        version,
		config:         cfg,
		gateway:        gateway,
		aggregator:     activity.NewAggregator(dir),
		catalog:        subjects,
		sseBroadcaster: sse.NewBroadcaster(),
		metrics:        NewMetrics(),
		router:         chi.NewRouter(),
		writes:         newWriteLog(),
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		now:            time.Now,
	}
	svc.setupRoutes()
	return svc, nil
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Service) Handler() http.Handler {
	return s.router
}

// Start begins listening on 127.0.0.1:<WorkerPort> and watching the data directory.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return nil
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.config.WorkerPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s.startWatcher()

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Worker server stopped")
		}
	}()

	s.ready.Store(true)
	log.Info().
		Str("addr", addr).
		Str("dataDir", s.gateway.Dir()).
		Str("version", s.version).
		Msg("Worker started")
	return nil
}

// startWatcher turns external edits of the data directory into SSE events.
// Failure only disables live updates.
func (s *Service) startWatcher() {
	w, err := watcher.New(s.gateway.Dir(), s.onFileChange)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create data directory watcher")
		return
	}
	if err := w.Start(); err != nil {
		log.Warn().Err(err).Str("path", s.gateway.Dir()).Msg("Failed to start data directory watcher")
		return
	}
	s.watcher = w
	s.watching.Store(true)
	log.Info().Str("path", s.gateway.Dir()).Msg("Data directory watcher started")
}

// onFileChange publishes an edit made outside the worker. Reports that echo
// one of the worker's own saves are skipped, the save already announced itself.
func (s *Service) onFileChange(date string, kind watcher.Kind) {
	if s.writes.echo(date, kind, time.Now()) {
		log.Debug().Str("date", date).Str("kind", string(kind)).Msg("Skipping watcher echo of own write")
		return
	}
	switch kind {
	case watcher.KindNote:
		s.sseBroadcaster.Publish(sse.NewEvent(sse.EventNoteChanged, date))
	case watcher.KindRecords:
		s.sseBroadcaster.Publish(sse.NewEvent(sse.EventActivityChanged, date))
	}
}

// Shutdown stops the watcher and the HTTP server.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ready.Store(false)
	s.cancel()

	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			log.Warn().Err(err).Msg("Failed to stop watcher")
		}
		s.watcher = nil
		s.watching.Store(false)
	}
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.server = nil
	return err
}

// Run starts the worker and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()

	log.Info().Msg("Shutting down worker")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// activityLog runs one scan, shared by every request that arrives while it is in flight.
func (s *Service) activityLog() ([]models.ActivityPoint, error) {
	v, err, _ := s.scans.Do("activity", func() (interface{}, error) {
		start := time.Now()
		points, err := s.aggregator.ActivityLog(s.ctx)
		s.metrics.RecordScan(s.ctx, time.Since(start), err)
		return points, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.ActivityPoint), nil
}

// writeLog remembers when the worker last wrote each file.
type writeLog struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func newWriteLog() *writeLog {
	return &writeLog{seen: make(map[string]time.Time)}
}

func writeKey(date string, kind watcher.Kind) string {
	return string(kind) + ":" + date
}

// mark records a write made at t and forgets entries older than echoWindow.
func (l *writeLog) mark(date string, kind watcher.Kind, t time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, at := range l.seen {
		if t.Sub(at) > echoWindow {
			delete(l.seen, key)
		}
	}
	l.seen[writeKey(date, kind)] = t
}

// echo reports whether a change seen at t follows a worker write closely
// enough to be that write.
func (l *writeLog) echo(date string, kind watcher.Kind, t time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	at, ok := l.seen[writeKey(date, kind)]
	return ok && t.Sub(at) <= echoWindow
}
