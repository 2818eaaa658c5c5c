package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/thebtf/zenplan/internal/worker"

// Metrics counts worker activity. Counters are kept locally for /api/stats
// and mirrored to OpenTelemetry instruments for whatever provider is installed.
type Metrics struct {
	startTime    time.Time
	requests     atomic.Int64
	notesSaved   atomic.Int64
	recordsSaved atomic.Int64
	scans        atomic.Int64
	scanErrors   atomic.Int64
	lastScanUs   atomic.Int64

	requestCounter metric.Int64Counter
	saveCounter    metric.Int64Counter
	scanDuration   metric.Float64Histogram
}

// MetricsSnapshot is the JSON view of Metrics.
type MetricsSnapshot struct {
	Uptime         string  `json:"uptime"`
	Requests       int64   `json:"requests"`
	NotesSaved     int64   `json:"notesSaved"`
	RecordsSaved   int64   `json:"recordsSaved"`
	Scans          int64   `json:"scans"`
	ScanErrors     int64   `json:"scanErrors"`
	LastScanMillis float64 `json:"lastScanMillis"`
}

// NewMetrics creates metrics backed by the global meter provider.
func NewMetrics() *Metrics {
	return newMetrics(otel.Meter(meterName))
}

func newMetrics(meter metric.Meter) *Metrics {
	m := &Metrics{startTime: time.Now()}
	fallback := noop.NewMeterProvider().Meter(meterName)

	var err error
	if m.requestCounter, err = meter.Int64Counter("zenplan.worker.requests",
		metric.WithDescription("HTTP requests served")); err != nil {
		log.Warn().Err(err).Msg("Failed to create request counter")
		m.requestCounter, _ = fallback.Int64Counter("zenplan.worker.requests")
	}
	if m.saveCounter, err = meter.Int64Counter("zenplan.worker.saves",
		metric.WithDescription("Note and record writes")); err != nil {
		log.Warn().Err(err).Msg("Failed to create save counter")
		m.saveCounter, _ = fallback.Int64Counter("zenplan.worker.saves")
	}
	if m.scanDuration, err = meter.Float64Histogram("zenplan.worker.scan.duration",
		metric.WithDescription("Activity scan duration"), metric.WithUnit("ms")); err != nil {
		log.Warn().Err(err).Msg("Failed to create scan histogram")
		m.scanDuration, _ = fallback.Float64Histogram("zenplan.worker.scan.duration")
	}
	return m
}

// RecordRequest counts one served request.
func (m *Metrics) RecordRequest(ctx context.Context, route string, status int) {
	m.requests.Add(1)
	m.requestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}

// RecordNoteSave counts one note write.
func (m *Metrics) RecordNoteSave(ctx context.Context) {
	m.notesSaved.Add(1)
	m.saveCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "note")))
}

// RecordRecordsSave counts one record file write.
func (m *Metrics) RecordRecordsSave(ctx context.Context) {
	m.recordsSaved.Add(1)
	m.saveCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "records")))
}

// RecordScan records one activity scan.
func (m *Metrics) RecordScan(ctx context.Context, elapsed time.Duration, err error) {
	m.scans.Add(1)
	if err != nil {
		m.scanErrors.Add(1)
	}
	m.lastScanUs.Store(elapsed.Microseconds())
	m.scanDuration.Record(ctx, float64(elapsed.Microseconds())/1000)
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Uptime:         time.Since(m.startTime).Round(time.Second).String(),
		Requests:       m.requests.Load(),
		NotesSaved:     m.notesSaved.Load(),
		RecordsSaved:   m.recordsSaved.Load(),
		Scans:          m.scans.Load(),
		ScanErrors:     m.scanErrors.Load(),
		LastScanMillis: float64(m.lastScanUs.Load()) / 1000,
	}
}
