package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := newMetrics(noop.NewMeterProvider().Meter("test"))
	ctx := context.Background()

	m.RecordRequest(ctx, "/api/health", 200)
	m.RecordRequest(ctx, "/api/notes/{date}", 400)
	m.RecordNoteSave(ctx)
	m.RecordRecordsSave(ctx)
	m.RecordRecordsSave(ctx)
	m.RecordScan(ctx, 1500*time.Microsecond, nil)
	m.RecordScan(ctx, 2*time.Millisecond, errors.New("boom"))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests)
	assert.Equal(t, int64(1), snap.NotesSaved)
	assert.Equal(t, int64(2), snap.RecordsSaved)
	assert.Equal(t, int64(2), snap.Scans)
	assert.Equal(t, int64(1), snap.ScanErrors)
	assert.InDelta(t, 2.0, snap.LastScanMillis, 0.001)
	assert.NotEmpty(t, snap.Uptime)
}

func TestNewMetrics_GlobalProvider(t *testing.T) {
	m := NewMetrics()
	assert.NotPanics(t, func() {
		m.RecordRequest(context.Background(), "/api/stats", 200)
	})
	assert.Equal(t, int64(1), m.Snapshot().Requests)
}
