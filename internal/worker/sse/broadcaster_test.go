package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// BroadcasterSuite is a test suite for Broadcaster operations.
type BroadcasterSuite struct {
	suite.Suite
	broadcaster *Broadcaster
}

func (s *BroadcasterSuite) SetupTest() {
	s.broadcaster = NewBroadcaster()
}

func TestBroadcasterSuite(t *testing.T) {
	suite.Run(t, new(BroadcasterSuite))
}

// mockResponseWriter implements http.ResponseWriter and http.Flusher for testing.
// Writes after finish() are counted as late.
type mockResponseWriter struct {
	header   http.Header
	body     []byte
	mu       sync.Mutex
	finished atomic.Bool
	late     atomic.Int32
}

func newMockResponseWriter() *mockResponseWriter {
	return &mockResponseWriter{header: make(http.Header)}
}

func (m *mockResponseWriter) Header() http.Header {
	return m.header
}

func (m *mockResponseWriter) Write(data []byte) (int, error) {
	if m.finished.Load() {
		m.late.Add(1)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.body = append(m.body, data...)
	return len(data), nil
}

func (m *mockResponseWriter) WriteHeader(int) {}

func (m *mockResponseWriter) Flush() {
	if m.finished.Load() {
		m.late.Add(1)
	}
}

func (m *mockResponseWriter) finish() {
	m.finished.Store(true)
}

func (m *mockResponseWriter) GetBody() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.body)
}

// nonFlusher is a ResponseWriter without streaming support.
type nonFlusher struct {
	http.ResponseWriter
}

func (s *BroadcasterSuite) TestAddAndRemoveClient() {
	client := s.broadcaster.AddClient()
	s.NotEmpty(client.ID)
	s.Equal(1, s.broadcaster.ClientCount())

	s.broadcaster.RemoveClient(client)
	s.Equal(0, s.broadcaster.ClientCount())

	select {
	case <-client.Done:
	default:
		s.Fail("Done channel should be closed")
	}

	// Second removal is harmless.
	s.broadcaster.RemoveClient(client)
}

func (s *BroadcasterSuite) TestPublish() {
	client := s.broadcaster.AddClient()

	s.broadcaster.Publish(Event{Type: EventRecordsSaved, Date: "2025-10-19", At: 42})

	message := string(<-client.Events())
	s.True(strings.HasPrefix(message, "event: records_saved\n"), message)

	line := strings.TrimSpace(strings.SplitN(message, "data: ", 2)[1])
	var ev Event
	s.Require().NoError(json.Unmarshal([]byte(line), &ev))
	s.Equal(Event{Type: EventRecordsSaved, Date: "2025-10-19", At: 42}, ev)
}

func (s *BroadcasterSuite) TestPublishNoClients() {
	s.broadcaster.Publish(NewEvent(EventNoteSaved, "2025-10-19"))
}

func (s *BroadcasterSuite) TestPublishMultipleClients() {
	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = s.broadcaster.AddClient()
	}

	s.broadcaster.Publish(NewEvent(EventActivityChanged, "2025-10-19"))

	for i, c := range clients {
		s.Require().Len(c.Events(), 1, "client %d", i)
		s.Contains(string(<-c.Events()), "activity_changed", "client %d", i)
	}
}

func (s *BroadcasterSuite) TestPublishDropsSlowClient() {
	fast := s.broadcaster.AddClient()
	slow := s.broadcaster.AddClient()

	for i := 0; i <= ClientBuffer; i++ {
		s.broadcaster.Publish(NewEvent(EventNoteSaved, "2025-10-19"))
		<-fast.Events()
	}

	s.Equal(1, s.broadcaster.ClientCount())
	select {
	case <-slow.Done:
	default:
		s.Fail("slow client should be closed")
	}
	select {
	case <-fast.Done:
		s.Fail("draining client should stay connected")
	default:
	}
}

func (s *BroadcasterSuite) TestPublishDoesNotBlock() {
	s.broadcaster.AddClient()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10*ClientBuffer; i++ {
			s.broadcaster.Publish(NewEvent(EventRecordsSaved, "2025-10-19"))
		}
	}()

	select {
	case <-done:
	case <-time.After(WriteTimeout):
		s.Fail("Publish blocked on a client nobody reads")
	}
}

func TestNewEvent(t *testing.T) {
	before := time.Now().UnixMilli()
	ev := NewEvent(EventNoteSaved, "19.10.2025")
	assert.Equal(t, EventNoteSaved, ev.Type)
	assert.Equal(t, "19.10.2025", ev.Date)
	assert.GreaterOrEqual(t, ev.At, before)
}

func TestClientUniqueIDs(t *testing.T) {
	b := NewBroadcaster()
	ids := make(map[string]bool)

	for i := 0; i < 100; i++ {
		client := b.AddClient()
		assert.False(t, ids[client.ID], "ID %s should be unique", client.ID)
		ids[client.ID] = true
	}
}

func TestHandleSSE(t *testing.T) {
	b := NewBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := newMockResponseWriter()

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.HandleSSE(w, req)
	}()

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	b.Publish(NewEvent(EventRecordsSaved, "2025-10-19"))
	require.Eventually(t, func() bool {
		return strings.Contains(w.GetBody(), "event: records_saved")
	}, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("HandleSSE did not return after cancel")
	}

	assert.Equal(t, 0, b.ClientCount())
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.HasPrefix(w.GetBody(), "event: connected\n"), w.GetBody())
}

func TestHandleSSE_NoFlusher(t *testing.T) {
	b := NewBroadcaster()
	rec := httptest.NewRecorder()

	b.HandleSSE(nonFlusher{rec}, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, b.ClientCount())
}

// TestHandleSSE_NoWriteAfterReturn disconnects streams while events keep
// arriving and checks nothing touches a writer once its handler is gone.
func TestHandleSSE_NoWriteAfterReturn(t *testing.T) {
	b := NewBroadcaster()

	stop := make(chan struct{})
	var publishers sync.WaitGroup
	publishers.Add(1)
	go func() {
		defer publishers.Done()
		for {
			select {
			case <-stop:
				return
			default:
				b.Publish(NewEvent(EventRecordsSaved, "2025-10-19"))
			}
		}
	}()

	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
		w := newMockResponseWriter()

		done := make(chan struct{})
		go func() {
			defer close(done)
			b.HandleSSE(w, req)
			w.finish()
		}()

		require.Eventually(t, func() bool { return w.GetBody() != "" }, time.Second, time.Millisecond)
		cancel()
		<-done

		// Give any stray writer a chance to show up.
		time.Sleep(time.Millisecond)
		require.Zero(t, w.late.Load(), "round %d: write after HandleSSE returned", i)
	}

	close(stop)
	publishers.Wait()
	assert.Equal(t, 0, b.ClientCount())
}

// TestHandleSSE_DisconnectOverHTTP runs the same race against a real server,
// where a late write would dereference a released connection buffer.
func TestHandleSSE_DisconnectOverHTTP(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(http.HandlerFunc(b.HandleSSE))
	defer srv.Close()

	stop := make(chan struct{})
	var publishers sync.WaitGroup
	publishers.Add(1)
	go func() {
		defer publishers.Done()
		for {
			select {
			case <-stop:
				return
			default:
				b.Publish(NewEvent(EventNoteSaved, "2025-10-19"))
			}
		}
	}()

	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		cancel()
		resp.Body.Close()
	}

	close(stop)
	publishers.Wait()
	require.Eventually(t, func() bool { return b.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestConcurrentPublish(t *testing.T) {
	b := NewBroadcaster()
	clients := make([]*Client, 10)
	for i := range clients {
		clients[i] = b.AddClient()
	}

	var wg sync.WaitGroup
	for i := 0; i < ClientBuffer; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Publish(NewEvent(EventActivityChanged, "2025-10-19"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, b.ClientCount())
	for _, c := range clients {
		assert.Len(t, c.Events(), ClientBuffer)
	}
}
