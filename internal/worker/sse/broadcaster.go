// Package sse streams zenplan change events to connected shells.
package sse

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// WriteTimeout bounds each write to one stream.
const WriteTimeout = 2 * time.Second

// ClientBuffer is how many events may queue for one client before it is dropped.
const ClientBuffer = 32

// Event types.
const (
	EventConnected       = "connected"
	EventNoteSaved       = "note_saved"
	EventRecordsSaved    = "records_saved"
	EventNoteChanged     = "note_changed"
	EventActivityChanged = "activity_changed"
)

// Event is one change notification.
type Event struct {
	Type string `json:"type"`
	Date string `json:"date,omitempty"`
	At   int64  `json:"at"` // unix millis
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType, date string) Event {
	return Event{Type: eventType, Date: date, At: time.Now().UnixMilli()}
}

// Client is one connected SSE stream. Only the goroutine serving the stream
// writes to the connection; Publish just queues.
type Client struct {
	ID     string
	Done   chan struct{}
	events chan []byte
	once   sync.Once
}

// Events returns the queue of encoded messages waiting for the stream.
func (c *Client) Events() <-chan []byte {
	return c.events
}

func (c *Client) close() {
	c.once.Do(func() { close(c.Done) })
}

// Broadcaster fans events out to every connected client.
type Broadcaster struct {
	clients map[string]*Client
	mu      sync.RWMutex
	nextID  int
}

// NewBroadcaster creates a new SSE broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]*Client),
	}
}

// AddClient registers a stream.
func (b *Broadcaster) AddClient() *Client {
	b.mu.Lock()
	b.nextID++
	client := &Client{
		ID:     fmt.Sprintf("client-%d", b.nextID),
		Done:   make(chan struct{}),
		events: make(chan []byte, ClientBuffer),
	}
	b.clients[client.ID] = client
	count := len(b.clients)
	b.mu.Unlock()

	log.Debug().Str("clientId", client.ID).Int("totalClients", count).Msg("SSE client connected")
	return client
}

// RemoveClient unregisters a stream and closes its Done channel.
func (b *Broadcaster) RemoveClient(client *Client) {
	b.mu.Lock()
	delete(b.clients, client.ID)
	count := len(b.clients)
	b.mu.Unlock()

	client.close()
	log.Debug().Str("clientId", client.ID).Int("totalClients", count).Msg("SSE client disconnected")
}

// Publish queues ev for all clients without blocking. A client whose queue
// is full is dropped.
func (b *Broadcaster) Publish(ev Event) {
	message, err := encode(ev.Type, ev)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	var slow []*Client
	b.mu.RLock()
	for _, c := range b.clients {
		select {
		case c.events <- message:
		default:
			slow = append(slow, c)
		}
	}
	b.mu.RUnlock()

	for _, c := range slow {
		log.Warn().Str("clientId", c.ID).Int("buffer", ClientBuffer).Msg("SSE client not keeping up, dropping")
		b.RemoveClient(c)
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// HandleSSE serves one event stream until the request context ends or the
// client is dropped.
func (b *Broadcaster) HandleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := b.AddClient()
	defer b.RemoveClient(client)

	rc := http.NewResponseController(w)
	hello, err := encode(EventConnected, map[string]string{"type": EventConnected, "clientId": client.ID})
	if err != nil {
		return
	}
	if err := send(rc, w, hello); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.Done:
			return
		case message := <-client.events:
			if err := send(rc, w, message); err != nil {
				log.Debug().Str("clientId", client.ID).Err(err).Msg("SSE write failed, dropping client")
				return
			}
		}
	}
}

// send writes and flushes one message under WriteTimeout. Writers without
// deadline support are written to without one.
func send(rc *http.ResponseController, w http.ResponseWriter, message []byte) error {
	_ = rc.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if _, err := w.Write(message); err != nil {
		return err
	}
	return rc.Flush()
}

func encode(eventType string, v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, data)), nil
}
