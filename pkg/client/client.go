// Package client talks to a running zenplan worker.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/thebtf/zenplan/internal/catalog"
	"github.com/thebtf/zenplan/internal/config"
	"github.com/thebtf/zenplan/pkg/models"
)

// DefaultTimeout bounds a single request to the worker.
const DefaultTimeout = 5 * time.Second

// APIError is a non-2xx reply from the worker.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("worker returned %d: %s", e.Status, e.Message)
}

// Health is the worker's /api/health reply.
type Health struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	DataDir string `json:"dataDir"`
}

// Stats is the worker's /api/stats reply.
type Stats struct {
	Uptime         string  `json:"uptime"`
	Requests       int64   `json:"requests"`
	NotesSaved     int64   `json:"notesSaved"`
	RecordsSaved   int64   `json:"recordsSaved"`
	Scans          int64   `json:"scans"`
	ScanErrors     int64   `json:"scanErrors"`
	LastScanMillis float64 `json:"lastScanMillis"`
	Version        string  `json:"version"`
	DataDir        string  `json:"dataDir"`
	SSEClients     int     `json:"sseClients"`
	Watching       bool    `json:"watching"`
}

// Streak is the worker's /api/streak reply.
type Streak struct {
	Today  string `json:"today"`
	Streak int    `json:"streak"`
}

// Client is an HTTP client for the worker API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the worker on 127.0.0.1:port.
func New(port int) *Client {
	return NewWithURL("http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
}

// NewWithURL returns a client for the worker at baseURL.
func NewWithURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// GetWorkerPort returns the configured worker port.
func GetWorkerPort() int {
	return config.GetWorkerPort()
}

// IsWorkerRunning checks if a worker answers health checks on port.
func IsWorkerRunning(port int) bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	h, err := New(port).Health(ctx)
	return err == nil && h.Ready
}

// Health fetches /api/health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Version returns the running worker's version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v struct {
		Version string `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &v); err != nil {
		return "", err
	}
	return v.Version, nil
}

// Stats fetches /api/stats.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Note returns the note for date.
func (c *Client) Note(ctx context.Context, date string) (string, error) {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(date), nil, &body); err != nil {
		return "", err
	}
	return body.Content, nil
}

// SaveNote replaces the note for date.
func (c *Client) SaveNote(ctx context.Context, date, content string) error {
	return c.do(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(date), map[string]string{"content": content}, nil)
}

// Records returns the records for date.
func (c *Client) Records(ctx context.Context, date string) ([]models.TaskRecord, error) {
	var records []models.TaskRecord
	if err := c.do(ctx, http.MethodGet, recordsPath(date), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveRecords replaces all records of date.
func (c *Client) SaveRecords(ctx context.Context, date string, records []models.TaskRecord) ([]models.TaskRecord, error) {
	if records == nil {
		records = []models.TaskRecord{}
	}
	var saved []models.TaskRecord
	if err := c.do(ctx, http.MethodPut, recordsPath(date), records, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// AppendRecord adds one record to date and returns it with its id.
func (c *Client) AppendRecord(ctx context.Context, date string, record models.TaskRecord) (models.TaskRecord, error) {
	var saved models.TaskRecord
	err := c.do(ctx, http.MethodPost, recordsPath(date), record, &saved)
	return saved, err
}

// RemoveRecord deletes the record with id from date.
func (c *Client) RemoveRecord(ctx context.Context, date, id string) error {
	return c.do(ctx, http.MethodDelete, recordsPath(date)+"/"+url.PathEscape(id), nil, nil)
}

// Days lists the dates that have a record file, sorted.
func (c *Client) Days(ctx context.Context) ([]string, error) {
	var dates []string
	if err := c.do(ctx, http.MethodGet, "/api/days", nil, &dates); err != nil {
		return nil, err
	}
	return dates, nil
}

// DayStats returns totals and breakdowns for date.
func (c *Client) DayStats(ctx context.Context, date string) (*models.DayReport, error) {
	var report models.DayReport
	if err := c.do(ctx, http.MethodGet, "/api/days/"+url.PathEscape(date)+"/stats", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Activity returns the activity log, optionally sorted by date.
func (c *Client) Activity(ctx context.Context, sorted bool) ([]models.ActivityPoint, error) {
	path := "/api/activity"
	if sorted {
		path += "?sorted=true"
	}
	var points []models.ActivityPoint
	if err := c.do(ctx, http.MethodGet, path, nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Heatmap returns the heatmap grid. weeks <= 0 uses the worker default.
func (c *Client) Heatmap(ctx context.Context, weeks int) (*models.Heatmap, error) {
	path := "/api/heatmap"
	if weeks > 0 {
		path += "?weeks=" + strconv.Itoa(weeks)
	}
	var hm models.Heatmap
	if err := c.do(ctx, http.MethodGet, path, nil, &hm); err != nil {
		return nil, err
	}
	return &hm, nil
}

// Streak returns the current run of active days.
func (c *Client) Streak(ctx context.Context) (*Streak, error) {
	var st Streak
	if err := c.do(ctx, http.MethodGet, "/api/streak", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Subjects returns the worker's subject catalog.
func (c *Client) Subjects(ctx context.Context) ([]catalog.Subject, error) {
	var subjects []catalog.Subject
	if err := c.do(ctx, http.MethodGet, "/api/subjects", nil, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

func recordsPath(date string) string {
	return "/api/records/" + url.PathEscape(date)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
