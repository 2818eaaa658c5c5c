package worker

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/zenplan/internal/activity"
	"github.com/thebtf/zenplan/internal/catalog"
	"github.com/thebtf/zenplan/internal/config"
	"github.com/thebtf/zenplan/internal/watcher"
	"github.com/thebtf/zenplan/internal/worker/sse"
	"github.com/thebtf/zenplan/pkg/models"
)

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	DataDir string `json:"dataDir"`
}

// NoteBody is the request and response body of the note endpoints.
type NoteBody struct {
	Date    string `json:"date,omitempty"`
	Content string `json:"content"`
}

// StatsResponse is returned by /api/stats.
type StatsResponse struct {
	MetricsSnapshot
	Version    string `json:"version"`
	DataDir    string `json:"dataDir"`
	SSEClients int    `json:"sseClients"`
	Watching   bool   `json:"watching"`
}

// StreakResponse is returned by /api/streak.
type StreakResponse struct {
	Today  string `json:"today"`
	Streak int    `json:"streak"`
}

func (s *Service) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestLogger)

	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/version", s.handleVersion)

	s.router.Route("/api/notes", func(r chi.Router) {
		r.Get("/{date}", s.handleGetNote)
		r.With(requireJSON).Put("/{date}", s.handleSaveNote)
	})

	s.router.Route("/api/records", func(r chi.Router) {
		r.Get("/{date}", s.handleGetRecords)
		r.With(requireJSON).Put("/{date}", s.handleSaveRecords)
		r.With(requireJSON).Post("/{date}", s.handleAppendRecord)
		r.Delete("/{date}/{id}", s.handleRemoveRecord)
	})

	s.router.Get("/api/days", s.handleListDays)
	s.router.Get("/api/days/{date}/stats", s.handleDayStats)
	s.router.Get("/api/activity", s.handleActivity)
	s.router.Get("/api/heatmap", s.handleHeatmap)
	s.router.Get("/api/streak", s.handleStreak)
	s.router.Get("/api/subjects", s.handleSubjects)
	s.router.Get("/api/stats", s.handleStats)
	s.router.Get("/api/events", s.sseBroadcaster.HandleSSE)
}

// requestLogger logs each request and counts it by route pattern.
func (s *Service) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RecordRequest(r.Context(), route, status)

		log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Str("requestId", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Ready:   s.ready.Load(),
		Version: s.version,
		DataDir: s.gateway.Dir(),
	}
	status := http.StatusOK
	if !resp.Ready {
		resp.Status = "starting"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (s *Service) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Service) handleGetNote(w http.ResponseWriter, r *http.Request) {
	date := urlParam(r, "date")
	content, err := s.gateway.LoadNote(date)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NoteBody{Date: date, Content: content})
}

func (s *Service) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	date := urlParam(r, "date")
	var body NoteBody
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.gateway.SaveNote(date, body.Content); err != nil {
		writeStorageError(w, err)
		return
	}
	s.metrics.RecordNoteSave(r.Context())
	s.writes.mark(date, watcher.KindNote, time.Now())
	s.sseBroadcaster.Publish(sse.NewEvent(sse.EventNoteSaved, date))
	writeJSON(w, http.StatusOK, NoteBody{Date: date, Content: body.Content})
}

func (s *Service) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.gateway.LoadRecords(urlParam(r, "date"))
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Service) handleSaveRecords(w http.ResponseWriter, r *http.Request) {
	date := urlParam(r, "date")
	var records []models.TaskRecord
	if !decodeBody(w, r, &records) {
		return
	}
	if records == nil {
		records = []models.TaskRecord{}
	}
	if err := s.gateway.SaveRecords(date, records); err != nil {
		writeStorageError(w, err)
		return
	}
	s.recordsSaved(r, date)
	writeJSON(w, http.StatusOK, records)
}

func (s *Service) handleAppendRecord(w http.ResponseWriter, r *http.Request) {
	date := urlParam(r, "date")
	var record models.TaskRecord
	if !decodeBody(w, r, &record) {
		return
	}
	if !s.catalog.Known(record.Subject, record.TaskType) {
		log.Debug().Str("subject", record.Subject).Str("taskType", record.TaskType).Msg("Record outside subject catalog")
	}
	saved, err := s.gateway.AppendRecord(date, record)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	s.recordsSaved(r, date)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Service) handleRemoveRecord(w http.ResponseWriter, r *http.Request) {
	date := urlParam(r, "date")
	if err := s.gateway.RemoveRecord(date, urlParam(r, "id")); err != nil {
		writeStorageError(w, err)
		return
	}
	s.recordsSaved(r, date)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) recordsSaved(r *http.Request, date string) {
	s.metrics.RecordRecordsSave(r.Context())
	s.writes.mark(date, watcher.KindRecords, time.Now())
	s.sseBroadcaster.Publish(sse.NewEvent(sse.EventRecordsSaved, date))
}

func (s *Service) handleListDays(w http.ResponseWriter, r *http.Request) {
	dates, err := s.gateway.ListDates()
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dates)
}

func (s *Service) handleDayStats(w http.ResponseWriter, r *http.Request) {
	date := urlParam(r, "date")
	records, err := s.gateway.LoadRecords(date)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activity.Report(date, records))
}

func (s *Service) handleActivity(w http.ResponseWriter, r *http.Request) {
	points, err := s.activityLog()
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if sorted, _ := strconv.ParseBool(r.URL.Query().Get("sorted")); sorted {
		// Shared with concurrent callers; sort a copy.
		points = append([]models.ActivityPoint(nil), points...)
		activity.SortByDate(points)
	}
	if points == nil {
		points = []models.ActivityPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Service) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	weeks := s.config.HeatmapWeeks
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > config.MaxHeatmapWeeks {
			writeError(w, http.StatusBadRequest, "weeks must be between 1 and "+strconv.Itoa(config.MaxHeatmapWeeks))
			return
		}
		weeks = n
	}

	points, err := s.activityLog()
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activity.BuildHeatmap(points, s.now(), weeks))
}

func (s *Service) handleStreak(w http.ResponseWriter, r *http.Request) {
	points, err := s.activityLog()
	if err != nil {
		writeStorageError(w, err)
		return
	}
	today := s.now()
	writeJSON(w, http.StatusOK, StreakResponse{
		Today:  today.Format(activity.ISODate),
		Streak: activity.Streak(points, today),
	})
}

func (s *Service) handleSubjects(w http.ResponseWriter, r *http.Request) {
	subjects := s.catalog.All()
	if subjects == nil {
		subjects = []*catalog.Subject{}
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		MetricsSnapshot: s.metrics.Snapshot(),
		Version:         s.version,
		DataDir:         s.gateway.Dir(),
		SSEClients:      s.sseBroadcaster.ClientCount(),
		Watching:        s.watching.Load(),
	})
}
