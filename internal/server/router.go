// Package server exposes the assessment service over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dshills/wellcheck/internal/answers"
	"github.com/dshills/wellcheck/internal/assessment"
	"github.com/dshills/wellcheck/internal/content"
	"github.com/dshills/wellcheck/internal/history"
	"github.com/dshills/wellcheck/internal/profile"
	"github.com/dshills/wellcheck/internal/render"
	"github.com/dshills/wellcheck/internal/scoring"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 64 << 10

// renderPDF is swapped in tests.
var renderPDF = render.PDF

// Options configures the router.
type Options struct {
	Logger *slog.Logger
	// AllowedOrigins is sent as Access-Control-Allow-Origin; "*" when empty.
	AllowedOrigins string
}

type handler struct {
	svc    *assessment.Service
	logger *slog.Logger
}

// NewRouter creates the API router with all endpoints.
func NewRouter(svc *assessment.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{svc: svc, logger: logger}

	r := mux.NewRouter()
	r.Use(corsMiddleware(opts.AllowedOrigins), h.logRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/questions", h.questions).Methods("GET", "OPTIONS")
	v1.HandleFunc("/assessments", h.assess).Methods("POST", "OPTIONS")
	v1.HandleFunc("/content/{band}", h.bandContent).Methods("GET", "OPTIONS")
	v1.HandleFunc("/history", h.recent).Methods("GET", "OPTIONS")
	v1.HandleFunc("/history/summary", h.summary).Methods("GET", "OPTIONS")

	return r
}

type questionnaire struct {
	Profile     string             `json:"profile"`
	Version     int                `json:"version"`
	Description string             `json:"description,omitempty"`
	Questions   []profile.Question `json:"questions"`
}

// questions handles GET /v1/questions
func (h *handler) questions(w http.ResponseWriter, r *http.Request) {
	p := h.svc.Profile()
	writeJSON(w, http.StatusOK, questionnaire{
		Profile:     p.Name,
		Version:     p.Version,
		Description: p.Description,
		Questions:   p.Questions,
	})
}

// assess handles POST /v1/assessments?format=json|md|pdf
func (h *handler) assess(w http.ResponseWriter, r *http.Request) {
	format := render.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		var err error
		if format, err = render.ParseFormat(f); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body exceeds 64KiB")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	set, err := answers.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.svc.Assess(r.Context(), assessment.Request{
		Answers:     set.Answers,
		Name:        set.Name,
		AnswersHash: set.Hash,
		Profile:     set.Profile,
	})
	if err != nil {
		h.writeAssessError(w, err)
		return
	}

	switch format {
	case render.FormatMarkdown:
		w.Header().Set("Content-Type", format.ContentType())
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, render.Markdown(rep))
	case render.FormatPDF:
		var buf bytes.Buffer
		if err := renderPDF(&buf, rep); err != nil {
			h.logger.Error("pdf render failed", "id", rep.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to render report")
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", `attachment; filename="Wellness_Report.pdf"`)
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	default:
		writeJSON(w, http.StatusOK, rep)
	}
}

func (h *handler) writeAssessError(w http.ResponseWriter, err error) {
	var (
		missing *scoring.MissingAnswerError
		cfgErr  *scoring.ConfigurationError
		artErr  *scoring.ArtifactLoadError
	)
	switch {
	case errors.As(err, &missing):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &cfgErr), errors.As(err, &artErr):
		h.logger.Error("assessment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "scoring is misconfigured")
	default:
		h.logger.Error("assessment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "assessment failed")
	}
}

// bandContent handles GET /v1/content/{band}
func (h *handler) bandContent(w http.ResponseWriter, r *http.Request) {
	band, ok := scoring.ParseRiskBand(mux.Vars(r)["band"])
	if !ok {
		writeError(w, http.StatusNotFound, "unknown risk band")
		return
	}
	c, ok := content.For(band)
	if !ok {
		writeError(w, http.StatusNotFound, "no content for band")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// recent handles GET /v1/history?limit=N
func (h *handler) recent(w http.ResponseWriter, r *http.Request) {
	store := h.svc.History()
	if store == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}
	limit := history.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	list, err := store.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	if list == nil {
		list = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, list)
}

// summary handles GET /v1/history/summary
func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	store := h.svc.History()
	if store == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}
	sum, err := store.Summarize(r.Context())
	if err != nil {
		h.logger.Error("history summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Microsecond))
	})
}

func corsMiddleware(origins string) mux.MiddlewareFunc {
	if origins == "" {
		origins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
