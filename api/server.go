package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/zombar/hoaxcheck"
	"github.com/zombar/hoaxcheck/classifier"
	"github.com/zombar/hoaxcheck/db"
	"github.com/zombar/hoaxcheck/models"
)

// ResultStore is the persistence surface the server needs. Satisfied by
// *db.DB; tests substitute an in-memory fake.
type ResultStore interface {
	SaveArticle(rec *models.ArticleRecord) error
	GetByID(id string) (*models.ArticleRecord, error)
	ListHoax(page, limit int) ([]*models.ArticleRecord, int, error)
	Count() (int, error)
	Close() error
}

// Server represents the API server
type Server struct {
	store       ResultStore
	pipeline    *hoaxcheck.Pipeline
	addr        string
	server      *http.Server
	mux         *http.ServeMux
	corsEnabled bool
}

// Config contains server configuration
type Config struct {
	Addr               string
	DBConfig           db.Config
	PipelineConfig     hoaxcheck.Config
	ClassifierEndpoint string
	CORSEnabled        bool
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:               ":8080",
		PipelineConfig:     hoaxcheck.DefaultConfig(),
		ClassifierEndpoint: "http://localhost:8001",
		CORSEnabled:        true,
	}
}

// NewServer creates a new API server
func NewServer(config Config) (*Server, error) {
	database, err := db.New(config.DBConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	cls := classifier.New(config.ClassifierEndpoint)
	pipeline := hoaxcheck.New(config.PipelineConfig, cls)

	s := newServer(database, pipeline, config.CORSEnabled)
	s.addr = config.Addr
	s.server = &http.Server{
		Addr:         config.Addr,
		Handler:      otelhttp.NewHandler(s.middleware(s.mux), "hoaxcheck-api"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// newServer wires routes without touching the network or database,
// so tests can drive the handlers directly.
func newServer(store ResultStore, pipeline *hoaxcheck.Pipeline, corsEnabled bool) *Server {
	s := &Server{
		store:       store,
		pipeline:    pipeline,
		mux:         http.NewServeMux(),
		corsEnabled: corsEnabled,
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/api/extract", s.handleExtract)
	s.mux.HandleFunc("/api/predict", s.handlePredict)
	s.mux.HandleFunc("/api/predict_url", s.handlePredictURL)
	s.mux.HandleFunc("/api/articles/hoax", s.handleListHoax)
	s.mux.HandleFunc("/api/articles/", s.handleGetArticle)
	s.mux.HandleFunc("/api/supported_sources", s.handleSupportedSources)
}

// Start starts the API server
func (s *Server) Start() error {
	slog.Info("starting API server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down API server")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.store.Close()
}

// middleware applies CORS, logging and panic recovery to all routes
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsEnabled {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "method", r.Method, "path", r.URL.Path, "panic", rec)
				respondError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		start := time.Now()
		next.ServeHTTP(w, r)

		if r.URL.Path != "/health" && r.URL.Path != "/metrics" {
			slog.Info("request completed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
		}
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	count, err := s.store.Count()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get count")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"count":  count,
		"time":   time.Now(),
	})
}

// ExtractRequest represents an extraction request
type ExtractRequest struct {
	URL string `json:"url"`
}

// handleExtract extracts clean article text without running analysis
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	result, err := s.pipeline.Extract(r.Context(), req.URL)
	if err != nil {
		respondPipelineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.ExtractResponse{
		Text:    result.Text,
		Source:  result.Source,
		Length:  result.Chars,
		Title:   result.Title,
		Content: result.Text,
	})
}

// PredictRequest represents a raw-text analysis request
type PredictRequest struct {
	Text string `json:"text"`
}

// handlePredict analyzes pasted raw text
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	resp, err := s.pipeline.AnalyzeText(r.Context(), req.Text)
	if err != nil {
		respondPipelineError(w, err)
		return
	}

	s.saveResult("", "text", resp)
	respondJSON(w, http.StatusOK, resp)
}

// PredictURLRequest represents a URL analysis request
type PredictURLRequest struct {
	URL string `json:"url"`
}

// handlePredictURL extracts and analyzes the article at a URL
func (s *Server) handlePredictURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req PredictURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	resp, err := s.pipeline.AnalyzeURL(r.Context(), req.URL)
	if err != nil {
		respondPipelineError(w, err)
		return
	}

	s.saveResult(req.URL, "url", resp)
	respondJSON(w, http.StatusOK, resp)
}

// saveResult persists an analysis outcome. Best effort: a storage failure is
// logged and the caller still gets their response.
func (s *Server) saveResult(url, inputType string, resp *models.PredictResponse) {
	rec := &models.ArticleRecord{
		ID:               uuid.NewString(),
		URL:              url,
		Source:           resp.Source,
		Title:            resp.Title,
		Content:          resp.Content,
		ExtractedChars:   resp.ExtractedChars,
		TotalSentences:   resp.TotalSentences,
		Category:         resp.Category,
		Label:            resp.Label,
		PValid:           resp.PValid,
		PHoax:            resp.PHoax,
		Verdict:          resp.Verdict,
		Confidence:       resp.Confidence,
		Reasons:          resp.Reasons,
		CredibilityScore: resp.CredibilityScore,
		PublishedAt:      resp.PublishedAt,
		InputType:        inputType,
		Timing: models.Timing{
			ExtractionMS: resp.ExtractionMS,
			InferenceMS:  resp.InferenceMS,
			TotalMS:      resp.TotalMS,
		},
	}
	if err := s.store.SaveArticle(rec); err != nil {
		slog.Warn("failed to save analysis", "source", rec.Source, "error", err)
	}
}

// handleListHoax returns the paginated list of records judged hoax
func (s *Server) handleListHoax(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := s.store.ListHoax(page, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	totalPages := (total + limit - 1) / limit
	respondJSON(w, http.StatusOK, models.ArticleListResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
		Items:      items,
	})
}

// handleGetArticle returns a single stored analysis record by its ID
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/articles/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	rec, err := s.store.GetByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "article not found")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// handleSupportedSources lists the domain allow-list
func (s *Server) handleSupportedSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sources": s.pipeline.SupportedDomains(),
	})
}

// respondPipelineError maps pipeline failures to HTTP statuses: bad input
// gets 422, upstream trouble gets the matching 5xx.
func respondPipelineError(w http.ResponseWriter, err error) {
	switch {
	case hoaxcheck.IsClientError(err):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, hoaxcheck.ErrTimeout):
		respondError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, hoaxcheck.ErrFetchFailed):
		respondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, classifier.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		slog.Error("internal error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
