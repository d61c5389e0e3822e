package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zombar/hoaxcheck"
	"github.com/zombar/hoaxcheck/classifier"
	"github.com/zombar/hoaxcheck/models"
)

type fakeStore struct {
	saved   []*models.ArticleRecord
	saveErr error
	items   []*models.ArticleRecord
	total   int
}

func (f *fakeStore) SaveArticle(rec *models.ArticleRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeStore) GetByID(id string) (*models.ArticleRecord, error) {
	for _, rec := range append(f.items, f.saved...) {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListHoax(page, limit int) ([]*models.ArticleRecord, int, error) {
	return f.items, f.total, nil
}

func (f *fakeStore) Count() (int, error) { return len(f.saved), nil }
func (f *fakeStore) Close() error        { return nil }

type stubClassifier struct {
	out models.ClassifierOutput
	err error
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (models.ClassifierOutput, error) {
	return s.out, s.err
}

func newTestServer(store *fakeStore, cls hoaxcheck.Classifier) *Server {
	pipeline := hoaxcheck.New(hoaxcheck.DefaultConfig(), cls)
	return newServer(store, pipeline, true)
}

func TestHandlePredictRawText(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(store, &stubClassifier{
		out: models.ClassifierOutput{Label: 1, PValid: 0.2, PHoax: 0.8},
	})

	body := `{"text": "Heboh! Katanya obat ini viral dan menyembuhkan segalanya, sebarkan."}`
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Source != "(raw-text)" {
		t.Errorf("Source = %q, want (raw-text)", resp.Source)
	}
	if resp.Verdict != "hoax" || resp.Label != 1 {
		t.Errorf("Unexpected verdict/label: %+v", resp)
	}
	if len(resp.Reasons) == 0 {
		t.Error("Expected reasons in response")
	}

	if len(store.saved) != 1 {
		t.Fatalf("Expected 1 saved record, got %d", len(store.saved))
	}
	if store.saved[0].InputType != "text" {
		t.Errorf("InputType = %q, want text", store.saved[0].InputType)
	}
	if store.saved[0].ID == "" {
		t.Error("Expected generated record ID")
	}
}

func TestHandlePredictValidation(t *testing.T) {
	s := newTestServer(&fakeStore{}, &stubClassifier{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"missing text", `{}`},
		{"blank text", `{"text": "   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			s.mux.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}
		})
	}
}

func TestHandlePredictSaveFailureStillResponds(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("disk full")}
	s := newTestServer(store, &stubClassifier{
		out: models.ClassifierOutput{Label: 0, PValid: 0.9, PHoax: 0.1},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/predict",
		strings.NewReader(`{"text": "Teks berita yang cukup biasa untuk dianalisis."}`))
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 despite save failure, got %d", w.Code)
	}
}

func TestHandlePredictURLRejectsUnsupportedDomain(t *testing.T) {
	s := newTestServer(&fakeStore{}, &stubClassifier{})

	req := httptest.NewRequest(http.MethodPost, "/api/predict_url",
		strings.NewReader(`{"url": "https://example.com/berita"}`))
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for off-list domain, got %d", w.Code)
	}
}

func TestHandleExtractRejectsInvalidURL(t *testing.T) {
	s := newTestServer(&fakeStore{}, &stubClassifier{})

	req := httptest.NewRequest(http.MethodPost, "/api/extract",
		strings.NewReader(`{"url": "ftp://news.detik.com/x"}`))
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for non-http scheme, got %d", w.Code)
	}
}

func TestRespondPipelineErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid url", hoaxcheck.ErrInvalidURL, http.StatusUnprocessableEntity},
		{"unsupported domain", hoaxcheck.ErrUnsupportedDomain, http.StatusUnprocessableEntity},
		{"blocked address", hoaxcheck.ErrBlockedAddress, http.StatusUnprocessableEntity},
		{"content type", hoaxcheck.ErrUnsupportedContentType, http.StatusUnprocessableEntity},
		{"extraction failed", hoaxcheck.ErrExtractionFailed, http.StatusUnprocessableEntity},
		{"timeout", hoaxcheck.ErrTimeout, http.StatusGatewayTimeout},
		{"fetch failed", hoaxcheck.ErrFetchFailed, http.StatusBadGateway},
		{"wrapped fetch failed", fmt.Errorf("context: %w", hoaxcheck.ErrFetchFailed), http.StatusBadGateway},
		{"classifier down", classifier.ErrUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			respondPipelineError(w, tt.err)
			if w.Code != tt.want {
				t.Errorf("Status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHandleListHoaxPagination(t *testing.T) {
	store := &fakeStore{
		items: []*models.ArticleRecord{{ID: "a", Verdict: "hoax"}},
		total: 45,
	}
	s := newTestServer(store, &stubClassifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles/hoax?page=2&limit=20", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp models.ArticleListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Page != 2 || resp.Limit != 20 || resp.Total != 45 {
		t.Errorf("Unexpected pagination: %+v", resp)
	}
	if resp.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", resp.TotalPages)
	}
	if !resp.HasNext || !resp.HasPrev {
		t.Errorf("Expected has_next and has_prev on middle page: %+v", resp)
	}
	if len(resp.Items) != 1 {
		t.Errorf("Expected 1 item, got %d", len(resp.Items))
	}
}

func TestHandleListHoaxDefaults(t *testing.T) {
	s := newTestServer(&fakeStore{total: 5}, &stubClassifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles/hoax?page=-3&limit=9999", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	var resp models.ArticleListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Page != 1 {
		t.Errorf("Page = %d, want clamped 1", resp.Page)
	}
	if resp.Limit != 20 {
		t.Errorf("Limit = %d, want clamped 20", resp.Limit)
	}
	if resp.HasPrev {
		t.Error("Expected has_prev=false on first page")
	}
}

func TestHandleGetArticle(t *testing.T) {
	store := &fakeStore{
		items: []*models.ArticleRecord{{ID: "rec-1", Title: "Judul", Verdict: "hoax"}},
	}
	s := newTestServer(store, &stubClassifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles/rec-1", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var rec models.ArticleRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if rec.ID != "rec-1" || rec.Verdict != "hoax" {
		t.Errorf("Unexpected record: %+v", rec)
	}
}

func TestHandleGetArticleNotFound(t *testing.T) {
	s := newTestServer(&fakeStore{}, &stubClassifier{})

	for _, path := range []string{"/api/articles/missing", "/api/articles/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.mux.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, w.Code)
		}
	}
}

func TestHandleSupportedSources(t *testing.T) {
	s := newTestServer(&fakeStore{}, &stubClassifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/supported_sources", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Sources []string `json:"sources"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Sources) != len(hoaxcheck.SupportedDomains) {
		t.Errorf("Expected %d sources, got %d", len(hoaxcheck.SupportedDomains), len(resp.Sources))
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeStore{}, &stubClassifier{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("Unexpected health payload: %v", resp)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(&fakeStore{}, &stubClassifier{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/predict"},
		{http.MethodGet, "/api/predict_url"},
		{http.MethodGet, "/api/extract"},
		{http.MethodPost, "/api/articles/hoax"},
		{http.MethodPost, "/api/articles/rec-1"},
		{http.MethodPost, "/api/supported_sources"},
		{http.MethodPost, "/health"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			s.mux.ServeHTTP(w, req)
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405, got %d", w.Code)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&fakeStore{}, &stubClassifier{})
	handler := s.middleware(s.mux)

	req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS headers on preflight response")
	}
}
