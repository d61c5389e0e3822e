package models

import "time"

// ExtractionResult is the cleaned output of a single article extraction.
// Once built it is treated as read-only: the cache hands the same pointer to
// every caller and nothing mutates it after construction.
type ExtractionResult struct {
	Title        string  `json:"title"`
	Text         string  `json:"text"`
	Chars        int     `json:"chars"`
	Sentences    int     `json:"sentences"`
	Source       string  `json:"source"`
	PublishedAt  string  `json:"published_at,omitempty"`
	ExtractionMS float64 `json:"extraction_ms"`
}

// FetchResult holds a single HTTP retrieval. It lives only for the duration
// of one pipeline request and is never persisted or cached.
type FetchResult struct {
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	Elapsed     time.Duration
}

// ClassifierOutput is the probability pair produced by the external
// text-classification model. Label 0 = valid, 1 = hoax.
type ClassifierOutput struct {
	Label  int     `json:"label"`
	PValid float64 `json:"p_valid"`
	PHoax  float64 `json:"p_hoax"`
}

// AnalysisResult is the explainable credibility assessment derived from
// cleaned text, source domain and the classifier probabilities. Identical
// inputs always yield an identical result, including reasons order.
type AnalysisResult struct {
	Category         string   `json:"category"`
	Verdict          string   `json:"verdict"`
	Confidence       float64  `json:"confidence"`
	Reasons          []string `json:"reasons"`
	CredibilityScore float64  `json:"credibility_score"`
}

// Timing carries per-phase latencies reported back to the caller.
type Timing struct {
	ExtractionMS float64 `json:"extraction_ms"`
	InferenceMS  float64 `json:"inference_ms"`
	TotalMS      float64 `json:"total_ms"`
}

// ArticleRecord is the persisted outcome of a successful URL analysis.
type ArticleRecord struct {
	ID               string    `json:"id"`
	URL              string    `json:"url,omitempty"`
	Source           string    `json:"source"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	ExtractedChars   int       `json:"extracted_chars"`
	TotalSentences   int       `json:"total_sentences"`
	Category         string    `json:"category"`
	Label            int       `json:"label"`
	PValid           float64   `json:"p_valid"`
	PHoax            float64   `json:"p_hoax"`
	Verdict          string    `json:"verdict"`
	Confidence       float64   `json:"confidence"`
	Reasons          []string  `json:"reasons"`
	CredibilityScore float64   `json:"credibility_score"`
	PublishedAt      string    `json:"published_at,omitempty"`
	InputType        string    `json:"input_type"`
	Timing           Timing    `json:"timing"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ExtractResponse is the public shape of a bare extraction call.
type ExtractResponse struct {
	Text    string `json:"text"`
	Source  string `json:"source"`
	Length  int    `json:"length"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PredictResponse is the public shape of a full analysis call, for both
// URL and raw-text inputs.
type PredictResponse struct {
	Label            int      `json:"label"`
	PValid           float64  `json:"p_valid"`
	PHoax            float64  `json:"p_hoax"`
	Source           string   `json:"source"`
	ExtractedChars   int      `json:"extracted_chars"`
	TotalSentences   int      `json:"total_sentences"`
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	Category         string   `json:"category"`
	Verdict          string   `json:"verdict"`
	Confidence       float64  `json:"confidence"`
	Reasons          []string `json:"reasons"`
	CredibilityScore float64  `json:"credibility_score"`
	PublishedAt      string   `json:"published_at,omitempty"`
	InferenceMS      float64  `json:"inference_ms"`
	TotalMS          float64  `json:"total_ms"`
	ExtractionMS     float64  `json:"extraction_ms"`
}

// ArticleListResponse is a paginated listing of stored records.
type ArticleListResponse struct {
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
	HasNext    bool             `json:"has_next"`
	HasPrev    bool             `json:"has_prev"`
	Items      []*ArticleRecord `json:"items"`
}
