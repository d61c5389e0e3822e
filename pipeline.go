package hoaxcheck

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/zombar/hoaxcheck/analyzer"
	"github.com/zombar/hoaxcheck/models"
)

// Classifier scores text with the external hoax-detection model.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.ClassifierOutput, error)
}

var tracer = otel.Tracer("github.com/zombar/hoaxcheck")

// Pipeline composes guard, cache, fetcher, extractor, cleaner and analyzer
// into the two public operations: Extract and Analyze. All shared state
// (cache, per-host limiters) is constructed here and passed by reference;
// there are no package-level singletons.
type Pipeline struct {
	cfg        Config
	guard      *Guard
	fetcher    *Fetcher
	extractor  *Extractor
	cache      *Cache
	classifier Classifier
}

// New builds a pipeline. classifier may be nil for extract-only use.
func New(cfg Config, classifier Classifier) *Pipeline {
	guard := NewGuard(cfg.Domains)
	return &Pipeline{
		cfg:        cfg,
		guard:      guard,
		fetcher:    NewFetcher(cfg, guard),
		extractor:  NewExtractor(cfg.MinTextChars),
		cache:      NewCache(cfg.CacheTTL, cfg.CacheMaxEntries),
		classifier: classifier,
	}
}

// SupportedDomains returns the allow-listed domain suffixes.
func (p *Pipeline) SupportedDomains() []string {
	out := make([]string, len(p.cfg.Domains))
	copy(out, p.cfg.Domains)
	return out
}

// Extract validates the URL, checks the cache, then fetches, extracts and
// cleans the article. A repeated call within the TTL returns the cached
// result without any network traffic. Failures are never cached.
func (p *Pipeline) Extract(ctx context.Context, rawURL string) (*models.ExtractionResult, error) {
	ctx, span := tracer.Start(ctx, "pipeline.extract")
	defer span.End()

	target, err := p.guard.Validate(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	key := target.String()
	if cached, ok := p.cache.Get(key); ok {
		cacheHitsTotal.Inc()
		return cached, nil
	}
	cacheMissesTotal.Inc()

	start := time.Now()
	result, err := p.extractFresh(ctx, target)
	if err != nil {
		extractionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	extractionsTotal.WithLabelValues("ok").Inc()
	extractionDuration.Observe(time.Since(start).Seconds())

	p.cache.Put(key, result)
	return result, nil
}

// extractFresh fetches and extracts the target, trying the AMP variant when
// the primary body is below the minimum viable length. The fallback replaces
// the primary result only if it yields a longer body.
func (p *Pipeline) extractFresh(ctx context.Context, target NormalizedURL) (*models.ExtractionResult, error) {
	start := time.Now()

	fetched, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	primary, err := p.extractor.Extract(fetched.Body, fetched.FinalURL)
	if err != nil {
		return nil, err
	}

	body := primary
	if len(strings.TrimSpace(body.Text)) < p.cfg.MinTextChars {
		if amp := FindAMPHref(fetched.Body, fetched.FinalURL); amp != "" {
			if fallback, ok := p.extractAMP(ctx, amp); ok && len(fallback.Text) > len(body.Text) {
				body = fallback
			}
		}
	}

	if len(strings.TrimSpace(body.Text)) < p.cfg.MinTextChars {
		return nil, fmt.Errorf("%w: body below %d chars", ErrExtractionFailed, p.cfg.MinTextChars)
	}

	text := Clean(body.Text)
	return &models.ExtractionResult{
		Title:        body.Title,
		Text:         text,
		Chars:        len(text),
		Sentences:    countSentences(text),
		Source:       displayHost(target.Host),
		PublishedAt:  body.PublishedAt,
		ExtractionMS: elapsedMS(start),
	}, nil
}

// extractAMP fetches and extracts the AMP variant. The AMP URL goes through
// the same guard validation as the original: an AMP link pointing off the
// allow-list or at a private address is ignored.
func (p *Pipeline) extractAMP(ctx context.Context, ampURL string) (content, bool) {
	target, err := p.guard.Validate(ctx, ampURL)
	if err != nil {
		slog.Warn("amp fallback rejected", "url", ampURL, "error", err)
		return content{}, false
	}
	fetched, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		slog.Warn("amp fallback fetch failed", "url", ampURL, "error", err)
		return content{}, false
	}
	extracted, err := p.extractor.Extract(fetched.Body, fetched.FinalURL)
	if err != nil {
		return content{}, false
	}
	return extracted, true
}

// AnalyzeURL extracts the article at rawURL, scores the cleaned text with
// the external classifier and derives the evidence-based assessment.
func (p *Pipeline) AnalyzeURL(ctx context.Context, rawURL string) (*models.PredictResponse, error) {
	ctx, span := tracer.Start(ctx, "pipeline.analyze_url")
	defer span.End()

	total := time.Now()

	ext, err := p.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	inferStart := time.Now()
	pred, err := p.classifier.Classify(ctx, ext.Text)
	if err != nil {
		return nil, err
	}
	inferenceMS := elapsedMS(inferStart)

	assessment := analyzer.Analyze(analyzer.Input{
		Title:  ext.Title,
		Text:   ext.Text,
		Domain: ext.Source,
		PValid: pred.PValid,
		PHoax:  pred.PHoax,
	})

	return &models.PredictResponse{
		Label:            pred.Label,
		PValid:           pred.PValid,
		PHoax:            pred.PHoax,
		Source:           ext.Source,
		ExtractedChars:   ext.Chars,
		TotalSentences:   ext.Sentences,
		Title:            ext.Title,
		Content:          ext.Text,
		Category:         assessment.Category,
		Verdict:          assessment.Verdict,
		Confidence:       assessment.Confidence,
		Reasons:          assessment.Reasons,
		CredibilityScore: assessment.CredibilityScore,
		PublishedAt:      ext.PublishedAt,
		InferenceMS:      inferenceMS,
		TotalMS:          elapsedMS(total),
		ExtractionMS:     ext.ExtractionMS,
	}, nil
}

// AnalyzeText scores raw text directly, with the source tagged "(raw-text)"
// and a best-effort title guessed from the first line.
func (p *Pipeline) AnalyzeText(ctx context.Context, text string) (*models.PredictResponse, error) {
	ctx, span := tracer.Start(ctx, "pipeline.analyze_text")
	defer span.End()

	total := time.Now()

	inferStart := time.Now()
	pred, err := p.classifier.Classify(ctx, text)
	if err != nil {
		return nil, err
	}
	inferenceMS := elapsedMS(inferStart)

	title := guessTitle(text)
	assessment := analyzer.Analyze(analyzer.Input{
		Title:  title,
		Text:   text,
		Domain: "", // raw text carries no source domain
		PValid: pred.PValid,
		PHoax:  pred.PHoax,
	})

	return &models.PredictResponse{
		Label:            pred.Label,
		PValid:           pred.PValid,
		PHoax:            pred.PHoax,
		Source:           "(raw-text)",
		ExtractedChars:   len(text),
		TotalSentences:   countSentences(text),
		Title:            title,
		Content:          text,
		Category:         assessment.Category,
		Verdict:          assessment.Verdict,
		Confidence:       assessment.Confidence,
		Reasons:          assessment.Reasons,
		CredibilityScore: assessment.CredibilityScore,
		InferenceMS:      inferenceMS,
		TotalMS:          elapsedMS(total),
		ExtractionMS:     0,
	}, nil
}

var (
	leadingPromptPattern = regexp.MustCompile(`(?i)^\s*(baca juga|lihat juga)\s*:.*?\n+`)
	firstSentencePattern = regexp.MustCompile(`(?s)^(.*?[.!?])\s`)
)

// guessTitle derives a display title from raw text: the first sentence of
// the first line when it has a reasonable length, otherwise the truncated
// first line.
func guessTitle(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}
	t = leadingPromptPattern.ReplaceAllString(t, "")
	firstLine := t
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		firstLine = strings.TrimSpace(t[:i])
	}
	candidate := firstLine
	if m := firstSentencePattern.FindStringSubmatch(firstLine + " "); m != nil {
		candidate = m[1]
	}
	if len(candidate) < 10 || len(candidate) > 120 {
		if len(firstLine) > 120 {
			candidate = firstLine[:120]
		} else {
			candidate = firstLine
		}
	}
	candidate = strings.Trim(candidate, `'"“”‘’[]() `)
	return strings.TrimSpace(candidate)
}

func displayHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimPrefix(host, "www.")
}

func elapsedMS(since time.Time) float64 {
	return float64(time.Since(since).Microseconds()) / 1000.0
}
