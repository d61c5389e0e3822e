package hoaxcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/zombar/hoaxcheck/models"
)

// Fetcher performs gated HTTP retrieval: a per-host concurrency limiter,
// exponential-backoff retry for transient failures, content-type and size
// gates, and guard re-validation on every dial and redirect hop.
type Fetcher struct {
	cfg    Config
	guard  *Guard
	client *http.Client

	mu       sync.Mutex
	limiters map[string]chan struct{}
}

// NewFetcher builds a fetcher whose transport re-applies the guard's address
// check at dial time, so a DNS answer that changes between validation and
// connection still cannot reach a private address.
func NewFetcher(cfg Config, guard *Guard) *Fetcher {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrBlockedAddress, err)
			}
			return guard.CheckAddr(net.ParseIP(host))
		},
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConnsPerHost: cfg.PerHostConcurrency,
		IdleConnTimeout:     90 * time.Second,
	}

	f := &Fetcher{
		cfg:      cfg,
		guard:    guard,
		limiters: make(map[string]chan struct{}),
	}
	f.client = &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: otelhttp.NewTransport(transport),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("%w: more than %d redirects", ErrFetchFailed, cfg.MaxRedirects)
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return fmt.Errorf("%w: redirect to scheme %s", ErrInvalidURL, req.URL.Scheme)
			}
			if guard.MatchDomain(req.URL.Hostname()) == "" {
				return fmt.Errorf("%w: redirect to %s", ErrUnsupportedDomain, req.URL.Hostname())
			}
			return nil
		},
	}
	return f
}

// Fetch retrieves the target URL. It blocks until a per-host slot is free or
// ctx expires, then issues the GET with the configured retry policy. The slot
// is released on every exit path.
func (f *Fetcher) Fetch(ctx context.Context, target NormalizedURL) (*models.FetchResult, error) {
	limiter := f.hostLimiter(target.Host)
	select {
	case limiter <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for host slot: %v", ErrTimeout, ctx.Err())
	}
	defer func() { <-limiter }()

	var result *models.FetchResult
	attempt := 0
	op := func() error {
		attempt++
		fetchAttemptsTotal.Inc()
		res, err := f.doAttempt(ctx, target.String())
		if err != nil {
			return err
		}
		result = res
		return nil
	}
	notify := func(err error, wait time.Duration) {
		fetchRetriesTotal.Inc()
		slog.Warn("fetch attempt failed",
			"url", target.String(),
			"attempt", attempt,
			"retry_in", wait,
			"error", err,
		)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(f.newBackoff(), f.cfg.FetchAttempts-1),
		ctx,
	)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		fetchFailuresTotal.Inc()
		return nil, f.classifyFailure(ctx, err)
	}
	return result, nil
}

func (f *Fetcher) newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.cfg.BackoffInitial
	b.Multiplier = f.cfg.BackoffMultiplier
	b.RandomizationFactor = f.cfg.BackoffJitter
	b.MaxElapsedTime = 0 // the request context bounds total time
	return b
}

// doAttempt performs one GET. Violations of the content-type or size gates
// and 4xx statuses are permanent; connection errors and 5xx are retryable.
func (f *Fetcher) doAttempt(ctx context.Context, url string) (*models.FetchResult, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrInvalidURL, err))
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "id,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedAddress) || errors.Is(err, ErrUnsupportedDomain) ||
			errors.Is(err, ErrInvalidURL) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		// Drain a little so the connection can be reused, then retry.
		io.CopyN(io.Discard, resp.Body, 512)
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("%w: http status %d", ErrFetchFailed, resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if !htmlContentType(contentType) {
		return nil, backoff.Permanent(fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.cfg.MaxBodyBytes {
		return nil, backoff.Permanent(fmt.Errorf("%w: body exceeds %d bytes", ErrResponseTooLarge, f.cfg.MaxBodyBytes))
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &models.FetchResult{
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		Elapsed:     time.Since(start),
	}, nil
}

// classifyFailure maps a terminal retry error onto the pipeline taxonomy.
func (f *Fetcher) classifyFailure(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrUnsupportedContentType),
		errors.Is(err, ErrResponseTooLarge),
		errors.Is(err, ErrBlockedAddress),
		errors.Is(err, ErrUnsupportedDomain),
		errors.Is(err, ErrInvalidURL),
		errors.Is(err, ErrFetchFailed):
		return err
	case ctx.Err() != nil, errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
}

func (f *Fetcher) hostLimiter(host string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	limiter, ok := f.limiters[host]
	if !ok {
		limiter = make(chan struct{}, f.cfg.PerHostConcurrency)
		f.limiters[host] = limiter
	}
	return limiter
}

func htmlContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
