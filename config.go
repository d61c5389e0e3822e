package hoaxcheck

import "time"

// Config contains pipeline configuration.
type Config struct {
	// Domains is the allow-list of domain suffixes admitted by the guard.
	Domains []string

	HTTPTimeout        time.Duration // overall per-request ceiling
	FetchAttempts      uint64        // total attempt budget, including the first
	BackoffInitial     time.Duration // first retry delay
	BackoffMultiplier  float64
	BackoffJitter      float64 // randomization factor, 0 disables jitter
	PerHostConcurrency int
	MaxBodyBytes       int64
	MaxRedirects       int
	MinTextChars       int
	CacheTTL           time.Duration
	CacheMaxEntries    int
	UserAgent          string
}

// SupportedDomains is the default allow-list of news sources the extractor
// is tuned for.
var SupportedDomains = []string{
	"kompas.com",
	"cnnindonesia.com",
	"tempo.co",
	"detik.com",
	"liputan6.com",
	"tribunnews.com",
	"kumparan.com",
	"antaranews.com",
}

// DefaultConfig returns default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Domains:            SupportedDomains,
		HTTPTimeout:        20 * time.Second,
		FetchAttempts:      3,
		BackoffInitial:     600 * time.Millisecond,
		BackoffMultiplier:  2.0,
		BackoffJitter:      0,
		PerHostConcurrency: 5,
		MaxBodyBytes:       3_000_000,
		MaxRedirects:       5,
		MinTextChars:       400,
		CacheTTL:           300 * time.Second,
		CacheMaxEntries:    1024,
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	}
}
