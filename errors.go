package hoaxcheck

import "errors"

// Error taxonomy for the extraction pipeline. Callers match with errors.Is;
// the API layer maps client-attributable errors to 4xx responses and the
// rest to 5xx.
var (
	// ErrInvalidURL means the input could not be parsed or uses a scheme
	// other than http/https.
	ErrInvalidURL = errors.New("invalid url")

	// ErrUnsupportedDomain means the host does not match any allow-listed
	// domain suffix.
	ErrUnsupportedDomain = errors.New("unsupported domain")

	// ErrBlockedAddress means the host resolved to a loopback, private or
	// link-local address.
	ErrBlockedAddress = errors.New("blocked address")

	// ErrUnsupportedContentType means the response was not HTML.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrResponseTooLarge means the response body exceeded the byte cap.
	// Truncating would corrupt extraction, so the fetch fails instead.
	ErrResponseTooLarge = errors.New("response too large")

	// ErrTimeout means the request deadline elapsed, including time spent
	// waiting for a per-host concurrency slot.
	ErrTimeout = errors.New("request timed out")

	// ErrFetchFailed means the retry budget was exhausted without a usable
	// response; it wraps the last underlying cause.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrExtractionFailed means both the primary and the AMP fallback
	// produced body text below the minimum viable length.
	ErrExtractionFailed = errors.New("extraction failed")
)

// IsClientError reports whether err is attributable to the caller's input
// rather than to this service or the upstream site.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrUnsupportedDomain) ||
		errors.Is(err, ErrBlockedAddress) ||
		errors.Is(err, ErrUnsupportedContentType) ||
		errors.Is(err, ErrExtractionFailed)
}
