package hoaxcheck

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// NormalizedURL is a validated, canonicalized target URL. Host is lowercased
// with any trailing dot stripped, and Domain holds the allow-list suffix the
// host matched.
type NormalizedURL struct {
	Scheme   string
	Host     string
	Path     string
	RawQuery string
	Domain   string
}

// String reassembles the normalized URL.
func (u NormalizedURL) String() string {
	s := u.Scheme + "://" + u.Host + u.Path
	if u.RawQuery != "" {
		s += "?" + u.RawQuery
	}
	return s
}

// Guard validates target URLs before any network contact: scheme and host
// checks, allow-list suffix matching, and rejection of hosts that resolve to
// private or loopback addresses.
type Guard struct {
	domains []string
	lookup  func(ctx context.Context, host string) ([]net.IPAddr, error)

	// allowPrivate disables the address checks; only tests set it, to let
	// the pipeline talk to loopback httptest servers.
	allowPrivate bool
}

// NewGuard creates a guard for the given allow-listed domain suffixes,
// resolving hosts with the default system resolver.
func NewGuard(domains []string) *Guard {
	return &Guard{
		domains: domains,
		lookup:  net.DefaultResolver.LookupIPAddr,
	}
}

// Validate parses and normalizes rawURL, enforces the domain allow-list and
// rejects hosts resolving to blocked address ranges. The resolved addresses
// are advisory only: DNS answers are re-checked at dial time by the fetcher,
// so a rebinding response after validation still cannot reach a private
// address.
func (g *Guard) Validate(ctx context.Context, rawURL string) (NormalizedURL, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return NormalizedURL{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return NormalizedURL{}, fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return NormalizedURL{}, fmt.Errorf("%w: empty host", ErrInvalidURL)
	}

	domain := g.MatchDomain(host)
	if domain == "" {
		return NormalizedURL{}, fmt.Errorf("%w: %s", ErrUnsupportedDomain, host)
	}

	if err := g.CheckHost(ctx, host); err != nil {
		return NormalizedURL{}, err
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	nu := NormalizedURL{
		Scheme:   parsed.Scheme,
		Host:     host,
		Path:     path,
		RawQuery: parsed.RawQuery,
		Domain:   domain,
	}
	if port := parsed.Port(); port != "" {
		nu.Host = host + ":" + port
	}
	return nu, nil
}

// MatchDomain returns the allow-list suffix matching host, or "" if none
// does. A host matches when it equals the suffix or is a subdomain of it;
// "detik.com.evil.com" never matches "detik.com".
func (g *Guard) MatchDomain(host string) string {
	host = strings.ToLower(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	for _, d := range g.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return d
		}
	}
	return ""
}

// CheckHost resolves host and rejects it if any resolved address is blocked.
func (g *Guard) CheckHost(ctx context.Context, host string) error {
	if ip := net.ParseIP(host); ip != nil {
		return g.CheckAddr(ip)
	}
	addrs, err := g.lookup(ctx, host)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrFetchFailed, host, err)
	}
	for _, addr := range addrs {
		if err := g.CheckAddr(addr.IP); err != nil {
			return err
		}
	}
	return nil
}

// CheckAddr rejects loopback (127.0.0.0/8, ::1), private (10.0.0.0/8,
// 172.16.0.0/12, 192.168.0.0/16 and the IPv6 ULA range), link-local and
// unspecified addresses. The fetcher installs this as a dial-time control so
// every connection attempt re-applies the check against the address actually
// being dialed.
func (g *Guard) CheckAddr(ip net.IP) error {
	if g.allowPrivate {
		return nil
	}
	if ip == nil {
		return fmt.Errorf("%w: unparseable address", ErrBlockedAddress)
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ip)
	}
	return nil
}
