package crux

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/weppos/publicsuffix-go/publicsuffix"
	"golang.org/x/net/idna"
)

// DomainExtractor maps an origin or bare host to its registrable domain
type DomainExtractor interface {
	ExtractDomain(origin string) (string, error)
}

// PublicSuffixExtractor resolves registrable domains against the embedded
// Public Suffix List. Only ICANN suffixes count; private entries such as
// "github.io" are ignored, so "user.github.io" maps to "github.io".
type PublicSuffixExtractor struct {
	list    *publicsuffix.List
	options *publicsuffix.FindOptions
}

// NewPublicSuffixExtractor returns an extractor over the bundled suffix list.
// Unknown TLDs are treated as single-label suffixes.
func NewPublicSuffixExtractor() *PublicSuffixExtractor {
	return &PublicSuffixExtractor{
		list: publicsuffix.DefaultList,
		options: &publicsuffix.FindOptions{
			IgnorePrivate: true,
			DefaultRule:   publicsuffix.DefaultRule,
		},
	}
}

// ExtractDomain returns the registrable domain of origin, discarding scheme,
// userinfo, port, path and subdomain labels. A host with no registrable part
// (an IP literal, a single label, or a bare public suffix) is returned as is.
func (e *PublicSuffixExtractor) ExtractDomain(origin string) (string, error) {
	host, err := hostOf(origin)
	if err != nil {
		return "", err
	}

	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host, nil
	}

	domain, err := publicsuffix.DomainFromListWithOptions(e.list, host, e.options)
	if err != nil {
		// host is itself a public suffix
		return host, nil
	}
	return domain, nil
}

// hostOf extracts the lowercased ASCII host from a URL or bare host string
func hostOf(origin string) (string, error) {
	raw := strings.TrimSpace(origin)
	if raw == "" {
		return "", fmt.Errorf("empty origin")
	}
	if !hasScheme(raw) {
		raw = "//" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", origin, err)
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", fmt.Errorf("origin %q has no host", origin)
	}

	if net.ParseIP(host) != nil || isASCII(host) {
		return host, nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host in origin %q: %w", origin, err)
	}
	return ascii, nil
}

// hasScheme reports whether raw starts with "scheme://". A "://" later in the
// path or query does not count.
func hasScheme(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	return strings.HasPrefix(raw[len(u.Scheme):], "://")
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
