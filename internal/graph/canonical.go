// Package graph maintains the land's link and media graph: URL
// canonicalization, domain and expression upserts at depth+1, edge
// insertion, and media row creation with optional inline analysis.
package graph

import (
	"net/url"
	"regexp"
	"strings"
)

// trackingParams are query parameters stripped during canonicalization.
// utm_* is handled as a prefix.
var trackingParams = map[string]bool{
	"fbclid":   true,
	"gclid":    true,
	"ref":      true,
	"source":   true,
	"campaign": true,
}

// wpProxyRe matches the WordPress image-proxy netlocs i0/i1/i2.wp.com.
var wpProxyRe = regexp.MustCompile(`^i[012]\.wp\.com$`)

// Canonicalize resolves a discovered href against its source page URL and
// reduces it to a stable canonical form: scheme://netloc/path plus only the
// non-tracking query parameters. Returns "" for anything that is not a
// fetchable http(s) document URL. Canonicalizing an already-canonical URL
// is the identity.
func Canonicalize(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := ref
	if baseURL != "" {
		base, err := url.Parse(baseURL)
		if err != nil {
			return ""
		}
		resolved = base.ResolveReference(ref)
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}

	resolved = unwrapWPProxy(resolved)

	out := &url.URL{
		Scheme: strings.ToLower(resolved.Scheme),
		Host:   strings.ToLower(resolved.Host),
		Path:   resolved.Path,
	}
	if q := filterQuery(resolved.Query()); len(q) > 0 {
		out.RawQuery = q.Encode()
	}
	return out.String()
}

// unwrapWPProxy rewrites i{0,1,2}.wp.com proxy URLs to the embedded origin
// host, dropping the proxy's ssl flag.
func unwrapWPProxy(u *url.URL) *url.URL {
	if !wpProxyRe.MatchString(strings.ToLower(u.Host)) {
		return u
	}
	// Path carries the original host: /host/original/path.
	trimmed := strings.TrimPrefix(u.Path, "/")
	host, rest, found := strings.Cut(trimmed, "/")
	if !found || host == "" {
		if host == "" {
			return u
		}
		rest = ""
	}

	q := u.Query()
	q.Del("ssl")
	unwrapped := &url.URL{
		Scheme:   u.Scheme,
		Host:     host,
		Path:     "/" + rest,
		RawQuery: q.Encode(),
	}
	return unwrapped
}

// filterQuery keeps only the non-tracking query parameters.
func filterQuery(q url.Values) url.Values {
	out := url.Values{}
	for key, values := range q {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") || trackingParams[lower] {
			continue
		}
		for _, v := range values {
			out.Add(key, v)
		}
	}
	return out
}

// netloc returns the lowercase host of a canonical URL.
func netloc(canonicalURL string) string {
	u, err := url.Parse(canonicalURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// Netloc exposes the host extraction to the crawl engine for seed
// materialization.
func Netloc(canonicalURL string) string { return netloc(canonicalURL) }
