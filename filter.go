package livecookie

import (
	"strings"
	"time"
)

// normalizeQueryDomain turns whatever the caller passed as Options.Domain
// into a bare host: scheme, path, port and a leading "www." are stripped.
func normalizeQueryDomain(domain string) string {
	d := strings.TrimSpace(strings.ToLower(domain))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.LastIndex(d, ":"); i >= 0 && strings.IndexByte(d[i+1:], '.') < 0 {
		if _, err := parseInt64(d[i+1:]); err == nil {
			d = d[:i]
		}
	}
	d = strings.TrimPrefix(d, "www.")
	return strings.Trim(d, ".")
}

// cookieMatchesDomain implements domain-suffix matching in both directions:
// a cookie for .example.com matches a query for sub.example.com, and a
// cookie for sub.example.com matches a query for example.com.
func cookieMatchesDomain(cookieDomain, queryDomain string) bool {
	c := normalizeHost(cookieDomain)
	q := normalizeHost(queryDomain)
	if c == "" || q == "" {
		return false
	}
	if c == q {
		return true
	}
	return strings.HasSuffix(c, "."+q) || strings.HasSuffix(q, "."+c)
}

// filterCookiesByDomain keeps cookies matching the query domain, drops
// expired ones unless asked otherwise, and normalizes Path.
func filterCookiesByDomain(cookies []Cookie, queryDomain string, includeExpired bool) []Cookie {
	if len(cookies) == 0 {
		return nil
	}

	now := time.Now().Unix()
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		if !cookieMatchesDomain(c.Domain, queryDomain) {
			continue
		}
		if !includeExpired && c.Expires > 0 && c.Expires < now {
			continue
		}
		if c.Path == "" {
			c.Path = "/"
		}
		out = append(out, c)
	}
	return out
}

// expandHostCandidates returns the host followed by each parent domain down
// to the registrable pair, so a query for app.example.com also reaches
// cookies stored for example.com.
func expandHostCandidates(host string) []string {
	parts := strings.Split(host, ".")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		cleaned = append(cleaned, p)
	}
	if len(cleaned) <= 1 {
		return []string{host}
	}

	seen := make(map[string]struct{}, len(cleaned))
	var out []string
	add := func(h string) {
		if h == "" {
			return
		}
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}

	add(host)
	for i := 1; i <= len(cleaned)-2; i++ {
		add(strings.Join(cleaned[i:], "."))
	}
	return out
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, ".")
	return strings.ToLower(host)
}
