package security

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultCSP = "default-src 'none'; frame-ancestors 'none'"

// Headers sets the response headers every API answer carries. Quotes contain personal
// financial figures, so nothing may be cached by shared or browser caches.
type Headers struct {
	// HSTS enables Strict-Transport-Security on requests that arrived over TLS,
	// directly or through a proxy reporting X-Forwarded-Proto: https.
	HSTS              bool
	HSTSMaxAge        time.Duration
	HSTSSubdomains    bool
	ContentSecurity   string
	PermissionsPolicy string
}

// Middleware attaches the headers before the handler runs.
func (h Headers) Middleware(next http.Handler) http.Handler {
	csp := h.ContentSecurity
	if csp == "" {
		csp = defaultCSP
	}
	permissions := h.PermissionsPolicy
	if permissions == "" {
		permissions = "geolocation=(), microphone=(), camera=()"
	}
	hsts := hstsValue(h.HSTSMaxAge, h.HSTSSubdomains)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "no-referrer")
		headers.Set("Permissions-Policy", permissions)
		headers.Set("Content-Security-Policy", csp)
		headers.Set("Cross-Origin-Resource-Policy", "same-site")
		headers.Set("Cache-Control", "no-store")
		if h.HSTS && isHTTPS(r) {
			headers.Set("Strict-Transport-Security", hsts)
		}
		next.ServeHTTP(w, r)
	})
}

func hstsValue(maxAge time.Duration, subdomains bool) string {
	if maxAge <= 0 {
		maxAge = 365 * 24 * time.Hour
	}
	value := "max-age=" + strconv.FormatInt(int64(maxAge/time.Second), 10)
	if subdomains {
		value += "; includeSubDomains"
	}
	return value
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
