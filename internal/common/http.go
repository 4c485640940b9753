package common

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the caller address from r.RemoteAddr. Forwarding headers are
// not read here; the router runs chi's RealIP middleware, which rewrites RemoteAddr.
// IPv4-mapped IPv6 addresses are unmapped so both spellings share one identity.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	raw := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}
	if addr, err := netip.ParseAddr(raw); err == nil {
		return addr.Unmap().String()
	}
	return raw
}
