package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient pools every request whose address cannot be derived
// into one shared bucket. Fail-safe-closed: unidentifiable clients
// collectively get one slot per window rather than unlimited slots.
const UnknownClient = "unknown"

// ClientID derives the rate-limit identity of a request: first entry of
// X-Forwarded-For, else X-Real-Ip, else the transport peer address.
func ClientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])

		if first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)

	if err == nil && host != "" {
		return host
	}

	if addr := strings.TrimSpace(r.RemoteAddr); addr != "" {
		return addr
	}

	return UnknownClient
}
