package clientip

import (
	"net"
	"net/http"
	"strings"
)

// TrustForwardedFor makes RealClientIP read X-Forwarded-For. Enable it only when every
// request passes through a proxy that appends the peer address to that header.
var TrustForwardedFor bool

// RealClientIP returns the client IP used for rate limiting and logging.
// By default it is r.RemoteAddr; behind a trusted proxy it is the last
// X-Forwarded-For hop, the one the proxy itself added.
func RealClientIP(r *http.Request) string {
	if TrustForwardedFor {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			hops := strings.Split(xff, ",")
			if ip := strings.TrimSpace(hops[len(hops)-1]); net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
