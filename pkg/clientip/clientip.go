// Package clientip resolves the caller's address for request logs.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the peer address of the connection. Proxy headers are
// ignored, so the result cannot be spoofed by the caller.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}

// ForwardedClientIP prefers the left-most valid address in X-Forwarded-For,
// then X-Real-IP, then the peer address. Only use it when the server sits
// behind a proxy that overwrites those headers.
func ForwardedClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return RealClientIP(r)
}

// Resolver picks RealClientIP or ForwardedClientIP.
func Resolver(trustProxy bool) func(*http.Request) string {
	if trustProxy {
		return ForwardedClientIP
	}
	return RealClientIP
}
