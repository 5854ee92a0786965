package api

import (
	"net"
	"net/http"
	"strings"
)

// clientIP returns the request's client address without the port.
// middleware.RealIP has already applied X-Forwarded-For and X-Real-IP.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// formBool reads a checkbox-style field. Absent, empty, "0", "false" and "off" are false.
func formBool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.PostFormValue(key))) {
	case "", "0", "false", "off":
		return false
	default:
		return true
	}
}
