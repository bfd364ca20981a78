package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIPIgnoresHeaders(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:52311"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "10.0.0.7", RealClientIP(r))
	assert.Equal(t, "10.0.0.7", Resolver(false)(r))

	r.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", RealClientIP(r))
}

func TestForwardedClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:52311"

	r.Header.Set("X-Forwarded-For", "garbage, 203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", Resolver(true)(r))

	r.Header.Del("X-Forwarded-For")
	r.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", ForwardedClientIP(r))

	r.Header.Del("X-Real-IP")
	assert.Equal(t, "10.0.0.7", ForwardedClientIP(r))
}
