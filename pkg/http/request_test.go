package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractClientIP_RemoteAddrOnly(t *testing.T) {
	r := httptest.NewRequest("POST", "/auth/login", nil)
	r.RemoteAddr = "203.0.113.7:51234"

	ip := ExtractClientIP(r, nil)
	assert.Equal(t, "203.0.113.7", ip)
}

func TestExtractClientIP_UntrustedProxyHeadersIgnored(t *testing.T) {
	r := httptest.NewRequest("POST", "/auth/login", nil)
	r.RemoteAddr = "203.0.113.7:51234"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")

	// No trusted proxies configured: forwarded headers must not be honored.
	ip := ExtractClientIP(r, &IPConfig{})
	assert.Equal(t, "203.0.113.7", ip)
}

func TestExtractClientIP_TrustedProxyForwardedFor(t *testing.T) {
	r := httptest.NewRequest("POST", "/auth/login", nil)
	r.RemoteAddr = "10.0.0.5:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.5")

	cfg := &IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	ip := ExtractClientIP(r, cfg)
	assert.Equal(t, "198.51.100.1", ip)
}

func TestExtractClientIP_TrustedProxyRealIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/auth/login", nil)
	r.RemoteAddr = "10.0.0.5:443"
	r.Header.Set("X-Real-IP", "198.51.100.2")

	cfg := &IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	ip := ExtractClientIP(r, cfg)
	assert.Equal(t, "198.51.100.2", ip)
}

func TestExtractClientIP_InvalidForwardedValue(t *testing.T) {
	r := httptest.NewRequest("POST", "/auth/login", nil)
	r.RemoteAddr = "10.0.0.5:443"
	r.Header.Set("X-Forwarded-For", "not-an-ip")

	cfg := &IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}
	ip := ExtractClientIP(r, cfg)
	assert.Equal(t, "10.0.0.5", ip)
}
