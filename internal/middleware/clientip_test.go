package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPResolver(t *testing.T) {
	proxies := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.10/32"),
	}

	tests := []struct {
		name      string
		trusted   []netip.Prefix
		remote    string
		forwarded string
		realIP    string
		want      string
	}{
		{"socket peer", nil, "192.0.2.1:5555", "", "", "192.0.2.1"},
		{"headers ignored without proxies", nil, "192.0.2.1:5555", "203.0.113.7", "198.51.100.2", "192.0.2.1"},
		{"headers ignored from untrusted peer", proxies, "192.0.2.1:5555", "203.0.113.7", "", "192.0.2.1"},
		{"first untrusted hop from the right", proxies, "10.1.1.1:443", "198.51.100.9, 203.0.113.7, 10.0.0.2", "", "203.0.113.7"},
		{"real ip from trusted peer", proxies, "192.0.2.10:443", "", "198.51.100.2", "198.51.100.2"},
		{"malformed hop stops the walk", proxies, "10.1.1.1:443", "203.0.113.7, garbage", "", "10.1.1.1"},
		{"all hops trusted", proxies, "10.1.1.1:443", "10.0.0.3, 10.0.0.2", "", "10.0.0.3"},
		{"mapped ipv4 peer", nil, "[::ffff:192.0.2.1]:80", "", "", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			var got string
			handler := NewClientIPResolver(tt.trusted).Handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = ClientIP(r)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientIPWithoutResolver(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.RemoteAddr = ""
	assert.Equal(t, "unknown", ClientIP(req))
}
