package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewClient tests the Client constructor.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("valid proxy address creates client", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:9050", 30*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "127.0.0.1:9050" {
			t.Errorf("ProxyAddress() = %q, expected %q", client.ProxyAddress(), "127.0.0.1:9050")
		}
	})

	t.Run("invalid address returns ErrInvalidProxyAddress", func(t *testing.T) {
		t.Parallel()

		_, err := NewClient("127.0.0.1", 30*time.Second)
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})
}

// TestIsValidProxyAddress tests the proxy address validation function.
func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		address  string
		expected bool
	}{
		{"valid IPv4 with port", "127.0.0.1:9050", true},
		{"valid localhost with port", "localhost:1080", true},
		{"valid hostname with port", "proxy.example.com:9050", true},
		{"empty string", "", false},
		{"no port", "127.0.0.1", false},
		{"empty host", ":9050", false},
		{"empty port", "127.0.0.1:", false},
		{"multiple colons", "127.0.0.1:9050:extra", false},
		{"only colon", ":", false},
		{"port zero", "127.0.0.1:0", false},
		{"port too large", "127.0.0.1:65536", false},
		{"non-numeric port", "127.0.0.1:abc", false},
		{"signed port", "127.0.0.1:+80", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isValidProxyAddress(tc.address); got != tc.expected {
				t.Errorf("isValidProxyAddress(%q) = %v, expected %v", tc.address, got, tc.expected)
			}
		})
	}
}

// fakeProxy accepts one connection, reads the greeting, and answers reply.
func fakeProxy(t *testing.T, reply []byte) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		greeting := make([]byte, 3)
		if _, err := io.ReadFull(conn, greeting); err != nil {
			return
		}
		_, _ = conn.Write(reply)
	}()

	return ln.Addr().String()
}

// TestCheckConnection tests the SOCKS5 greeting check.
func TestCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("SOCKS5 proxy without auth is OK", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(fakeProxy(t, []byte{0x05, 0x00}), time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusOK {
			t.Errorf("expected OK, got %s", status)
		}
	})

	t.Run("proxy requiring auth is the wrong type", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(fakeProxy(t, []byte{0x05, 0xFF}), time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected wrong type, got %s", status)
		}
	})

	t.Run("non-SOCKS peer is the wrong type", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(fakeProxy(t, []byte("HTTP/1.1 400 Bad Request\r\n")), time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected wrong type, got %s", status)
		}
	})

	t.Run("closed port cannot connect", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		addr := ln.Addr().String()
		ln.Close()

		client, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		status := client.CheckConnection(context.Background())
		if !errors.Is(status.Error(), ErrProxyCannotConnect) {
			t.Errorf("expected cannot connect, got %s", status)
		}
	})
}

// TestProxyStatus tests ProxyStatus String and Error methods.
func TestProxyStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status      ProxyStatus
		str         string
		expectedErr error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not SOCKS5)", ErrProxyNotSOCKS5},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tc := range testCases {
		if tc.status.String() != tc.str {
			t.Errorf("ProxyStatus(%d).String() = %q, expected %q", tc.status, tc.status.String(), tc.str)
		}
		if err := tc.status.Error(); !errors.Is(err, tc.expectedErr) {
			t.Errorf("ProxyStatus(%d).Error() = %v, expected %v", tc.status, err, tc.expectedErr)
		}
	}

	if ProxyStatus(99).String() != "unknown" || ProxyStatus(99).Error() == nil {
		t.Error("unknown status should report unknown and an error")
	}
}

// TestTransport tests transport configuration.
func TestTransport(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:9050", 60*time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	transport := client.Transport()
	if transport.DialContext == nil {
		t.Error("expected DialContext to be set")
	}
	if transport.ResponseHeaderTimeout != 60*time.Second || transport.TLSHandshakeTimeout != 60*time.Second {
		t.Errorf("expected client timeout on the transport, got %v / %v",
			transport.ResponseHeaderTimeout, transport.TLSHandshakeTimeout)
	}
}

// TestWithHeaders tests static header injection.
func TestWithHeaders(t *testing.T) {
	t.Parallel()

	t.Run("injects headers without overriding request values", func(t *testing.T) {
		t.Parallel()

		got := make(chan http.Header, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got <- r.Header.Clone()
		}))
		defer srv.Close()

		client := &http.Client{Transport: WithHeaders(nil, map[string]string{
			"X-Crawler": "spider",
			"Accept":    "text/html",
		})}

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
		if err != nil {
			t.Fatalf("failed to create request: %v", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()

		h := <-got
		if h.Get("X-Crawler") != "spider" {
			t.Errorf("expected injected header, got %q", h.Get("X-Crawler"))
		}
		if h.Get("Accept") != "application/json" {
			t.Errorf("request header should win, got %q", h.Get("Accept"))
		}
	})

	t.Run("no headers returns base", func(t *testing.T) {
		t.Parallel()

		if WithHeaders(http.DefaultTransport, nil) != http.DefaultTransport {
			t.Error("expected base transport to be returned")
		}
	})
}
