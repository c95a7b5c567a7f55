package ipinfo

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
)

func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.Level(12),
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	if err != nil {
		t.Fatalf("failed to build test logger: %v", err)
	}
	return logger
}

func TestPublicIPPrimary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"203.0.113.7"}`))
	}))
	defer primary.Close()

	resolver := NewResolver(primary.URL, "http://127.0.0.1:1", time.Second, newTestLogger(t))

	ip, err := resolver.PublicIP(context.Background())
	if err != nil {
		t.Fatalf("PublicIP failed: %v", err)
	}
	if ip != "203.0.113.7" {
		t.Errorf("ip = %q", ip)
	}
}

func TestPublicIPSecondaryFallback(t *testing.T) {
	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"198.51.100.9"}`))
	}))
	defer secondary.Close()

	resolver := NewResolver("http://127.0.0.1:1", secondary.URL, time.Second, newTestLogger(t))

	ip, err := resolver.PublicIP(context.Background())
	if err != nil {
		t.Fatalf("PublicIP failed: %v", err)
	}
	if ip != "198.51.100.9" {
		t.Errorf("ip = %q", ip)
	}
}

func TestPublicIPAllEndpointsDown(t *testing.T) {
	resolver := NewResolver("http://127.0.0.1:1", "http://127.0.0.1:1", 200*time.Millisecond, newTestLogger(t))

	if _, err := resolver.PublicIP(context.Background()); err == nil {
		t.Error("expected error when every echo endpoint is down")
	}
}

func TestPublicIPRejectsBadResponses(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty ip", `{"ip":""}`},
		{"whitespace ip", `{"ip":"  "}`},
		{"not json", `203.0.113.7`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			resolver := NewResolver(server.URL, server.URL, time.Second, newTestLogger(t))
			if _, err := resolver.PublicIP(context.Background()); err == nil {
				t.Errorf("body %q should not resolve", tc.body)
			}
		})
	}
}

func TestFallbackIdentity(t *testing.T) {
	a := FallbackIdentity("mozilla|en-US|UTC+1")
	b := FallbackIdentity("mozilla|en-US|UTC+1")
	c := FallbackIdentity("webkit|de-DE|UTC+1")

	if a != b {
		t.Errorf("same seed produced %q and %q", a, b)
	}
	if a == c {
		t.Error("different seeds collided")
	}
	if !strings.HasPrefix(a, "fallback-") {
		t.Errorf("identity %q missing fallback prefix", a)
	}
	if strings.Contains(a, "--") || strings.Contains(strings.TrimPrefix(a, "fallback-"), "-") {
		t.Errorf("identity %q carries a negative hash", a)
	}

	if got := FallbackIdentity(""); got != "fallback-0" {
		t.Errorf("empty seed = %q, want fallback-0", got)
	}
}
