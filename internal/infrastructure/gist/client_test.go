package gist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
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

func TestReadDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/gists/abc123" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("reads must be unauthenticated")
		}
		w.Write([]byte(`{
			"id": "abc123",
			"files": {
				"README.md": {"content": "# tracker"},
				"attempts_2026-12-05.json": {"content": "[]"}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "abc123", "", 2*time.Second, newTestLogger(t))

	doc, err := client.ReadDocument(context.Background())
	if err != nil {
		t.Fatalf("ReadDocument failed: %v", err)
	}
	if doc.ID != "abc123" {
		t.Errorf("document id = %q", doc.ID)
	}
	if doc.Files["attempts_2026-12-05.json"] != "[]" {
		t.Errorf("unexpected file content %q", doc.Files["attempts_2026-12-05.json"])
	}
}

func TestReadDocumentFollowsTruncatedRawURL(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/raw/big", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"01A"}]`))
	})
	mux.HandleFunc("/gists/abc123", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": "abc123",
			"files": map[string]any{
				"attempts_2026-12-05.json": map[string]any{
					"content":   "[{\"id\":",
					"truncated": true,
					"raw_url":   server.URL + "/raw/big",
				},
			},
		})
	})

	client := NewClient(server.URL, "abc123", "", 2*time.Second, newTestLogger(t))

	doc, err := client.ReadDocument(context.Background())
	if err != nil {
		t.Fatalf("ReadDocument failed: %v", err)
	}
	if doc.Files["attempts_2026-12-05.json"] != `[{"id":"01A"}]` {
		t.Errorf("truncated file not followed: %q", doc.Files["attempts_2026-12-05.json"])
	}
}

func TestReadDocumentErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, calendar.ErrDocumentNotFound},
		{"unauthorized", http.StatusUnauthorized, calendar.ErrRemoteAuth},
		{"forbidden", http.StatusForbidden, calendar.ErrRemoteAuth},
		{"rate limited", http.StatusTooManyRequests, calendar.ErrRemoteTransport},
		{"server error", http.StatusInternalServerError, calendar.ErrRemoteTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			client := NewClient(server.URL, "abc123", "", 2*time.Second, newTestLogger(t))
			_, err := client.ReadDocument(context.Background())
			if !errors.Is(err, tc.want) {
				t.Errorf("status %d mapped to %v, want %v", tc.status, err, tc.want)
			}
		})
	}
}

func TestReadDocumentTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, "abc123", "", 50*time.Millisecond, newTestLogger(t))
	_, err := client.ReadDocument(context.Background())
	if !errors.Is(err, calendar.ErrRemoteTimeout) {
		t.Errorf("slow remote mapped to %v, want ErrRemoteTimeout", err)
	}
}

func TestReadDocumentNotConfigured(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", "", time.Second, newTestLogger(t))
	if _, err := client.ReadDocument(context.Background()); !errors.Is(err, calendar.ErrStoreNotConfigured) {
		t.Errorf("got %v, want ErrStoreNotConfigured", err)
	}
}

func TestWriteFilePatchesSingleFile(t *testing.T) {
	var got struct {
		Files map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "token secret" {
			t.Errorf("missing token auth header, got %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("malformed patch body: %v", err)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "abc123", "secret", 2*time.Second, newTestLogger(t))

	if err := client.WriteFile(context.Background(), "attempts_2026-12-05.json", `[{"id":"01A"}]`); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if len(got.Files) != 1 {
		t.Errorf("patch must carry exactly the one file, got %d", len(got.Files))
	}
	if got.Files["attempts_2026-12-05.json"].Content != `[{"id":"01A"}]` {
		t.Errorf("unexpected patched content %q", got.Files["attempts_2026-12-05.json"].Content)
	}
}

func TestWriteFileWithoutToken(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "abc123", "", time.Second, newTestLogger(t))
	if err := client.WriteFile(context.Background(), "x.json", "[]"); !errors.Is(err, calendar.ErrRemoteAuth) {
		t.Errorf("tokenless write mapped to %v, want ErrRemoteAuth", err)
	}
}

func TestCreateDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/gists" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload struct {
			Description string         `json:"description"`
			Public      *bool          `json:"public"`
			Files       map[string]any `json:"files"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("malformed create body: %v", err)
		}
		if payload.Public == nil || *payload.Public {
			t.Error("created document must be private")
		}
		if payload.Description != "Advent Calendar Attempts Tracker" {
			t.Errorf("unexpected description %q", payload.Description)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "new-gist-id"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "secret", 2*time.Second, newTestLogger(t))

	id, err := client.CreateDocument(context.Background(), "Advent Calendar Attempts Tracker", map[string]string{"README.md": "# tracker"})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if id != "new-gist-id" {
		t.Errorf("created id = %q", id)
	}
}

func TestCreateDocumentNonCreatedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "x"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "secret", 2*time.Second, newTestLogger(t))
	if _, err := client.CreateDocument(context.Background(), "d", nil); !errors.Is(err, calendar.ErrRemoteTransport) {
		t.Errorf("non-201 create mapped to %v, want ErrRemoteTransport", err)
	}
}

func TestVerifyConnectivity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "abc123", "files": {}}`))
	}))
	defer server.Close()

	t.Run("unconfigured", func(t *testing.T) {
		client := NewClient(server.URL, "", "", time.Second, newTestLogger(t))
		status := client.VerifyConnectivity(context.Background())
		if status.Configured || status.Reachable {
			t.Errorf("unconfigured store reported %+v", status)
		}
	})

	t.Run("read-only reachable", func(t *testing.T) {
		client := NewClient(server.URL, "abc123", "", time.Second, newTestLogger(t))
		status := client.VerifyConnectivity(context.Background())
		if !status.Reachable || status.AuthOK || status.TokenPresent {
			t.Errorf("read-only store reported %+v", status)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "abc123", "", time.Second, newTestLogger(t))
		status := client.VerifyConnectivity(context.Background())
		if status.Reachable || status.Error == "" {
			t.Errorf("unreachable store reported %+v", status)
		}
	})
}

// The status check must stay read-only: a diagnostic rewrite would race
// attempts recorded between its read and its patch and silently drop them.
func TestVerifyConnectivityNeverWrites(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("status check issued %s %s, want reads only", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		authHeader = r.Header.Get("Authorization")
		w.Write([]byte(`{"id": "abc123", "files": {"attempts-2026-12-10.json": {"content": "[]"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "abc123", "secret", 2*time.Second, newTestLogger(t))
	status := client.VerifyConnectivity(context.Background())
	if !status.Reachable || !status.AuthOK {
		t.Errorf("writable store reported %+v", status)
	}
	if authHeader != "token secret" {
		t.Errorf("status check sent Authorization %q, want the configured token", authHeader)
	}
}

func TestVerifyConnectivityBadToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id": "abc123", "files": {}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "abc123", "expired", 2*time.Second, newTestLogger(t))
	status := client.VerifyConnectivity(context.Background())
	if !status.Reachable {
		t.Errorf("anonymously readable document reported unreachable: %+v", status)
	}
	if status.AuthOK {
		t.Error("rejected token reported AuthOK")
	}
	if status.Error == "" {
		t.Error("rejected token left no error detail")
	}
}
