// Package ipinfo resolves the caller's public IP address via external echo
// services, with a deterministic fingerprint-hash fallback when both echo
// endpoints are unreachable.
package ipinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
)

// Resolver queries the configured IP echo endpoints.
type Resolver struct {
	primaryURL   string
	secondaryURL string
	httpClient   *http.Client
	logger       *logging.ChanneledLogger
}

// NewResolver creates a new public IP resolver.
func NewResolver(primaryURL, secondaryURL string, timeout time.Duration, logger *logging.ChanneledLogger) *Resolver {
	return &Resolver{
		primaryURL:   primaryURL,
		secondaryURL: secondaryURL,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

type echoResponse struct {
	IP string `json:"ip"`
}

// PublicIP returns the caller's public IP, trying the primary endpoint first
// and the secondary on any failure.
func (r *Resolver) PublicIP(ctx context.Context) (string, error) {
	ip, primaryErr := r.query(ctx, r.primaryURL)
	if primaryErr == nil {
		return ip, nil
	}
	r.logger.Identity().Warn("Primary IP echo failed, trying secondary", "error", primaryErr.Error())

	ip, secondaryErr := r.query(ctx, r.secondaryURL)
	if secondaryErr == nil {
		return ip, nil
	}
	r.logger.Identity().Warn("Secondary IP echo failed", "error", secondaryErr.Error())

	return "", fmt.Errorf("all IP echo endpoints failed: %v; %v", primaryErr, secondaryErr)
}

func (r *Resolver) query(ctx context.Context, url string) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var echo echoResponse
	if err := json.Unmarshal(body, &echo); err != nil {
		return "", fmt.Errorf("malformed echo response: %w", err)
	}
	if strings.TrimSpace(echo.IP) == "" {
		return "", fmt.Errorf("empty IP in echo response from %s", url)
	}

	r.logger.Identity().Debug("Public IP resolved", "endpoint", url, "duration", time.Since(start))
	return echo.IP, nil
}

// FallbackIdentity derives a stable identity from client fingerprint hints
// when no public IP can be obtained. Same seed, same identity.
func FallbackIdentity(seed string) string {
	var hash int32
	for _, ch := range seed {
		hash = (hash << 5) - hash + int32(ch)
	}
	// Widen before negating so MinInt32 still maps to a positive value.
	h := int64(hash)
	if h < 0 {
		h = -h
	}
	return fmt.Sprintf("fallback-%d", h)
}
