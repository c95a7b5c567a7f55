// Package gist implements the remote attempt document store against the
// GitHub Gist API. Ledger reads are unauthenticated; writes and the
// connectivity probe send the configured token. All calls carry a context
// deadline so a slow remote degrades into the ledger's fallback tiers
// instead of blocking the request.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
)

// Client talks to a Gist-shaped document store over HTTP.
type Client struct {
	apiBase    string
	token      string
	httpClient *http.Client
	logger     *logging.ChanneledLogger

	// gistID may change at runtime when bootstrap creates the document.
	mu     sync.RWMutex
	gistID string
}

// NewClient creates a new gist client. An empty gistID leaves the store
// unconfigured; an empty token leaves it read-only.
func NewClient(apiBase, gistID, token string, timeout time.Duration, logger *logging.ChanneledLogger) *Client {
	return &Client{
		apiBase:    apiBase,
		gistID:     gistID,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// documentID returns the current document id.
func (c *Client) documentID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gistID
}

// AdoptDocument switches the client to a freshly bootstrapped document id.
// The id still has to be put into configuration to survive a restart.
func (c *Client) AdoptDocument(id string) {
	c.mu.Lock()
	c.gistID = id
	c.mu.Unlock()
	c.logger.Store().Info("Adopted document id", "documentId", id)
}

// Configured reports whether reads can be attempted.
func (c *Client) Configured() bool {
	return c.documentID() != ""
}

// Writable reports whether writes can be attempted.
func (c *Client) Writable() bool {
	return c.documentID() != "" && c.token != ""
}

// gistFile mirrors the file object in the Gist API payloads.
type gistFile struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
	RawURL    string `json:"raw_url,omitempty"`
}

// gistPayload mirrors the Gist API document shape for reads and writes.
type gistPayload struct {
	ID          string              `json:"id,omitempty"`
	Description string              `json:"description,omitempty"`
	Public      *bool               `json:"public,omitempty"`
	Files       map[string]gistFile `json:"files"`
}

// ReadDocument fetches the full document with all its files.
func (c *Client) ReadDocument(ctx context.Context) (*calendar.Document, error) {
	return c.readDocument(ctx, false)
}

// readDocument performs the document GET. The connectivity probe passes
// authenticated=true to validate the write credential on a read, so
// diagnostics never touch any file.
func (c *Client) readDocument(ctx context.Context, authenticated bool) (*calendar.Document, error) {
	if !c.Configured() {
		return nil, calendar.ErrStoreNotConfigured
	}

	start := time.Now()
	url := fmt.Sprintf("%s/gists/%s", c.apiBase, c.documentID())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if authenticated && c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Store().Warn("Document read failed", "error", err.Error(), "duration", time.Since(start))
		return nil, c.mapTransportError(err)
	}
	defer resp.Body.Close()

	if err := c.mapStatusError(resp.StatusCode); err != nil {
		c.logger.Store().Warn("Document read rejected", "status", resp.StatusCode, "duration", time.Since(start))
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.mapTransportError(err)
	}

	var payload gistPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed document payload: %w", err)
	}

	doc := &calendar.Document{
		ID:    payload.ID,
		Files: make(map[string]string, len(payload.Files)),
	}
	for name, file := range payload.Files {
		content := file.Content
		if file.Truncated && file.RawURL != "" {
			content, err = c.fetchRaw(ctx, file.RawURL)
			if err != nil {
				return nil, err
			}
		}
		doc.Files[name] = content
	}

	c.logger.Store().Debug("Document read completed", "files", len(doc.Files), "duration", time.Since(start))
	return doc, nil
}

// fetchRaw follows a raw_url for files the API truncates inline.
func (c *Client) fetchRaw(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.mapTransportError(err)
	}
	defer resp.Body.Close()

	if err := c.mapStatusError(resp.StatusCode); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.mapTransportError(err)
	}
	return string(body), nil
}

// WriteFile patches a single file in the document, leaving other files
// untouched. The API merges file maps, so no read-modify-write is needed
// for sibling files.
func (c *Client) WriteFile(ctx context.Context, filename, content string) error {
	if !c.Configured() {
		return calendar.ErrStoreNotConfigured
	}
	if !c.Writable() {
		return calendar.ErrRemoteAuth
	}

	start := time.Now()
	url := fmt.Sprintf("%s/gists/%s", c.apiBase, c.documentID())

	payload := gistPayload{
		Files: map[string]gistFile{
			filename: {Content: content},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Store().Warn("File write failed", "filename", filename, "error", err.Error(), "duration", time.Since(start))
		return c.mapTransportError(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if err := c.mapStatusError(resp.StatusCode); err != nil {
		c.logger.Store().Warn("File write rejected", "filename", filename, "status", resp.StatusCode, "duration", time.Since(start))
		return err
	}

	c.logger.Store().Debug("File write completed", "filename", filename, "bytes", len(content), "duration", time.Since(start))
	return nil
}

// CreateDocument creates a fresh private document and returns its new ID.
// Used by the bootstrap flow when no document exists yet.
func (c *Client) CreateDocument(ctx context.Context, description string, files map[string]string) (string, error) {
	if c.token == "" {
		return "", calendar.ErrRemoteAuth
	}

	start := time.Now()
	url := fmt.Sprintf("%s/gists", c.apiBase)

	public := false
	payload := gistPayload{
		Description: description,
		Public:      &public,
		Files:       make(map[string]gistFile, len(files)),
	}
	for name, content := range files {
		payload.Files[name] = gistFile{Content: content}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Store().Error("Document create failed", "error", err.Error(), "duration", time.Since(start))
		return "", c.mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		if err := c.mapStatusError(resp.StatusCode); err != nil {
			c.logger.Store().Error("Document create rejected", "status", resp.StatusCode, "duration", time.Since(start))
			return "", err
		}
		return "", fmt.Errorf("%w: unexpected create status %d", calendar.ErrRemoteTransport, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.mapTransportError(err)
	}

	var created gistPayload
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", fmt.Errorf("malformed create response: %w", err)
	}

	c.logger.Store().Info("Document created", "documentId", created.ID, "duration", time.Since(start))
	return created.ID, nil
}

// VerifyConnectivity probes the store and reports a structured diagnostic.
// Never returns an error: every failure mode is folded into the status.
func (c *Client) VerifyConnectivity(ctx context.Context) calendar.StoreStatus {
	status := calendar.StoreStatus{
		Configured:   c.Configured(),
		TokenPresent: c.token != "",
		IDPresent:    c.documentID() != "",
		DocumentID:   c.documentID(),
	}
	if !status.Configured {
		status.Error = "document id not configured"
		return status
	}

	// An authenticated read validates the token without touching any file.
	// Diagnostics must never write: a rewrite here could drop attempts
	// recorded between the read and the patch.
	doc, err := c.readDocument(ctx, status.TokenPresent)
	if err == nil {
		status.Reachable = true
		status.DocumentID = doc.ID
		status.AuthOK = status.TokenPresent
		return status
	}
	status.Error = err.Error()

	if status.TokenPresent && errors.Is(err, calendar.ErrRemoteAuth) {
		// Bad token. The document may still be readable anonymously.
		if doc, readErr := c.readDocument(ctx, false); readErr == nil {
			status.Reachable = true
			status.DocumentID = doc.ID
		}
	}

	return status
}

// mapTransportError folds transport failures into the domain error set.
func (c *Client) mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", calendar.ErrRemoteTimeout, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", calendar.ErrRemoteTimeout, err)
	}
	return fmt.Errorf("%w: %v", calendar.ErrRemoteTransport, err)
}

// mapStatusError folds HTTP status codes into the domain error set.
func (c *Client) mapStatusError(status int) error {
	switch {
	case status == http.StatusNotFound:
		return calendar.ErrDocumentNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return calendar.ErrRemoteAuth
	case status >= 400:
		return fmt.Errorf("%w: unexpected status %d", calendar.ErrRemoteTransport, status)
	}
	return nil
}
