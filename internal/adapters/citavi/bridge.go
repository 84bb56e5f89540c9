package citavi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"refsync/internal/application"
)

// DefaultTimeout bounds every bridge call. Large projects are slow to
// enumerate, so it is more generous than the web client's.
const DefaultTimeout = 2 * time.Minute

// BridgeError is a failed bridge call
type BridgeError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("citavi bridge %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is maps 404 onto application.ErrNotFound
func (e *BridgeError) Is(target error) bool {
	return target == application.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Bridge is a JSON client for the Citavi automation bridge, a small
// HTTP service running next to the desktop application
type Bridge struct {
	http    *http.Client
	baseURL string
}

// NewBridge creates a bridge client for baseURL. A nil hc uses a client
// with DefaultTimeout.
func NewBridge(baseURL string, hc *http.Client) *Bridge {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Bridge{http: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

func (b *Bridge) get(ctx context.Context, path string, query url.Values, target any) error {
	return b.call(ctx, http.MethodGet, path, query, nil, target)
}

func (b *Bridge) post(ctx context.Context, path string, payload, target any) error {
	return b.call(ctx, http.MethodPost, path, nil, payload, target)
}

func (b *Bridge) call(ctx context.Context, method, path string, query url.Values, payload, target any) error {
	u := b.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode bridge payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("citavi bridge %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read bridge response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &BridgeError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: bridgeMessage(raw, resp.StatusCode)}
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode bridge response for %s: %w", path, err)
	}
	return nil
}

// bridgeMessage extracts {"error": "..."} from a failed response
func bridgeMessage(raw []byte, status int) string {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
		return env.Error
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return msg
	}
	return http.StatusText(status)
}
