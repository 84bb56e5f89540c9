package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"refsync/internal/application"
)

const (
	apiVersion = "3"
	pageSize   = 100

	// DefaultTimeout bounds every request to the Web API
	DefaultTimeout = 30 * time.Second
)

// APIError is a non-2xx answer from the Web API
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("zotero %s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is maps 404 onto application.ErrNotFound
func (e *APIError) Is(target error) bool {
	return target == application.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to the Zotero Web API v3
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client for baseURL authenticated with apiKey
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// object is the envelope the API wraps every collection and item in
type object struct {
	Key     string          `json:"key"`
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

type writeFailure struct {
	Key     string `json:"key"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type writeResponse struct {
	Successful map[string]object       `json:"successful"`
	Success    map[string]string       `json:"success"`
	Failed     map[string]writeFailure `json:"failed"`
}

// created returns the key written for the first (and only) object of a
// write request
func (r writeResponse) created(path string) (string, error) {
	if f, ok := r.Failed["0"]; ok {
		return "", &APIError{Method: http.MethodPost, Path: path, StatusCode: f.Code, Message: f.Message}
	}
	if obj, ok := r.Successful["0"]; ok && obj.Key != "" {
		return obj.Key, nil
	}
	if key, ok := r.Success["0"]; ok {
		return key, nil
	}
	return "", fmt.Errorf("zotero POST %s: response has no created object", path)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request %s %s: %w", method, path, err)
	}
	req.Header.Set("Zotero-API-Version", apiVersion)
	if c.apiKey != "" {
		req.Header.Set("Zotero-API-Key", c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and returns the body of a 2xx response
func (c *Client) do(req *http.Request) ([]byte, http.Header, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("zotero %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read zotero response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &APIError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}
	return body, resp.Header, nil
}

// getJSON decodes one GET response into target
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target any) (http.Header, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	body, header, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return nil, fmt.Errorf("failed to decode zotero response for %s: %w", path, err)
	}
	return header, nil
}

// getText returns a plain text GET response
func (c *Client) getText(ctx context.Context, path string, query url.Values) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return "", err
	}
	body, _, err := c.do(req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// getAll follows start/limit pagination until Total-Results is reached
func (c *Client) getAll(ctx context.Context, path string, query url.Values) ([]object, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("limit", strconv.Itoa(pageSize))

	var all []object
	for start := 0; ; start += pageSize {
		q.Set("start", strconv.Itoa(start))

		var page []object
		header, err := c.getJSON(ctx, path, q, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		total, err := strconv.Atoi(header.Get("Total-Results"))
		if err != nil {
			total = -1
		}
		if len(page) < pageSize || (total >= 0 && len(all) >= total) {
			return all, nil
		}
	}
}

// create posts a single object and returns its new key
func (c *Client) create(ctx context.Context, path string, payload any) (string, error) {
	raw, err := json.Marshal([]any{payload})
	if err != nil {
		return "", fmt.Errorf("failed to encode zotero payload: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	body, _, err := c.do(req)
	if err != nil {
		return "", err
	}

	var resp writeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode zotero write response: %w", err)
	}
	return resp.created(path)
}
