package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response envelope
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		RequestID string         `json:"request_id"`
		Details   map[string]any `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

// APIResponse is a decoded API response
type APIResponse struct {
	Code     int
	Header   http.Header
	Envelope Envelope
}

// ErrorCode returns the error code or "" for a success
func (r *APIResponse) ErrorCode() string {
	if r.Envelope.Error == nil {
		return ""
	}
	return r.Envelope.Error.Code
}

// APIClient sends JSON requests to an in-process handler
type APIClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

// NewAPIClient creates an unauthenticated client
func NewAPIClient(t *testing.T, handler http.Handler) *APIClient {
	return &APIClient{t: t, handler: handler}
}

// WithToken returns a copy of the client sending the bearer token
func (c *APIClient) WithToken(token string) *APIClient {
	cp := *c
	cp.token = token
	return &cp
}

// Do sends body as JSON and decodes the envelope. A nil body sends no payload.
func (c *APIClient) Do(method, path string, body any) *APIResponse {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		reader = ToJSONReader(c.t, body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	resp := &APIResponse{Code: w.Code, Header: w.Header()}
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp.Envelope), "body: %s", w.Body.String())
	}
	return resp
}

// Get is Do with GET and no body
func (c *APIClient) Get(path string) *APIResponse {
	c.t.Helper()
	return c.Do(http.MethodGet, path, nil)
}

// Post is Do with POST
func (c *APIClient) Post(path string, body any) *APIResponse {
	c.t.Helper()
	return c.Do(http.MethodPost, path, body)
}

// DataAs decodes the envelope data of resp into T
func DataAs[T any](t *testing.T, resp *APIResponse) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Envelope.Data, &out), "data: %s", string(resp.Envelope.Data))
	return out
}

// ToJSONReader marshals v for a request body
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}
