package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

const reportBody = `{
  "fragments": [
    {"text": "1. Intro", "font_size": 16, "page": 1, "bbox": {"x": 72, "y": 100}},
    {"text": "1.1 Background", "font_size": 14, "page": 1, "bbox": {"x": 90, "y": 130}},
    {"text": "1. foo", "font_size": 10, "page": 1, "bbox": {"x": 200, "y": 400}}
  ]
}`

func newTestServer(apiKey string) *Server {
	return New(Options{Pipeline: outline.DefaultConfig(), APIKey: apiKey})
}

func do(s *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(""), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestOutline(t *testing.T) {
	s := newTestServer("")
	rec := do(s, http.MethodPost, "/api/outline", reportBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp outlineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, resp.RunID, rec.Header().Get("X-Run-ID"))
	require.Len(t, resp.Bookmarks, 2)
	assert.Equal(t, "1. Intro", resp.Bookmarks[0].Title)
	assert.Equal(t, 2, resp.Bookmarks[1].Level)
	require.Len(t, resp.Tree, 1)
	assert.Len(t, resp.Tree[0].Children, 1)
	assert.Equal(t, 1, resp.Diagnostics.Rejections()[outline.StageAlign])

	metrics := do(s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `pdfoutline_runs_total{status="ok"} 1`)
	assert.Contains(t, metrics.Body.String(), `pdfoutline_rejections_total{stage="align"} 1`)
}

func TestOutlineEmptyDocument(t *testing.T) {
	rec := do(newTestServer(""), http.MethodPost, "/api/outline", `{"fragments": [], "page_count": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bookmarks":[]`)
	assert.Contains(t, rec.Body.String(), `"tree":[]`)
}

func TestOutlineBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"not json", `{"fragments":`, http.StatusBadRequest},
		{"bad config type", `{"fragments":[],"config":{"max_depth":"deep"}}`, http.StatusBadRequest},
		{"invalid config", `{"fragments":[],"config":{"max_depth":0}}`, http.StatusBadRequest},
	}
	s := newTestServer("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/api/outline", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestOutlineBodyTooLarge(t *testing.T) {
	s := New(Options{Pipeline: outline.DefaultConfig(), MaxBodyBytes: 16})
	rec := do(s, http.MethodPost, "/api/outline", reportBody)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAuth(t *testing.T) {
	s := newTestServer("secret")
	tests := []struct {
		name   string
		header []string
		status int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"wrong", []string{"Authorization", "Bearer nope"}, http.StatusUnauthorized},
		{"not bearer", []string{"Authorization", "secret"}, http.StatusUnauthorized},
		{"ok", []string{"Authorization", "Bearer secret"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/api/outline", reportBody, tt.header...)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	// Health stays open.
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/health", "").Code)
}

func TestOutlineConfigOverlayIsPerRequest(t *testing.T) {
	cfg := outline.DefaultConfig()
	x := 72.0
	cfg.Alignment.ReferenceX = &x
	cfg.Filter.Exclude = make([]string, 1, 4)
	cfg.Filter.Exclude[0] = "appendix"
	s := New(Options{Pipeline: cfg})

	overlay := `{"fragments":[{"text":"1. Intro","font_size":16,"page":1,"bbox":{"x":72}}],` +
		`"config":{"alignment":{"reference_x":300},"filter":{"exclude":["intro"]}}}`
	rec := do(s, http.MethodPost, "/api/outline", overlay)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, 72.0, *s.opts.Pipeline.Alignment.ReferenceX)
	assert.Equal(t, []string{"appendix"}, s.opts.Pipeline.Filter.Exclude)

	rec = do(s, http.MethodPost, "/api/outline", reportBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp outlineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Bookmarks, 2)
}
