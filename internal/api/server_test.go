package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docmark/internal/config"
	"github.com/dgallion1/docmark/internal/page"
	"github.com/dgallion1/docmark/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

func testConfig() config.Config {
	return config.Config{
		DocmarkAPIKey:     testKey,
		Palette:           config.DefaultPalette,
		MaxHighlightNodes: 500,
		BlinkInterval:     time.Hour,
		ViewportWidth:     80,
		CharWidth:         8,
		LineHeight:        16,
		MaxUploadBytes:    1 << 20,
		PageTTL:           time.Hour,
		MaxPages:          4,
	}
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := page.NewStore(cfg.PageTTL, cfg.MaxPages, log)
	t.Cleanup(store.Close)
	return NewServer(store, stats.NewCollector("docmark", time.Hour), log, cfg)
}

func do(t *testing.T, s *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func doJSON(t *testing.T, s *Server, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return do(t, s, method, path, bytes.NewReader(data), "application/json")
}

func upload(t *testing.T, s *Server, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return do(t, s, http.MethodPost, "/api/pages", &buf, mw.FormDataContentType())
}

func createPage(t *testing.T, s *Server, content string) string {
	t.Helper()
	w := upload(t, s, "doc.html", content, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["page_id"])
	return resp["page_id"]
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t, testConfig())
	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pages", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/pages", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	s.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid api key")
}

func TestCreateAndGetPage(t *testing.T) {
	s := newTestServer(t, testConfig())
	w := upload(t, s, "../../notes.html", "<p>Hi there</p>", map[string]string{
		"title": "My notes",
		"url":   "https://example.com/notes",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]string](t, w)
	id := created["page_id"]
	assert.Equal(t, "My notes", created["title"])
	assert.Equal(t, "/api/pages/"+id, created["url"])

	w = do(t, s, http.MethodGet, "/api/pages/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[page.Snapshot](t, w)
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, "My notes", snap.Meta.Title)
	assert.Equal(t, "https://example.com/notes", snap.Meta.Source)
	assert.False(t, snap.Enabled)
	assert.Equal(t, 8, snap.TextLength)
	assert.Empty(t, snap.Highlights)

	w = do(t, s, http.MethodGet, "/api/pages", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[map[string][]page.Summary](t, w)
	require.Len(t, list["pages"], 1)
	assert.Equal(t, id, list["pages"][0].ID)
}

func TestCreatePage_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := upload(t, s, "run.exe", "MZ", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported file type")

	w = do(t, s, http.MethodPost, "/api/pages", strings.NewReader("x"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	cfg := testConfig()
	cfg.MaxUploadBytes = 4
	small := newTestServer(t, cfg)
	w = upload(t, small, "big.txt", "too large", nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCreatePage_StoreFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPages = 1
	s := newTestServer(t, cfg)
	createPage(t, s, "<p>one</p>")

	w := upload(t, s, "two.txt", "two", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestToggleRoundTrip(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := createPage(t, s, "<p>Hi there</p>")
	path := "/api/pages/" + id + "/actions"

	w := doJSON(t, s, http.MethodPost, path, map[string]string{"action": ActionToggleHighlight})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Highlighting enabled", decode[map[string]string](t, w)["status"])

	snap := decode[page.Snapshot](t, do(t, s, http.MethodGet, "/api/pages/"+id, nil, ""))
	assert.True(t, snap.Enabled)
	assert.Equal(t, "body", snap.Anchor)

	w = doJSON(t, s, http.MethodPost, path, map[string]string{"action": ActionToggleHighlight})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Highlighting disabled", decode[map[string]string](t, w)["status"])

	snap = decode[page.Snapshot](t, do(t, s, http.MethodGet, "/api/pages/"+id, nil, ""))
	assert.False(t, snap.Enabled)
}

func TestClearHighlights(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := createPage(t, s, "<p>Hi there</p>")
	path := "/api/pages/" + id + "/actions"

	w := doJSON(t, s, http.MethodPost, path, map[string]string{"action": ActionClearHighlights})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Highlights cleared", decode[map[string]string](t, w)["status"])

	doJSON(t, s, http.MethodPost, path, map[string]string{"action": ActionToggleHighlight})
	w = doJSON(t, s, http.MethodPost, "/api/pages/"+id+"/events", map[string]any{
		"type":      "pointerup",
		"selection": map[string]int{"start": 0, "end": 2},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[eventResponse](t, w).Page.Highlights, 1)

	w = doJSON(t, s, http.MethodPost, path, map[string]string{"action": ActionClearHighlights})
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[page.Snapshot](t, do(t, s, http.MethodGet, "/api/pages/"+id, nil, ""))
	assert.Empty(t, snap.Highlights)
	assert.NotContains(t, do(t, s, http.MethodGet, "/api/pages/"+id+"/html", nil, "").Body.String(), "<mark")
}

func TestPointerUpHighlights(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := createPage(t, s, "<p>Hi there</p>")
	doJSON(t, s, http.MethodPost, "/api/pages/"+id+"/actions", map[string]string{"action": ActionToggleHighlight})

	w := doJSON(t, s, http.MethodPost, "/api/pages/"+id+"/events", map[string]any{
		"type":      "pointerup",
		"selection": map[string]int{"start": 8, "end": 3},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[eventResponse](t, w)
	assert.False(t, resp.Handled)
	require.Len(t, resp.Page.Highlights, 1)
	assert.Equal(t, "there", resp.Page.Highlights[0].Text)
	assert.Equal(t, config.DefaultPalette[0], resp.Page.Highlights[0].Color)

	body := do(t, s, http.MethodGet, "/api/pages/"+id+"/html", nil, "").Body.String()
	assert.Contains(t, body, "there</mark>")
}

func TestPointerUp_InvalidSelectionIgnored(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := createPage(t, s, "<p>Hi there</p>")
	doJSON(t, s, http.MethodPost, "/api/pages/"+id+"/actions", map[string]string{"action": ActionToggleHighlight})

	w := doJSON(t, s, http.MethodPost, "/api/pages/"+id+"/events", map[string]any{
		"type":      "pointerup",
		"selection": map[string]int{"start": 0, "end": 500},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[eventResponse](t, w)
	assert.False(t, resp.Handled)
	assert.Empty(t, resp.Page.Highlights)
}

func TestKeyDownMovesCursor(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := createPage(t, s, "<p>Hi there</p>")
	doJSON(t, s, http.MethodPost, "/api/pages/"+id+"/actions", map[string]string{"action": ActionToggleHighlight})
	path := "/api/pages/" + id + "/events"

	w := doJSON(t, s, http.MethodPost, path, map[string]string{"type": "keydown", "key": "l"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[eventResponse](t, w).Handled)

	w = doJSON(t, s, http.MethodPost, path, map[string]string{"type": "keydown", "key": "w"})
	resp := decode[eventResponse](t, w)
	assert.True(t, resp.Handled)
	require.NotNil(t, resp.Page.Cursor)
	assert.Equal(t, 3, resp.Page.Cursor.TextOffset)
	assert.Equal(t, "there", resp.Page.Cursor.CurrentWord)
	require.NotNil(t, resp.Page.Caret)
	assert.Equal(t, 24.0, resp.Page.Caret.Left)

	w = doJSON(t, s, http.MethodPost, path, map[string]string{"type": "keydown", "key": "j", "target": "textarea"})
	assert.False(t, decode[eventResponse](t, w).Handled)

	w = do(t, s, http.MethodGet, "/api/stats/commands", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var statsResp struct {
		Stats stats.Snapshot `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statsResp))
	assert.Equal(t, 3, statsResp.Stats.All.Count)
	assert.Equal(t, 2, statsResp.Stats.Handled)
}

func TestScroll(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := createPage(t, s, "<p>first</p><p>second</p>")
	doJSON(t, s, http.MethodPost, "/api/pages/"+id+"/actions", map[string]string{"action": ActionToggleHighlight})

	w := doJSON(t, s, http.MethodPost, "/api/pages/"+id+"/scroll", map[string]float64{"x": 0, "y": 16})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/pages/"+id+"/scroll", map[string]float64{"x": -1, "y": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidation(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := createPage(t, s, "<p>Hi there</p>")

	tests := []struct {
		name string
		path string
		body any
		want string
	}{
		{"unknown action", "/actions", map[string]string{"action": "explode"}, "action must be one of"},
		{"missing action", "/actions", map[string]string{}, "action is required"},
		{"unknown event", "/events", map[string]string{"type": "click"}, "type must be one of"},
		{"keydown without key", "/events", map[string]string{"type": "keydown"}, "key is required"},
		{"negative selection", "/events", map[string]any{
			"type":      "pointerup",
			"selection": map[string]int{"start": -1, "end": 2},
		}, "start must be at least 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/api/pages/"+id+tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}

	w := do(t, s, http.MethodPost, "/api/pages/"+id+"/actions", strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid json")
}

func TestUnknownPage(t *testing.T) {
	s := newTestServer(t, testConfig())
	for _, path := range []string{"/api/pages/nope", "/api/pages/nope/html", "/api/pages/nope/markdown"} {
		w := do(t, s, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	w := doJSON(t, s, http.MethodPost, "/api/pages/nope/actions", map[string]string{"action": ActionToggleHighlight})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, s, http.MethodDelete, "/api/pages/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePage(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := createPage(t, s, "<p>Hi there</p>")
	doJSON(t, s, http.MethodPost, "/api/pages/"+id+"/actions", map[string]string{"action": ActionToggleHighlight})

	w := do(t, s, http.MethodDelete, "/api/pages/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, s, http.MethodGet, "/api/pages/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkdownExport(t *testing.T) {
	s := newTestServer(t, testConfig())
	w := upload(t, s, "post.md", "# Post\n\nSome **bold** text.\n", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[map[string]string](t, w)["page_id"]

	w = do(t, s, http.MethodGet, "/api/pages/"+id+"/markdown", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "# Post")
	assert.Contains(t, w.Body.String(), "**bold**")
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, testConfig())
	createPage(t, s, "<p>Hi there</p>")

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `docmark_http_requests_total{method="POST",route="/api/pages",status="201"} 1`)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"notes.txt":        "notes.txt",
		"../../etc/passwd": "passwd",
		"a..b.md":          "a_b.md",
		"":                 "unnamed",
		"/":                "_",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
