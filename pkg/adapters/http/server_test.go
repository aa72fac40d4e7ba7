package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/blueprint"
	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...Option) (http.Handler, *blueprint.Studio) {
	t.Helper()
	n := 0
	studio := blueprint.New(blueprint.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("sec-%d", n)
	}))
	handler, err := NewHandler(studio, opts...)
	require.NoError(t, err)
	return handler, studio
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeCanvas(t *testing.T, w *httptest.ResponseRecorder) domain.Canvas {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var c domain.Canvas
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	return c
}

func TestHealthAndInfo(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "blueprint-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.Equal(t, strings.TrimSpace(blueprint.Version), info["version"])

	w = do(t, h, "GET", "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Blueprint Studio API")
}

func TestEditingFlow(t *testing.T) {
	h, studio := newTestHandler(t)

	c := decodeCanvas(t, do(t, h, "POST", "/canvas/open", `{"storeId":"demo-store","pageTypeId":"home"}`))
	assert.Equal(t, "demo-store", c.StoreID)

	decodeCanvas(t, do(t, h, "POST", "/sections", `{"type":"Header"}`))
	decodeCanvas(t, do(t, h, "POST", "/sections", `{"type":"HeroBanner"}`))
	c = decodeCanvas(t, do(t, h, "POST", "/sections", `{"type":"Footer"}`))
	require.Equal(t, []string{"sec-1", "sec-2", "sec-3"}, c.SectionIDs())

	c = decodeCanvas(t, do(t, h, "POST", "/sections/sec-3/move-up", ""))
	assert.Equal(t, []string{"sec-1", "sec-3", "sec-2"}, c.SectionIDs())

	c = decodeCanvas(t, do(t, h, "POST", "/sections/reorder", `{"from":0,"to":2}`))
	assert.Equal(t, []string{"sec-3", "sec-2", "sec-1"}, c.SectionIDs())

	c = decodeCanvas(t, do(t, h, "PATCH", "/sections/sec-2", `{"alignment":"center"}`))
	sec, ok := c.Section("sec-2")
	require.True(t, ok)
	assert.Equal(t, domain.AlignCenter, sec.Alignment)

	c = decodeCanvas(t, do(t, h, "POST", "/undo", ""))
	sec, _ = c.Section("sec-2")
	assert.Equal(t, domain.AlignLeft, sec.Alignment)

	c = decodeCanvas(t, do(t, h, "POST", "/redo", ""))
	sec, _ = c.Section("sec-2")
	assert.Equal(t, domain.AlignCenter, sec.Alignment)

	c = decodeCanvas(t, do(t, h, "DELETE", "/sections/sec-1", ""))
	assert.Equal(t, []string{"sec-3", "sec-2"}, c.SectionIDs())
	for i, s := range c.Sections {
		assert.Equal(t, i, s.Order)
	}

	w := do(t, h, "PUT", "/selection", `{"id":"sec-2"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "sec-2", studio.Selected())

	var st domain.StudioState
	w = do(t, h, "GET", "/state", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.True(t, st.Unsaved)
	assert.Equal(t, []string{"sec-3", "sec-2"}, st.LayerOrder)

	c = decodeCanvas(t, do(t, h, "POST", "/publish", ""))
	assert.Equal(t, domain.StatusPublished, c.Status)
	assert.False(t, studio.HasUnsavedChanges())
}

func TestSchemaValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	decodeCanvas(t, do(t, h, "POST", "/canvas/open", `{"storeId":"demo-store","pageTypeId":"home"}`))

	w := do(t, h, "POST", "/sections", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/sections/reorder", `{"from":-1,"to":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", "/canvas/open", `{"storeId":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMapping(t *testing.T) {
	h, _ := newTestHandler(t)

	assert.Equal(t, http.StatusConflict, do(t, h, "POST", "/save", "").Code)
	assert.Equal(t, http.StatusConflict, do(t, h, "GET", "/canvas", "").Code)

	decodeCanvas(t, do(t, h, "POST", "/canvas/open", `{"storeId":"demo-store","pageTypeId":"home"}`))
	assert.Equal(t, http.StatusNotFound, do(t, h, "DELETE", "/sections/ghost", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "POST", "/sections/reorder", `{"from":3,"to":0}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, "POST", "/snapshot", `{"id":""}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "DELETE", "/notices/ghost", "").Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", domain.ErrSectionNotFound), http.StatusNotFound},
		{domain.ErrIndexOutOfRange, http.StatusBadRequest},
		{domain.ErrInvalidSnapshot, http.StatusUnprocessableEntity},
		{domain.ErrNoCanvas, http.StatusConflict},
		{domain.ErrStaleResponse, http.StatusConflict},
		{fmt.Errorf("%w: boom", domain.ErrTransientFetch), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	h, _ := newTestHandler(t)
	decodeCanvas(t, do(t, h, "POST", "/canvas/open", `{"storeId":"demo-store","pageTypeId":"home"}`))
	decodeCanvas(t, do(t, h, "POST", "/sections", `{"type":"Header"}`))

	w := do(t, h, "GET", "/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.String()

	decodeCanvas(t, do(t, h, "POST", "/sections", `{"type":"Footer"}`))
	c := decodeCanvas(t, do(t, h, "POST", "/snapshot", exported))
	assert.Equal(t, []string{"sec-1"}, c.SectionIDs())
}

func TestProposalsAndReferenceLookups(t *testing.T) {
	h, _ := newTestHandler(t)
	decodeCanvas(t, do(t, h, "POST", "/canvas/open", `{"storeId":"demo-store","pageTypeId":"home"}`))

	c := decodeCanvas(t, do(t, h, "POST", "/proposals", `{"pageType":"home","desiredSections":["hero banner","product grid"]}`))
	assert.Len(t, c.Sections, 2)

	w := do(t, h, "GET", "/templates", "")
	require.Equal(t, http.StatusOK, w.Code)
	var templates []domain.SectionTemplate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &templates))
	assert.NotEmpty(t, templates)

	w = do(t, h, "GET", "/allowed-sections", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Header")
}

func TestMetricsMount(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "blueprint_commits_total 0\n")
	})
	h, _ := newTestHandler(t, WithMetricsHandler(metrics))

	w := do(t, h, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blueprint_commits_total")
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestHandler(t)
	w := do(t, h, "OPTIONS", "/sections", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents_Diff(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?watch=sections", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	post := func(path, body string) {
		r, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		r.Body.Close()
		require.Equal(t, http.StatusOK, r.StatusCode)
	}
	post("/canvas/open", `{"storeId":"demo-store","pageTypeId":"home"}`)
	post("/sections", `{"type":"Header"}`)

	var data, event string
	for lines.Scan() {
		line := lines.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			event = name
			continue
		}
		if payload, ok := strings.CutPrefix(line, "data: "); ok && event == "diff" {
			data = payload
			break
		}
	}
	require.NotEmpty(t, data)

	var diff domain.CanvasDiff
	require.NoError(t, json.Unmarshal([]byte(data), &diff))
	require.Len(t, diff.Added, 1)
	assert.Equal(t, "Header", diff.Added[0].Type)
}

func TestMatchesWatch(t *testing.T) {
	order := `{"canvas_id":"c","order":["a","b"]}`
	assert.True(t, matchesWatch(order, nil))
	assert.True(t, matchesWatch(order, []string{"order"}))
	assert.False(t, matchesWatch(order, []string{"sections", "status"}))
	assert.True(t, matchesWatch(`{"canvas_id":"c","status":"published"}`, []string{" status"}))
}
