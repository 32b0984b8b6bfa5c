package sse_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/sr5rules/api/sse"
	"github.com/kasuganosora/sr5rules/config"
	"github.com/kasuganosora/sr5rules/game/session"
	mw "github.com/kasuganosora/sr5rules/middleware"
	"github.com/kasuganosora/sr5rules/testutil"
)

type fakeRecent []session.Result

func (f fakeRecent) Recent(_ context.Context, _ string, n int) ([]session.Result, error) {
	return f[:min(n, len(f))], nil
}

func newServer(t *testing.T, recent sse.Recent, origins ...string) (*httptest.Server, func(channel, payload string)) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	_, ps := testutil.SetupTestCache(t)
	h := sse.NewHandler(ps, recent, config.SecurityConfig{AllowedOrigins: origins}, nil)
	r := gin.New()
	r.Use(mw.Identity())
	r.GET("/sse", h.ServeSSE)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, func(channel, payload string) {
		require.NoError(t, ps.Publish(context.Background(), channel, payload))
	}
}

func open(t *testing.T, url string, header ...string) (*http.Response, *bufio.Reader) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp, bufio.NewReader(resp.Body)
}

// nextEvent reads lines up to the blank line ending one event.
func nextEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var b strings.Builder
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line == "\n" {
			return b.String()
		}
		b.WriteString(line)
	}
}

func TestServeSSE_FiltersByScene(t *testing.T) {
	srv, publish := newServer(t, nil)

	resp, r := open(t, srv.URL+"/sse?scene=s1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Contains(t, nextEvent(t, r), "event: connected")

	publish(session.ChannelResults, `{"test_id":"other","scene_id":"s2"}`)
	publish("unrelated", `{"test_id":"noise","scene_id":"s1"}`)
	publish(session.ChannelResults, `{"test_id":"t1","scene_id":"s1"}`)

	ev := nextEvent(t, r)
	assert.Contains(t, ev, "event: result")
	assert.Contains(t, ev, "id: t1")
	assert.NotContains(t, ev, "other")
}

func TestServeSSE_Replay(t *testing.T) {
	recent := fakeRecent{{TestID: "new", SceneID: "s1"}, {TestID: "old", SceneID: "s1"}}
	srv, _ := newServer(t, recent)

	resp, r := open(t, srv.URL+"/sse?replay=5", mw.SceneHeader, "s1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	nextEvent(t, r)
	assert.Contains(t, nextEvent(t, r), "id: old")
	assert.Contains(t, nextEvent(t, r), "id: new")
}

func TestServeSSE_Rejects(t *testing.T) {
	srv, _ := newServer(t, nil, "https://table.example")

	resp, _ := open(t, srv.URL+"/sse")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = open(t, srv.URL+"/sse?scene=s1", "Origin", "https://evil.example")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = open(t, srv.URL+"/sse?scene=s1", "Origin", "https://table.example")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://table.example", resp.Header.Get("Access-Control-Allow-Origin"))
}
