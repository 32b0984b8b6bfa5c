// Package sse streams completed test results to browsers.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/kasuganosora/sr5rules/cache"
	"github.com/kasuganosora/sr5rules/config"
	"github.com/kasuganosora/sr5rules/game/session"
	mw "github.com/kasuganosora/sr5rules/middleware"
)

const keepalive = 30 * time.Second

// Recent returns the latest results of a scene, newest first.
type Recent interface {
	Recent(ctx context.Context, sceneID string, n int) ([]session.Result, error)
}

// Handler handles the SSE endpoint.
type Handler struct {
	pubsub cache.PubSub
	recent Recent
	sec    config.SecurityConfig
	logger *zap.Logger
}

// NewHandler creates a new SSE Handler. recent may be nil to disable replay.
func NewHandler(pubsub cache.PubSub, recent Recent, sec config.SecurityConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{pubsub: pubsub, recent: recent, sec: sec, logger: logger}
}

func (h *Handler) originAllowed(origin string) bool {
	if origin == "" || len(h.sec.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.sec.AllowedOrigins, origin)
}

// ServeSSE handles GET /sse?scene=<id>&replay=<n>.
// It streams the results of one scene. replay sends up to n recent results,
// oldest first, before live ones.
func (h *Handler) ServeSSE(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if !h.originAllowed(origin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
		return
	}
	scene := mw.GetSceneID(c)
	if scene == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing scene"})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	msgCh, unsub, err := h.pubsub.Subscribe(ctx, session.ChannelResults)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	defer unsub()

	if origin != "" {
		c.Header("Access-Control-Allow-Origin", origin)
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"scene_id\":%q}\n\n", scene)
	h.replay(c, scene)
	c.Writer.Flush()

	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			if gjson.Get(msg.Payload, "scene_id").String() != scene {
				continue
			}
			fmt.Fprintf(c.Writer, "event: result\nid: %s\ndata: %s\n\n",
				gjson.Get(msg.Payload, "test_id").String(), msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment to prevent proxy timeouts.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) replay(c *gin.Context, scene string) {
	n, _ := strconv.Atoi(c.Query("replay"))
	if n <= 0 || h.recent == nil {
		return
	}
	results, err := h.recent.Recent(c.Request.Context(), scene, n)
	if err != nil {
		h.logger.Warn("sse replay failed", zap.String("scene_id", scene), zap.Error(err))
		return
	}
	for i := len(results) - 1; i >= 0; i-- {
		b, err := json.Marshal(results[i])
		if err != nil {
			continue
		}
		fmt.Fprintf(c.Writer, "event: result\nid: %s\ndata: %s\n\n", results[i].TestID, b)
	}
}
