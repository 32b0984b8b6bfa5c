package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/document"
	"github.com/kasuganosora/sr5rules/game/roll"
	"github.com/kasuganosora/sr5rules/game/session"
	mw "github.com/kasuganosora/sr5rules/middleware"
)

// TestHandler handles test lifecycle REST endpoints.
type TestHandler struct {
	sess  *session.Service
	store *document.Store
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(sess *session.Service, store *document.Store) *TestHandler {
	return &TestHandler{sess: sess, store: store}
}

type beginRequest struct {
	Kind              roll.Kind    `json:"kind" binding:"required"`
	ActorID           string       `json:"actor_id"`
	ItemID            string       `json:"item_id"`
	Action            *data.Action `json:"action"`
	PreviousMessageID string       `json:"previous_message_id"`
	Title             string       `json:"title"`
	ShowDialog        *bool        `json:"show_dialog"`
	Force             int          `json:"force"`
	Extended          bool         `json:"extended"`
}

type opposedRequest struct {
	ActorID    string `json:"actor_id" binding:"required"`
	ShowDialog *bool  `json:"show_dialog"`
}

type followUpRequest struct {
	ShowDialog *bool `json:"show_dialog"`
}

func caller(c *gin.Context) session.Caller {
	return session.Caller{
		SceneID: mw.GetSceneID(c),
		UserID:  mw.GetUserID(c),
		TraceID: mw.GetTraceID(c),
		IP:      c.ClientIP(),
	}
}

// respondTest answers 202 while the test is still pending.
func respondTest(c *gin.Context, d *roll.Data) {
	if d.State == roll.StateAwaitingDialog || d.State == roll.StateValuesPrepared {
		c.JSON(http.StatusAccepted, d)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Begin handles POST /api/tests.
func (h *TestHandler) Begin(c *gin.Context) {
	var req beginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.sess.Begin(c.Request.Context(), caller(c), roll.Config{
		Kind:              req.Kind,
		ActorID:           req.ActorID,
		ItemID:            req.ItemID,
		Action:            req.Action,
		PreviousMessageID: req.PreviousMessageID,
		Title:             req.Title,
		ShowDialog:        h.sess.ShowDialog(req.ShowDialog),
		Force:             req.Force,
		Extended:          req.Extended,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondTest(c, d)
}

// Get handles GET /api/tests/:id.
func (h *TestHandler) Get(c *gin.Context) {
	d, err := h.sess.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Dialog handles POST /api/tests/:id/dialog.
func (h *TestHandler) Dialog(c *gin.Context) {
	var in roll.DialogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.sess.Dialog(c.Request.Context(), caller(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondTest(c, d)
}

// Evaluate handles POST /api/tests/:id/evaluate.
func (h *TestHandler) Evaluate(c *gin.Context) {
	d, err := h.sess.Evaluate(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondTest(c, d)
}

// Extend handles POST /api/tests/:id/extend.
func (h *TestHandler) Extend(c *gin.Context) {
	d, err := h.sess.Extend(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondTest(c, d)
}

// Opposed handles POST /api/tests/:id/opposed.
func (h *TestHandler) Opposed(c *gin.Context) {
	var req opposedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.sess.Opposed(c.Request.Context(), caller(c), c.Param("id"), req.ActorID, h.sess.ShowDialog(req.ShowDialog))
	if err != nil {
		respondError(c, err)
		return
	}
	respondTest(c, d)
}

// FollowUp handles POST /api/tests/:id/follow-up. It answers 204 when the
// test has no follow-up.
func (h *TestHandler) FollowUp(c *gin.Context) {
	var req followUpRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	d, err := h.sess.FollowUp(c.Request.Context(), caller(c), c.Param("id"), h.sess.ShowDialog(req.ShowDialog))
	if err != nil {
		respondError(c, err)
		return
	}
	if d == nil {
		c.Status(http.StatusNoContent)
		return
	}
	respondTest(c, d)
}

// Pending handles GET /api/scenes/:scene/pending.
func (h *TestHandler) Pending(c *gin.Context) {
	tests, err := h.sess.Pending(c.Request.Context(), c.Param("scene"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tests": tests})
}

// Results handles GET /api/scenes/:scene/results?limit=20.
func (h *TestHandler) Results(c *gin.Context) {
	results, err := h.sess.Recent(c.Request.Context(), c.Param("scene"), queryLimit(c, session.RecentLimit))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// History handles GET /api/scenes/:scene/tests?limit=50.
func (h *TestHandler) History(c *gin.Context) {
	tests, err := h.store.TestsByScene(c.Request.Context(), c.Param("scene"), queryLimit(c, 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tests": tests})
}

func queryLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 || limit > 200 {
		return def
	}
	return limit
}
