package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kasuganosora/sr5rules/audit"
	"github.com/kasuganosora/sr5rules/game/document"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/session"
	mw "github.com/kasuganosora/sr5rules/middleware"
)

// DocumentHandler handles actor and item REST endpoints.
type DocumentHandler struct {
	store *document.Store
	sess  *session.Service
	audit *audit.Service
}

// NewDocumentHandler creates a new DocumentHandler. auditor may be nil.
func NewDocumentHandler(store *document.Store, sess *session.Service, auditor *audit.Service) *DocumentHandler {
	return &DocumentHandler{store: store, sess: sess, audit: auditor}
}

// ListActors handles GET /api/actors.
func (h *DocumentHandler) ListActors(c *gin.Context) {
	actors, err := h.store.ListActors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actors": actors})
}

// CreateActor handles POST /api/actors.
func (h *DocumentHandler) CreateActor(c *gin.Context) {
	var a entity.Actor
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, err)
		return
	}
	if a.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type is required"})
		return
	}
	if err := h.store.CreateActor(c.Request.Context(), &a); err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "actor id already taken"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// GetActor handles GET /api/actors/:id.
func (h *DocumentHandler) GetActor(c *gin.Context) {
	a, err := h.store.Actor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// ActorField handles GET /api/actors/:id/field?path=attributes.body.value.
func (h *DocumentHandler) ActorField(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}
	v, err := h.store.ActorField(c.Request.Context(), c.Param("id"), path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "value": v})
}

// PatchActor handles PATCH /api/actors/:id.
func (h *DocumentHandler) PatchActor(c *gin.Context) {
	h.patch(c, h.store.PatchActor, func(id string) (interface{}, error) {
		return h.store.Actor(c.Request.Context(), id)
	})
}

// PatchItem handles PATCH /api/items/:id.
func (h *DocumentHandler) PatchItem(c *gin.Context) {
	h.patch(c, h.store.PatchItem, func(id string) (interface{}, error) {
		return h.store.Item(c.Request.Context(), id)
	})
}

func (h *DocumentHandler) patch(c *gin.Context, apply func(ctx context.Context, id string, p document.Patch) error, reload func(id string) (interface{}, error)) {
	start := time.Now()
	id := c.Param("id")
	var p document.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	err := apply(c.Request.Context(), id, p)
	entry := audit.Entry{
		TraceID:    mw.GetTraceID(c),
		UserID:     mw.GetUserID(c),
		SceneID:    mw.GetSceneID(c),
		ActorID:    id,
		Action:     audit.ActionDocPatch,
		Request:    p,
		IP:         c.ClientIP(),
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	if err != nil {
		entry.Error = err.Error()
		h.audit.Log(entry)
		respondError(c, err)
		return
	}
	h.audit.Log(entry)
	doc, err := reload(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteActor handles DELETE /api/actors/:id.
func (h *DocumentHandler) DeleteActor(c *gin.Context) {
	if err := h.store.DeleteActor(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PrepareActor handles POST /api/actors/:id/prepare.
func (h *DocumentHandler) PrepareActor(c *gin.Context) {
	a, err := h.sess.PrepareActor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// CreateItem handles POST /api/items.
func (h *DocumentHandler) CreateItem(c *gin.Context) {
	var it entity.Item
	if err := c.ShouldBindJSON(&it); err != nil {
		badRequest(c, err)
		return
	}
	if it.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type is required"})
		return
	}
	if err := h.store.CreateItem(c.Request.Context(), &it); err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "item id already taken"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// GetItem handles GET /api/items/:id.
func (h *DocumentHandler) GetItem(c *gin.Context) {
	it, err := h.store.Item(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// PrepareItem handles POST /api/items/:id/prepare.
func (h *DocumentHandler) PrepareItem(c *gin.Context) {
	it, err := h.sess.PrepareItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// Resolve handles POST /api/resolve.
func (h *DocumentHandler) Resolve(c *gin.Context) {
	var ref document.Ref
	if err := c.ShouldBindJSON(&ref); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.store.Resolve(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.Actor != nil {
		c.JSON(http.StatusOK, gin.H{"type": document.RefActor, "actor": res.Actor})
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": document.RefItem, "item": res.Item})
}
