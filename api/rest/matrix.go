package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kasuganosora/sr5rules/audit"
	"github.com/kasuganosora/sr5rules/game/matrix"
	mw "github.com/kasuganosora/sr5rules/middleware"
)

// MatrixHandler handles marks, IC and network REST endpoints.
type MatrixHandler struct {
	svc   *matrix.Service
	audit *audit.Service
}

// NewMatrixHandler creates a new MatrixHandler. auditor may be nil.
func NewMatrixHandler(svc *matrix.Service, auditor *audit.Service) *MatrixHandler {
	return &MatrixHandler{svc: svc, audit: auditor}
}

type setMarksRequest struct {
	SceneID   string `json:"scene_id"`
	TargetID  string `json:"target_id" binding:"required"`
	ItemID    string `json:"item_id"`
	Marks     int    `json:"marks"`
	Overwrite bool   `json:"overwrite"`
}

type addICRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
	Pack    string `json:"pack"`
}

type deviceRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
}

type controllerRequest struct {
	ControllerID string `json:"controller_id" binding:"required"`
}

func (h *MatrixHandler) log(c *gin.Context, action, itemID string, request interface{}, start time.Time, err error) {
	entry := audit.Entry{
		TraceID:    mw.GetTraceID(c),
		UserID:     mw.GetUserID(c),
		SceneID:    mw.GetSceneID(c),
		ActorID:    itemID,
		Action:     action,
		Request:    request,
		IP:         c.ClientIP(),
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	h.audit.Log(entry)
}

func pathIndex(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return 0, false
	}
	return idx, true
}

// Marks handles GET /api/hosts/:id/marks.
func (h *MatrixHandler) Marks(c *gin.Context) {
	marks, err := h.svc.AllMarks(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marks": marks})
}

// MarkedDocuments handles GET /api/hosts/:id/documents.
func (h *MatrixHandler) MarkedDocuments(c *gin.Context) {
	docs, err := h.svc.MarkedDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// SetMarks handles POST /api/hosts/:id/marks. The scene defaults to the
// caller's scene.
func (h *MatrixHandler) SetMarks(c *gin.Context) {
	start := time.Now()
	var req setMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.SceneID == "" {
		req.SceneID = mw.GetSceneID(c)
	}
	target := matrix.MarkTarget{SceneID: req.SceneID, TargetID: req.TargetID, ItemID: req.ItemID}
	marks, err := h.svc.SetMarks(c.Request.Context(), c.Param("id"), target, req.Marks, req.Overwrite)
	h.log(c, audit.ActionMarksSet, c.Param("id"), req, start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mark_id": target.ID(), "marks": marks})
}

// GetMark handles GET /api/hosts/:id/marks/:mark.
func (h *MatrixHandler) GetMark(c *gin.Context) {
	marks, err := h.svc.GetMarksByID(c.Request.Context(), c.Param("id"), c.Param("mark"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mark_id": c.Param("mark"), "marks": marks})
}

// ClearMark handles DELETE /api/hosts/:id/marks/:mark.
func (h *MatrixHandler) ClearMark(c *gin.Context) {
	start := time.Now()
	err := h.svc.ClearMark(c.Request.Context(), c.Param("id"), c.Param("mark"))
	h.log(c, audit.ActionMarksSet, c.Param("id"), gin.H{"clear": c.Param("mark")}, start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearMarks handles DELETE /api/hosts/:id/marks.
func (h *MatrixHandler) ClearMarks(c *gin.Context) {
	start := time.Now()
	err := h.svc.ClearMarks(c.Request.Context(), c.Param("id"))
	h.log(c, audit.ActionMarksSet, c.Param("id"), gin.H{"clear": "all"}, start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ICOrder handles GET /api/hosts/:id/ic.
func (h *MatrixHandler) ICOrder(c *gin.Context) {
	ic, err := h.svc.ICOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ic": ic})
}

// AddIC handles POST /api/hosts/:id/ic.
func (h *MatrixHandler) AddIC(c *gin.Context) {
	var req addICRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.AddIC(c.Request.Context(), c.Param("id"), req.ActorID, req.Pack); err != nil {
		respondError(c, err)
		return
	}
	h.ICOrder(c)
}

// RemoveIC handles DELETE /api/hosts/:id/ic/:index.
func (h *MatrixHandler) RemoveIC(c *gin.Context) {
	idx, ok := pathIndex(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveIC(c.Request.Context(), c.Param("id"), idx); err != nil {
		respondError(c, err)
		return
	}
	h.ICOrder(c)
}

// Devices handles GET /api/controllers/:id/devices.
func (h *MatrixHandler) Devices(c *gin.Context) {
	devices, err := h.svc.NetworkDevices(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

// AddDevice handles POST /api/controllers/:id/devices.
func (h *MatrixHandler) AddDevice(c *gin.Context) {
	start := time.Now()
	var req deviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	err := h.svc.AddNetworkDevice(c.Request.Context(), c.Param("id"), req.DeviceID)
	h.log(c, audit.ActionNetwork, c.Param("id"), req, start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Devices(c)
}

// RemoveDevice handles DELETE /api/controllers/:id/devices/:index.
func (h *MatrixHandler) RemoveDevice(c *gin.Context) {
	start := time.Now()
	idx, ok := pathIndex(c)
	if !ok {
		return
	}
	err := h.svc.RemoveNetworkDevice(c.Request.Context(), c.Param("id"), idx)
	h.log(c, audit.ActionNetwork, c.Param("id"), gin.H{"remove": idx}, start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Devices(c)
}

// RemoveAllDevices handles DELETE /api/controllers/:id/devices.
func (h *MatrixHandler) RemoveAllDevices(c *gin.Context) {
	start := time.Now()
	err := h.svc.RemoveAllNetworkDevices(c.Request.Context(), c.Param("id"))
	h.log(c, audit.ActionNetwork, c.Param("id"), gin.H{"remove": "all"}, start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Controller handles GET /api/devices/:id/controller. It answers 204 when
// the device is not in a network.
func (h *MatrixHandler) Controller(c *gin.Context) {
	ctrl, err := h.svc.NetworkController(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if ctrl == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, ctrl)
}

// SetController handles PUT /api/devices/:id/controller.
func (h *MatrixHandler) SetController(c *gin.Context) {
	start := time.Now()
	var req controllerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	err := h.svc.AddNetworkController(c.Request.Context(), req.ControllerID, c.Param("id"))
	h.log(c, audit.ActionNetwork, c.Param("id"), req, start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Disconnect handles DELETE /api/devices/:id/network.
func (h *MatrixHandler) Disconnect(c *gin.Context) {
	start := time.Now()
	err := h.svc.DisconnectFromNetwork(c.Request.Context(), c.Param("id"))
	h.log(c, audit.ActionNetwork, c.Param("id"), gin.H{"disconnect": true}, start, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
