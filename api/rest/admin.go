package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kasuganosora/sr5rules/audit"
	"github.com/kasuganosora/sr5rules/game/session"
	"github.com/kasuganosora/sr5rules/scheduler"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by the AdminKey middleware.
type AdminHandler struct {
	sess   *session.Service
	sched  *scheduler.Scheduler
	audit  *audit.Service
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	sess *session.Service,
	sched *scheduler.Scheduler,
	auditor *audit.Service,
	logger *zap.Logger,
) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{sess: sess, sched: sched, audit: auditor, logger: logger}
}

// ListSchedulerTasks returns the names of the registered periodic tasks.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.Tasks()})
}

// Sweep drops pending tests whose dialog expired.
// POST /api/admin/sweep
func (h *AdminHandler) Sweep(c *gin.Context) {
	n, err := h.sess.Sweep(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.logger.Info("admin sweep", zap.Int("expired", n))
	c.JSON(http.StatusOK, gin.H{"expired": n})
}

// Rules returns the rules settings in effect.
// GET /api/admin/rules
func (h *AdminHandler) Rules(c *gin.Context) {
	r := h.sess.Rules()
	c.JSON(http.StatusOK, gin.H{
		"pending_ttl":    r.PendingTTL.String(),
		"sweep_interval": r.SweepInterval.String(),
		"show_dialog":    r.ShowDialog,
	})
}

// TestAudit returns the audit trail of one test.
// GET /api/admin/audit/tests/:id
func (h *AdminHandler) TestAudit(c *gin.Context) {
	if h.audit == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit disabled"})
		return
	}
	logs, err := h.audit.ByTest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

// PurgeAudit deletes audit entries older than ?days=.
// POST /api/admin/audit/purge?days=30
func (h *AdminHandler) PurgeAudit(c *gin.Context) {
	if h.audit == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit disabled"})
		return
	}
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive number"})
		return
	}
	n, err := h.audit.Purge(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	h.logger.Info("audit purged", zap.Int("days", days), zap.Int64("deleted", n))
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
