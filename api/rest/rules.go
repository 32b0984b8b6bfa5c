package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/rules"
)

// RulesHandler exposes the stateless rule calculations.
type RulesHandler struct{}

// NewRulesHandler creates a new RulesHandler.
func NewRulesHandler() *RulesHandler {
	return &RulesHandler{}
}

type initiativeQuery struct {
	Score int `form:"score"`
	Pass  int `form:"pass"`
}

type initiativeOrderRequest struct {
	Scores []int `json:"scores" binding:"required"`
}

type drainQuery struct {
	Drain int `form:"drain"`
	Force int `form:"force" binding:"required"`
	Magic int `form:"magic" binding:"required"`
	Hits  int `form:"hits"`
}

type knockdownRequest struct {
	Damage        data.Damage `json:"damage"`
	PhysicalLimit int         `json:"physical_limit"`
}

type attackRequest struct {
	AttackerHits int         `json:"attacker_hits"`
	DefenderHits int         `json:"defender_hits"`
	Damage       data.Damage `json:"damage"`
}

// Initiative handles GET /api/rules/initiative?score=&pass=.
func (h *RulesHandler) Initiative(c *gin.Context) {
	var q initiativeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	resp := gin.H{
		"score":        q.Score,
		"next_pass":    rules.ReduceIniResultAfterPass(q.Score),
		"another_pass": rules.IniScoreCanDoAnotherPass(q.Score),
	}
	if q.Pass > 0 {
		resp["late_spawn"] = rules.ReduceIniOnLateSpawn(q.Score, q.Pass)
	}
	c.JSON(http.StatusOK, resp)
}

// InitiativeOrder handles POST /api/rules/initiative/order.
func (h *RulesHandler) InitiativeOrder(c *gin.Context) {
	var req initiativeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	next := make([]int, len(req.Scores))
	for i, s := range req.Scores {
		next[i] = rules.ReduceIniResultAfterPass(s)
	}
	c.JSON(http.StatusOK, gin.H{
		"another_pass": rules.IniOrderCanDoAnotherPass(req.Scores),
		"next_pass":    next,
	})
}

// Host handles GET /api/rules/host?rating=.
func (h *RulesHandler) Host(c *gin.Context) {
	var q struct {
		Rating int `form:"rating" binding:"min=0"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rating":            q.Rating,
		"condition_monitor": rules.ConditionMonitor(q.Rating),
		"attributes":        rules.HostAttributeRatings(q.Rating),
		"ic": gin.H{
			"device_rating":   rules.ICDeviceRating(q.Rating),
			"initiative_base": rules.ICInitiativeBase(q.Rating),
			"initiative_dice": rules.ICInitiativeDice(),
			"meat_attributes": rules.ICMeatAttributeBase(q.Rating),
		},
	})
}

// Drain handles GET /api/rules/drain?drain=&force=&magic=&hits=.
func (h *RulesHandler) Drain(c *gin.Context) {
	var q drainQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	drain := rules.CalcDrainDamage(q.Drain, q.Force, q.Magic)
	c.JSON(http.StatusOK, gin.H{
		"drain":    drain,
		"modified": rules.ModifyDrainDamage(drain, q.Hits),
	})
}

// SpellDrain handles GET /api/rules/spell-drain?force=&modifier=.
func (h *RulesHandler) SpellDrain(c *gin.Context) {
	var q struct {
		Force    int `form:"force" binding:"required"`
		Modifier int `form:"modifier"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drain": rules.CalcSpellDrain(q.Force, q.Modifier)})
}

// Knockdown handles POST /api/rules/knockdown.
func (h *RulesHandler) Knockdown(c *gin.Context) {
	req := knockdownRequest{Damage: data.NewDamage()}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"knocked_down": rules.KnocksDown(req.Damage, req.PhysicalLimit)})
}

// Attack handles POST /api/rules/attack.
func (h *RulesHandler) Attack(c *gin.Context) {
	req := attackRequest{Damage: data.NewDamage()}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp := gin.H{
		"hits":   rules.AttackHits(req.AttackerHits, req.DefenderHits),
		"grazes": rules.AttackGrazes(req.AttackerHits, req.DefenderHits),
		"misses": rules.AttackMisses(req.AttackerHits, req.DefenderHits),
	}
	if rules.AttackMisses(req.AttackerHits, req.DefenderHits) {
		resp["damage"] = rules.ModifyDamageAfterMiss(req.Damage)
	} else {
		resp["damage"] = rules.ModifyDamageAfterHit(req.AttackerHits-req.DefenderHits, req.Damage)
	}
	c.JSON(http.StatusOK, resp)
}
