package rest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_Initiative(t *testing.T) {
	s := newServer(t)

	w := s.get("/api/rules/initiative?score=14&pass=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"score":14,"next_pass":4,"another_pass":true,"late_spawn":4}`, w.Body.String())

	w = s.get("/api/rules/initiative?score=8")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"score":8,"next_pass":0,"another_pass":false}`, w.Body.String())

	w = s.postJSON("/api/rules/initiative/order", `{"scores":[3,12]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"another_pass":true,"next_pass":[0,2]}`, w.Body.String())

	w = s.get("/api/rules/initiative?score=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRules_Host(t *testing.T) {
	s := newServer(t)

	w := s.get("/api/rules/host?rating=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"rating": 5,
		"condition_monitor": 11,
		"attributes": [5, 6, 7, 8],
		"ic": {"device_rating": 5, "initiative_base": 10, "initiative_dice": 4, "meat_attributes": 5}
	}`, w.Body.String())
}

func TestRules_Drain(t *testing.T) {
	s := newServer(t)

	w := s.get("/api/rules/drain?drain=6&force=7&magic=5&hits=2")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Drain struct {
			Value int `json:"value"`
			Type  struct {
				Value string `json:"value"`
			} `json:"type"`
		} `json:"drain"`
		Modified struct {
			Value int `json:"value"`
		} `json:"modified"`
	}
	decode(t, w, &resp)
	assert.Equal(t, 6, resp.Drain.Value)
	assert.Equal(t, "physical", resp.Drain.Type.Value)
	assert.Equal(t, 4, resp.Modified.Value)

	w = s.get("/api/rules/drain?drain=6")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.get("/api/rules/spell-drain?force=1&modifier=-3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"drain":2}`, w.Body.String())
}

func TestRules_KnockdownAndAttack(t *testing.T) {
	s := newServer(t)

	w := s.postJSON("/api/rules/knockdown", `{"damage":{"value":6},"physical_limit":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"knocked_down":true}`, w.Body.String())

	w = s.postJSON("/api/rules/knockdown", `{"damage":{"value":12,"type":{"base":"matrix","value":"matrix"}},"physical_limit":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"knocked_down":false}`, w.Body.String())

	w = s.postJSON("/api/rules/attack", `{"attacker_hits":4,"defender_hits":1,"damage":{"base":5,"value":5}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Hits   bool `json:"hits"`
		Misses bool `json:"misses"`
		Damage struct {
			Value int `json:"value"`
		} `json:"damage"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.Hits)
	assert.False(t, resp.Misses)
	assert.Equal(t, 8, resp.Damage.Value)
}
