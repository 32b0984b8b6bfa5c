package roll

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kasuganosora/sr5rules/game/data"
)

// Values are the computed results of an evaluated test.
type Values struct {
	Hits           data.Value `json:"hits"`
	NetHits        data.Value `json:"net_hits"`
	Glitches       data.Value `json:"glitches"`
	Glitch         bool       `json:"glitch"`
	CriticalGlitch bool       `json:"critical_glitch"`
}

// ActiveDefense is one active defense option of a physical defense.
type ActiveDefense struct {
	Label   string `json:"label"`
	Value   int    `json:"value"`
	InitMod int    `json:"init_mod"`
	Weapon  string `json:"weapon,omitempty"`
}

// Data is the persisted record of one test.
type Data struct {
	ID                string `json:"id"`
	Kind              Kind   `json:"kind"`
	State             string `json:"state"`
	Title             string `json:"title,omitempty"`
	SceneID           string `json:"scene_id,omitempty"`
	UserID            string `json:"user_id,omitempty"`
	ActorID           string `json:"actor_id,omitempty"`
	ItemID            string `json:"item_id,omitempty"`
	PreviousMessageID string `json:"previous_message_id,omitempty"`

	Action    data.Action `json:"action"`
	Pool      data.Value  `json:"pool"`
	Limit     data.Value  `json:"limit"`
	Threshold data.Value  `json:"threshold"`
	Modifiers data.Value  `json:"modifiers"`
	Values    Values      `json:"values"`

	// TestModifiers are the actor modifier ids summed into Modifiers.
	TestModifiers []string `json:"test_modifiers"`
	Dice          []int    `json:"dice"`
	Extended      bool     `json:"extended"`
	ExtendedRolls int      `json:"extended_rolls,omitempty"`

	Success       bool   `json:"success"`
	Failure       bool   `json:"failure"`
	ResultLabel   string `json:"result_label,omitempty"`
	ShowDialog    bool   `json:"show_dialog,omitempty"`
	CanSucceed    bool   `json:"can_succeed"`
	CanBeExtended bool   `json:"can_be_extended"`
	// Opposed marks a test whose action demands an opposed test of its
	// target. Opposed tests themselves never do.
	Opposed       bool   `json:"opposed"`

	AgainstID string    `json:"against_id,omitempty"`
	Against   *Snapshot `json:"against,omitempty"`

	IncomingDamage *data.Damage             `json:"incoming_damage,omitempty"`
	ModifiedDamage *data.Damage             `json:"modified_damage,omitempty"`
	Cover          int                      `json:"cover"`
	ActiveDefense  string                   `json:"active_defense,omitempty"`
	ActiveDefenses map[string]ActiveDefense `json:"active_defenses,omitempty"`
	InitiativeCost int                      `json:"initiative_cost,omitempty"`
	KnockedDown    bool                     `json:"knocked_down,omitempty"`

	Force         int          `json:"force,omitempty"`
	Drain         int          `json:"drain,omitempty"`
	IncomingDrain *data.Damage `json:"incoming_drain,omitempty"`
	ModifiedDrain *data.Damage `json:"modified_drain,omitempty"`
}

// Clone returns a deep copy. The frozen Against snapshot is shared since it
// never changes.
func (d Data) Clone() Data {
	out := d
	out.Action = d.Action.Clone()
	out.Pool = d.Pool.Clone()
	out.Limit = d.Limit.Clone()
	out.Threshold = d.Threshold.Clone()
	out.Modifiers = d.Modifiers.Clone()
	out.Values.Hits = d.Values.Hits.Clone()
	out.Values.NetHits = d.Values.NetHits.Clone()
	out.Values.Glitches = d.Values.Glitches.Clone()
	out.TestModifiers = append([]string(nil), d.TestModifiers...)
	out.Dice = append([]int(nil), d.Dice...)
	out.IncomingDamage = cloneDamage(d.IncomingDamage)
	out.ModifiedDamage = cloneDamage(d.ModifiedDamage)
	out.IncomingDrain = cloneDamage(d.IncomingDrain)
	out.ModifiedDrain = cloneDamage(d.ModifiedDrain)
	if d.ActiveDefenses != nil {
		out.ActiveDefenses = make(map[string]ActiveDefense, len(d.ActiveDefenses))
		for k, v := range d.ActiveDefenses {
			out.ActiveDefenses[k] = v
		}
	}
	return out
}

func cloneDamage(d *data.Damage) *data.Damage {
	if d == nil {
		return nil
	}
	c := d.Clone()
	return &c
}

// Number is an integer that also accepts its string form when decoded.
type Number int

// UnmarshalJSON accepts 3, "3" and "". Unparsable strings decode to 0.
func (n *Number) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, _ := strconv.Atoi(strings.TrimSpace(s))
		*n = Number(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}
