package data

import "github.com/kasuganosora/sr5rules/game/parts"

// Track is a condition monitor shown to the user (physical, stun, matrix).
type Track struct {
	Value
	Max int `json:"max"`
}

// NewTrack returns an empty track.
func NewTrack(label string) *Track {
	return &Track{Value: NewValue(label)}
}

// Condition is the informational condition monitor of a device.
type Condition struct {
	Value int    `json:"value"`
	Max   int    `json:"max"`
	Label string `json:"label,omitempty"`
}

// InitiativeType holds the base score and dice for one initiative perception.
type InitiativeType struct {
	Base Value `json:"base"`
	Dice Value `json:"dice"`
}

// Initiative perceptions.
const (
	PerceptionMeatspace = "meatspace"
	PerceptionAstral    = "astral"
	PerceptionMatrix    = "matrix"
)

// Initiative collects all initiative types plus the currently active one.
type Initiative struct {
	Perception string         `json:"perception"`
	Meatspace  InitiativeType `json:"meatspace"`
	Astral     InitiativeType `json:"astral"`
	Matrix     InitiativeType `json:"matrix"`
	Current    InitiativeType `json:"current"`
}

// Of returns the initiative type for a perception; unknown falls back to meatspace.
func (i *Initiative) Of(perception string) *InitiativeType {
	switch perception {
	case PerceptionAstral:
		return &i.Astral
	case PerceptionMatrix:
		return &i.Matrix
	default:
		return &i.Meatspace
	}
}

// Opposed describes the opposed action an attacking test demands of its target.
// Type must be empty; other values are legacy markers no handler supports.
type Opposed struct {
	Type        string `json:"type"`
	Test        string `json:"test"`
	Skill       string `json:"skill,omitempty"`
	Attribute   string `json:"attribute,omitempty"`
	Attribute2  string `json:"attribute2,omitempty"`
	Mod         int    `json:"mod,omitempty"`
	Description string `json:"description,omitempty"`
}

// Action is the minimal description of how a test assembles its pool.
type Action struct {
	Test           string   `json:"test,omitempty"`
	Skill          string   `json:"skill,omitempty"`
	Spec           string   `json:"spec,omitempty"`
	Attribute      string   `json:"attribute,omitempty"`
	Attribute2     string   `json:"attribute2,omitempty"`
	Mod            int      `json:"mod,omitempty"`
	Limit          Value    `json:"limit"`
	LimitAttribute string   `json:"limit_attribute,omitempty"`
	Threshold      Value    `json:"threshold"`
	Armor          bool     `json:"armor,omitempty"`
	Damage         Damage   `json:"damage"`
	Opposed        *Opposed `json:"opposed,omitempty"`
	Extended       bool     `json:"extended,omitempty"`

	// DicePoolMod holds pool bonuses contributed by equipped modifications.
	DicePoolMod []parts.Part `json:"dice_pool_mod,omitempty"`
}

// MinimalAction returns an action with zeroed limit, threshold and damage.
func MinimalAction() Action {
	return Action{
		Limit:     NewValue("Limit"),
		Threshold: NewValue("Threshold"),
		Damage:    NewDamage(),
	}
}

// Merge fills empty fields of a from defaults. Set fields of a win.
func (a Action) Merge(defaults Action) Action {
	if a.Test == "" {
		a.Test = defaults.Test
	}
	if a.Skill == "" {
		a.Skill = defaults.Skill
	}
	if a.Attribute == "" {
		a.Attribute = defaults.Attribute
	}
	if a.Attribute2 == "" {
		a.Attribute2 = defaults.Attribute2
	}
	if a.Mod == 0 {
		a.Mod = defaults.Mod
	}
	if a.LimitAttribute == "" {
		a.LimitAttribute = defaults.LimitAttribute
	}
	if a.Spec == "" {
		a.Spec = defaults.Spec
	}
	if !a.Armor {
		a.Armor = defaults.Armor
	}
	if !a.Extended {
		a.Extended = defaults.Extended
	}
	if a.Limit.IsZero() {
		a.Limit = defaults.Limit.Clone()
	}
	if a.Threshold.IsZero() {
		a.Threshold = defaults.Threshold.Clone()
	}
	if a.Damage.IsZero() && a.Damage.AP.IsZero() {
		a.Damage = defaults.Damage.Clone()
	}
	if a.Opposed == nil && defaults.Opposed != nil {
		o := *defaults.Opposed
		a.Opposed = &o
	}
	if a.DicePoolMod == nil {
		a.DicePoolMod = parts.Clone(defaults.DicePoolMod)
	}
	return a
}

// Clone returns a deep copy.
func (a Action) Clone() Action {
	out := a
	out.Limit = a.Limit.Clone()
	out.Threshold = a.Threshold.Clone()
	out.Damage = a.Damage.Clone()
	out.DicePoolMod = parts.Clone(a.DicePoolMod)
	if a.Opposed != nil {
		o := *a.Opposed
		out.Opposed = &o
	}
	return out
}
