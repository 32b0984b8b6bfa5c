// Package entity defines the actor and item document shapes the rules read
// and the preparation pipeline derives. The host owns their persistence.
package entity

import "github.com/kasuganosora/sr5rules/game/data"

// Actor types.
const (
	ActorCharacter    = "character"
	ActorCritter      = "critter"
	ActorSpirit       = "spirit"
	ActorSprite       = "sprite"
	ActorVehicle      = "vehicle"
	ActorIC           = "ic"
	ActorTechnomancer = "technomancer"
)

// Attribute ids.
const (
	AttrBody      = "body"
	AttrAgility   = "agility"
	AttrReaction  = "reaction"
	AttrStrength  = "strength"
	AttrWillpower = "willpower"
	AttrLogic     = "logic"
	AttrIntuition = "intuition"
	AttrCharisma  = "charisma"
	AttrEdge      = "edge"
	AttrEssence   = "essence"
	AttrMagic     = "magic"
	AttrResonance = "resonance"
)

// Attributes lists every attribute id in display order.
var Attributes = []string{
	AttrBody, AttrAgility, AttrReaction, AttrStrength,
	AttrWillpower, AttrLogic, AttrIntuition, AttrCharisma,
	AttrEdge, AttrEssence, AttrMagic, AttrResonance,
}

// Matrix attribute ids.
const (
	MatrixAttack         = "attack"
	MatrixSleaze         = "sleaze"
	MatrixDataProcessing = "data_processing"
	MatrixFirewall       = "firewall"
)

// MatrixAttributes lists the ASDF attributes in display order.
var MatrixAttributes = []string{MatrixAttack, MatrixSleaze, MatrixDataProcessing, MatrixFirewall}

// Limit ids.
const (
	LimitPhysical = "physical"
	LimitMental   = "mental"
	LimitSocial   = "social"
)

// Track ids.
const (
	TrackPhysical = "physical"
	TrackStun     = "stun"
	TrackMatrix   = "matrix"
)

// Skill is an active skill rating.
type Skill struct {
	data.Value
	Name      string   `json:"name"`
	Attribute string   `json:"attribute"`
	Specs     []string `json:"specs,omitempty"`
	// CanDefault allows rolling the linked attribute at -1 without the skill.
	CanDefault bool `json:"can_default"`
}

// Matrix holds device-style matrix data of an actor (IC, technomancer, rigger).
type Matrix struct {
	Rating           int                    `json:"rating"`
	Attributes       map[string]*data.Value `json:"attributes"`
	ConditionMonitor data.Condition         `json:"condition_monitor"`
}

// Magic holds awakened data.
type Magic struct {
	Awakened bool `json:"awakened"`
	// Attribute is the drain attribute of the actor's magic tradition.
	Attribute string `json:"attribute"`
}

// HostLink ties an IC actor to the host it was spawned from.
type HostLink struct {
	ID     string `json:"id"`
	Rating int    `json:"rating"`
}

// ActorData is the derived-and-base data record of an actor.
type ActorData struct {
	Attributes map[string]*data.Value `json:"attributes"`
	Skills     map[string]*Skill      `json:"skills"`
	Limits     map[string]*data.Value `json:"limits"`
	Track      map[string]*data.Track `json:"track"`
	Armor      data.Value             `json:"armor"`
	Initiative data.Initiative        `json:"initiative"`
	Matrix     *Matrix                `json:"matrix,omitempty"`
	Magic      Magic                  `json:"magic"`
	Host       *HostLink              `json:"host,omitempty"`
	ICType     string                 `json:"ic_type,omitempty"`
	// Modifiers are the flat situational/global modifiers keyed by modifier id.
	Modifiers map[string]int `json:"modifiers"`
	// Situation holds modifier values set by the user (e.g. environmental).
	Situation map[string]int `json:"situation,omitempty"`
}

// Actor is an actor document with its owned items.
type Actor struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Data    ActorData `json:"data"`
	Items   []*Item   `json:"items,omitempty"`
	Version int       `json:"version"`
}

// Attribute returns the named attribute, or nil.
func (a *Actor) Attribute(id string) *data.Value {
	if a == nil || a.Data.Attributes == nil {
		return nil
	}
	return a.Data.Attributes[id]
}

// AttributeValue returns the derived attribute value, zero when missing.
func (a *Actor) AttributeValue(id string) int {
	if attr := a.Attribute(id); attr != nil {
		return attr.Value
	}
	return 0
}

// Skill returns the named active skill, or nil.
func (a *Actor) Skill(id string) *Skill {
	if a == nil || a.Data.Skills == nil {
		return nil
	}
	return a.Data.Skills[id]
}

// Limit returns the named limit, or nil.
func (a *Actor) Limit(id string) *data.Value {
	if a == nil || a.Data.Limits == nil {
		return nil
	}
	return a.Data.Limits[id]
}

// Modifier returns a flat modifier, zero when unset.
func (a *Actor) Modifier(id string) int {
	if a == nil {
		return 0
	}
	return a.Data.Modifiers[id] + a.Data.Situation[id]
}

// IsIC reports whether the actor is intrusion countermeasure.
func (a *Actor) IsIC() bool { return a != nil && a.Type == ActorIC }

// IsAwakened reports whether the actor can use magic.
func (a *Actor) IsAwakened() bool {
	return a != nil && a.Data.Magic.Awakened && a.AttributeValue(AttrMagic) > 0
}

// Armor returns a copy of the actor's derived armor.
func (a *Actor) Armor() data.Value {
	return a.Data.Armor.Clone()
}

// FullDefenseAttribute returns the attribute added on a full defense.
func (a *Actor) FullDefenseAttribute() *data.Value {
	return a.Attribute(AttrWillpower)
}

// EquippedWeapons returns all equipped weapon items.
func (a *Actor) EquippedWeapons() []*Item {
	var out []*Item
	for _, it := range a.Items {
		if it.Type == ItemWeapon && it.IsEquipped() {
			out = append(out, it)
		}
	}
	return out
}

// Item returns an owned item by id, or nil.
func (a *Actor) Item(id string) *Item {
	for _, it := range a.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// MatrixDevice returns the equipped device acting as the actor's matrix persona.
func (a *Actor) MatrixDevice() *Item {
	for _, it := range a.Items {
		if it.Type == ItemDevice && it.IsEquipped() {
			return it
		}
	}
	return nil
}
