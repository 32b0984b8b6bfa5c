package data

// Damage types.
const (
	DamagePhysical = "physical"
	DamageStun     = "stun"
	DamageMatrix   = "matrix"
)

// Damage elements.
const (
	ElementNone        = ""
	ElementFire        = "fire"
	ElementCold        = "cold"
	ElementAcid        = "acid"
	ElementElectricity = "electricity"
	ElementRadiation   = "radiation"
)

// Typed is a string field following the base/value override pattern.
type Typed struct {
	Base  string `json:"base"`
	Value string `json:"value"`
}

// DamageSource identifies the actor and item a damage value originated from.
type DamageSource struct {
	ActorID  string `json:"actor_id"`
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	ItemType string `json:"item_type"`
}

// Damage extends Value with armor penetration, damage type and element.
type Damage struct {
	Value
	AP      Value         `json:"ap"`
	Type    Typed         `json:"type"`
	Element Typed         `json:"element"`
	Source  *DamageSource `json:"source,omitempty"`
}

// NewDamage returns zero physical damage without element.
func NewDamage() Damage {
	return Damage{
		Value:   NewValue("Damage"),
		AP:      NewValue("AP"),
		Type:    Typed{Base: DamagePhysical, Value: DamagePhysical},
		Element: Typed{Base: ElementNone, Value: ElementNone},
	}
}

// Clone returns a deep copy.
func (d Damage) Clone() Damage {
	out := d
	out.Value = d.Value.Clone()
	out.AP = d.AP.Clone()
	if d.Source != nil {
		src := *d.Source
		out.Source = &src
	}
	return out
}
