package rules

import "github.com/kasuganosora/sr5rules/game/data"

// MinSpellDrain is the lowest drain value a spell can have.
const MinSpellDrain = 2

// PartHits labels the reduction of drain by the caster's hits.
const PartHits = "Hits"

// CalcDrainDamage returns the drain a caster suffers before resisting.
// Drain is physical when the force exceeds the caster's magic, stun otherwise.
func CalcDrainDamage(drain, force, magic int) data.Damage {
	if force < 0 {
		force = 1
	}
	if magic < 0 {
		magic = 1
	}

	damage := data.NewDamage()
	damage.Label = "Drain"
	damage.Base = drain
	damage.RecalcMin(0)

	damage.Type.Base = data.DamageStun
	if force > magic {
		damage.Type.Base = data.DamagePhysical
	}
	damage.Type.Value = damage.Type.Base
	return damage
}

// ModifyDrainDamage reduces drain by the caster's resist hits, floored at 0.
func ModifyDrainDamage(drain data.Damage, hits int) data.Damage {
	hits = max(hits, 0)
	modified := drain.Clone()
	modified.AddUniquePart(PartHits, -hits)
	modified.RecalcMin(0)
	return modified
}

// CalcSpellDrain returns a spell's drain value for the chosen force.
func CalcSpellDrain(force, modifier int) int {
	return max(force+modifier, MinSpellDrain)
}
