package roll

import (
	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/rules"
)

// Part labels written into pools.
const (
	PartModifiers  = "Modifiers"
	PartItemMod    = "ItemMod"
	PartDefaulting = "Defaulting"
	PartSpec       = "Specialization"
	PartExtended   = "ExtendedTest"
	PartPrevious   = "PreviousHits"
)

// SpecializationBonus is the pool bonus for a matching specialization.
const SpecializationBonus = 2

// actionPool adds skill and attribute contributions of the action.
func actionPool(t *Test) {
	a := t.actor
	if a == nil {
		return
	}
	action := t.Data.Action
	pool := &t.Data.Pool

	if attr := a.Attribute(action.Attribute); attr != nil {
		pool.AddUniquePart(labelOr(attr.Label, action.Attribute), attr.Value)
	}
	if skill := a.Skill(action.Skill); skill != nil {
		pool.AddUniquePart(labelOr(skill.Label, skill.Name), skill.Value.Value)
		if skill.Value.Value == 0 && skill.CanDefault {
			pool.AddUniquePart(PartDefaulting, -1)
		}
	} else if attr := a.Attribute(action.Attribute2); attr != nil {
		pool.AddUniquePart(labelOr(attr.Label, action.Attribute2), attr.Value)
	}
	if action.Spec != "" {
		pool.AddUniquePart(PartSpec, SpecializationBonus)
	}
	if action.Mod != 0 {
		pool.AddUniquePart(PartItemMod, action.Mod)
	}
	for _, p := range action.DicePoolMod {
		pool.AddUniquePart(p.Name, p.Value)
	}
}

func actionLimit(t *Test) {
	limit := t.Data.Action.Limit.Clone()
	limit.Label = "Limit"
	if id := t.Data.Action.LimitAttribute; id != "" && t.actor != nil {
		if l := t.actor.Limit(id); l != nil {
			limit.AddUniquePart(labelOr(l.Label, id), l.Value)
		}
	}
	t.Data.Limit = limit
}

func actionThreshold(t *Test) {
	threshold := t.Data.Action.Threshold.Clone()
	threshold.Label = "Threshold"
	t.Data.Threshold = threshold
}

// genericPoolModifiers sums the kind's actor modifiers into Modifiers and
// adds their total to the pool. Modifiers set by earlier steps are kept.
func genericPoolModifiers(t *Test) {
	mods := &t.Data.Modifiers
	for _, id := range t.Data.TestModifiers {
		mods.AddUniquePart(id, t.actor.Modifier(id))
	}
	mods.Recalc()
	t.Data.Pool.AddUniquePart(PartModifiers, mods.Value)
}

// calculateTotals recomputes pool, limit and threshold.
func calculateTotals(t *Test) {
	t.Data.Pool.RecalcMin(0)
	t.Data.Limit.RecalcMin(0)
	t.Data.Threshold.RecalcMin(0)
}

// spellDrain computes the drain of a spellcasting test from its force.
func spellDrain(t *Test) {
	if t.item == nil || t.item.Data.Spell == nil {
		return
	}
	if t.Data.Force <= 0 {
		t.Data.Force = 1
	}
	t.Data.Drain = rules.CalcSpellDrain(t.Data.Force, t.item.Data.Spell.Drain)
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}

func newPoolValue() data.Value      { return data.NewValue("DicePool") }
func newLimitValue() data.Value     { return data.NewValue("Limit") }
func newThreshold() data.Value      { return data.NewValue("Threshold") }
func newModifiersValue() data.Value { return data.NewValue("Modifiers") }
