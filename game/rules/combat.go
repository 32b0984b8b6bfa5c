// Package rules holds the stateless rule transformations of the ruleset:
// attack outcomes, damage and armor staging, initiative passes, drain,
// matrix rating derivations, soak and dice evaluation.
//
// Nothing here returns an error. Inputs outside the valid domain are
// coerced to the nearest sensible value.
package rules

import "github.com/kasuganosora/sr5rules/game/data"

// Part labels written by the combat rules.
const (
	PartAttackerNetHits = "AttackerNetHits"
	PartAP              = "AP"
	PartResist          = "Resist"
)

// AttackHits reports whether the attacker hits the defender outright.
func AttackHits(attackerHits, defenderHits int) bool {
	return attackerHits > defenderHits
}

// AttackGrazes reports a tie. A graze is neither a hit nor a miss.
func AttackGrazes(attackerHits, defenderHits int) bool {
	return attackerHits == defenderHits
}

// AttackMisses reports whether the defender beat the attacker.
func AttackMisses(attackerHits, defenderHits int) bool {
	return attackerHits < defenderHits
}

// ModifyDamageAfterHit stages damage up by the attacker's net hits.
// The input is never modified.
func ModifyDamageAfterHit(netHits int, damage data.Damage) data.Damage {
	modified := damage.Clone()
	if netHits <= 0 {
		return modified
	}
	modified.Fold()
	modified.AddUniquePart(PartAttackerNetHits, netHits)
	modified.RecalcMin(0)
	return modified
}

// ModifyDamageAfterMiss returns the incoming damage unchanged.
func ModifyDamageAfterMiss(damage data.Damage) data.Damage {
	return damage.Clone()
}

// ModifyDamageAfterResist reduces damage by the soak hits, floored at 0.
func ModifyDamageAfterResist(damage data.Damage, hits int) data.Damage {
	hits = max(hits, 0)
	modified := damage.Clone()
	modified.Fold()
	modified.AddUniquePart(PartResist, -hits)
	modified.RecalcMin(0)
	return modified
}

// ModifyArmorAfterHit applies the damage's armor penetration to armor.
// Non-positive AP leaves armor as is.
func ModifyArmorAfterHit(armor data.Value, damage data.Damage) data.Value {
	modified := armor.Clone()
	if damage.AP.Value <= 0 {
		return modified
	}
	modified.AddUniquePart(PartAP, damage.AP.Value)
	modified.RecalcMin(0)
	return modified
}

// ReduceArmorByAP folds an AP value into armor as a resisting modifier.
// Negative AP lowers armor. The result is floored at 0.
func ReduceArmorByAP(armor data.Value, ap int) data.Value {
	modified := armor.Clone()
	modified.AddUniquePart(PartAP, ap)
	modified.RecalcMin(0)
	return modified
}
