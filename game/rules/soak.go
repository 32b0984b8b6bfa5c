package rules

import "github.com/kasuganosora/sr5rules/game/data"

// KnockdownDamage is the damage value that knocks down regardless of limits.
const KnockdownDamage = 10

// KnocksDown reports whether resisted damage knocks the target down.
// Matrix damage never does.
func KnocksDown(damage data.Damage, physicalLimit int) bool {
	if damage.Type.Value == data.DamageMatrix {
		return false
	}
	return damage.Value.Value > physicalLimit || damage.Value.Value >= KnockdownDamage
}
