package roll

import (
	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/parts"
	"github.com/kasuganosora/sr5rules/game/rules"
)

// PartArmor labels the armor contribution of a soak pool.
const PartArmor = "Armor"

// physicalResistBehavior resists the damage left by a preceding defense.
// Resisting always reduces damage and never negates the hit.
func physicalResistBehavior() behavior {
	b := successBehavior()
	b.against = true
	b.canSucceed = false
	b.canBeExtended = false
	b.testModifiers = []string{ModifierSoak}
	b.defaultAction = data.MinimalAction()
	b.defaultAction.Attribute = entity.AttrBody
	b.defaultAction.Armor = true
	b.prepareType = []step{captureFollowingDamage}
	b.baseValues = []step{actionPool, actionLimit, actionThreshold}
	b.poolModifiers = []step{genericPoolModifiers, armorModifier}
	b.calculate = []step{calculateTotals, resetModifiedDamage}
	b.processSuccess = func(t *Test) {
		modified := rules.ModifyDamageAfterResist(*t.Data.ModifiedDamage, t.Hits())
		t.Data.ModifiedDamage = &modified
	}
	b.afterResults = []step{knockdown}
	b.successLabel = "Resisted"
	b.failureLabel = "Resisted"
	return b
}

// captureFollowingDamage takes the damage left after the preceding defense.
func captureFollowingDamage(t *Test) {
	damage := data.NewDamage()
	if t.Data.Against != nil {
		damage = t.Data.Against.ModifiedDamage()
	}
	damage.RecalcMin(0)
	damage.AP.Recalc()
	incoming := damage.Clone()
	modified := damage.Clone()
	t.Data.IncomingDamage = &incoming
	t.Data.ModifiedDamage = &modified
}

// armorModifier folds the actor's armor, reduced by the incoming AP, into the pool.
func armorModifier(t *Test) {
	if !t.Data.Action.Armor || t.actor == nil {
		return
	}
	armor := rules.ReduceArmorByAP(t.actor.Armor(), t.Data.IncomingDamage.AP.Value)
	t.Data.Pool.AddUniquePart(PartArmor, armor.Value)
}

// resetModifiedDamage restarts modified damage from the incoming damage so
// user edits of the incoming damage carry over and no override survives.
func resetModifiedDamage(t *Test) {
	incoming := t.Data.IncomingDamage
	incoming.RecalcMin(0)
	incoming.AP.Recalc()

	modified := incoming.Clone()
	modified.Base = incoming.Value.Value
	modified.Mod = []parts.Part{}
	modified.Override = nil
	modified.AP.Base = incoming.AP.Value
	modified.AP.Mod = []parts.Part{}
	modified.AP.Override = nil
	modified.Recalc()
	modified.AP.Recalc()
	t.Data.ModifiedDamage = &modified
}

func knockdown(t *Test) {
	if t.actor == nil {
		return
	}
	physical := 0
	if l := t.actor.Limit(entity.LimitPhysical); l != nil {
		physical = l.Value
	}
	t.Data.KnockedDown = rules.KnocksDown(*t.Data.ModifiedDamage, physical)
}
