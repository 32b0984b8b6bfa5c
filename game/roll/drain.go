package roll

import (
	"fmt"

	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/errs"
	"github.com/kasuganosora/sr5rules/game/rules"
)

// drainBehavior resists the drain of a completed spellcasting test.
func drainBehavior() behavior {
	b := successBehavior()
	b.against = true
	b.canBeExtended = false
	b.testModifiers = []string{}
	b.defaultAction = data.MinimalAction()
	b.defaultAction.Attribute2 = entity.AttrWillpower
	b.documentAction = magicSchoolAttribute
	b.baseValues = []step{actionPool, actionLimit, actionThreshold, prepareDrain}
	b.calculate = []step{calculateTotals}
	b.processSuccess = func(t *Test) {
		modified := rules.ModifyDrainDamage(*t.Data.ModifiedDrain, t.Hits())
		t.Data.ModifiedDrain = &modified
	}
	b.successLabel = "DrainResisted"
	b.failureLabel = "DrainTaken"
	return b
}

// magicSchoolAttribute uses the tradition's drain attribute of the caster.
func magicSchoolAttribute(t *Test) error {
	if !t.actor.IsAwakened() {
		return fmt.Errorf("drain test for actor %s who is not awakened: %w", t.actor.ID, errs.ErrConfiguration)
	}
	if attr := t.actor.Data.Magic.Attribute; attr != "" {
		t.Data.Action.Attribute = attr
	}
	return nil
}

func prepareDrain(t *Test) {
	if t.actor == nil {
		return
	}
	drain, force := 0, 0
	if t.Data.Against != nil {
		drain, force = t.Data.Against.Drain(), t.Data.Against.Force()
	}
	magic := t.actor.AttributeValue(entity.AttrMagic)

	incoming := rules.CalcDrainDamage(drain, force, magic)
	modified := incoming.Clone()
	t.Data.IncomingDrain = &incoming
	t.Data.ModifiedDrain = &modified
}
