package roll

import (
	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/rules"
)

// Active defense ids.
const (
	DefenseFullDefense = "full_defense"
	DefenseDodge       = "dodge"
	DefenseBlock       = "block"
	DefenseParryPrefix = "parry-"
)

// Initiative costs of active defenses.
const (
	FullDefenseInitMod   = -10
	ActiveDefenseInitMod = -5
)

// Modifier labels of a physical defense.
const (
	PartCover         = "Cover"
	PartActiveDefense = "ActiveDefense"
	ModifierDefense   = "defense"
)

// captureIncomingDamage copies the attacker's damage into incoming and
// modified damage.
func captureIncomingDamage(t *Test) {
	damage := data.NewDamage()
	if t.Data.Against != nil {
		damage = t.Data.Against.Damage()
	}
	incoming := damage.Clone()
	modified := damage.Clone()
	t.Data.IncomingDamage = &incoming
	t.Data.ModifiedDamage = &modified
}

func physicalDefenseBehavior() behavior {
	b := defenseBehavior()
	b.testModifiers = []string{ModifierGlobal, ModifierWounds, ModifierDefense}
	b.defaultAction = data.MinimalAction()
	b.defaultAction.Attribute = entity.AttrReaction
	b.defaultAction.Attribute2 = entity.AttrIntuition
	b.prepareDocument = []step{prepareActiveDefenses}
	b.poolModifiers = []step{coverModifier, activeDefenseModifier, genericPoolModifiers}
	b.success = func(t *Test) bool {
		return rules.AttackMisses(t.Data.Against.Hits(), t.Hits())
	}
	b.failure = func(t *Test) bool {
		return rules.AttackHits(t.Data.Against.Hits(), t.Hits())
	}
	b.processSuccess = func(t *Test) {
		modified := rules.ModifyDamageAfterMiss(*t.Data.IncomingDamage)
		t.Data.ModifiedDamage = &modified
	}
	b.processFailure = func(t *Test) {
		netHits := t.Data.Against.Hits() - t.Hits()
		modified := rules.ModifyDamageAfterHit(netHits, *t.Data.IncomingDamage)
		t.Data.ModifiedDamage = &modified
	}
	return b
}

// prepareActiveDefenses lists the active defenses available to the actor.
func prepareActiveDefenses(t *Test) {
	a := t.actor
	if a == nil {
		return
	}
	skillValue := func(id string) int {
		if s := a.Skill(id); s != nil {
			return s.Value.Value
		}
		return 0
	}
	fullDefense := 0
	if attr := a.FullDefenseAttribute(); attr != nil {
		fullDefense = attr.Value
	}

	defenses := map[string]ActiveDefense{
		DefenseFullDefense: {Label: "FullDefense", Value: fullDefense, InitMod: FullDefenseInitMod},
		DefenseDodge:       {Label: "Dodge", Value: skillValue("gymnastics"), InitMod: ActiveDefenseInitMod},
		DefenseBlock:       {Label: "Block", Value: skillValue("unarmed_combat"), InitMod: ActiveDefenseInitMod},
	}
	for _, w := range a.EquippedWeapons() {
		if !w.IsMeleeWeapon() {
			continue
		}
		skill := ""
		if w.Data.Action != nil {
			skill = w.Data.Action.Skill
		}
		defenses[DefenseParryPrefix+w.Name] = ActiveDefense{
			Label:   "Parry",
			Weapon:  w.Name,
			Value:   skillValue(skill),
			InitMod: ActiveDefenseInitMod,
		}
	}
	t.Data.ActiveDefenses = defenses
}

// coverModifier adds the cover bonus, zero included, to the modifiers.
func coverModifier(t *Test) {
	t.Data.Modifiers.AddUniquePart(PartCover, t.Data.Cover)
}

// activeDefenseModifier adds the chosen active defense and records its
// initiative cost. Applying the cost to combat is up to the caller.
func activeDefenseModifier(t *Test) {
	defense, ok := t.Data.ActiveDefenses[t.Data.ActiveDefense]
	if !ok {
		defense = ActiveDefense{Label: "ActiveDefense"}
	}
	t.Data.Modifiers.AddUniquePart(PartActiveDefense, defense.Value)
	t.Data.InitiativeCost = defense.InitMod
}
