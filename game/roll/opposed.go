package roll

import (
	"fmt"

	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/errs"
	"github.com/kasuganosora/sr5rules/game/parts"
)

// OpposedTestData builds the record of a test of kind k opposing a
// completed test. The defender must beat the attacker's net hits, so the
// attacker's net hits become the threshold base.
func OpposedTestData(against *Snapshot, actor *entity.Actor, previousMessageID string, k Kind) (Data, error) {
	if against == nil {
		return Data{}, fmt.Errorf("opposed test without a test to oppose: %w", errs.ErrConfiguration)
	}
	opposed := against.Opposed()
	if opposed == nil {
		return Data{}, fmt.Errorf("test %s has no opposed action: %w", against.ID(), errs.ErrConfiguration)
	}
	if opposed.Type != "" {
		return Data{}, fmt.Errorf("test %s defines opposed type %q, only the default type is supported: %w",
			against.ID(), opposed.Type, errs.ErrConfiguration)
	}
	if actor == nil {
		return Data{}, fmt.Errorf("no defending actor for test %s: %w", against.ID(), errs.ErrResolution)
	}

	d := Data{
		Kind:              k,
		Title:             opposed.Description,
		PreviousMessageID: previousMessageID,
		ActorID:           actor.ID,
		Pool:              newPoolValue(),
		Limit:             newLimitValue(),
		Threshold:         newThreshold(),
		Modifiers:         newModifiersValue(),
		AgainstID:         against.ID(),
		Against:           against,
	}
	d.Threshold.Base = against.NetHits()

	defaults := behaviors[k].defaultAction
	if opposed.Skill == "" {
		opposed.Skill = defaults.Skill
	}
	if opposed.Attribute == "" {
		opposed.Attribute = defaults.Attribute
	}
	if opposed.Attribute2 == "" {
		opposed.Attribute2 = defaults.Attribute2
	}
	if opposed.Mod == 0 {
		opposed.Mod = defaults.Mod
	}

	add := func(label string, value int) {
		d.Pool.Mod = parts.AddUniquePart(d.Pool.Mod, label, value, false)
	}
	if opposed.Skill != "" && opposed.Attribute != "" {
		if skill := actor.Skill(opposed.Skill); skill != nil {
			add(labelOr(skill.Label, skill.Name), skill.Value.Value)
		}
		if attr := actor.Attribute(opposed.Attribute); attr != nil {
			add(labelOr(attr.Label, opposed.Attribute), attr.Value)
		}
	}
	if opposed.Skill == "" && opposed.Attribute != "" {
		if attr := actor.Attribute(opposed.Attribute); attr != nil {
			add(labelOr(attr.Label, opposed.Attribute), attr.Value)
		}
	}
	if opposed.Skill == "" && opposed.Attribute2 != "" {
		if attr := actor.Attribute(opposed.Attribute2); attr != nil {
			add(labelOr(attr.Label, opposed.Attribute2), attr.Value)
		}
	}
	if opposed.Mod != 0 {
		d.Pool.Base = opposed.Mod
	}

	d.Action = data.MinimalAction()
	d.Action.Skill = opposed.Skill
	d.Action.Attribute = opposed.Attribute
	d.Action.Attribute2 = opposed.Attribute2
	d.Action.Mod = opposed.Mod
	return d, nil
}
