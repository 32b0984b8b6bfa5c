package prep

import (
	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/parts"
	"github.com/kasuganosora/sr5rules/game/rules"
)

// Initiative dice of the non-IC perceptions.
const (
	MeatspaceInitiativeDice = 1
	AstralInitiativeDice    = 2
	ColdSimInitiativeDice   = 3
)

// CharacterDataPrepare derives all computed fields of a character-like actor:
// attributes, skills, limits, tracks, wounds, armor and initiative.
func CharacterDataPrepare(a *entity.Actor) {
	d := &a.Data

	addMissingTracks(d)
	ensureAttributes(d)

	mods := append(append([]string{}, CommonModifiers...), PhysicalModifiers...)
	if d.Matrix != nil {
		mods = append(mods, MatrixModifiers...)
	}
	SetupModifiers(d, mods)

	hideUnusedAttributes(a)
	for _, id := range entity.Attributes {
		PrepareAttribute(id, d.Attributes[id])
	}
	prepareSkills(d)

	prepareLimits(d)
	prepareTracks(d)
	prepareWounds(d)
	prepareArmor(a)
	prepareInitiative(a)
	PrepareCurrentInitiative(d)
}

func addMissingTracks(d *entity.ActorData) {
	ensureTrack(d, entity.TrackPhysical)
	ensureTrack(d, entity.TrackStun)
}

func hideUnusedAttributes(a *entity.Actor) {
	d := &a.Data
	d.Attributes[entity.AttrMagic].Hidden = !d.Magic.Awakened
	d.Attributes[entity.AttrResonance].Hidden = a.Type != entity.ActorTechnomancer
}

func prepareSkills(d *entity.ActorData) {
	for id, skill := range d.Skills {
		if skill == nil {
			delete(d.Skills, id)
			continue
		}
		if skill.Mod == nil {
			skill.Mod = []parts.Part{}
		}
		if skill.Name == "" {
			skill.Name = id
		}
		skill.RecalcMin(0)
	}
}

func prepareLimits(d *entity.ActorData) {
	if d.Limits == nil {
		d.Limits = map[string]*data.Value{}
	}
	attr := func(id string) int { return d.Attributes[id].Value }

	bases := map[string]int{
		entity.LimitPhysical: ceilDiv(attr(entity.AttrStrength)*2+attr(entity.AttrBody)+attr(entity.AttrReaction), 3),
		entity.LimitMental:   ceilDiv(attr(entity.AttrLogic)*2+attr(entity.AttrIntuition)+attr(entity.AttrWillpower), 3),
		entity.LimitSocial:   ceilDiv(attr(entity.AttrCharisma)*2+attr(entity.AttrWillpower)+attr(entity.AttrEssence), 3),
	}
	modifiers := map[string]string{
		entity.LimitPhysical: ModPhysicalLimit,
		entity.LimitMental:   ModMentalLimit,
		entity.LimitSocial:   ModSocialLimit,
	}
	for _, id := range []string{entity.LimitPhysical, entity.LimitMental, entity.LimitSocial} {
		limit := d.Limits[id]
		if limit == nil {
			v := data.NewValue(id)
			limit = &v
			d.Limits[id] = limit
		}
		if limit.Mod == nil {
			limit.Mod = []parts.Part{}
		}
		limit.Base = bases[id]
		bonus(limit, d, modifiers[id])
		limit.RecalcMin(0)
	}
}

func prepareTracks(d *entity.ActorData) {
	physical := d.Track[entity.TrackPhysical]
	physical.Base = rules.ConditionMonitor(d.Attributes[entity.AttrBody].Value)
	bonus(&physical.Value, d, ModPhysicalTrack)
	physical.Max = max(physical.Total(), 0)
	physical.Label = entity.TrackPhysical

	stun := d.Track[entity.TrackStun]
	stun.Base = rules.ConditionMonitor(d.Attributes[entity.AttrWillpower].Value)
	bonus(&stun.Value, d, ModStunTrack)
	stun.Max = max(stun.Total(), 0)
	stun.Label = entity.TrackStun
}

// prepareWounds sets the wound modifier from the damage boxes filled.
func prepareWounds(d *entity.ActorData) {
	physical := max(d.Track[entity.TrackPhysical].Value.Value, 0)
	stun := max(d.Track[entity.TrackStun].Value.Value, 0)
	d.Modifiers[ModWounds] = -(physical/3 + stun/3)
}

func prepareArmor(a *entity.Actor) {
	armor := &a.Data.Armor
	armor.Base = 0
	armor.Mod = []parts.Part{}
	armor.Label = "Armor"
	for _, it := range a.Items {
		if it.Type != entity.ItemArmor || it.Data.Armor == nil || !it.IsEquipped() {
			continue
		}
		if it.Data.Armor.Accessory {
			armor.AddUniquePart(it.Name, it.Data.Armor.Value)
			continue
		}
		// Only the best base armor counts.
		armor.Base = max(armor.Base, it.Data.Armor.Value)
	}
	bonus(armor, &a.Data, ModArmor)
	armor.RecalcMin(0)
}

func prepareInitiative(a *entity.Actor) {
	d := &a.Data
	ini := &d.Initiative
	attr := func(id string) int { return d.Attributes[id].Value }

	for _, v := range []*data.Value{&ini.Meatspace.Base, &ini.Meatspace.Dice, &ini.Astral.Base, &ini.Astral.Dice, &ini.Matrix.Base, &ini.Matrix.Dice} {
		fillValue(v, "")
	}

	ini.Meatspace.Base.Base = attr(entity.AttrReaction) + attr(entity.AttrIntuition)
	bonus(&ini.Meatspace.Base, d, ModMeatInitiative)
	ini.Meatspace.Dice.Base = MeatspaceInitiativeDice
	bonus(&ini.Meatspace.Dice, d, ModMeatInitiativeDice)

	ini.Astral.Base.Base = attr(entity.AttrIntuition) * 2
	bonus(&ini.Astral.Base, d, ModAstralInitiative)
	ini.Astral.Dice.Base = AstralInitiativeDice
	bonus(&ini.Astral.Dice, d, ModAstralInitiativeDice)

	ini.Matrix.Base.Base = 0
	ini.Matrix.Dice.Base = 0
	if device := a.MatrixDevice(); device != nil && device.Data.Device != nil {
		dp := 0
		if v := device.Data.Device.Attributes[entity.MatrixDataProcessing]; v != nil {
			dp = v.Value
		}
		ini.Matrix.Base.Base = attr(entity.AttrIntuition) + dp
		ini.Matrix.Dice.Base = ColdSimInitiativeDice
	}
	bonus(&ini.Matrix.Base, d, ModMatrixInitiative)
	bonus(&ini.Matrix.Dice, d, ModMatrixInitiativeDice)
}
