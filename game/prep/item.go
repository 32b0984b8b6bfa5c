package prep

import (
	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/parts"
	"github.com/kasuganosora/sr5rules/game/rules"
)

// PrepareItem derives the computed fields of an item and its nested items.
// owner may be nil for items outside an actor.
func PrepareItem(it *entity.Item, owner *entity.Actor) {
	if it == nil {
		return
	}
	for _, nested := range it.Items {
		PrepareItem(nested, nil)
	}

	mods := it.EquippedMods()
	prepareTechnology(it, mods)
	prepareAction(it, owner, mods)
	prepareRecoil(it, mods)

	switch it.Type {
	case entity.ItemHost:
		HostDataPrepare(it)
	case entity.ItemDevice:
		DeviceDataPrepare(it)
	}
}

func prepareTechnology(it *entity.Item, mods []*entity.Item) {
	tech := it.Data.Technology
	if tech == nil {
		return
	}
	if tech.ConditionMonitor == nil {
		tech.ConditionMonitor = &data.Condition{}
	}
	tech.ConditionMonitor.Max = rules.ConditionMonitor(max(tech.Rating, 0))

	conceal := parts.New(nil)
	for _, mod := range mods {
		if mt := mod.Data.Technology; mt != nil && mt.Conceal.Value != 0 {
			conceal.AddUniquePart(mod.Name, mt.Conceal.Value)
		}
	}
	tech.Conceal.Mod = conceal.Parts()
	tech.Conceal.Recalc()
}

func prepareAction(it *entity.Item, owner *entity.Actor, mods []*entity.Item) {
	action := it.Data.Action
	if action == nil {
		return
	}
	action.Limit.Mod = []parts.Part{}
	action.Damage.Mod = []parts.Part{}
	action.Damage.AP.Mod = []parts.Part{}
	action.DicePoolMod = []parts.Part{}

	if owner != nil {
		action.Damage.Source = &data.DamageSource{
			ActorID:  owner.ID,
			ItemID:   it.ID,
			ItemName: it.Name,
			ItemType: it.Type,
		}
	}

	dicePool := parts.New(nil)
	for _, mod := range mods {
		m := mod.Data.Modification
		if m.Accuracy != 0 {
			action.Limit.AddUniquePart(mod.Name, m.Accuracy)
		}
		if m.DicePool != 0 {
			dicePool.AddUniquePart(mod.Name, m.DicePool)
		}
	}
	action.DicePoolMod = dicePool.Parts()

	if ammo := it.EquippedAmmo(); ammo != nil {
		ad := ammo.Data.Ammo
		action.Damage.Mod = parts.AddUniquePart(action.Damage.Mod, ammo.Name, ad.Damage, true)
		action.Damage.AP.Mod = parts.AddUniquePart(action.Damage.AP.Mod, ammo.Name, ad.AP, true)

		action.Damage.Element.Value = action.Damage.Element.Base
		if ad.Element != "" {
			action.Damage.Element.Value = ad.Element
		}
		action.Damage.Type.Value = action.Damage.Type.Base
		if ad.DamageType != "" {
			action.Damage.Type.Value = ad.DamageType
		}
	} else {
		action.Damage.Element.Value = action.Damage.Element.Base
		action.Damage.Type.Value = action.Damage.Type.Base
	}

	action.Damage.Recalc()
	action.Damage.AP.Recalc()
	action.Limit.Recalc()
}

func prepareRecoil(it *entity.Item, mods []*entity.Item) {
	if !it.IsWeapon() {
		return
	}
	rc := &it.Data.Weapon.RC
	list := parts.New(nil)
	for _, mod := range mods {
		if m := mod.Data.Modification; m.RC != 0 {
			list.AddUniquePart(mod.Name, m.RC)
		}
	}
	rc.Mod = list.Parts()
	rc.Recalc()
}

// HostDataPrepare computes host matrix attributes and condition monitor and
// backfills the marks table and link lists.
func HostDataPrepare(it *entity.Item) {
	host := it.Data.Host
	if host == nil {
		return
	}
	if host.Marks == nil {
		host.Marks = entity.Marks{}
	}
	if host.IC == nil {
		host.IC = []entity.Link{}
	}
	if host.NetworkDevices == nil {
		host.NetworkDevices = []entity.Link{}
	}
	if host.Attributes == nil {
		host.Attributes = map[string]*data.Value{}
	}
	ratings := rules.HostAttributeRatings(host.Rating)
	for i, id := range entity.MatrixAttributes {
		attr := host.Attributes[id]
		if attr == nil {
			v := data.NewValue(id)
			v.Base = ratings[i]
			attr = &v
			host.Attributes[id] = attr
		}
		PrepareAttribute(id, attr)
	}
	host.ConditionMonitor.Max = rules.ConditionMonitor(host.Rating)
}

// DeviceDataPrepare computes device matrix attributes.
func DeviceDataPrepare(it *entity.Item) {
	dev := it.Data.Device
	if dev == nil {
		return
	}
	if dev.NetworkDevices == nil {
		dev.NetworkDevices = []entity.Link{}
	}
	if dev.Attributes == nil {
		dev.Attributes = map[string]*data.Value{}
	}
	for _, id := range entity.MatrixAttributes {
		if dev.Attributes[id] == nil {
			v := data.NewValue(id)
			dev.Attributes[id] = &v
		}
		PrepareAttribute(id, dev.Attributes[id])
	}
}
