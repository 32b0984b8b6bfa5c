package entity

import "github.com/kasuganosora/sr5rules/game/data"

// Item types.
const (
	ItemWeapon       = "weapon"
	ItemAmmo         = "ammo"
	ItemModification = "modification"
	ItemArmor        = "armor"
	ItemDevice       = "device"
	ItemHost         = "host"
	ItemSpell        = "spell"
	ItemAction       = "action"
	ItemEquipment    = "equipment"
	ItemCyberware    = "cyberware"
	ItemProgram      = "program"
)

// Weapon categories.
const (
	WeaponMelee  = "melee"
	WeaponRange  = "range"
	WeaponThrown = "thrown"
)

// Link is an opaque reference to another document.
type Link struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Pack string `json:"pack,omitempty"`
	Name string `json:"name,omitempty"`
	// ICType is set on links into a host's IC order.
	ICType string `json:"ic_type,omitempty"`
}

// Technology is the data shared by all items with a device rating.
type Technology struct {
	Rating            int             `json:"rating"`
	Equipped          bool            `json:"equipped"`
	Conceal           data.Value      `json:"conceal"`
	ConditionMonitor  *data.Condition `json:"condition_monitor,omitempty"`
	NetworkController *Link           `json:"network_controller,omitempty"`
}

// Armor holds armor values of armor items.
type Armor struct {
	Value     int            `json:"value"`
	Accessory bool           `json:"accessory"`
	Elements  map[string]int `json:"elements,omitempty"`
}

// Weapon holds weapon-specific data.
type Weapon struct {
	Category string     `json:"category"`
	Reach    int        `json:"reach,omitempty"`
	RC       data.Value `json:"rc"`
	// FireMode is the last used fire mode's recoil value.
	FireMode int `json:"fire_mode,omitempty"`
}

// Ammo holds the damage overrides of loaded ammunition.
type Ammo struct {
	Damage      int    `json:"damage"`
	AP          int    `json:"ap"`
	Element     string `json:"element,omitempty"`
	DamageType  string `json:"damage_type,omitempty"`
	BlastRadius int    `json:"blast_radius,omitempty"`
}

// Modification holds weapon or armor modification bonuses.
type Modification struct {
	Type     string `json:"type"`
	Accuracy int    `json:"accuracy,omitempty"`
	DicePool int    `json:"dice_pool,omitempty"`
	RC       int    `json:"rc,omitempty"`
}

// Spell holds spell data relevant to drain.
type Spell struct {
	Category string `json:"category"`
	Type     string `json:"type"`
	Drain    int    `json:"drain"`
	Area     bool   `json:"area,omitempty"`
}

// Device holds commlink and cyberdeck data.
type Device struct {
	Category       string                 `json:"category"`
	Attributes     map[string]*data.Value `json:"attributes"`
	NetworkDevices []Link                 `json:"network_devices"`
}

// Host holds host item data: rating, placed marks, IC order and its WAN.
type Host struct {
	Rating           int                    `json:"rating"`
	Attributes       map[string]*data.Value `json:"attributes"`
	ConditionMonitor data.Condition         `json:"condition_monitor"`
	Marks            Marks                  `json:"marks"`
	IC               []Link                 `json:"ic"`
	NetworkDevices   []Link                 `json:"network_devices"`
}

// ItemData is the typed data of an item. Only the sections of the item's
// type are set.
type ItemData struct {
	Technology   *Technology   `json:"technology,omitempty"`
	Action       *data.Action  `json:"action,omitempty"`
	Armor        *Armor        `json:"armor,omitempty"`
	Weapon       *Weapon       `json:"weapon,omitempty"`
	Ammo         *Ammo         `json:"ammo,omitempty"`
	Modification *Modification `json:"modification,omitempty"`
	Spell        *Spell        `json:"spell,omitempty"`
	Device       *Device       `json:"device,omitempty"`
	Host         *Host         `json:"host,omitempty"`
}

// Item is an item document. Items may nest ammo and modifications.
type Item struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	OwnerID string   `json:"owner_id,omitempty"`
	Data    ItemData `json:"data"`
	Items   []*Item  `json:"items,omitempty"`
	Version int      `json:"version"`
}

func (i *Item) IsHost() bool   { return i != nil && i.Type == ItemHost && i.Data.Host != nil }
func (i *Item) IsDevice() bool { return i != nil && i.Type == ItemDevice }
func (i *Item) IsWeapon() bool { return i != nil && i.Type == ItemWeapon && i.Data.Weapon != nil }

// IsMeleeWeapon reports whether the item is a melee weapon.
func (i *Item) IsMeleeWeapon() bool {
	return i.IsWeapon() && i.Data.Weapon.Category == WeaponMelee
}

// IsRangedWeapon reports whether the item is a ranged weapon.
func (i *Item) IsRangedWeapon() bool {
	return i.IsWeapon() && i.Data.Weapon.Category == WeaponRange
}

// IsEquipped reports whether the item is equipped. Items without technology
// data are never equipped.
func (i *Item) IsEquipped() bool {
	return i != nil && i.Data.Technology != nil && i.Data.Technology.Equipped
}

// Rating returns the device rating, zero without technology data.
func (i *Item) Rating() int {
	if i == nil || i.Data.Technology == nil {
		return 0
	}
	return i.Data.Technology.Rating
}

// CanBeNetworkController reports whether other devices can join this item's network.
func (i *Item) CanBeNetworkController() bool {
	return i.IsHost() || (i.IsDevice() && i.Data.Device != nil)
}

// CanBeNetworkDevice reports whether the item can join a network.
func (i *Item) CanBeNetworkDevice() bool {
	return i != nil && i.Data.Technology != nil
}

// NetworkDevices returns the controller's device links, nil for non controllers.
func (i *Item) NetworkDevices() []Link {
	switch {
	case i.IsHost():
		return i.Data.Host.NetworkDevices
	case i.CanBeNetworkController():
		return i.Data.Device.NetworkDevices
	}
	return nil
}

// SetNetworkDevices replaces the controller's device links.
func (i *Item) SetNetworkDevices(links []Link) {
	switch {
	case i.IsHost():
		i.Data.Host.NetworkDevices = links
	case i.CanBeNetworkController():
		i.Data.Device.NetworkDevices = links
	}
}

// EquippedAmmo returns the first equipped nested ammo item, or nil.
func (i *Item) EquippedAmmo() *Item {
	for _, it := range i.Items {
		if it.Type == ItemAmmo && it.Data.Ammo != nil && it.IsEquipped() {
			return it
		}
	}
	return nil
}

// EquippedMods returns equipped nested modification items.
func (i *Item) EquippedMods() []*Item {
	var out []*Item
	for _, it := range i.Items {
		if it.Type == ItemModification && it.Data.Modification != nil && it.IsEquipped() {
			out = append(out, it)
		}
	}
	return out
}

// HasOpposedTest reports whether the item's action demands an opposed test.
func (i *Item) HasOpposedTest() bool {
	return i != nil && i.Data.Action != nil && i.Data.Action.Opposed != nil && i.Data.Action.Opposed.Test != ""
}

// AsLink returns a link pointing at the item.
func (i *Item) AsLink() Link {
	return Link{Type: "Item", ID: i.ID, Name: i.Name}
}
