package prep

import (
	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/parts"
)

// Modifier ids.
const (
	ModGlobal               = "global"
	ModWounds               = "wounds"
	ModDefense              = "defense"
	ModSoak                 = "soak"
	ModDrain                = "drain"
	ModArmor                = "armor"
	ModPhysicalLimit        = "physical_limit"
	ModMentalLimit          = "mental_limit"
	ModSocialLimit          = "social_limit"
	ModPhysicalTrack        = "physical_track"
	ModStunTrack            = "stun_track"
	ModMeatInitiative       = "meat_initiative"
	ModMeatInitiativeDice   = "meat_initiative_dice"
	ModAstralInitiative     = "astral_initiative"
	ModAstralInitiativeDice = "astral_initiative_dice"
	ModMatrixInitiative     = "matrix_initiative"
	ModMatrixInitiativeDice = "matrix_initiative_dice"
	ModMatrixTrack          = "matrix_track"
)

// CommonModifiers apply to every actor type.
var CommonModifiers = []string{ModGlobal, ModWounds, ModDefense, ModSoak, ModDrain}

// PhysicalModifiers apply to actors with a body.
var PhysicalModifiers = []string{
	ModArmor, ModPhysicalLimit, ModMentalLimit, ModSocialLimit,
	ModPhysicalTrack, ModStunTrack,
	ModMeatInitiative, ModMeatInitiativeDice,
	ModAstralInitiative, ModAstralInitiativeDice,
}

// MatrixModifiers apply to actors with a matrix persona.
var MatrixModifiers = []string{ModMatrixInitiative, ModMatrixInitiativeDice, ModMatrixTrack}

// SetupModifiers makes sure every listed modifier exists, defaulting to 0.
func SetupModifiers(d *entity.ActorData, ids []string) {
	if d.Modifiers == nil {
		d.Modifiers = map[string]int{}
	}
	for _, id := range ids {
		if _, ok := d.Modifiers[id]; !ok {
			d.Modifiers[id] = 0
		}
	}
}

// ClearAttributeMods drops all attribute modifiers before they are rebuilt.
func ClearAttributeMods(d *entity.ActorData) {
	for _, attr := range d.Attributes {
		attr.Mod = []parts.Part{}
	}
}

func bonus(v *data.Value, d *entity.ActorData, modifier string) {
	v.AddUniquePart(PartBonus, d.Modifiers[modifier])
}
