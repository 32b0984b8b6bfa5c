package prep

import (
	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/parts"
)

// MaxInitiativeDice caps the initiative dice of any perception.
const MaxInitiativeDice = 5

// PrepareCurrentInitiative copies the active perception's initiative into
// Current after computing its totals.
func PrepareCurrentInitiative(d *entity.ActorData) {
	ini := &d.Initiative
	if ini.Perception == "" {
		ini.Perception = data.PerceptionMeatspace
	}
	for _, p := range []string{data.PerceptionMeatspace, data.PerceptionAstral, data.PerceptionMatrix} {
		it := ini.Of(p)
		fillValue(&it.Base, "Base")
		fillValue(&it.Dice, "Dice")
		it.Base.RecalcMin(0)
		it.Dice.RecalcRange(0, MaxInitiativeDice)
	}
	current := ini.Of(ini.Perception)
	ini.Current = data.InitiativeType{Base: current.Base.Clone(), Dice: current.Dice.Clone()}
}

func fillValue(v *data.Value, label string) {
	if v.Mod == nil {
		v.Mod = []parts.Part{}
	}
	if v.Label == "" {
		v.Label = label
	}
}
