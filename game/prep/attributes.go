// Package prep derives the computed fields of actors and items from their
// base data. Preparation runs whenever base data changes and is idempotent:
// every contribution is keyed by its source, so running it twice yields the
// same document.
//
// Preparers never fail. Missing sub-records are backfilled with zeroed
// defaults.
package prep

import (
	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/parts"
)

// Part labels written by preparation.
const (
	PartBonus      = "Bonus"
	PartHostRating = "Host.Rating"
)

// PrepareAttribute computes an attribute's value. Essence may drop below
// zero, every other attribute is floored at 0.
func PrepareAttribute(id string, attr *data.Value) {
	if attr == nil {
		return
	}
	if attr.Mod == nil {
		attr.Mod = []parts.Part{}
	}
	if attr.Label == "" {
		attr.Label = id
	}
	if id == entity.AttrEssence {
		attr.Recalc()
		return
	}
	attr.RecalcMin(0)
}

func ensureAttributes(d *entity.ActorData) {
	if d.Attributes == nil {
		d.Attributes = map[string]*data.Value{}
	}
	for _, id := range entity.Attributes {
		if d.Attributes[id] == nil {
			v := data.NewValue(id)
			d.Attributes[id] = &v
		}
	}
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
