package prep

import (
	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/parts"
)

// PrepareMatrixToLimitsAndAttributes mirrors the computed matrix attributes
// into hidden limits and attributes so tests can reference them by id.
func PrepareMatrixToLimitsAndAttributes(d *entity.ActorData) {
	if d.Matrix == nil {
		return
	}
	if d.Limits == nil {
		d.Limits = map[string]*data.Value{}
	}
	for _, id := range entity.MatrixAttributes {
		attr := d.Matrix.Attributes[id]
		if attr == nil {
			continue
		}
		mirror := func() *data.Value {
			v := data.NewValue(attr.Label)
			v.Base = attr.Value
			v.Hidden = true
			v.Recalc()
			return &v
		}
		d.Limits[id] = mirror()
		d.Attributes[id] = mirror()
	}
}

func ensureMatrix(d *entity.ActorData) {
	if d.Matrix == nil {
		d.Matrix = &entity.Matrix{}
	}
	if d.Matrix.Attributes == nil {
		d.Matrix.Attributes = map[string]*data.Value{}
	}
	for _, id := range entity.MatrixAttributes {
		if d.Matrix.Attributes[id] == nil {
			v := data.NewValue(id)
			d.Matrix.Attributes[id] = &v
		}
	}
}

func ensureTrack(d *entity.ActorData, id string) *data.Track {
	if d.Track == nil {
		d.Track = map[string]*data.Track{}
	}
	if d.Track[id] == nil {
		d.Track[id] = data.NewTrack(id)
	}
	t := d.Track[id]
	if t.Mod == nil {
		t.Mod = []parts.Part{}
	}
	return t
}
