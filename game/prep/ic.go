package prep

import (
	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/parts"
	"github.com/kasuganosora/sr5rules/game/rules"
)

// icExcludedAttributes are never derived from the host rating.
var icExcludedAttributes = map[string]bool{
	entity.AttrMagic:     true,
	entity.AttrEdge:      true,
	entity.AttrEssence:   true,
	entity.AttrResonance: true,
}

// ICDataPrepare derives all computed fields of an IC actor.
func ICDataPrepare(d *entity.ActorData) {
	ICAddMissingTracks(d)

	ICPrepareModifiers(d)
	ClearAttributeMods(d)

	ICHideMeatAttributes(d)
	ICPrepareMeatAttributes(d)
	ICPrepareMatrixAttributes(d)
	PrepareMatrixToLimitsAndAttributes(d)

	ICPrepareMatrix(d)
	ICPrepareMatrixTrack(d)

	ICPrepareMatrixInit(d)
	PrepareCurrentInitiative(d)
}

// ICAddMissingTracks backfills the matrix track and structures legacy IC lack.
func ICAddMissingTracks(d *entity.ActorData) {
	ensureTrack(d, entity.TrackMatrix)
	ensureAttributes(d)
	ensureMatrix(d)
	if d.Host == nil {
		d.Host = &entity.HostLink{}
	}
}

// ICPrepareModifiers sets up common and matrix modifiers.
func ICPrepareModifiers(d *entity.ActorData) {
	ids := append(append([]string{}, CommonModifiers...), MatrixModifiers...)
	SetupModifiers(d, ids)
}

// ICHideMeatAttributes hides every attribute from display.
func ICHideMeatAttributes(d *entity.ActorData) {
	for _, attr := range d.Attributes {
		attr.Hidden = true
	}
}

// ICPrepareMeatAttributes derives meat attributes solely from the host rating.
func ICPrepareMeatAttributes(d *entity.ActorData) {
	for _, id := range entity.Attributes {
		attr, ok := d.Attributes[id]
		if !ok || icExcludedAttributes[id] {
			continue
		}
		attr.Base = 0
		attr.Mod = append(attr.Mod, parts.Part{Name: PartHostRating, Value: rules.ICMeatAttributeBase(d.Host.Rating)})
		PrepareAttribute(id, attr)
	}
}

// ICPrepareMatrixAttributes computes the matrix attributes.
func ICPrepareMatrixAttributes(d *entity.ActorData) {
	for _, id := range entity.MatrixAttributes {
		if attr, ok := d.Matrix.Attributes[id]; ok {
			PrepareAttribute(id, attr)
		}
	}
}

// ICPrepareMatrix sets the device rating from the host.
func ICPrepareMatrix(d *entity.ActorData) {
	d.Matrix.Rating = rules.ICDeviceRating(d.Host.Rating)
}

// ICPrepareMatrixTrack sets the matrix condition monitor and visible track.
func ICPrepareMatrixTrack(d *entity.ActorData) {
	track := ensureTrack(d, entity.TrackMatrix)
	cm := rules.ConditionMonitor(d.Matrix.Rating)

	d.Matrix.ConditionMonitor.Max = d.Modifiers[ModMatrixTrack] + cm

	track.Base = cm
	bonus(&track.Value, d, ModMatrixTrack)
	track.Max = d.Matrix.ConditionMonitor.Max
	track.Label = data.DamageMatrix
}

// ICPrepareMatrixInit switches IC to matrix initiative derived from the host.
func ICPrepareMatrixInit(d *entity.ActorData) {
	ini := &d.Initiative
	ini.Perception = data.PerceptionMatrix

	fillValue(&ini.Matrix.Base, "Base")
	fillValue(&ini.Matrix.Dice, "Dice")
	ini.Matrix.Base.Base = rules.ICInitiativeBase(d.Host.Rating)
	bonus(&ini.Matrix.Base, d, ModMatrixInitiative)

	ini.Matrix.Dice.Base = rules.ICInitiativeDice()
	bonus(&ini.Matrix.Dice, d, ModMatrixInitiativeDice)
}
