package prep

import "github.com/kasuganosora/sr5rules/game/entity"

// PrepareActor derives all computed fields of an actor, preparing owned
// items first.
func PrepareActor(a *entity.Actor) {
	if a == nil {
		return
	}
	for _, it := range a.Items {
		PrepareItem(it, a)
	}
	switch a.Type {
	case entity.ActorIC:
		ICDataPrepare(&a.Data)
	default:
		CharacterDataPrepare(a)
	}
}
