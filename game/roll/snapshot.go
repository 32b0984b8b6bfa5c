package roll

import (
	"encoding/json"

	"github.com/kasuganosora/sr5rules/game/data"
)

// Snapshot is the frozen record of a completed test that another test is
// resolved against. Its data is only reachable through copies.
type Snapshot struct {
	d Data
}

// NewSnapshot freezes a copy of d.
func NewSnapshot(d Data) *Snapshot {
	return &Snapshot{d: d.Clone()}
}

func (s *Snapshot) ID() string      { return s.d.ID }
func (s *Snapshot) Kind() Kind      { return s.d.Kind }
func (s *Snapshot) ActorID() string { return s.d.ActorID }
func (s *Snapshot) Hits() int       { return s.d.Values.Hits.Value }
func (s *Snapshot) NetHits() int    { return s.d.Values.NetHits.Value }
func (s *Snapshot) Force() int      { return s.d.Force }
func (s *Snapshot) Drain() int      { return s.d.Drain }

// Completed reports whether the frozen test had its results processed.
func (s *Snapshot) Completed() bool { return s.d.State == StateResultsProcessed }

// Opposed returns a copy of the opposed descriptor, or nil.
func (s *Snapshot) Opposed() *data.Opposed {
	if s.d.Action.Opposed == nil {
		return nil
	}
	o := *s.d.Action.Opposed
	return &o
}

// Damage returns a copy of the action damage.
func (s *Snapshot) Damage() data.Damage {
	return s.d.Action.Damage.Clone()
}

// ModifiedDamage returns a copy of the damage after the frozen test, or
// zero damage for tests that do not modify damage.
func (s *Snapshot) ModifiedDamage() data.Damage {
	if s.d.ModifiedDamage == nil {
		return data.NewDamage()
	}
	return s.d.ModifiedDamage.Clone()
}

// Data returns a deep copy of the frozen record.
func (s *Snapshot) Data() Data {
	return s.d.Clone()
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.d)
}

func (s *Snapshot) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &s.d)
}
