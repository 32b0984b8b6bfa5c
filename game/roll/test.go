package roll

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/kasuganosora/sr5rules/game/entity"
)

// Lifecycle states of a test.
const (
	StateCreated          = "created"
	StateAwaitingDialog   = "awaiting_dialog"
	StateValuesPrepared   = "values_prepared"
	StateEvaluated        = "evaluated"
	StateResultsProcessed = "results_processed"
	StateCancelled        = "cancelled"
)

// Lifecycle events.
const (
	eventAwaitDialog = "await_dialog"
	eventPrepare     = "prepare"
	eventCancel      = "cancel"
	eventEvaluate    = "evaluate"
	eventProcess     = "process"
	eventExtend      = "extend"
)

func newLifecycle(initial string) *fsm.FSM {
	return fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: eventAwaitDialog, Src: []string{StateCreated}, Dst: StateAwaitingDialog},
			{Name: eventPrepare, Src: []string{StateCreated, StateAwaitingDialog}, Dst: StateValuesPrepared},
			{Name: eventCancel, Src: []string{StateAwaitingDialog}, Dst: StateCancelled},
			{Name: eventEvaluate, Src: []string{StateValuesPrepared}, Dst: StateEvaluated},
			{Name: eventProcess, Src: []string{StateEvaluated}, Dst: StateResultsProcessed},
			{Name: eventExtend, Src: []string{StateResultsProcessed}, Dst: StateEvaluated},
		},
		fsm.Callbacks{},
	)
}

// Test is a live test: its record, the resolved documents and its lifecycle.
type Test struct {
	Data Data

	actor    *entity.Actor
	item     *entity.Item
	behavior behavior
	fsm      *fsm.FSM
}

func (t *Test) Kind() Kind           { return t.Data.Kind }
func (t *Test) ID() string           { return t.Data.ID }
func (t *Test) State() string        { return t.fsm.Current() }
func (t *Test) Actor() *entity.Actor { return t.actor }
func (t *Test) Item() *entity.Item   { return t.item }
func (t *Test) Hits() int            { return t.Data.Values.Hits.Value }
func (t *Test) NetHits() int         { return t.Data.Values.NetHits.Value }
func (t *Test) Pending() bool        { return t.State() == StateAwaitingDialog }
func (t *Test) Ready() bool          { return t.State() == StateValuesPrepared }
func (t *Test) Cancelled() bool      { return t.State() == StateCancelled }
func (t *Test) Completed() bool      { return t.State() == StateResultsProcessed }
func (t *Test) CanSucceed() bool     { return t.behavior.canSucceed }
func (t *Test) CanBeExtended() bool  { return t.behavior.canBeExtended }
func (t *Test) Against() *Snapshot   { return t.Data.Against }

// Success reports whether the test succeeded per its kind.
func (t *Test) Success() bool {
	if t.State() != StateResultsProcessed && t.State() != StateEvaluated {
		return false
	}
	return t.behavior.success(t)
}

// Failure reports whether the test failed per its kind. Success and failure
// are not complements for kinds with a graze outcome.
func (t *Test) Failure() bool {
	if t.State() != StateResultsProcessed && t.State() != StateEvaluated {
		return false
	}
	return t.behavior.failure(t)
}

// Snapshot freezes the current record.
func (t *Test) Snapshot() *Snapshot {
	return NewSnapshot(t.Data)
}

func (t *Test) transition(ctx context.Context, event string) error {
	if err := t.fsm.Event(ctx, event); err != nil {
		return err
	}
	t.Data.State = t.fsm.Current()
	return nil
}

func (t *Test) run(steps []step) {
	for _, s := range steps {
		s(t)
	}
}
