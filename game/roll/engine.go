package roll

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/errs"
	"github.com/kasuganosora/sr5rules/game/rules"
	"github.com/kasuganosora/sr5rules/plugin/hook"
)

// Hooks receives lifecycle events. *hook.HookCenter satisfies it.
type Hooks interface {
	Trigger(ctx context.Context, event string, data interface{}) (interface{}, error)
}

// Config requests a new test.
type Config struct {
	Kind    Kind
	ActorID string
	ItemID  string
	// Action overrides fields of the item's or the kind's default action.
	Action *data.Action
	// Against is the completed test this test resolves against.
	Against           *Snapshot
	PreviousMessageID string
	Title             string
	ShowDialog        bool
	Force             int
	Extended          bool
}

// DialogInput carries user edits collected while a test awaits its dialog.
// Nil fields keep their current values.
type DialogInput struct {
	Cancel         bool    `json:"cancel"`
	Cover          *Number `json:"cover,omitempty"`
	ActiveDefense  *string `json:"active_defense,omitempty"`
	Force          *int    `json:"force,omitempty"`
	Modifier       *int    `json:"modifier,omitempty"`
	Threshold      *int    `json:"threshold,omitempty"`
	Limit          *int    `json:"limit,omitempty"`
	Extended       *bool   `json:"extended,omitempty"`
	IncomingDamage *int    `json:"incoming_damage,omitempty"`
}

// PartSituational labels a modifier entered in the dialog.
const PartSituational = "Situational"

// Engine drives tests through their lifecycle.
type Engine struct {
	roller rules.Roller
	hooks  Hooks
	logger *zap.Logger
}

// NewEngine creates an Engine. hooks and logger may be nil.
func NewEngine(roller rules.Roller, hooks Hooks, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{roller: roller, hooks: hooks, logger: logger}
}

// Begin creates a test and computes its values. The returned test is either
// pending on its dialog or ready to evaluate.
func (e *Engine) Begin(ctx context.Context, rctx ResolutionContext, cfg Config) (*Test, error) {
	t, err := e.build(ctx, rctx, cfg)
	if err != nil {
		e.logger.Warn("test not started",
			zap.String("kind", string(cfg.Kind)),
			zap.String("actor_id", cfg.ActorID),
			zap.Error(err))
		return nil, err
	}

	t.run(t.behavior.prepareType)
	t.run(t.behavior.prepareDocument)
	e.prepare(ctx, t)

	event := eventPrepare
	if cfg.ShowDialog {
		event = eventAwaitDialog
	}
	if err := t.transition(ctx, event); err != nil {
		return nil, fmt.Errorf("begin test: %v: %w", err, errs.ErrState)
	}
	e.logger.Debug("test started",
		zap.String("test_id", t.ID()),
		zap.String("kind", string(t.Kind())),
		zap.String("state", t.State()))
	return t, nil
}

// Opposed begins the test an actor rolls against a completed test that
// demands an opposed test.
func (e *Engine) Opposed(ctx context.Context, rctx ResolutionContext, against *Snapshot, actorID, previousMessageID string, showDialog bool) (*Test, error) {
	if against == nil || against.Opposed() == nil {
		return nil, fmt.Errorf("no opposed action to resolve: %w", errs.ErrConfiguration)
	}
	kind := KindOpposed
	if name := against.Opposed().Test; name != "" {
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	return e.Begin(ctx, rctx, Config{
		Kind:              kind,
		ActorID:           actorID,
		Against:           against,
		PreviousMessageID: previousMessageID,
		ShowDialog:        showDialog,
	})
}

// FollowUp begins the test that follows a completed one. A physical
// defense the attack got through is followed by a resist test of the same
// actor against the remaining damage. A spellcasting test is followed by
// the caster's drain test. Any other test has no follow-up.
func (e *Engine) FollowUp(ctx context.Context, rctx ResolutionContext, t *Test, showDialog bool) (*Test, error) {
	if !t.Completed() {
		return nil, fmt.Errorf("test %s is %s, only completed tests have a follow-up: %w", t.ID(), t.State(), errs.ErrState)
	}
	var kind Kind
	switch {
	case t.Kind() == KindPhysicalDefense && t.Data.Failure:
		kind = KindPhysicalResist
	case !t.behavior.against && t.item != nil && t.item.Data.Spell != nil:
		kind = KindDrain
	default:
		return nil, nil
	}
	return e.Begin(ctx, rctx, Config{
		Kind:              kind,
		ActorID:           t.Data.ActorID,
		Against:           t.Snapshot(),
		PreviousMessageID: t.ID(),
		ShowDialog:        showDialog,
	})
}

// Restore rebuilds a live test from its persisted record.
func (e *Engine) Restore(ctx context.Context, rctx ResolutionContext, d Data) (*Test, error) {
	b, ok := behaviors[d.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown test kind %q: %w", d.Kind, errs.ErrConfiguration)
	}
	actor, item, err := populateDocuments(ctx, rctx, d.ActorID, d.ItemID)
	if err != nil {
		return nil, err
	}
	state := d.State
	if state == "" {
		state = StateCreated
	}
	return &Test{Data: d, actor: actor, item: item, behavior: b, fsm: newLifecycle(state)}, nil
}

// ResolveDialog applies user input to a pending test. Cancelling moves the
// test to the cancelled state and changes nothing else.
func (e *Engine) ResolveDialog(ctx context.Context, t *Test, in DialogInput) (*Test, error) {
	if !t.Pending() {
		return nil, fmt.Errorf("test %s is %s, not awaiting a dialog: %w", t.ID(), t.State(), errs.ErrState)
	}
	if in.Cancel {
		if err := t.transition(ctx, eventCancel); err != nil {
			return nil, fmt.Errorf("cancel test: %v: %w", err, errs.ErrState)
		}
		e.logger.Debug("test cancelled", zap.String("test_id", t.ID()))
		return t, nil
	}
	if in.Extended != nil && *in.Extended && !t.behavior.canBeExtended {
		return nil, fmt.Errorf("%s tests cannot be extended: %w", t.Kind(), errs.ErrValidation)
	}

	d := &t.Data
	if in.Cover != nil {
		d.Cover = int(*in.Cover)
	}
	if in.ActiveDefense != nil {
		d.ActiveDefense = *in.ActiveDefense
	}
	if in.Force != nil {
		d.Force = *in.Force
	}
	if in.Modifier != nil {
		d.Modifiers.AddUniquePart(PartSituational, *in.Modifier)
	}
	if in.Threshold != nil {
		d.Action.Threshold.Base = *in.Threshold
		d.Threshold.Base = *in.Threshold
	}
	if in.Limit != nil {
		d.Action.Limit.Base = *in.Limit
		d.Limit.Base = *in.Limit
	}
	if in.Extended != nil {
		d.Extended = *in.Extended
	}
	if in.IncomingDamage != nil && d.IncomingDamage != nil {
		d.IncomingDamage.SetOverride(*in.IncomingDamage)
		d.IncomingDamage.RecalcMin(0)
		modified := d.IncomingDamage.Clone()
		d.ModifiedDamage = &modified
	}

	e.prepare(ctx, t)
	if err := t.transition(ctx, eventPrepare); err != nil {
		return nil, fmt.Errorf("resolve dialog: %v: %w", err, errs.ErrState)
	}
	return t, nil
}

// Evaluate rolls the pool and processes the results.
func (e *Engine) Evaluate(ctx context.Context, t *Test) error {
	if !t.Ready() {
		return fmt.Errorf("test %s is %s, not ready to evaluate: %w", t.ID(), t.State(), errs.ErrState)
	}
	if e.hooks != nil {
		if _, err := e.hooks.Trigger(ctx, hook.BeforeTestEvaluate, t); errors.Is(err, hook.ErrInterrupt) {
			return fmt.Errorf("evaluation of test %s interrupted: %w", t.ID(), errs.ErrValidation)
		} else if err != nil {
			e.logger.Warn("before evaluate hook failed", zap.String("test_id", t.ID()), zap.Error(err))
		}
	}
	if err := t.transition(ctx, eventEvaluate); err != nil {
		return fmt.Errorf("evaluate: %v: %w", err, errs.ErrState)
	}
	e.roll(t, 0)
	return e.processResults(ctx, t)
}

// Extend rolls an extended test again with one die less, adding up hits.
func (e *Engine) Extend(ctx context.Context, t *Test) error {
	if !t.behavior.canBeExtended {
		return fmt.Errorf("%s tests cannot be extended: %w", t.Kind(), errs.ErrValidation)
	}
	if !t.Completed() {
		return fmt.Errorf("test %s is %s, only completed tests extend: %w", t.ID(), t.State(), errs.ErrState)
	}
	if !t.Data.Extended {
		return fmt.Errorf("test %s is not an extended test: %w", t.ID(), errs.ErrValidation)
	}
	if t.Data.Pool.Value-1 <= 0 {
		return fmt.Errorf("test %s has no dice left to extend: %w", t.ID(), errs.ErrValidation)
	}

	previous := t.Hits()
	t.Data.ExtendedRolls++
	t.Data.Pool.AddUniquePart(PartExtended, -t.Data.ExtendedRolls)
	t.Data.Pool.RecalcMin(0)

	if err := t.transition(ctx, eventExtend); err != nil {
		return fmt.Errorf("extend: %v: %w", err, errs.ErrState)
	}
	e.roll(t, previous)
	return e.processResults(ctx, t)
}

func (e *Engine) build(ctx context.Context, rctx ResolutionContext, cfg Config) (*Test, error) {
	b, ok := behaviors[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown test kind %q: %w", cfg.Kind, errs.ErrConfiguration)
	}
	if b.against {
		if cfg.Against == nil {
			return nil, fmt.Errorf("%s test needs a test to resolve against: %w", cfg.Kind, errs.ErrConfiguration)
		}
		if !cfg.Against.Completed() {
			return nil, fmt.Errorf("test %s has no results yet: %w", cfg.Against.ID(), errs.ErrState)
		}
		if cfg.ActorID == "" {
			return nil, fmt.Errorf("%s test without an actor: %w", cfg.Kind, errs.ErrResolution)
		}
	}

	actor, item, err := populateDocuments(ctx, rctx, cfg.ActorID, cfg.ItemID)
	if err != nil {
		return nil, err
	}

	var d Data
	if b.opposed {
		d, err = OpposedTestData(cfg.Against, actor, cfg.PreviousMessageID, cfg.Kind)
		if err != nil {
			return nil, err
		}
	} else {
		d = Data{
			Kind:              cfg.Kind,
			PreviousMessageID: cfg.PreviousMessageID,
			Action:            testAction(b, item, cfg.Action),
			Pool:              newPoolValue(),
			Limit:             newLimitValue(),
			Threshold:         newThreshold(),
			Modifiers:         newModifiersValue(),
		}
		if cfg.Against != nil {
			d.AgainstID = cfg.Against.ID()
			d.Against = cfg.Against
		}
	}

	d.ID = NewID()
	d.State = StateCreated
	d.SceneID = rctx.SceneID
	d.UserID = rctx.UserID
	d.ActorID = cfg.ActorID
	d.ItemID = cfg.ItemID
	d.ShowDialog = cfg.ShowDialog
	d.TestModifiers = append([]string{}, b.testModifiers...)
	d.CanSucceed = b.canSucceed
	d.CanBeExtended = b.canBeExtended
	d.Opposed = !b.opposed && d.Action.Opposed != nil && d.Action.Opposed.Test != ""
	d.Extended = b.canBeExtended && (cfg.Extended || d.Action.Extended)
	d.Force = cfg.Force
	d.Title = firstNonEmpty(cfg.Title, d.Title, itemName(item), string(cfg.Kind))

	t := &Test{Data: d, actor: actor, item: item, behavior: b, fsm: newLifecycle(StateCreated)}
	if b.documentAction != nil && actor != nil {
		if err := b.documentAction(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// prepare computes base values, pool modifiers and totals. Every step adds
// keyed parts, so preparing twice yields the same values.
func (e *Engine) prepare(ctx context.Context, t *Test) {
	t.run(t.behavior.baseValues)
	t.run(t.behavior.poolModifiers)
	t.run(t.behavior.calculate)
	if e.hooks != nil {
		if _, err := e.hooks.Trigger(ctx, hook.TestPrepared, t); err != nil {
			e.logger.Warn("test prepared hook failed", zap.String("test_id", t.ID()), zap.Error(err))
		}
	}
}

// roll rolls the pool and records hits on top of previous hits.
func (e *Engine) roll(t *Test, previous int) {
	faces := e.roller.Roll(t.Data.Pool.Value)
	res := rules.Evaluate(faces, t.Data.Limit.Value)
	d := &t.Data
	d.Dice = faces

	d.Values.Hits = data.NewValue("Hits")
	d.Values.Hits.Base = res.Hits
	if t.Data.ExtendedRolls > 0 {
		d.Values.Hits.AddUniquePart(PartPrevious, previous)
	}
	d.Values.Hits.RecalcMin(0)

	d.Values.NetHits = data.NewValue("NetHits")
	d.Values.NetHits.Base = rules.NetHits(d.Values.Hits.Value, d.Threshold.Value)
	d.Values.NetHits.RecalcMin(0)

	d.Values.Glitches = data.NewValue("Glitches")
	d.Values.Glitches.Base = res.Ones
	d.Values.Glitches.Recalc()
	d.Values.Glitch = res.Glitch
	d.Values.CriticalGlitch = res.CriticalGlitch
}

// processResults runs the success or failure handler. Kinds that cannot
// succeed always run the success handler. A graze runs neither.
func (e *Engine) processResults(ctx context.Context, t *Test) error {
	b := t.behavior
	success, failure := b.success(t), b.failure(t)
	switch {
	case !b.canSucceed:
		b.processSuccess(t)
	case success:
		b.processSuccess(t)
	case failure:
		b.processFailure(t)
	}
	t.run(b.afterResults)

	t.Data.Success = b.canSucceed && success
	t.Data.Failure = b.canSucceed && failure
	switch {
	case t.Data.Success:
		t.Data.ResultLabel = b.successLabel
	case t.Data.Failure:
		t.Data.ResultLabel = b.failureLabel
	case !b.canSucceed:
		t.Data.ResultLabel = b.successLabel
	default:
		t.Data.ResultLabel = "Graze"
	}

	if err := t.transition(ctx, eventProcess); err != nil {
		return fmt.Errorf("process results: %v: %w", err, errs.ErrState)
	}
	if e.hooks != nil {
		if _, err := e.hooks.Trigger(ctx, hook.AfterTestResults, t); err != nil {
			e.logger.Warn("after results hook failed", zap.String("test_id", t.ID()), zap.Error(err))
		}
	}
	e.logger.Debug("test evaluated",
		zap.String("test_id", t.ID()),
		zap.Int("pool", t.Data.Pool.Value),
		zap.Int("hits", t.Hits()),
		zap.Int("net_hits", t.NetHits()),
		zap.Bool("success", t.Data.Success))
	return nil
}

func populateDocuments(ctx context.Context, rctx ResolutionContext, actorID, itemID string) (*entity.Actor, *entity.Item, error) {
	if rctx.Documents == nil {
		if actorID != "" || itemID != "" {
			return nil, nil, fmt.Errorf("no document access to resolve actor %q item %q: %w", actorID, itemID, errs.ErrResolution)
		}
		return nil, nil, nil
	}
	var (
		actor *entity.Actor
		item  *entity.Item
		err   error
	)
	if actorID != "" {
		if actor, err = rctx.Documents.Actor(ctx, actorID); err != nil {
			return nil, nil, fmt.Errorf("resolve actor %s: %w", actorID, asResolution(err))
		}
	}
	if itemID != "" {
		if actor != nil {
			item = actor.Item(itemID)
		}
		if item == nil {
			if item, err = rctx.Documents.Item(ctx, itemID); err != nil {
				return nil, nil, fmt.Errorf("resolve item %s: %w", itemID, asResolution(err))
			}
		}
	}
	return actor, item, nil
}

func asResolution(err error) error {
	if errors.Is(err, errs.ErrResolution) {
		return err
	}
	return fmt.Errorf("%v: %w", err, errs.ErrResolution)
}

// testAction merges the caller's action over the item's action over the
// kind's default action.
func testAction(b behavior, item *entity.Item, override *data.Action) data.Action {
	action := b.defaultAction.Clone()
	if item != nil && item.Data.Action != nil {
		action = item.Data.Action.Clone().Merge(action)
	}
	if override != nil {
		action = override.Clone().Merge(action)
	}
	return action
}

func itemName(it *entity.Item) string {
	if it == nil {
		return ""
	}
	return it.Name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
