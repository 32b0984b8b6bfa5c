package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kasuganosora/sr5rules/audit"
	"github.com/kasuganosora/sr5rules/game/errs"
	"github.com/kasuganosora/sr5rules/game/roll"
)

// Begin starts a test. A test that shows a dialog is kept pending until
// Dialog is called; any other test is evaluated right away.
func (s *Service) Begin(ctx context.Context, c Caller, cfg roll.Config) (*roll.Data, error) {
	start := time.Now()
	t, err := s.engine.Begin(ctx, s.resolution(c), cfg)
	if err != nil {
		s.record(c, audit.ActionTestBegin, nil, cfg, start, err)
		return nil, err
	}
	return s.started(ctx, c, t, cfg, start)
}

// Opposed starts the test actorID rolls against the completed test againstID.
func (s *Service) Opposed(ctx context.Context, c Caller, againstID, actorID string, showDialog bool) (*roll.Data, error) {
	start := time.Now()
	against, err := s.restore(ctx, c, againstID)
	if err != nil {
		return nil, err
	}
	t, err := s.engine.Opposed(ctx, s.resolution(c), against.Snapshot(), actorID, againstID, showDialog)
	if err != nil {
		s.record(c, audit.ActionTestBegin, &against.Data, map[string]string{"against_id": againstID, "actor_id": actorID}, start, err)
		return nil, err
	}
	return s.started(ctx, c, t, map[string]string{"against_id": againstID, "actor_id": actorID}, start)
}

// FollowUp starts the test that follows the completed test id. It returns
// nil when the test has no follow-up.
func (s *Service) FollowUp(ctx context.Context, c Caller, id string, showDialog bool) (*roll.Data, error) {
	start := time.Now()
	prev, err := s.restore(ctx, c, id)
	if err != nil {
		return nil, err
	}
	t, err := s.engine.FollowUp(ctx, s.resolution(c), prev, showDialog)
	if err != nil || t == nil {
		return nil, err
	}
	return s.started(ctx, c, t, map[string]string{"follow_up_of": id}, start)
}

func (s *Service) started(ctx context.Context, c Caller, t *roll.Test, request interface{}, start time.Time) (*roll.Data, error) {
	if t.Pending() {
		if err := s.savePending(ctx, t.Data); err != nil {
			return nil, err
		}
		s.record(c, audit.ActionTestBegin, &t.Data, request, start, nil)
		return &t.Data, nil
	}
	s.record(c, audit.ActionTestBegin, &t.Data, request, start, nil)
	if err := s.evaluate(ctx, c, t, start); err != nil {
		return &t.Data, err
	}
	return &t.Data, nil
}

// Dialog answers the dialog of a pending test. A cancelled test is
// recorded and published but never rolled; otherwise the test is
// evaluated.
func (s *Service) Dialog(ctx context.Context, c Caller, id string, in roll.DialogInput) (*roll.Data, error) {
	start := time.Now()
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.engine.Restore(ctx, s.resolution(c), d)
	if err != nil {
		return nil, err
	}
	if _, err := s.engine.ResolveDialog(ctx, t, in); err != nil {
		s.record(c, audit.ActionTestDialog, &t.Data, in, start, err)
		return nil, err
	}
	s.record(c, audit.ActionTestDialog, &t.Data, in, start, nil)

	if t.Cancelled() {
		s.dropPending(ctx, id)
		if err := s.store.SaveTest(ctx, t.Data); err != nil {
			return nil, err
		}
		s.publish(ctx, t.Data)
		return &t.Data, nil
	}
	if err := s.evaluate(ctx, c, t, start); err != nil {
		return &t.Data, err
	}
	return &t.Data, nil
}

// Evaluate rolls a pending test whose values are prepared, e.g. one whose
// earlier evaluation was interrupted by a hook.
func (s *Service) Evaluate(ctx context.Context, c Caller, id string) (*roll.Data, error) {
	start := time.Now()
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.engine.Restore(ctx, s.resolution(c), d)
	if err != nil {
		return nil, err
	}
	if err := s.evaluate(ctx, c, t, start); err != nil {
		return &t.Data, err
	}
	return &t.Data, nil
}

// evaluate rolls t and completes it. A test whose evaluation fails stays
// pending so it can be evaluated again.
func (s *Service) evaluate(ctx context.Context, c Caller, t *roll.Test, start time.Time) error {
	if err := s.engine.Evaluate(ctx, t); err != nil {
		s.record(c, audit.ActionTestEvaluate, &t.Data, nil, start, err)
		if t.Ready() {
			if perr := s.savePending(ctx, t.Data); perr != nil {
				s.logger.Error("keep test pending", zap.String("test_id", t.ID()), zap.Error(perr))
			}
		}
		return err
	}
	if err := s.complete(ctx, t); err != nil {
		return err
	}
	s.record(c, audit.ActionTestEvaluate, &t.Data, nil, start, nil)
	return nil
}

func (s *Service) complete(ctx context.Context, t *roll.Test) error {
	if err := s.store.SaveTest(ctx, t.Data); err != nil {
		return err
	}
	s.dropPending(ctx, t.ID())
	s.publish(ctx, t.Data)
	s.logger.Info("test completed",
		zap.String("test_id", t.ID()),
		zap.String("kind", string(t.Kind())),
		zap.Int("hits", t.Hits()),
		zap.String("label", t.Data.ResultLabel))
	return nil
}

// Extend rolls a completed extended test again.
func (s *Service) Extend(ctx context.Context, c Caller, id string) (*roll.Data, error) {
	start := time.Now()
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	t, err := s.restore(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Extend(ctx, t); err != nil {
		s.record(c, audit.ActionTestExtend, &t.Data, nil, start, err)
		return nil, err
	}
	if err := s.complete(ctx, t); err != nil {
		return nil, err
	}
	s.record(c, audit.ActionTestExtend, &t.Data, nil, start, nil)
	return &t.Data, nil
}

// Get returns a test, pending or stored.
func (s *Service) Get(ctx context.Context, id string) (*roll.Data, error) {
	d, err := s.loadPending(ctx, id)
	if err == nil {
		return &d, nil
	}
	if !errors.Is(err, errs.ErrResolution) {
		return nil, err
	}
	d, err = s.store.LoadTest(ctx, id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) restore(ctx context.Context, c Caller, id string) (*roll.Test, error) {
	d, err := s.store.LoadTest(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Restore(ctx, s.resolution(c), d)
}
