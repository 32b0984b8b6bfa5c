package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kasuganosora/sr5rules/audit"
	"github.com/kasuganosora/sr5rules/cache"
	"github.com/kasuganosora/sr5rules/game/errs"
	"github.com/kasuganosora/sr5rules/game/roll"
)

// Cache layout:
//
//	test:pending:<id>   KV   roll.Data JSON, expires after PendingTTL
//	test:pending        Hash test id -> scene id, swept for expired tests
//	test:recent:<scene> List Result JSON, newest first
//	test:lock:<id>      KV   held while a test is changed
const (
	pendingPrefix = "test:pending:"
	pendingIndex  = "test:pending"
	recentPrefix  = "test:recent:"
	lockPrefix    = "test:lock:"
)

// ErrBusy is returned when another request is changing the same test.
var ErrBusy = fmt.Errorf("test is being changed by another request: %w", errs.ErrState)

func pendingKey(id string) string     { return pendingPrefix + id }
func recentKey(sceneID string) string { return recentPrefix + sceneID }

func (s *Service) lock(ctx context.Context, id string) (func(), error) {
	ok, err := s.cache.SetNX(ctx, lockPrefix+id, "1", lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("test %s: %w", id, ErrBusy)
	}
	return func() {
		if err := s.cache.Del(context.WithoutCancel(ctx), lockPrefix+id); err != nil {
			s.logger.Warn("release test lock", zap.String("test_id", id), zap.Error(err))
		}
	}, nil
}

func (s *Service) savePending(ctx context.Context, d roll.Data) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode pending test %s: %w", d.ID, err)
	}
	if err := s.cache.Set(ctx, pendingKey(d.ID), string(raw), s.Rules().PendingTTL); err != nil {
		return fmt.Errorf("store pending test %s: %w", d.ID, err)
	}
	return s.cache.HSet(ctx, pendingIndex, d.ID, d.SceneID)
}

func (s *Service) loadPending(ctx context.Context, id string) (roll.Data, error) {
	raw, err := s.cache.Get(ctx, pendingKey(id))
	if err != nil {
		if cache.IsNotFound(err) {
			return roll.Data{}, fmt.Errorf("no pending test %s: %w", id, errs.ErrResolution)
		}
		return roll.Data{}, err
	}
	var d roll.Data
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return roll.Data{}, fmt.Errorf("decode pending test %s: %w", id, err)
	}
	return d, nil
}

func (s *Service) dropPending(ctx context.Context, id string) {
	if err := s.cache.Del(ctx, pendingKey(id)); err != nil {
		s.logger.Warn("drop pending test", zap.String("test_id", id), zap.Error(err))
	}
	if err := s.cache.HDel(ctx, pendingIndex, id); err != nil {
		s.logger.Warn("unindex pending test", zap.String("test_id", id), zap.Error(err))
	}
}

// Pending returns the tests of a scene still waiting for their dialog or
// evaluation, oldest first.
func (s *Service) Pending(ctx context.Context, sceneID string) ([]roll.Data, error) {
	index, err := s.cache.HGetAll(ctx, pendingIndex)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(index))
	for id, scene := range index {
		if scene == sceneID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]roll.Data, 0, len(ids))
	for _, id := range ids {
		d, err := s.loadPending(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Sweep removes expired tests from the pending index and returns how many
// were removed.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	index, err := s.cache.HGetAll(ctx, pendingIndex)
	if err != nil {
		return 0, err
	}
	if len(index) == 0 {
		return 0, nil
	}
	keys, err := s.cache.Keys(ctx, pendingPrefix)
	if err != nil {
		return 0, err
	}
	live := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		live[strings.TrimPrefix(k, pendingPrefix)] = struct{}{}
	}

	removed := 0
	for id, scene := range index {
		if _, ok := live[id]; ok {
			continue
		}
		if err := s.cache.HDel(ctx, pendingIndex, id); err != nil {
			return removed, err
		}
		removed++
		s.audit.Log(audit.Entry{Action: audit.ActionTestExpire, TestID: id, SceneID: scene})
		s.logger.Info("pending test expired", zap.String("test_id", id), zap.String("scene_id", scene))
	}
	return removed, nil
}

// SweepTask adapts Sweep to the scheduler.
func (s *Service) SweepTask(ctx context.Context) error {
	start := time.Now()
	n, err := s.Sweep(ctx)
	if n > 0 {
		s.logger.Debug("pending sweep finished", zap.Int("removed", n), zap.Duration("took", time.Since(start)))
	}
	return err
}
