package matrix

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/errs"
	"github.com/kasuganosora/sr5rules/game/rules"
	"github.com/kasuganosora/sr5rules/plugin/hook"
)

// Store reads and writes the documents matrix bookkeeping touches.
// SaveItems writes all items or none.
type Store interface {
	Actor(ctx context.Context, id string) (*entity.Actor, error)
	Item(ctx context.Context, id string) (*entity.Item, error)
	SaveItems(ctx context.Context, items ...*entity.Item) error
}

// Hooks receives matrix events. *hook.HookCenter satisfies it.
type Hooks interface {
	Trigger(ctx context.Context, event string, data interface{}) (interface{}, error)
}

// Service places marks, links devices into networks and orders host IC.
type Service struct {
	store  Store
	hooks  Hooks
	logger *zap.Logger
}

// NewService creates a Service. hooks and logger may be nil.
func NewService(store Store, hooks Hooks, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, hooks: hooks, logger: logger}
}

func (s *Service) host(ctx context.Context, id string) (*entity.Item, error) {
	it, err := s.store.Item(ctx, id)
	if err != nil {
		return nil, err
	}
	if !it.IsHost() {
		return nil, fmt.Errorf("item %s is a %s, not a host: %w", id, it.Type, errs.ErrConfiguration)
	}
	if it.Data.Host.Marks == nil {
		it.Data.Host.Marks = Marks{}
	}
	return it, nil
}

// SetMarks places marks on target and returns the marks now stored. Marks
// add to the current count unless overwrite is set. The result is clamped
// to [0, rules.MaxMarks]; a result of zero removes the entry.
func (s *Service) SetMarks(ctx context.Context, hostID string, target MarkTarget, marks int, overwrite bool) (int, error) {
	if target.SceneID == "" || target.TargetID == "" {
		return 0, fmt.Errorf("mark target needs scene and target: %w", errs.ErrValidation)
	}
	host, err := s.host(ctx, hostID)
	if err != nil {
		return 0, err
	}

	id := target.ID()
	current := host.Data.Host.Marks.Get(id)
	base := current
	if overwrite {
		base = 0
	}
	change := &MarksChange{HostID: hostID, MarkID: id, Before: current, After: rules.ValidMarksCount(base + marks)}
	if s.hooks != nil {
		if _, err := s.hooks.Trigger(ctx, hook.BeforeSetMarks, change); errors.Is(err, hook.ErrInterrupt) {
			return current, fmt.Errorf("setting marks on %s interrupted: %w", id, errs.ErrValidation)
		} else if err != nil {
			s.logger.Warn("before set marks hook failed", zap.String("mark_id", id), zap.Error(err))
		}
	}
	after := rules.ValidMarksCount(change.After)

	if after == 0 {
		host.Data.Host.Marks.Remove(id)
	} else {
		host.Data.Host.Marks.Set(id, after)
	}
	if err := s.store.SaveItems(ctx, host); err != nil {
		return current, err
	}
	s.logger.Debug("marks set",
		zap.String("host_id", hostID),
		zap.String("mark_id", id),
		zap.Int("before", current),
		zap.Int("after", after))
	return after, nil
}

// GetMarks returns the marks the host placed on target.
func (s *Service) GetMarks(ctx context.Context, hostID string, target MarkTarget) (int, error) {
	return s.GetMarksByID(ctx, hostID, target.ID())
}

// GetMarksByID returns the marks stored under a mark id.
func (s *Service) GetMarksByID(ctx context.Context, hostID, markID string) (int, error) {
	host, err := s.host(ctx, hostID)
	if err != nil {
		return 0, err
	}
	return host.Data.Host.Marks.Get(markID), nil
}

// AllMarks returns a copy of the host's mark table.
func (s *Service) AllMarks(ctx context.Context, hostID string) (Marks, error) {
	host, err := s.host(ctx, hostID)
	if err != nil {
		return nil, err
	}
	out := make(Marks, len(host.Data.Host.Marks))
	for id, n := range host.Data.Host.Marks {
		out[id] = n
	}
	return out, nil
}

// ClearMark removes one mark entry. Removing an absent entry is not an error.
func (s *Service) ClearMark(ctx context.Context, hostID, markID string) error {
	host, err := s.host(ctx, hostID)
	if err != nil {
		return err
	}
	if !host.Data.Host.Marks.Remove(markID) {
		return nil
	}
	return s.store.SaveItems(ctx, host)
}

// ClearMarks removes every mark the host placed.
func (s *Service) ClearMarks(ctx context.Context, hostID string) error {
	host, err := s.host(ctx, hostID)
	if err != nil {
		return err
	}
	removed := host.Data.Host.Marks.Clear()
	if len(removed) == 0 {
		return nil
	}
	s.logger.Debug("marks cleared", zap.String("host_id", hostID), zap.Int("count", len(removed)))
	return s.store.SaveItems(ctx, host)
}

// MarkedDocuments lists the host's marks with their documents resolved.
// Entries with malformed ids are skipped.
func (s *Service) MarkedDocuments(ctx context.Context, hostID string) ([]MarkedDocument, error) {
	host, err := s.host(ctx, hostID)
	if err != nil {
		return nil, err
	}
	marks := host.Data.Host.Marks
	out := make([]MarkedDocument, 0, len(marks))
	for _, id := range marks.Keys() {
		target, err := ParseMarkID(id)
		if err != nil {
			s.logger.Warn("skipping malformed mark id", zap.String("host_id", hostID), zap.String("mark_id", id))
			continue
		}
		doc := MarkedDocument{MarkTarget: target, MarkID: id, Marks: marks.Get(id)}
		if a, err := s.store.Actor(ctx, target.TargetID); err == nil {
			doc.TargetActor = a
			if target.ItemID != "" {
				doc.Item = a.Item(target.ItemID)
			}
		} else if it, err := s.store.Item(ctx, target.TargetID); err == nil {
			doc.TargetItem = it
		}
		if doc.Item == nil && target.ItemID != "" {
			if it, err := s.store.Item(ctx, target.ItemID); err == nil {
				doc.Item = it
			}
		}
		out = append(out, doc)
	}
	return out, nil
}
