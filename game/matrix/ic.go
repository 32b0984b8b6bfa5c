package matrix

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/errs"
)

// AddIC appends an IC actor to the host's IC order.
func (s *Service) AddIC(ctx context.Context, hostID, actorID, pack string) error {
	if actorID == "" {
		return fmt.Errorf("no IC actor given: %w", errs.ErrValidation)
	}
	host, err := s.host(ctx, hostID)
	if err != nil {
		return err
	}
	actor, err := s.store.Actor(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsIC() {
		return fmt.Errorf("actor %s is a %s, not IC: %w", actorID, actor.Type, errs.ErrConfiguration)
	}
	host.Data.Host.IC = append(host.Data.Host.IC, entity.Link{
		Type:   "Actor",
		ID:     actor.ID,
		Pack:   pack,
		Name:   actor.Name,
		ICType: actor.Data.ICType,
	})
	if err := s.store.SaveItems(ctx, host); err != nil {
		return err
	}
	s.logger.Debug("ic added", zap.String("host_id", hostID), zap.String("actor_id", actorID))
	return nil
}

// RemoveIC removes the IC at index from the host's IC order. Out of range
// indexes are ignored.
func (s *Service) RemoveIC(ctx context.Context, hostID string, index int) error {
	host, err := s.host(ctx, hostID)
	if err != nil {
		return err
	}
	ic := host.Data.Host.IC
	if index < 0 || index >= len(ic) {
		return nil
	}
	host.Data.Host.IC = append(append([]entity.Link{}, ic[:index]...), ic[index+1:]...)
	return s.store.SaveItems(ctx, host)
}

// ICOrder returns the host's IC links in spawn order.
func (s *Service) ICOrder(ctx context.Context, hostID string) ([]entity.Link, error) {
	host, err := s.host(ctx, hostID)
	if err != nil {
		return nil, err
	}
	return append([]entity.Link{}, host.Data.Host.IC...), nil
}
