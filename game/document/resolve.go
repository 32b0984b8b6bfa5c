package document

import (
	"context"
	"fmt"

	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/errs"
)

// Document types accepted by Resolve.
const (
	RefActor = "Actor"
	RefItem  = "Item"
)

// Ref points to a document, optionally inside a compendium pack.
type Ref struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Pack string `json:"pack,omitempty"`
}

// Resolved holds the document a Ref points to. Exactly one field is set.
type Resolved struct {
	Actor *entity.Actor
	Item  *entity.Item
}

// Resolve loads the document ref points to.
func (s *Store) Resolve(ctx context.Context, ref Ref) (*Resolved, error) {
	if ref.ID == "" {
		return nil, fmt.Errorf("empty document reference: %w", errs.ErrValidation)
	}
	tx := s.db.WithContext(ctx)
	switch ref.Type {
	case RefActor:
		a, err := s.actor(tx, ref.ID, ref.Pack)
		if err != nil {
			return nil, err
		}
		return &Resolved{Actor: a}, nil
	case RefItem:
		it, err := s.item(tx, ref.ID, ref.Pack)
		if err != nil {
			return nil, err
		}
		return &Resolved{Item: it}, nil
	}
	return nil, fmt.Errorf("unknown document type %q: %w", ref.Type, errs.ErrValidation)
}
