package roll

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/kasuganosora/sr5rules/game/entity"
)

// Documents resolves the entities a test reads. Missing entities are
// reported with an error wrapping errs.ErrResolution.
type Documents interface {
	Actor(ctx context.Context, id string) (*entity.Actor, error)
	Item(ctx context.Context, id string) (*entity.Item, error)
}

// ResolutionContext carries the caller's scene, user and document access
// into every engine operation.
type ResolutionContext struct {
	SceneID   string
	UserID    string
	Documents Documents
}

// NewID returns a new lexically sortable test id.
func NewID() string {
	return ulid.Make().String()
}
