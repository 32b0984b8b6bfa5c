// Package matrix keeps the matrix bookkeeping of host and device items:
// marks placed by hosts, PAN/WAN device links and the IC order of hosts.
package matrix

import (
	"fmt"
	"strings"

	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/errs"
)

// Marks is the per-host mark table.
type Marks = entity.Marks

const markIDSep = ":"

// MarkTarget addresses the document marks are placed on. ItemID is set
// when a single item of the target is marked.
type MarkTarget struct {
	SceneID  string `json:"scene_id"`
	TargetID string `json:"target_id"`
	ItemID   string `json:"item_id,omitempty"`
}

// ID returns the mark id of the target.
func (t MarkTarget) ID() string {
	return BuildMarkID(t.SceneID, t.TargetID, t.ItemID)
}

// BuildMarkID joins scene, target and item ids. The item part is always
// present, empty when no item is marked.
func BuildMarkID(sceneID, targetID, itemID string) string {
	return strings.Join([]string{sceneID, targetID, itemID}, markIDSep)
}

// ParseMarkID splits a mark id built by BuildMarkID.
func ParseMarkID(id string) (MarkTarget, error) {
	p := strings.Split(id, markIDSep)
	if len(p) != 3 || p[0] == "" || p[1] == "" {
		return MarkTarget{}, fmt.Errorf("invalid mark id %q: %w", id, errs.ErrValidation)
	}
	return MarkTarget{SceneID: p[0], TargetID: p[1], ItemID: p[2]}, nil
}

// MarksChange is passed to BeforeSetMarks handlers. Handlers may change After.
type MarksChange struct {
	HostID string
	MarkID string
	Before int
	After  int
}

// MarkedDocument is one entry of a host's mark table with its documents
// resolved. Target or Item stay nil when they no longer exist.
type MarkedDocument struct {
	MarkTarget
	MarkID      string        `json:"mark_id"`
	Marks       int           `json:"marks"`
	TargetActor *entity.Actor `json:"target_actor,omitempty"`
	TargetItem  *entity.Item  `json:"target_item,omitempty"`
	Item        *entity.Item  `json:"item,omitempty"`
}
