package document

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/kasuganosora/sr5rules/game/errs"
)

// Patch is a partial update of a document's data. Paths use dot syntax
// relative to the data root, e.g. "attributes.body.base". Deletes run after
// sets; both run in sorted path order.
type Patch struct {
	Set    map[string]interface{} `json:"set,omitempty"`
	Delete []string               `json:"delete,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p.Set) == 0 && len(p.Delete) == 0
}

// Apply returns doc with the patch applied. doc is not modified.
func (p Patch) Apply(doc []byte) ([]byte, error) {
	out := append([]byte(nil), doc...)
	if len(out) == 0 {
		out = []byte("{}")
	}
	if !gjson.ValidBytes(out) {
		return nil, fmt.Errorf("patch target is not valid JSON: %w", errs.ErrValidation)
	}

	paths := make([]string, 0, len(p.Set))
	for path := range p.Set {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var err error
	for _, path := range paths {
		if path == "" {
			return nil, fmt.Errorf("empty patch path: %w", errs.ErrValidation)
		}
		if out, err = sjson.SetBytes(out, path, p.Set[path]); err != nil {
			return nil, fmt.Errorf("set %q: %v: %w", path, err, errs.ErrValidation)
		}
	}

	deletes := append([]string(nil), p.Delete...)
	sort.Strings(deletes)
	for _, path := range deletes {
		if path == "" {
			return nil, fmt.Errorf("empty patch path: %w", errs.ErrValidation)
		}
		if !gjson.GetBytes(out, path).Exists() {
			continue
		}
		if out, err = sjson.DeleteBytes(out, path); err != nil {
			return nil, fmt.Errorf("delete %q: %v: %w", path, err, errs.ErrValidation)
		}
	}
	return out, nil
}

// Field reads one path of a document.
func Field(doc []byte, path string) gjson.Result {
	return gjson.GetBytes(doc, path)
}
