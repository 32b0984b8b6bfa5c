package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/sr5rules/game/errs"
)

func TestPatch_Apply(t *testing.T) {
	doc := []byte(`{"armor":{"base":9},"marks":{"s1:a1:":2}}`)

	out, err := Patch{
		Set:    map[string]interface{}{"armor.base": 12, "armor.mod": []int{}},
		Delete: []string{"marks", "missing.path"},
	}.Apply(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"armor":{"base":12,"mod":[]}}`, string(out))
	assert.JSONEq(t, `{"armor":{"base":9},"marks":{"s1:a1:":2}}`, string(doc))
}

func TestPatch_ApplyEmptyDocument(t *testing.T) {
	out, err := Patch{Set: map[string]interface{}{"host.rating": 4}}.Apply(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), Field(out, "host.rating").Int())
}

func TestPatch_ApplyErrors(t *testing.T) {
	_, err := Patch{Set: map[string]interface{}{"a": 1}}.Apply([]byte(`{broken`))
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = Patch{Set: map[string]interface{}{"": 1}}.Apply([]byte(`{}`))
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = Patch{Delete: []string{""}}.Apply([]byte(`{}`))
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestPatch_Empty(t *testing.T) {
	assert.True(t, Patch{}.Empty())
	assert.False(t, Patch{Delete: []string{"a"}}.Empty())
}
