// Package data holds the value-field shapes shared by entities, rules and
// tests: a base value plus ordered modifiers resolving to a derived total.
package data

import "github.com/kasuganosora/sr5rules/game/parts"

// Value is a numeric field with a base, labelled modifiers and a derived total.
//
// Invariant: Value == *Override when Override is set, else Base + sum(Mod),
// clamped by whichever Recalc variant the call site uses.
type Value struct {
	Base     int          `json:"base"`
	Mod      []parts.Part `json:"mod"`
	Value    int          `json:"value"`
	Override *int         `json:"override,omitempty"`
	Label    string       `json:"label,omitempty"`
	Hidden   bool         `json:"hidden,omitempty"`
}

// NewValue returns a zeroed field with the given label.
func NewValue(label string) Value {
	return Value{Mod: []parts.Part{}, Label: label}
}

// Total computes the unclamped total without storing it.
func (v *Value) Total() int {
	if v.Override != nil {
		return *v.Override
	}
	return v.Base + parts.Total(v.Mod)
}

// Recalc stores and returns the unclamped total.
func (v *Value) Recalc() int {
	v.Value = v.Total()
	return v.Value
}

// RecalcMin stores and returns the total floored at min.
func (v *Value) RecalcMin(min int) int {
	v.Value = max(v.Total(), min)
	return v.Value
}

// RecalcRange stores and returns the total clamped to [lo, hi].
func (v *Value) RecalcRange(lo, hi int) int {
	v.Value = min(max(v.Total(), lo), hi)
	return v.Value
}

// AddUniquePart sets a labelled modifier, replacing an existing one.
func (v *Value) AddUniquePart(name string, value int) {
	v.Mod = parts.AddUniquePart(v.Mod, name, value, true)
}

// SetOverride pins the total to n regardless of base and modifiers.
func (v *Value) SetOverride(n int) {
	v.Override = &n
}

// ClearOverride removes a pinned total.
func (v *Value) ClearOverride() {
	v.Override = nil
}

// Fold turns a pinned total into the base and drops the modifiers, so
// modifiers added afterwards stack on the pinned value.
func (v *Value) Fold() {
	if v.Override == nil {
		return
	}
	v.Base = *v.Override
	v.Mod = []parts.Part{}
	v.Override = nil
	v.Value = v.Base
}

// IsZero reports whether the field carries no base, modifiers or override.
func (v Value) IsZero() bool {
	return v.Base == 0 && len(v.Mod) == 0 && v.Override == nil
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	out := v
	out.Mod = parts.Clone(v.Mod)
	if out.Mod == nil {
		out.Mod = []parts.Part{}
	}
	if v.Override != nil {
		o := *v.Override
		out.Override = &o
	}
	return out
}
