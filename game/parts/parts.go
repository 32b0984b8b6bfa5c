// Package parts implements the ordered, label-keyed modifier list used by
// every derived value (dice pools, limits, damage, armor, tracks).
package parts

// Part is one labelled modifier contribution.
type Part struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// List accumulates parts in insertion order.
// The zero value is an empty list ready to use.
type List struct {
	parts []Part
}

// New wraps a copy of the given parts. The caller's slice is never modified.
func New(list []Part) *List {
	l := &List{}
	if len(list) > 0 {
		l.parts = make([]Part, len(list))
		copy(l.parts, list)
	}
	return l
}

// AddPart appends a part, even when a part with the same label exists.
func (l *List) AddPart(name string, value int) {
	l.parts = append(l.parts, Part{Name: name, Value: value})
}

// AddUniquePart sets the value of the part with the given label,
// appending it when no such part exists yet. Position is kept on replace.
func (l *List) AddUniquePart(name string, value int) {
	l.addUnique(name, value, true)
}

func (l *List) addUnique(name string, value int, overwrite bool) {
	if i := l.index(name); i >= 0 {
		if overwrite {
			l.parts[i].Value = value
		}
		return
	}
	l.AddPart(name, value)
}

// RemovePart drops every part with the given label.
func (l *List) RemovePart(name string) {
	n := 0
	for _, p := range l.parts {
		if p.Name != name {
			l.parts[n] = p
			n++
		}
	}
	l.parts = l.parts[:n]
}

// Has reports whether a part with the given label exists.
func (l *List) Has(name string) bool { return l.index(name) >= 0 }

// Get returns the value of the first part with the given label.
func (l *List) Get(name string) (int, bool) {
	if i := l.index(name); i >= 0 {
		return l.parts[i].Value, true
	}
	return 0, false
}

// Total returns the sum of all part values.
func (l *List) Total() int {
	total := 0
	for _, p := range l.parts {
		total += p.Value
	}
	return total
}

// Len returns the number of parts.
func (l *List) Len() int { return len(l.parts) }

// Parts returns the ordered parts for persistence. Never nil.
func (l *List) Parts() []Part {
	out := make([]Part, len(l.parts))
	copy(out, l.parts)
	return out
}

func (l *List) index(name string) int {
	for i, p := range l.parts {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// AddUniquePart is the free-function form of List.AddUniquePart working on a
// raw slice. With overwrite=false an existing label suppresses the add, which
// keeps skill and attribute contributions from stacking twice.
func AddUniquePart(list []Part, name string, value int, overwrite bool) []Part {
	l := New(list)
	l.addUnique(name, value, overwrite)
	return l.parts
}

// Total sums a raw slice of parts.
func Total(list []Part) int {
	total := 0
	for _, p := range list {
		total += p.Value
	}
	return total
}

// Clone returns an independent copy of list. Nil stays nil.
func Clone(list []Part) []Part {
	if list == nil {
		return nil
	}
	out := make([]Part, len(list))
	copy(out, list)
	return out
}
