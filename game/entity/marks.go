package entity

import "sort"

// Marks maps mark ids to the number of marks placed. An absent id means no
// marks; ids are removed instead of being set to zero.
type Marks map[string]int

// Get returns the marks placed under id.
func (m Marks) Get(id string) int {
	return m[id]
}

// Set stores n marks under id.
func (m Marks) Set(id string, n int) {
	m[id] = n
}

// Remove deletes id and reports whether it existed.
func (m Marks) Remove(id string) bool {
	_, ok := m[id]
	delete(m, id)
	return ok
}

// Clear removes all entries and returns the removed ids.
func (m Marks) Clear() []string {
	ids := m.Keys()
	for _, id := range ids {
		delete(m, id)
	}
	return ids
}

// Keys returns all mark ids in sorted order.
func (m Marks) Keys() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
