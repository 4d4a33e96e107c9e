package manager

// Array-field helpers operate on fields whose value is an ordered sequence of
// sub-records. Every operation builds a fresh slice and replaces the field
// value wholesale through UpdateField, so dirty tracking and subscriber
// notification behave exactly like any other edit. Out-of-range indices leave
// the value untouched, mirroring the store's silent step-bounds policy.

// ArrayItems returns the current sequence for an array field. A missing or
// non-sequence value yields an empty slice.
func (m *Manager) ArrayItems(name string) []any {
	items, _ := m.store.Snapshot().FormData[name].([]any)
	return items
}

// AppendItem adds an item at the end of the field's sequence.
func (m *Manager) AppendItem(name string, item any) {
	items := m.ArrayItems(name)
	next := make([]any, 0, len(items)+1)
	next = append(next, items...)
	next = append(next, item)
	m.UpdateField(name, next)
}

// InsertItem places an item at index, shifting later items right. index may
// equal the current length, which appends.
func (m *Manager) InsertItem(name string, index int, item any) {
	items := m.ArrayItems(name)
	if index < 0 || index > len(items) {
		return
	}
	next := make([]any, 0, len(items)+1)
	next = append(next, items[:index]...)
	next = append(next, item)
	next = append(next, items[index:]...)
	m.UpdateField(name, next)
}

// RemoveItem deletes the item at index.
func (m *Manager) RemoveItem(name string, index int) {
	items := m.ArrayItems(name)
	if index < 0 || index >= len(items) {
		return
	}
	next := make([]any, 0, len(items)-1)
	next = append(next, items[:index]...)
	next = append(next, items[index+1:]...)
	m.UpdateField(name, next)
}

// MoveItem relocates the item at from to position to, shifting the items in
// between.
func (m *Manager) MoveItem(name string, from, to int) {
	items := m.ArrayItems(name)
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) || from == to {
		return
	}
	next := make([]any, 0, len(items))
	next = append(next, items...)
	moved := next[from]
	next = append(next[:from], next[from+1:]...)
	rest := append([]any(nil), next[to:]...)
	next = append(next[:to], moved)
	next = append(next, rest...)
	m.UpdateField(name, next)
}

// SwapItems exchanges the items at i and j.
func (m *Manager) SwapItems(name string, i, j int) {
	items := m.ArrayItems(name)
	if i < 0 || i >= len(items) || j < 0 || j >= len(items) || i == j {
		return
	}
	next := make([]any, len(items))
	copy(next, items)
	next[i], next[j] = next[j], next[i]
	m.UpdateField(name, next)
}
