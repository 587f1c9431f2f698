package container

// Dict is a case-insensitive dictionary from a display-case string to a
// value of type V. Keys are compared using CaseFold. Iteration order is
// stable (insertion order) and safe against deletion of the element the
// iterator is currently positioned on; insertion of unrelated keys during
// iteration does not invalidate an in-progress Range call, though the new
// key is not guaranteed to be observed by it (matching the container
// contract in spec.md §4.B).
type Dict[V any] struct {
	entries map[string]*entry[V]
	order   []string // folded keys, insertion order; may contain tombstones
}

type entry[V any] struct {
	display string
	value   V
	deleted bool
}

// NewDict creates an empty dictionary.
func NewDict[V any]() *Dict[V] {
	return &Dict[V]{entries: make(map[string]*entry[V])}
}

// Insert adds or replaces the value stored under key. The display-case
// form passed on the *first* insert of a given folded key is retained for
// iteration; later inserts with a different case for an existing key only
// update the value, not the display form, to match a stable channel/nick
// display name across mode changes and re-adds.
func (d *Dict[V]) Insert(key string, value V) {
	folded := CaseFold(key)
	if e, ok := d.entries[folded]; ok && !e.deleted {
		e.value = value
		return
	}
	d.entries[folded] = &entry[V]{display: key, value: value}
	d.order = append(d.order, folded)
}

// Retrieve looks up a value by key, folding it first.
func (d *Dict[V]) Retrieve(key string) (V, bool) {
	var zero V
	e, ok := d.entries[CaseFold(key)]
	if !ok || e.deleted {
		return zero, false
	}
	return e.value, true
}

// Delete removes a key. It is safe to call during a Range over d.
func (d *Dict[V]) Delete(key string) {
	folded := CaseFold(key)
	e, ok := d.entries[folded]
	if !ok {
		return
	}
	e.deleted = true
	delete(d.entries, folded)
}

// Len reports the number of live entries.
func (d *Dict[V]) Len() int {
	return len(d.entries)
}

// Range calls fn for each live entry in insertion order, in the display
// case it was inserted with. If fn returns false, Range stops early.
// fn may delete the current key; it must not delete keys it has not yet
// been passed.
func (d *Dict[V]) Range(fn func(display string, value V) bool) {
	order := d.order
	// A key deleted and re-inserted appears more than once in order; only
	// its latest position is live.
	last := make(map[string]int, len(order))
	for i, folded := range order {
		last[folded] = i
	}
	compacted := make([]string, 0, len(order))
	stopped := false
	for i, folded := range order {
		e, ok := d.entries[folded]
		if !ok || e.deleted || last[folded] != i {
			continue
		}
		compacted = append(compacted, folded)
		if stopped {
			continue
		}
		if !fn(e.display, e.value) {
			stopped = true
		}
	}
	// Keep keys fn inserted during the walk.
	d.order = append(compacted, d.order[len(order):]...)
}
