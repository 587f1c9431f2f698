package container

// Handle is a generational reference into a Slab: ID is the slot index,
// Gen is incremented every time that slot is reused. A stale Handle (one
// captured before the slot it pointed to was freed and reused) fails its
// generation check in Slab.Get and reports "not found" rather than
// aliasing whatever now occupies the slot — this is the "dangling
// reference bugs impossible" property spec.md §9 asks for in place of the
// source's intrusive-pointer-based ownership.
type Handle struct {
	id  uint32
	gen uint32
}

// Valid reports whether h was ever issued by a Slab (the zero Handle is
// never valid, since real slots start at generation 1).
func (h Handle) Valid() bool { return h.gen != 0 }

type slabSlot[T any] struct {
	value T
	gen   uint32
	used  bool
}

// Slab is a generational arena of T, indexed by a small integer. Client
// and Channel entities live in a Slab owned by their respective registry
// (spec.md §9 "Ownership of Clients and Channels"); memberships are held
// in each Channel's Members slice instead.
type Slab[T any] struct {
	slots []slabSlot[T]
	free  []uint32
}

// NewSlab creates an empty slab.
func NewSlab[T any]() *Slab[T] {
	return &Slab[T]{}
}

// Insert stores value in a free slot (reusing one if available) and
// returns its Handle.
func (s *Slab[T]) Insert(value T) Handle {
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		slot := &s.slots[idx]
		slot.value = value
		slot.used = true
		return Handle{id: idx, gen: slot.gen}
	}
	idx := uint32(len(s.slots))
	s.slots = append(s.slots, slabSlot[T]{value: value, gen: 1, used: true})
	return Handle{id: idx, gen: 1}
}

// Get resolves h to its stored value. ok is false if h is stale (the slot
// was freed and possibly reused) or out of range.
func (s *Slab[T]) Get(h Handle) (*T, bool) {
	if int(h.id) >= len(s.slots) {
		return nil, false
	}
	slot := &s.slots[h.id]
	if !slot.used || slot.gen != h.gen {
		return nil, false
	}
	return &slot.value, true
}

// Remove frees h's slot, bumping its generation so any copies of h still
// floating around fail Get from now on.
func (s *Slab[T]) Remove(h Handle) {
	if int(h.id) >= len(s.slots) {
		return
	}
	slot := &s.slots[h.id]
	if !slot.used || slot.gen != h.gen {
		return
	}
	var zero T
	slot.value = zero
	slot.used = false
	slot.gen++
	s.free = append(s.free, h.id)
}

// Range calls fn for every live entry. fn may Remove the handle it was
// just given; it must not remove handles not yet visited.
func (s *Slab[T]) Range(fn func(Handle, *T) bool) {
	for i := range s.slots {
		slot := &s.slots[i]
		if !slot.used {
			continue
		}
		h := Handle{id: uint32(i), gen: slot.gen}
		if !fn(h, &slot.value) {
			return
		}
	}
}

// Len reports the number of live entries.
func (s *Slab[T]) Len() int {
	return len(s.slots) - len(s.free)
}
