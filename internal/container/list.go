package container

// ListNode is embedded in a payload struct to give it O(1) removal from a
// List given only a pointer to the payload itself, mirroring the
// intrusive list idiom spec.md §4.B/§9 calls for. Embedders must not copy
// a struct containing a ListNode once it has been pushed onto a List.
type ListNode[T any] struct {
	next, prev *T
	list       *List[T]
}

// accessor extracts the embedded ListNode from a payload; a List is
// constructed with one.
type accessor[T any] func(*T) *ListNode[T]

// List is an intrusive doubly-linked list over *T, where T embeds a
// ListNode[T]. It tracks its own length.
type List[T any] struct {
	head, tail *T
	get        accessor[T]
	length     int
}

// NewList creates a list. get must return the same *ListNode[T] field for
// a given *T every time it is called.
func NewList[T any](get accessor[T]) *List[T] {
	return &List[T]{get: get}
}

// Len returns the number of elements currently in the list.
func (l *List[T]) Len() int {
	return l.length
}

// PushBack appends v to the end of the list in O(1).
func (l *List[T]) PushBack(v *T) {
	n := l.get(v)
	n.list = l
	n.prev = l.tail
	n.next = nil
	if l.tail != nil {
		l.get(l.tail).next = v
	} else {
		l.head = v
	}
	l.tail = v
	l.length++
}

// Remove detaches v from l in O(1), using only the pointer to v. It is a
// no-op if v is not currently a member of l.
func (l *List[T]) Remove(v *T) {
	n := l.get(v)
	if n.list != l {
		return
	}
	if n.prev != nil {
		l.get(n.prev).next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		l.get(n.next).prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.next, n.prev, n.list = nil, nil, nil
	l.length--
}

// Front returns the first element, or nil if the list is empty.
func (l *List[T]) Front() *T {
	return l.head
}

// Next returns the element following v, or nil at the end of the list.
func (l *List[T]) Next(v *T) *T {
	return l.get(v).next
}

// Range walks the list front to back. fn may call Remove on the current
// element; it must not remove elements not yet visited.
func (l *List[T]) Range(fn func(*T) bool) {
	for v := l.head; v != nil; {
		next := l.get(v).next
		if !fn(v) {
			return
		}
		v = next
	}
}
