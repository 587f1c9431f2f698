package container

// Wheel is a second-granularity timer wheel. Callbacks run synchronously
// from Tick, which the reactor calls once per second on its own goroutine
// (spec.md §4.B, §4.C) — there is no internal locking here, matching the
// single-threaded-cooperative resource model of §5.
type Wheel struct {
	size    int
	cursor  int
	buckets [][]*timerEntry
	nextID  uint64
}

type timerEntry struct {
	id       uint64
	period   int // 0 for one-shot
	callback func(any)
	arg      any
	canceled bool
}

// TimerID identifies a scheduled callback for later cancellation.
type TimerID uint64

// NewWheel creates a wheel with the given number of one-second slots. The
// wheel's horizon is size seconds: entries carry no round counter, so a
// delay or period longer than size wraps around the wheel and fires early.
func NewWheel(size int) *Wheel {
	if size < 1 {
		size = 1
	}
	return &Wheel{size: size, buckets: make([][]*timerEntry, size)}
}

// After schedules callback to run once, delaySeconds from now.
func (w *Wheel) After(delaySeconds int, arg any, callback func(any)) TimerID {
	return w.schedule(delaySeconds, 0, arg, callback)
}

// Every schedules callback to run every periodSeconds, starting
// periodSeconds from now.
func (w *Wheel) Every(periodSeconds int, arg any, callback func(any)) TimerID {
	return w.schedule(periodSeconds, periodSeconds, arg, callback)
}

func (w *Wheel) schedule(delay, period int, arg any, callback func(any)) TimerID {
	if delay < 1 {
		delay = 1
	}
	w.nextID++
	e := &timerEntry{id: w.nextID, period: period, callback: callback, arg: arg}
	// The slot at cursor runs on the next Tick, so a delay of d seconds
	// lands d-1 slots past it.
	slot := (w.cursor + delay - 1) % w.size
	w.buckets[slot] = append(w.buckets[slot], e)
	return TimerID(e.id)
}

// Cancel marks a scheduled callback so it will not fire. It is safe to
// call Cancel from within a callback running on Tick.
func (w *Wheel) Cancel(id TimerID) {
	for _, bucket := range w.buckets {
		for _, e := range bucket {
			if e.id == uint64(id) {
				e.canceled = true
			}
		}
	}
}

// Tick advances the wheel by one second, running and then discarding every
// non-periodic entry due this second, and re-arming periodic entries for
// their next occurrence.
func (w *Wheel) Tick() {
	slot := w.cursor
	due := w.buckets[slot]
	w.buckets[slot] = nil
	w.cursor = (w.cursor + 1) % w.size

	for _, e := range due {
		if e.canceled {
			continue
		}
		e.callback(e.arg)
		if e.period > 0 && !e.canceled {
			next := (w.cursor + e.period - 1) % w.size
			w.buckets[next] = append(w.buckets[next], e)
		}
	}
}
