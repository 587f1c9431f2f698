package container

import "testing"

func TestWheelOneShot(t *testing.T) {
	w := NewWheel(8)
	fired := 0
	w.After(2, nil, func(any) { fired++ })

	w.Tick() // t=1
	if fired != 0 {
		t.Fatalf("fired too early: %d", fired)
	}
	w.Tick() // t=2, due
	if fired != 1 {
		t.Fatalf("expected fire at t=2, got %d", fired)
	}
	w.Tick() // t=3, should not refire
	if fired != 1 {
		t.Fatalf("one-shot refired: %d", fired)
	}
}

func TestWheelPeriodic(t *testing.T) {
	w := NewWheel(4)
	fired := 0
	w.Every(2, nil, func(any) { fired++ })

	for i := 0; i < 6; i++ {
		w.Tick()
	}
	if fired != 3 {
		t.Fatalf("expected 3 periodic fires in 6 ticks of period 2, got %d", fired)
	}
}

func TestWheelCancel(t *testing.T) {
	w := NewWheel(4)
	fired := 0
	id := w.After(1, nil, func(any) { fired++ })
	w.Cancel(id)
	w.Tick()
	if fired != 0 {
		t.Fatalf("expected canceled timer not to fire")
	}
}
