package container

import "testing"

func TestDictInsertRetrieveFold(t *testing.T) {
	d := NewDict[int]()
	d.Insert("Foo[bar]", 1)

	v, ok := d.Retrieve("foo{BAR}")
	if !ok || v != 1 {
		t.Fatalf("expected folded lookup to find entry inserted under different case")
	}

	// Second insert of an equivalent folded key updates value, keeps
	// original display form.
	d.Insert("FOO{bar}", 2)
	if d.Len() != 1 {
		t.Fatalf("expected one entry, got %d", d.Len())
	}

	var seenDisplay string
	d.Range(func(display string, value int) bool {
		seenDisplay = display
		return true
	})
	if seenDisplay != "Foo[bar]" {
		t.Errorf("expected display form from first insert, got %q", seenDisplay)
	}
}

func TestDictDeleteDuringRange(t *testing.T) {
	d := NewDict[int]()
	d.Insert("a", 1)
	d.Insert("b", 2)
	d.Insert("c", 3)

	var seen []string
	d.Range(func(display string, value int) bool {
		seen = append(seen, display)
		if display == "b" {
			d.Delete("b")
		}
		return true
	})

	if len(seen) != 3 {
		t.Fatalf("expected to visit all 3 entries present at range start, got %v", seen)
	}
	if d.Len() != 2 {
		t.Fatalf("expected 2 entries remaining after delete, got %d", d.Len())
	}
	if _, ok := d.Retrieve("b"); ok {
		t.Errorf("expected b to be deleted")
	}
}

func TestDictDeleteMissing(t *testing.T) {
	d := NewDict[int]()
	d.Delete("missing") // must not panic
}
