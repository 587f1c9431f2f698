package container

import "testing"

// Grounded on the teacher's TestCanonicalizeNick (ircd_test.go in
// horgh-catbox), extended to the RFC1459 fold rule spec.md requires
// (teacher's own canonicalizeNick was a plain strings.ToLower).
func TestCaseFold(t *testing.T) {
	tests := []struct {
		input  string
		output string
	}{
		{"ABC", "abc"},
		{"abc", "abc"},
		{"Abc", "abc"},
		{"a12", "a12"},
		{"A12", "a12"},
		{"{}|^~", "{}|^~"},
		{"[]\\~", "{}|~"},
		{"-[\\]^_`{|}", "-{|}^_`{|}"},
		{"Foo[bar]", "foo{bar}"},
		{"foo{BAR}", "foo{bar}"},
	}

	for _, test := range tests {
		out := CaseFold(test.input)
		if out != test.output {
			t.Errorf("CaseFold(%q) = %q, wanted %q", test.input, out, test.output)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("Foo[bar]", "foo{BAR}") {
		t.Errorf("expected Foo[bar] and foo{BAR} to be equal under folding")
	}
	if Equal("foo", "bar") {
		t.Errorf("expected foo and bar to differ")
	}
	if Equal("foo", "foox") {
		t.Errorf("expected different lengths to differ")
	}
}
