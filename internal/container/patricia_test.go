package container

import (
	"net"
	"testing"
)

// A /32 insert shadows a /24 covering it for longest-prefix match
// (spec.md §8 boundary behaviour).
func TestPatriciaLongestPrefixWins(t *testing.T) {
	p := NewPatricia()
	p.Insert(net.ParseIP("10.0.0.0"), 24, "subnet")
	p.Insert(net.ParseIP("10.0.0.5"), 32, "host")

	v, ok := p.Match(net.ParseIP("10.0.0.5"))
	if !ok || v != "host" {
		t.Fatalf("expected /32 match to win, got %v, %v", v, ok)
	}

	v, ok = p.Match(net.ParseIP("10.0.0.9"))
	if !ok || v != "subnet" {
		t.Fatalf("expected /24 match for sibling address, got %v, %v", v, ok)
	}

	_, ok = p.Match(net.ParseIP("10.0.1.1"))
	if ok {
		t.Fatalf("expected no match outside of either prefix")
	}
}

func TestPatriciaIPv6(t *testing.T) {
	p := NewPatricia()
	p.Insert(net.ParseIP("2001:db8::"), 32, "net")

	v, ok := p.Match(net.ParseIP("2001:db8::1"))
	if !ok || v != "net" {
		t.Fatalf("expected ipv6 prefix match, got %v %v", v, ok)
	}

	_, ok = p.Match(net.ParseIP("2001:db9::1"))
	if ok {
		t.Fatalf("expected no match for different /32")
	}
}

func TestPatriciaDelete(t *testing.T) {
	p := NewPatricia()
	addr := net.ParseIP("192.168.1.1")
	p.Insert(addr, 32, "x")

	if !p.Delete(addr, 32) {
		t.Fatalf("expected delete to report success")
	}
	if _, ok := p.Match(addr); ok {
		t.Fatalf("expected no match after delete")
	}
	if p.Delete(addr, 32) {
		t.Fatalf("expected second delete to report failure")
	}
}
