package chanreg

import "github.com/foxcomet/ircd/internal/container"

// MatchMask reports whether uhost (rendered as nick!user@host) matches
// pattern, an IRC hostmask using '*' (any run) and '?' (any one
// character), compared case-insensitively per RFC1459 folding (spec.md
// §4.E "hostmask matching uses the same case-folding as nicknames").
//
// No example in the pack implements IRC mask globbing (it is a narrow
// enough grammar, and different enough from path.Match's '/' handling,
// that reaching for a generic glob library would buy nothing); this is a
// direct textbook wildcard-match recurrence.
func MatchMask(pattern, uhost string) bool {
	p := container.CaseFold(pattern)
	s := container.CaseFold(uhost)
	return matchGlob(p, s)
}

func matchGlob(p, s string) bool {
	// Standard recursive glob match with '*' and '?', iterative backtrack
	// to avoid worst-case exponential recursion on long runs of '*'.
	var pi, si int
	var star, starMatch int = -1, 0

	for si < len(s) {
		if pi < len(p) && (p[pi] == '?' || p[pi] == s[si]) {
			pi++
			si++
			continue
		}
		if pi < len(p) && p[pi] == '*' {
			star = pi
			starMatch = si
			pi++
			continue
		}
		if star >= 0 {
			pi = star + 1
			starMatch++
			si = starMatch
			continue
		}
		return false
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
