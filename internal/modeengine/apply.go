package modeengine

import (
	"time"

	"github.com/foxcomet/ircd/internal/chanreg"
	"github.com/foxcomet/ircd/internal/container"
)

// ResolveNick, given a nick argument from a Status or List change, must
// return the handle it names. Kept as a caller-supplied function (rather
// than this package importing internal/client) so modeengine has no
// dependency on client.Registry at all.
type ResolveNick func(nick string) (container.Handle, bool)

// ApplyChannel applies a parsed, slot-resolved set of channel mode
// changes to ch, returning the subset that actually took effect (a
// redundant +n on an already-+n channel, or -o against a non-member, are
// dropped rather than echoed). setter and when are recorded on affected
// ban-style list entries.
func ApplyChannel(ch *chanreg.Channel, changes []Change, resolve ResolveNick, setter string, when time.Time) []Change {
	var applied []Change
	for _, c := range changes {
		switch c.Slot.Category {
		case Simple:
			if applySimpleBit(&ch.Modes, c.Slot.Bit, c.Add) {
				applied = append(applied, c)
			}
		case ParamAlways, ParamOnSet:
			if applyChannelParam(ch, c) {
				applied = append(applied, c)
			}
		case List:
			ok := false
			if c.Add {
				ok = ch.AddToList(c.Slot.ListKind, c.Param, setter, when)
			} else {
				ok = ch.RemoveFromList(c.Slot.ListKind, c.Param)
			}
			if ok {
				applied = append(applied, c)
			}
		case Status:
			h, ok := resolve(c.Param)
			if !ok {
				continue
			}
			idx := ch.FindMember(h)
			if idx < 0 {
				continue
			}
			before := ch.Members[idx].Status
			if c.Add {
				ch.Members[idx].Status |= c.Slot.Status
			} else {
				ch.Members[idx].Status &^= c.Slot.Status
			}
			if ch.Members[idx].Status != before {
				applied = append(applied, c)
			}
		}
	}
	return applied
}

func applySimpleBit(mask *uint64, bit uint64, add bool) bool {
	before := *mask
	if add {
		*mask |= bit
	} else {
		*mask &^= bit
	}
	return *mask != before
}

func applyChannelParam(ch *chanreg.Channel, c Change) bool {
	switch c.Slot.Letter {
	case 'k':
		if c.Add {
			if ch.Key == c.Param {
				return false
			}
			ch.Key = c.Param
		} else {
			if ch.Key == "" {
				return false
			}
			ch.Key = ""
		}
		return true
	case 'l':
		if c.Add {
			n := atoiLimit(c.Param)
			if n <= 0 || ch.Limit == n {
				return false
			}
			ch.Limit = n
		} else {
			if ch.Limit == 0 {
				return false
			}
			ch.Limit = 0
		}
		return true
	default:
		return false
	}
}

func atoiLimit(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0
		}
		n = n*10 + int(s[i]-'0')
	}
	return n
}

// ApplyUser applies parsed user mode changes to a mask the caller owns
// (client.Client.UserModes), returning the subset that took effect.
func ApplyUser(mask *uint64, changes []Change) []Change {
	var applied []Change
	for _, c := range changes {
		if applySimpleBit(mask, c.Slot.Bit, c.Add) {
			applied = append(applied, c)
		}
	}
	return applied
}

// RenderChannelModes renders ch's simple mode bits as a "+nst" style
// string, in ascending byte order of the letters restricted to
// Simple-category letters (the form RPL_CHANNELMODEIS replies with).
func (r *Registry) RenderChannelModes(ch *chanreg.Channel) string {
	letters := "+"
	for _, letter := range orderedLetters(r.channel) {
		slot := r.channel[letter]
		if slot.Category == Simple && ch.Modes&slot.Bit != 0 {
			letters += string(letter)
		}
	}
	return letters
}

// RenderUserModes renders mask as a "+iw" style string.
func (r *Registry) RenderUserModes(mask uint64) string {
	letters := "+"
	for _, letter := range orderedLetters(r.user) {
		slot := r.user[letter]
		if slot.Category == Simple && mask&slot.Bit != 0 {
			letters += string(letter)
		}
	}
	return letters
}

// ChannelLetters returns every registered channel-mode letter, in
// ascending byte order, for the RPL_MYINFO "available channel modes" field.
func (r *Registry) ChannelLetters() string {
	return string(orderedLetters(r.channel))
}

// UserLetters returns every registered user-mode letter, in ascending
// byte order, for the RPL_MYINFO "available user modes" field.
func (r *Registry) UserLetters() string {
	return string(orderedLetters(r.user))
}

func orderedLetters(m map[byte]Slot) []byte {
	letters := make([]byte, 0, len(m))
	for l := range m {
		letters = append(letters, l)
	}
	for i := 1; i < len(letters); i++ {
		for j := i; j > 0 && letters[j-1] > letters[j]; j-- {
			letters[j-1], letters[j] = letters[j], letters[j-1]
		}
	}
	return letters
}
