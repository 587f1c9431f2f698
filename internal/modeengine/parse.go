package modeengine

// Change is one parsed, slot-resolved mode change ready for application.
type Change struct {
	Slot  Slot
	Add   bool
	Param string // empty if this letter takes no parameter in this direction
}

// ParseResult is the outcome of parsing a full MODE command line.
type ParseResult struct {
	Changes []Change
	// Queries holds List-category letters given with no parameter — a
	// request to list that list's current entries (spec.md §4.F "+b with
	// no mask queries the ban list").
	Queries []Slot
	// Unknown holds mode letters with no registered slot.
	Unknown []byte
}

// lookup abstracts over channel vs. user mode tables so Parse can serve
// both ParseChannel and ParseUser.
type lookup func(letter byte) (Slot, bool)

// Parse walks a "+o-b+l" style mode string, consuming params in order for
// every letter whose category needs one, and resolves each letter
// against find.
func Parse(modeStr string, params []string, find lookup) ParseResult {
	var result ParseResult
	add := true
	sawDirection := false
	pi := 0

	nextParam := func() (string, bool) {
		if pi >= len(params) {
			return "", false
		}
		p := params[pi]
		pi++
		return p, true
	}

	for i := 0; i < len(modeStr); i++ {
		ch := modeStr[i]
		switch ch {
		case '+':
			add = true
			sawDirection = true
			continue
		case '-':
			add = false
			sawDirection = true
			continue
		}
		if !sawDirection {
			// Malformed: a mode letter before any +/- was seen. Treat as
			// implicitly "+", matching the lenient parsing real clients expect.
			add = true
		}

		slot, ok := find(ch)
		if !ok {
			result.Unknown = append(result.Unknown, ch)
			continue
		}

		switch slot.Category {
		case Simple:
			result.Changes = append(result.Changes, Change{Slot: slot, Add: add})
		case ParamAlways:
			param, _ := nextParam()
			result.Changes = append(result.Changes, Change{Slot: slot, Add: add, Param: param})
		case ParamOnSet:
			if add {
				param, _ := nextParam()
				result.Changes = append(result.Changes, Change{Slot: slot, Add: true, Param: param})
			} else {
				result.Changes = append(result.Changes, Change{Slot: slot, Add: false})
			}
		case List:
			if param, ok := nextParam(); ok {
				result.Changes = append(result.Changes, Change{Slot: slot, Add: add, Param: param})
			} else {
				result.Queries = append(result.Queries, slot)
			}
		case Status:
			param, ok := nextParam()
			if ok {
				result.Changes = append(result.Changes, Change{Slot: slot, Add: add, Param: param})
			}
			// A status letter with no remaining nick parameter is simply
			// dropped: unlike List mode, there is nothing sensible to query.
		}
	}
	return result
}

// ParseChannel parses a channel MODE argument against r's channel slots.
func (r *Registry) ParseChannel(modeStr string, params []string) ParseResult {
	return Parse(modeStr, params, r.ChannelSlot)
}

// ParseUser parses a user MODE argument against r's user slots.
func (r *Registry) ParseUser(modeStr string, params []string) ParseResult {
	return Parse(modeStr, params, r.UserSlot)
}
