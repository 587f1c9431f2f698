package modeengine

// maxModesPerLine bounds how many individual mode changes one outbound
// MODE broadcast carries (spec.md §4.F "coalesce changes into outbound
// MODE lines of at most six mode changes each").
const maxModesPerLine = 6

// Coalesce groups changes into chunks of at most maxModesPerLine entries,
// rendering each chunk as a "+ov-b" style string plus its ordered
// parameter list, matching the order changes were applied in.
func Coalesce(changes []Change) []CoalescedLine {
	var lines []CoalescedLine
	for i := 0; i < len(changes); i += maxModesPerLine {
		end := i + maxModesPerLine
		if end > len(changes) {
			end = len(changes)
		}
		lines = append(lines, renderChunk(changes[i:end]))
	}
	return lines
}

// CoalescedLine is one ready-to-send MODE line: the letters string (with
// embedded +/- direction changes) and the ordered parameters for every
// letter in it that carries one.
type CoalescedLine struct {
	Letters string
	Params  []string
}

func renderChunk(changes []Change) CoalescedLine {
	var letters []byte
	var params []string
	lastAdd := true
	first := true

	for _, c := range changes {
		if first || c.Add != lastAdd {
			if c.Add {
				letters = append(letters, '+')
			} else {
				letters = append(letters, '-')
			}
			lastAdd = c.Add
			first = false
		}
		letters = append(letters, c.Slot.Letter)
		if c.Param != "" {
			params = append(params, c.Param)
		}
	}
	return CoalescedLine{Letters: string(letters), Params: params}
}
