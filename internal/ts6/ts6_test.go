package ts6

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOlderWins(t *testing.T) {
	winner, changed := Resolve(TS(100), TS(50))
	assert.Equal(t, TS(50), winner)
	assert.True(t, changed)

	winner, changed = Resolve(TS(50), TS(100))
	assert.Equal(t, TS(50), winner)
	assert.False(t, changed)
}

func TestEqualTSNoChange(t *testing.T) {
	_, changed := Resolve(TS(100), TS(100))
	assert.False(t, changed)
}
