package oper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySucceedsWithCorrectPassword(t *testing.T) {
	hash, err := HashPassword("correcthorse")
	require.NoError(t, err)

	s := NewStore()
	s.Add(Credential{Name: "alice", PasswordHash: hash})

	assert.NoError(t, s.Verify("alice", "correcthorse", "alice!a@host"))
}

func TestVerifyFailsWithWrongPassword(t *testing.T) {
	hash, _ := HashPassword("correcthorse")
	s := NewStore()
	s.Add(Credential{Name: "alice", PasswordHash: hash})

	assert.ErrorIs(t, s.Verify("alice", "wrong", "alice!a@host"), ErrPasswordMismatch)
}

func TestVerifyFailsForUnknownName(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.Verify("nobody", "x", "a!b@c"), ErrUnknownOper)
}

func TestVerifyEnforcesHostPattern(t *testing.T) {
	hash, _ := HashPassword("pw")
	s := NewStore()
	s.Add(Credential{Name: "alice", PasswordHash: hash, HostPattern: "*!*@trusted.example"})

	assert.NoError(t, s.Verify("alice", "pw", "alice!a@trusted.example"))
	assert.ErrorIs(t, s.Verify("alice", "pw", "alice!a@untrusted.example"), ErrPasswordMismatch)
}
