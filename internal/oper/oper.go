// Package oper implements spec.md §4.N: operator credential storage and
// verification.
//
// Grounded on horgh-catbox's operCommand (local_user.go): same
// name/password shape, same 464/381 numeric outcomes. The teacher stores
// and compares operator passwords in plaintext
// (`u.Catbox.Config.Opers[name] != password`); this package instead
// hashes with golang.org/x/crypto/bcrypt, since spec.md §4.N requires
// operator credentials to be "stored hashed, never in cleartext" —
// bcrypt is the standard idiomatic choice for this in the Go ecosystem
// and is already part of golang.org/x/crypto, the same module the pack's
// TLS-touching repos already depend on transitively.
package oper

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/foxcomet/ircd/internal/chanreg"
)

var (
	ErrUnknownOper     = errors.New("no such operator")
	ErrPasswordMismatch = errors.New("password incorrect")
)

// Credential is one configured operator account.
type Credential struct {
	Name         string
	PasswordHash []byte
	HostPattern  string // hostmask the connection must match; "" means any
}

// Store holds the configured operator accounts, keyed by name.
type Store struct {
	byName map[string]Credential
}

// NewStore builds an empty operator credential store.
func NewStore() *Store {
	return &Store{byName: make(map[string]Credential)}
}

// HashPassword bcrypt-hashes a cleartext password for storage in config.
func HashPassword(cleartext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(cleartext), bcrypt.DefaultCost)
}

// Add registers an operator account. Password must already be a bcrypt
// hash, as produced by HashPassword — Store never sees cleartext at rest.
func (s *Store) Add(c Credential) {
	s.byName[c.Name] = c
}

// Verify checks name/password against the store, also confirming
// uhost (nick!user@host) satisfies the account's host pattern if one is
// configured. It returns nil only on success; the errors distinguish
// "no such account" from "wrong password" only for logging;
// both must be presented to the client as ERR_PASSWDMISMATCH (spec.md
// §4.N "do not reveal account existence"), which callers enforce by
// discarding the specific error before replying.
func (s *Store) Verify(name, password, uhost string) error {
	cred, ok := s.byName[name]
	if !ok {
		return ErrUnknownOper
	}
	if cred.HostPattern != "" && !hostMatch(cred.HostPattern, uhost) {
		return ErrPasswordMismatch
	}
	if bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)) != nil {
		return ErrPasswordMismatch
	}
	return nil
}

func hostMatch(pattern, uhost string) bool {
	return chanreg.MatchMask(pattern, uhost)
}
