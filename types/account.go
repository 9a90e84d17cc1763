package types

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// AccountID is a NEAR-style human-readable account identifier, e.g.
// "alice.near" or a 64-char implicit hex account.
type AccountID string

const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

var ErrInvalidAccountID = errors.New("invalid account id")

// Validate checks the account id against the protocol's character and length
// rules. It does not check on-chain existence.
func (a AccountID) Validate() error {
	if len(a) < MinAccountIDLen || len(a) > MaxAccountIDLen {
		return errors.Wrapf(ErrInvalidAccountID, "%q: length must be in [%d, %d]", a, MinAccountIDLen, MaxAccountIDLen)
	}
	if !accountIDPattern.MatchString(string(a)) {
		return errors.Wrapf(ErrInvalidAccountID, "%q", a)
	}
	return nil
}

// IsSubAccountOf reports whether a is a direct sub-account of parent,
// e.g. "bob.alice" is a direct sub-account of "alice".
func (a AccountID) IsSubAccountOf(parent AccountID) bool {
	suffix := "." + string(parent)
	if !strings.HasSuffix(string(a), suffix) {
		return false
	}
	child := strings.TrimSuffix(string(a), suffix)
	return child != "" && !strings.Contains(child, ".")
}

// IsTopLevel reports whether the account has no parent, e.g. "alice".
func (a AccountID) IsTopLevel() bool {
	return !strings.Contains(string(a), ".")
}

func (a AccountID) String() string {
	return string(a)
}
