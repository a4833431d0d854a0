package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRecord     = errors.New("invalid inspection record")
	ErrInvalidMetadata   = errors.New("invalid metadata")
	ErrIdentity          = errors.New("identity derivation failed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSigning           = errors.New("signing failed")
	ErrSubmission        = errors.New("submission rejected")
	ErrNotFound          = errors.New("not found")
)

// QueryError carries the status returned by the upstream indexer so that
// callers can surface it unchanged instead of collapsing everything into a
// generic failure.
type QueryError struct {
	Status  int
	Message string
}

func (e *QueryError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("indexer returned status %d", e.Status)
	}
	return fmt.Sprintf("indexer returned status %d: %s", e.Status, e.Message)
}
