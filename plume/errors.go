package plume

import (
	"errors"

	"github.com/hazyhaar/plume/plume/internal/store"
)

// ErrNotFound is returned when a post or article does not exist.
var ErrNotFound = store.ErrNotFound

// ErrInvalidTransition is returned for illegal post status changes.
var ErrInvalidTransition = store.ErrInvalidTransition

// ErrInvalidStatus is returned when a status string is not one of the
// known post states.
var ErrInvalidStatus = errors.New("plume: invalid status")
