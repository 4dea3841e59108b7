// Package store holds what the item store backends share.
package store

import "errors"

// ErrNotFound is returned when an update targets an id the store does not hold.
var ErrNotFound = errors.New("item not found")
