package entities

import "errors"

var (
	// ErrSessionNotInitialized is returned when selection or summary state is
	// read outside a started session.
	ErrSessionNotInitialized = errors.New("harvest session not initialized")

	// ErrSelectionNotInitialized is returned by a Selection that was not built
	// with NewSelection.
	ErrSelectionNotInitialized = errors.New("selection not initialized")

	ErrEmptyHoldingID    = errors.New("holding id is empty")
	ErrDuplicateHolding  = errors.New("duplicate holding id")
	ErrInvalidTerm       = errors.New("invalid gain term")
	ErrInvalidSortColumn = errors.New("invalid sort column")
)
