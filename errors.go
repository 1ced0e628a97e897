package openhash

import "errors"

var (
	// ErrAllocation is returned when the slot array cannot be allocated,
	// either at construction or while growing the table.
	ErrAllocation = errors.New("openhash: slot array allocation failed")

	// ErrNotFound is returned by Delete when the key is absent.
	ErrNotFound = errors.New("openhash: key not found")

	// ErrDuplicateKey is returned by Insert when the key is already stored.
	ErrDuplicateKey = errors.New("openhash: duplicate key")

	ErrInvalidConfig = errors.New("openhash: invalid configuration")

	// ErrDestroyed is returned by operations on a table after Destroy.
	ErrDestroyed = errors.New("openhash: table destroyed")

	// Internal: the probe sequence visited every slot without meeting an
	// empty one.
	errNoEmptySlot = errors.New("openhash: no empty slot on probe sequence")
)
