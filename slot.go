package openhash

type slotState uint8

const (
	// Never used. Terminates every probe sequence.
	slotEmpty slotState = iota
	slotOccupied
	// Previously occupied. Probes walk past it and only a resize reclaims it.
	slotTombstone
)

func (s slotState) String() string {
	switch s {
	case slotEmpty:
		return "empty"
	case slotOccupied:
		return "occupied"
	case slotTombstone:
		return "tombstone"
	default:
		return "unknown"
	}
}

// slot owns its record while the state is slotOccupied. The record field of
// empty and tombstone slots is always the zero value, so released records are
// not kept reachable.
type slot[R any] struct {
	state  slotState
	record R
}
