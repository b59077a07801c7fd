package ui

// LoopMode controls what happens when the track runs out.
type LoopMode int

const (
	LoopOff LoopMode = iota
	LoopTrack
)

// Next cycles to the next loop mode.
func (l LoopMode) Next() LoopMode {
	switch l {
	case LoopOff:
		return LoopTrack
	default:
		return LoopOff
	}
}

// String returns the name of the loop mode.
func (l LoopMode) String() string {
	switch l {
	case LoopTrack:
		return "track"
	default:
		return "off"
	}
}

// Icon returns a visual indicator for the loop mode.
func (l LoopMode) Icon() string {
	switch l {
	case LoopTrack:
		return "[loop]"
	default:
		return ""
	}
}
