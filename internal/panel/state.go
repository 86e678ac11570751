package panel

// State is the collection state of a panel.
type State int

const (
	Idle State = iota
	Collecting
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Collecting:
		return "collecting"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Done reports whether a collection phase has finished.
func (s State) Done() bool { return s == Ready || s == Failed }
