package scheduler

// State is the lifecycle phase of a Scheduler.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateSleeping
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateSleeping:
		return "sleeping"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
