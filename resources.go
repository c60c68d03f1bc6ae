package actionchain

// Action is one unit of work in a chain. A chain drives every action
// through the same lifecycle: Prepare once during the setup phase,
// Execute at most once during the execution phase, Rescue once if any
// action in the chain faults during execution, and Cleanup exactly
// once at the end regardless of outcome.
//
// Implementations must tolerate Rescue and Cleanup being called even
// when their own Prepare or Execute never completed.
type Action interface {
	Prepare() error
	Execute() error
	Rescue(cause error) error
	Cleanup() error
}

// NullAction provides safe no-op defaults for all four lifecycle
// operations. Concrete actions embed it and override the operations
// they care about.
type NullAction struct{}

func (NullAction) Prepare() error           { return nil }
func (NullAction) Execute() error           { return nil }
func (NullAction) Rescue(cause error) error { return nil }
func (NullAction) Cleanup() error           { return nil }

type State string

const (
	StateInvalid State = ""

	// setup phase: the action sequence may still grow
	StateBuilding State = "building"

	// execution phase: the sequence is frozen
	StateRunning State = "running"

	// terminal transitions
	StateTerminating State = "terminating"
	StateFaulting    State = "faulting"
	StateDone        State = "done"
	StateFaulted     State = "faulted"
)

type Phase string

const (
	PhasePrepare Phase = "prepare"
	PhaseExecute Phase = "execute"
	PhaseRescue  Phase = "rescue"
	PhaseCleanup Phase = "cleanup"
)
