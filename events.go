package actionchain

import "errors"

type Event interface {
	EventType() EventType
}

type EventType string

var ErrUnknownEventType = errors.New("unknown event type")

const (
	EventTypeInvalid EventType = ""

	EventTypeChainState  EventType = "chain_state"
	EventTypeActionPhase EventType = "action_phase"
	EventTypeChainFault  EventType = "chain_fault"
)

// ChainStateEvent is emitted on every chain state transition.
type ChainStateEvent struct {
	RunID string `json:"run_id"`
	From  State  `json:"from"`
	To    State  `json:"to"`
}

func NewChainStateEvent(runID string, from, to State) ChainStateEvent {
	return ChainStateEvent{
		RunID: runID,
		From:  from,
		To:    to,
	}
}

func (ChainStateEvent) EventType() EventType { return EventTypeChainState }

// ActionPhaseEvent is emitted just before a lifecycle operation is
// invoked on an action.
type ActionPhaseEvent struct {
	RunID      string `json:"run_id"`
	Index      int    `json:"index"`
	ActionName string `json:"action_name"`
	Phase      Phase  `json:"phase"`
}

func NewActionPhaseEvent(runID string, index int, actionName string, phase Phase) ActionPhaseEvent {
	return ActionPhaseEvent{
		RunID:      runID,
		Index:      index,
		ActionName: actionName,
		Phase:      phase,
	}
}

func (ActionPhaseEvent) EventType() EventType { return EventTypeActionPhase }

// ChainFaultEvent summarizes a faulted run: the triggering cause plus
// any secondary failures collected during the rescue and cleanup
// passes.
type ChainFaultEvent struct {
	RunID     string   `json:"run_id"`
	Cause     string   `json:"cause"`
	Secondary []string `json:"secondary,omitempty"`
}

func NewChainFaultEvent(runID string, cause error, secondary []error) ChainFaultEvent {
	event := ChainFaultEvent{
		RunID: runID,
		Cause: cause.Error(),
	}
	for _, err := range secondary {
		event.Secondary = append(event.Secondary, err.Error())
	}
	return event
}

func (ChainFaultEvent) EventType() EventType { return EventTypeChainFault }
