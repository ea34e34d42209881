package document

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Lifecycle events accepted by the status machine.
const (
	EventPlan      = "plan"
	EventStart     = "start"
	EventReview    = "review"
	EventApprove   = "approve"
	EventBlock     = "block"
	EventUnblock   = "unblock"
	EventReopen    = "reopen"
	EventDeprecate = "deprecate"
)

// StatusContext carries state data for the lifecycle machine.
type StatusContext struct {
	SpecID int
}

// StatusMachine guards document status transitions. A document moves
// draft -> planned -> in_progress -> review -> complete, can be blocked from
// any active state, and can be deprecated from anywhere.
type StatusMachine struct {
	interpreter *statekit.Interpreter[StatusContext]
}

// NewStatusMachine builds a lifecycle machine starting at the given status.
func NewStatusMachine(initial Status, specID int) (*StatusMachine, error) {
	builder := statekit.NewMachine[StatusContext]("spec-status").
		WithInitial(statekit.StateID(initial)).
		WithContext(StatusContext{SpecID: specID})

	builder.State(statekit.StateID(StatusDraft)).
		On(EventPlan).Target(statekit.StateID(StatusPlanned)).
		On(EventDeprecate).Target(statekit.StateID(StatusDeprecated)).
		Done()

	builder.State(statekit.StateID(StatusPlanned)).
		On(EventStart).Target(statekit.StateID(StatusInProgress)).
		On(EventBlock).Target(statekit.StateID(StatusBlocked)).
		On(EventDeprecate).Target(statekit.StateID(StatusDeprecated)).
		Done()

	builder.State(statekit.StateID(StatusInProgress)).
		On(EventReview).Target(statekit.StateID(StatusReview)).
		On(EventBlock).Target(statekit.StateID(StatusBlocked)).
		On(EventDeprecate).Target(statekit.StateID(StatusDeprecated)).
		Done()

	builder.State(statekit.StateID(StatusReview)).
		On(EventApprove).Target(statekit.StateID(StatusComplete)).
		On(EventReopen).Target(statekit.StateID(StatusInProgress)).
		On(EventBlock).Target(statekit.StateID(StatusBlocked)).
		On(EventDeprecate).Target(statekit.StateID(StatusDeprecated)).
		Done()

	builder.State(statekit.StateID(StatusComplete)).
		On(EventReopen).Target(statekit.StateID(StatusInProgress)).
		On(EventDeprecate).Target(statekit.StateID(StatusDeprecated)).
		Done()

	builder.State(statekit.StateID(StatusBlocked)).
		On(EventUnblock).Target(statekit.StateID(StatusPlanned)).
		On(EventDeprecate).Target(statekit.StateID(StatusDeprecated)).
		Done()

	builder.State(statekit.StateID(StatusDeprecated)).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build status machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &StatusMachine{interpreter: interpreter}, nil
}

// Transition attempts to apply a lifecycle event. In statekit, when no
// transition matches the state stays put, so an unchanged state after Send
// means the event was invalid here.
func (m *StatusMachine) Transition(event string) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := m.Current()
	if before == after {
		return fmt.Errorf("event %q is not allowed while the document is %q", event, before)
	}
	return nil
}

// Current returns the machine's status.
func (m *StatusMachine) Current() Status {
	return Status(m.interpreter.State().Value)
}
