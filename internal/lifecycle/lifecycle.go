// Package lifecycle guards the active/inactive transitions of a habit.
package lifecycle

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	apperrors "github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
)

// Machine states, mirroring models.LifecycleState.
const (
	StateActive   = "active"
	StateInactive = "inactive"
)

// Events accepted by the machine.
const (
	EventDelete     = "delete"
	EventReactivate = "reactivate"
)

// HabitContext carries the habit the machine is evaluating.
type HabitContext struct {
	HabitID string
}

// Machine wraps a statekit interpreter seeded with a habit's stored state.
type Machine struct {
	habitID     string
	interpreter *statekit.Interpreter[HabitContext]
}

// New builds a machine starting in the habit's current state.
func New(h models.Habit) (*Machine, error) {
	initial := StateActive
	if !h.IsActive() {
		initial = StateInactive
	}

	builder := statekit.NewMachine[HabitContext]("habit-lifecycle").
		WithInitial(statekit.StateID(initial)).
		WithContext(HabitContext{HabitID: h.ID})

	builder.State(StateActive).
		On(EventDelete).Target(StateInactive).
		Done()

	builder.State(StateInactive).
		On(EventReactivate).Target(StateActive).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build lifecycle machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Machine{habitID: h.ID, interpreter: interpreter}, nil
}

// Send applies event and returns the resulting state. Events that do not
// apply to the current state leave it unchanged and return
// ErrInvalidTransition.
func (m *Machine) Send(event string) (models.LifecycleState, error) {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := m.Current()

	if before == after {
		return before, fmt.Errorf("cannot %s habit %s while %s: %w", event, m.habitID, before, apperrors.ErrInvalidTransition)
	}
	return after, nil
}

// Current returns the machine's state.
func (m *Machine) Current() models.LifecycleState {
	return models.LifecycleState(m.interpreter.State().Value)
}

// Apply runs event against h and returns the habit with its new state.
// Only State changes here; epoch bookkeeping belongs to the caller.
func Apply(h models.Habit, event string) (models.Habit, error) {
	m, err := New(h)
	if err != nil {
		return h, err
	}
	state, err := m.Send(event)
	if err != nil {
		return h, err
	}
	h.State = state
	return h, nil
}
