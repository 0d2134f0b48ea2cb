package fsm

import (
	"fmt"
	"sync"
)

type State string
type Event string

// Handler runs after a transition has been applied. It may Fire further
// events; the machine does not hold its lock while a handler runs.
type Handler func(event Event, args ...interface{}) error

type transition struct {
	to      State
	handler Handler
}

// Machine is a small string-keyed state machine. State changes are
// applied before the transition handler runs, so a handler always
// observes the post-transition state and may fire follow-up events.
type Machine struct {
	mu          sync.Mutex
	current     State
	transitions map[State]map[Event]transition
}

func New(initial State) *Machine {
	return &Machine{
		current:     initial,
		transitions: make(map[State]map[Event]transition),
	}
}

func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Machine) AddTransition(from, to State, event Event, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[Event]transition)
	}
	m.transitions[from][event] = transition{to: to, handler: handler}
}

// Fire applies the transition for event from the current state and then
// invokes its handler, if any. An event with no transition from the
// current state is an error and leaves the state unchanged.
func (m *Machine) Fire(event Event, args ...interface{}) error {
	m.mu.Lock()
	tr, ok := m.transitions[m.current][event]
	if !ok {
		from := m.current
		m.mu.Unlock()
		return fmt.Errorf("invalid transition from %s via %s", from, event)
	}
	m.current = tr.to
	m.mu.Unlock()

	if tr.handler != nil {
		return tr.handler(event, args...)
	}
	return nil
}
