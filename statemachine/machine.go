package statemachine

import (
	"fmt"
	"strings"

	"food-rescue-api/apperr"
	"food-rescue-api/models"
)

// Transition defines a valid state change and which roles may trigger it
type Transition[S ~string] struct {
	From   S             `json:"from"`
	To     S             `json:"to"`
	Actors []models.Role `json:"actors"`
}

// transitionKey is used to look up valid transitions quickly
type transitionKey[S ~string] struct {
	From S
	To   S
}

// Machine is a forward-only lifecycle. The zero value is not usable; build
// one with New.
type Machine[S ~string] struct {
	name        string
	transitions []Transition[S]
	index       map[transitionKey[S]]Transition[S]
}

func New[S ~string](name string, transitions ...Transition[S]) *Machine[S] {
	m := &Machine[S]{
		name:        name,
		transitions: transitions,
		index:       make(map[transitionKey[S]]Transition[S], len(transitions)),
	}
	for _, t := range transitions {
		m.index[transitionKey[S]{t.From, t.To}] = t
	}
	return m
}

func (m *Machine[S]) Name() string { return m.name }

// CanTransition reports whether from → to is an edge of the machine. The
// returned error wraps apperr.ErrStaleState.
func (m *Machine[S]) CanTransition(from, to S) error {
	if _, ok := m.index[transitionKey[S]{from, to}]; ok {
		return nil
	}
	return fmt.Errorf("%w: %s %s → %s is not allowed; valid transitions from %s are: %s",
		apperr.ErrStaleState, m.name, from, to, from, m.describeValidFrom(from))
}

// Permits checks if a given role can move from one state to another
func (m *Machine[S]) Permits(from, to S, role models.Role) bool {
	t, ok := m.index[transitionKey[S]{from, to}]
	if !ok {
		return false
	}
	for _, r := range t.Actors {
		if r == role {
			return true
		}
	}
	return false
}

// ActorsFor returns the union of roles allowed to enter `to` from any state.
func (m *Machine[S]) ActorsFor(to S) []models.Role {
	var roles []models.Role
	seen := map[models.Role]bool{}
	for _, t := range m.transitions {
		if t.To != to {
			continue
		}
		for _, r := range t.Actors {
			if !seen[r] {
				seen[r] = true
				roles = append(roles, r)
			}
		}
	}
	return roles
}

// ValidTransitionsFrom returns all valid next states from a given state
func (m *Machine[S]) ValidTransitionsFrom(status S) []S {
	var nexts []S
	seen := map[S]bool{}
	for _, t := range m.transitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

func (m *Machine[S]) IsTerminal(status S) bool {
	return len(m.ValidTransitionsFrom(status)) == 0
}

// Transitions returns the full table for documentation
func (m *Machine[S]) Transitions() []Transition[S] {
	return m.transitions
}

func (m *Machine[S]) describeValidFrom(status S) string {
	nexts := m.ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
