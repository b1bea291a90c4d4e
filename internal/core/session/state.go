// Package session models the login flow and the per-session context that
// replaces ambient global session state.
package session

import (
	"fmt"

	"github.com/SscSPs/sheet_dashboard/internal/apperrors"
)

// State is a step of the login flow.
type State string

const (
	StateLogin           State = "login"
	StateSignup          State = "signup"
	StateResetRequested  State = "reset_requested"
	StateResetInProgress State = "reset_in_progress"
	StateAuthenticated   State = "authenticated"
)

// Event is an explicit user action.
type Event string

const (
	EventShowLogin         Event = "show_login"
	EventShowSignup        Event = "show_signup"
	EventSubmitLogin       Event = "submit_login"
	EventSubmitSignup      Event = "submit_signup"
	EventRequestReset      Event = "request_reset"
	EventBeginReset        Event = "begin_reset"
	EventSubmitNewPassword Event = "submit_new_password"
	EventLogout            Event = "logout"
)

// transitions lists every allowed (state, event) pair. Logout is handled separately
// because it is allowed from every state.
var transitions = map[State]map[Event]State{
	StateLogin: {
		EventSubmitLogin:       StateAuthenticated,
		EventShowSignup:        StateSignup,
		EventSubmitSignup:      StateLogin,
		EventRequestReset:      StateResetRequested,
		EventBeginReset:        StateResetInProgress,
		EventSubmitNewPassword: StateLogin,
		EventShowLogin:         StateLogin,
	},
	StateSignup: {
		EventSubmitSignup: StateLogin,
		EventShowLogin:    StateLogin,
		EventShowSignup:   StateSignup,
	},
	StateResetRequested: {
		EventRequestReset:      StateResetRequested,
		EventBeginReset:        StateResetInProgress,
		EventSubmitNewPassword: StateLogin,
		EventShowLogin:         StateLogin,
	},
	StateResetInProgress: {
		EventBeginReset:        StateResetInProgress,
		EventSubmitNewPassword: StateLogin,
		EventShowLogin:         StateLogin,
	},
	StateAuthenticated: {},
}

// Next returns the state reached by firing ev in from, or ErrInvalidTransition.
// Callers fire an event only after the action it stands for has succeeded.
func Next(from State, ev Event) (State, error) {
	if ev == EventLogout {
		return StateLogin, nil
	}
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: %s from %s", apperrors.ErrInvalidTransition, ev, from)
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}
