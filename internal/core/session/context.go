package session

import (
	"fmt"
	"time"
)

// Context is the state of one browser or API session. It is created on first
// contact, becomes authenticated at login and is destroyed at logout.
type Context struct {
	ID          string    `json:"id"`
	State       State     `json:"state"`
	UserID      string    `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	CurrentPage string    `json:"current_page,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// New returns an anonymous session in the login state.
func New(id string, now time.Time) *Context {
	return &Context{ID: id, State: StateLogin, CreatedAt: now, LastSeenAt: now}
}

// Authenticated reports whether a user is logged in on this session.
func (c *Context) Authenticated() bool {
	return c != nil && c.State == StateAuthenticated && c.UserID != ""
}

// Can reports whether ev is allowed in the current state without applying it.
func (c *Context) Can(ev Event) error {
	_, err := Next(c.State, ev)
	return err
}

// Fire applies ev. On error the session is left unchanged.
func (c *Context) Fire(ev Event) error {
	next, err := Next(c.State, ev)
	if err != nil {
		return err
	}
	c.State = next
	return nil
}

// Login fires submit_login and binds the user to the session.
func (c *Context) Login(userID, username string) error {
	if userID == "" {
		return fmt.Errorf("login requires a user id")
	}
	if err := c.Fire(EventSubmitLogin); err != nil {
		return err
	}
	c.UserID = userID
	c.Username = username
	return nil
}

// Logout returns to the login state and drops everything scoped to the session.
func (c *Context) Logout() {
	c.State = StateLogin
	c.UserID = ""
	c.Username = ""
	c.CurrentPage = ""
}
