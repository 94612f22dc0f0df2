package models

import "time"

// Stage is a sender's position in the ordering flow
type Stage string

// Stage constants, in flow order
const (
	StageMenu    Stage = "menu"
	StageOrder   Stage = "order"
	StageAddress Stage = "address"
	StageDone    Stage = "done"
)

// Session stores one sender's progress through the ordering flow.
// A sender with no Session has not started a conversation.
type Session struct {
	Stage     Stage     `json:"stage"`
	Items     string    `json:"items,omitempty"`   // set once Stage reaches "address"
	Address   string    `json:"address,omitempty"` // set once Stage reaches "done"
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy that can be modified without touching the original
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// ExpiredAt reports whether the session was last touched before cutoff
func (s *Session) ExpiredAt(cutoff time.Time) bool {
	return s.UpdatedAt.Before(cutoff)
}
