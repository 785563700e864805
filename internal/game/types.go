package game

import (
	"context"
	"time"
)

// Status is the game status reported by the gallows service.
type Status string

const (
	StatusAlive Status = "ALIVE"
	StatusWon   Status = "WON"
	StatusLost  Status = "LOST"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAlive, StatusWon, StatusLost:
		return true
	}
	return false
}

func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

// Reply is the payload returned by both service endpoints.
type Reply struct {
	State            string `json:"state"`
	RemainingGuesses int    `json:"remaining_guesses"`
	Status           Status `json:"status"`
	Token            string `json:"token"`
}

// Service is the remote game the player talks to.
type Service interface {
	Start(ctx context.Context) (Reply, error)
	Guess(ctx context.Context, token string, letter byte) (Reply, error)
}

// RoundEvent describes one guess and its effect.
type RoundEvent struct {
	SessionID string `json:"sessionId"`
	Round     int    `json:"round"`
	Target    int    `json:"target"`
	Slot      Slot   `json:"slot"` // target slot before the guess
	Guess     string `json:"guess"`
	Ranked    string `json:"ranked"`
	Reply     Reply  `json:"reply"`
	Slots     []Slot `json:"slots"`
	Hit       bool   `json:"hit"`
}

// Result is the outcome of one session.
type Result struct {
	SessionID  string    `json:"sessionId"`
	Status     Status    `json:"status"`
	State      string    `json:"state"`
	Rounds     int       `json:"rounds"`
	Remaining  int       `json:"remainingGuesses"`
	Misses     int       `json:"misses"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Error      string    `json:"error,omitempty"` // set when the session was aborted
}

// Aborted reports whether the session ended on an error instead of a verdict.
func (r Result) Aborted() bool { return r.Error != "" }
