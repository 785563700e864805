package game

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

// hangman is a local stand-in for the gallows service.
type hangman struct {
	mu        sync.Mutex
	answer    string
	shown     []byte
	remaining int
	guesses   []byte
}

func newHangman(answer string, budget int) *hangman {
	shown := []byte(answer)
	for i := range shown {
		if shown[i] != ' ' {
			shown[i] = Placeholder
		}
	}
	return &hangman{answer: answer, shown: shown, remaining: budget}
}

func (h *hangman) replyLocked() Reply {
	status := StatusAlive
	switch {
	case !bytes.Contains(h.shown, []byte{Placeholder}):
		status = StatusWon
	case h.remaining == 0:
		status = StatusLost
	}
	return Reply{State: string(h.shown), RemainingGuesses: h.remaining, Status: status, Token: "tok"}
}

func (h *hangman) Start(ctx context.Context) (Reply, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.replyLocked(), nil
}

func (h *hangman) Guess(ctx context.Context, token string, letter byte) (Reply, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if token != "tok" {
		return Reply{}, errors.New("bad token")
	}
	h.guesses = append(h.guesses, letter)
	found := false
	for i := 0; i < len(h.answer); i++ {
		if h.answer[i] == letter {
			h.shown[i] = letter
			found = true
		}
	}
	if !found {
		h.remaining--
	}
	return h.replyLocked(), nil
}

// scripted replays canned replies.
type scripted struct {
	start   Reply
	replies []Reply
	calls   int
	err     error
}

var errScriptExhausted = errors.New("script exhausted")

func (s *scripted) Start(ctx context.Context) (Reply, error) { return s.start, nil }

func (s *scripted) Guess(ctx context.Context, token string, letter byte) (Reply, error) {
	if s.err != nil {
		return Reply{}, s.err
	}
	if s.calls >= len(s.replies) {
		return Reply{}, errScriptExhausted
	}
	r := s.replies[s.calls]
	s.calls++
	return r, nil
}

// recorder collects observer callbacks.
type recorder struct {
	rounds  []RoundEvent
	results []Result
}

func (r *recorder) OnRound(ev RoundEvent) { r.rounds = append(r.rounds, ev) }
func (r *recorder) OnFinish(res Result)   { r.results = append(r.results, res) }
