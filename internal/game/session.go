package game

import "time"

// Session is the mutable state of one game against the service.
type Session struct {
	ID        string
	Token     string
	State     string
	Slots     []Slot
	Remaining int
	Status    Status
	Global    Letters // every letter guessed so far
	Round     int
	Misses    int
	StartedAt time.Time

	reported int // remaining_guesses from the last reply
}

// NewSession starts tracking a game from the service's opening reply.
func NewSession(id string, r Reply) *Session {
	return &Session{
		ID:        id,
		Token:     r.Token,
		State:     r.State,
		Slots:     ParseState(r.State),
		Remaining: r.RemainingGuesses,
		Status:    r.Status,
		StartedAt: time.Now().UTC(),
		reported:  r.RemainingGuesses,
	}
}

// Alive reports whether another guess should be made.
func (s *Session) Alive() bool {
	return s.Status == StatusAlive && s.Remaining > 0
}

// Target picks the longest slot that still has hidden letters. Among equal
// lengths the later slot wins. With nothing left to reveal it returns 0.
func (s *Session) Target() int {
	target, longest := 0, 0
	for i, slot := range s.Slots {
		if slot.Remaining > 0 && slot.Length >= longest {
			target, longest = i, slot.Length
		}
	}
	return target
}

// Apply folds the service reply for a guess aimed at slot target into the
// session and reports whether the guess revealed anything in that slot.
func (s *Session) Apply(target int, guess byte, r Reply) bool {
	if !s.Global.Has(guess) {
		s.Global = append(s.Global, guess)
	}

	next := ParseState(r.State)
	carryExcluded(s.Slots, next)

	hit := true
	if target < len(s.Slots) && target < len(next) && next[target].Remaining == s.Slots[target].Remaining {
		next[target].exclude(guess)
		hit = false
	}
	s.Slots = next

	if r.RemainingGuesses < s.reported {
		s.Remaining--
		s.Misses++
	}
	s.reported = r.RemainingGuesses

	s.State = r.State
	s.Status = r.Status
	s.Round++
	return hit
}

// Unknown is the number of hidden characters left across all slots.
func (s *Session) Unknown() int { return remaining(s.Slots) }

func (s *Session) Result() Result {
	return Result{
		SessionID:  s.ID,
		Status:     s.Status,
		State:      s.State,
		Rounds:     s.Round,
		Remaining:  s.Remaining,
		Misses:     s.Misses,
		StartedAt:  s.StartedAt,
		FinishedAt: time.Now().UTC(),
	}
}
