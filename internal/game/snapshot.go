package game

import "time"

// SessionSnapshot is the serializable form of a Session, saved after every
// round so a session can be inspected or resumed after a restart.
type SessionSnapshot struct {
	ID        string  `json:"id"`
	Token     string  `json:"token"`
	State     string  `json:"state"`
	Slots     []Slot  `json:"slots"`
	Remaining int     `json:"remainingGuesses"`
	Reported  int     `json:"reportedGuesses"`
	Status    Status  `json:"status"`
	Global    Letters `json:"global"`
	Round     int     `json:"round"`
	Misses    int     `json:"misses"`

	StartedAtMs int64 `json:"startedAtMs"` // unix millis
	SavedAtMs   int64 `json:"savedAtMs"`
}

func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		ID:        s.ID,
		Token:     s.Token,
		State:     s.State,
		Slots:     cloneSlots(s.Slots),
		Remaining: s.Remaining,
		Reported:  s.reported,
		Status:    s.Status,
		Global:    append(Letters(nil), s.Global...),
		Round:     s.Round,
		Misses:    s.Misses,

		StartedAtMs: s.StartedAt.UnixMilli(),
		SavedAtMs:   time.Now().UnixMilli(),
	}
}

// RestoreSession rebuilds a Session from a snapshot.
func RestoreSession(snap SessionSnapshot) *Session {
	return &Session{
		ID:        snap.ID,
		Token:     snap.Token,
		State:     snap.State,
		Slots:     cloneSlots(snap.Slots),
		Remaining: snap.Remaining,
		Status:    snap.Status,
		Global:    append(Letters(nil), snap.Global...),
		Round:     snap.Round,
		Misses:    snap.Misses,
		StartedAt: time.UnixMilli(snap.StartedAtMs).UTC(),
		reported:  snap.Reported,
	}
}
