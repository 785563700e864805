package game

import (
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"example.com/gallows-bot/internal/ranker"
)

// Placeholder marks a hidden character in the puzzle display string.
const Placeholder = '_'

// Letters is a small set of uppercase letters kept in insertion order.
// It encodes as a plain string.
type Letters []byte

func (l Letters) String() string { return string(l) }

func (l Letters) Has(c byte) bool { return lo.Contains(l, c) }

func (l Letters) MarshalText() ([]byte, error) { return []byte(l), nil }

func (l *Letters) UnmarshalText(b []byte) error {
	*l = append(Letters(nil), b...)
	return nil
}

// Slot is the known state of one space-delimited word of the puzzle.
type Slot struct {
	Word      string            `json:"word"`
	Length    int               `json:"length"`
	Confirmed []ranker.Position `json:"confirmed"`
	Excluded  Letters           `json:"excluded"`
	Remaining int               `json:"remaining"`
}

// ParseState splits a display string like "_A_ D_G" into slots.
func ParseState(state string) []Slot {
	tokens := strings.Split(state, " ")
	slots := make([]Slot, 0, len(tokens))
	for _, tok := range tokens {
		slots = append(slots, parseSlot(tok))
	}
	return slots
}

// parseSlot measures the token in characters so positions line up with the
// corpus words they are matched against.
func parseSlot(tok string) Slot {
	chars := []rune(tok)
	s := Slot{Word: tok, Length: len(chars)}
	for i, r := range chars {
		if r == Placeholder || r >= utf8.RuneSelf || !isLetter(byte(r)) {
			continue
		}
		s.Confirmed = append(s.Confirmed, ranker.Position{Letter: upper(byte(r)), Index: i})
	}
	s.Remaining = s.Length - len(s.Confirmed)
	return s
}

// Query builds the ranking query for this slot.
func (s Slot) Query(global Letters) ranker.Query {
	return ranker.Query{
		Length:    s.Length,
		Excluded:  s.Excluded,
		Confirmed: s.Confirmed,
		Global:    global,
	}
}

// exclude records a letter known to be absent from the slot.
func (s *Slot) exclude(c byte) {
	if !s.Excluded.Has(c) {
		s.Excluded = append(s.Excluded, c)
	}
}

// carryExcluded copies local exclusions from the previous round's slots.
// The service never changes the number of words, but a reply that does is
// treated as a fresh puzzle.
func carryExcluded(prev, next []Slot) {
	if len(prev) != len(next) {
		return
	}
	for i := range next {
		next[i].Excluded = append(Letters(nil), prev[i].Excluded...)
	}
}

func remaining(slots []Slot) int {
	return lo.SumBy(slots, func(s Slot) int { return s.Remaining })
}

func cloneSlots(slots []Slot) []Slot {
	return lo.Map(slots, func(s Slot, _ int) Slot {
		s.Confirmed = append([]ranker.Position(nil), s.Confirmed...)
		s.Excluded = append(Letters(nil), s.Excluded...)
		return s
	})
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
