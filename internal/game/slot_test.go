package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/gallows-bot/internal/ranker"
)

func TestParseState(t *testing.T) {
	slots := ParseState("_A_ D_G")
	require.Len(t, slots, 2)

	require.Equal(t, Slot{
		Word:      "_A_",
		Length:    3,
		Confirmed: []ranker.Position{{Letter: 'A', Index: 1}},
		Remaining: 2,
	}, slots[0])

	require.Equal(t, Slot{
		Word:      "D_G",
		Length:    3,
		Confirmed: []ranker.Position{{Letter: 'D', Index: 0}, {Letter: 'G', Index: 2}},
		Remaining: 1,
	}, slots[1])
}

func TestParseState_MultibyteCountsCharacters(t *testing.T) {
	slots := ParseState("É_T _")
	require.Len(t, slots, 2)

	require.Equal(t, 3, slots[0].Length)
	require.Equal(t, []ranker.Position{{Letter: 'T', Index: 2}}, slots[0].Confirmed)
	require.Equal(t, 1, slots[1].Length)
}

func TestParseState_Cases(t *testing.T) {
	cases := []struct {
		name      string
		state     string
		slots     int
		remaining int
	}{
		{name: "all_hidden", state: "____ __", slots: 2, remaining: 6},
		{name: "all_revealed", state: "CAT", slots: 1, remaining: 0},
		{name: "lowercase_revealed", state: "c_t", slots: 1, remaining: 1},
		{name: "punctuation_is_not_confirmed", state: "DON'_", slots: 1, remaining: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slots := ParseState(tc.state)
			require.Len(t, slots, tc.slots)
			require.Equal(t, tc.remaining, remaining(slots))
		})
	}
}

func TestSlot_Query(t *testing.T) {
	s := ParseState("_A_")[0]
	s.exclude('E')
	s.exclude('E')

	q := s.Query(Letters("EA"))
	require.Equal(t, 3, q.Length)
	require.Equal(t, []byte("E"), q.Excluded)
	require.Equal(t, []ranker.Position{{Letter: 'A', Index: 1}}, q.Confirmed)
	require.Equal(t, []byte("EA"), q.Global)
}

func TestLetters_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		L Letters `json:"l"`
	}{L: Letters("ETA")})
	require.NoError(t, err)
	require.JSONEq(t, `{"l":"ETA"}`, string(b))

	var out struct {
		L Letters `json:"l"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, Letters("ETA"), out.L)
}
