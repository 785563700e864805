// Package ranker orders untried letters by how often they occur in corpus
// words that are still consistent with what is known about a hidden word.
package ranker

import (
	"errors"
	"fmt"
	"slices"
	"unicode"

	"github.com/samber/lo"

	"example.com/gallows-bot/internal/corpus"
)

// AnyLength disables the word length filter.
const AnyLength = -1

// ErrNoCandidates means neither the filtered nor the whole-corpus ranking
// left a letter that has not been tried yet.
var ErrNoCandidates = errors.New("ranker: no candidate letters")

// Position is a letter confirmed at a 0-based index of a word. Indexes
// count characters, not bytes.
type Position struct {
	Letter byte `json:"letter"`
	Index  int  `json:"index"`
}

// String renders the position as "A@1".
func (p Position) String() string { return fmt.Sprintf("%c@%d", p.Letter, p.Index) }

type Query struct {
	Length    int        // target word length, or AnyLength
	Excluded  []byte     // letters known to be absent from the word
	Confirmed []Position // letters known to be at an index
	Global    []byte     // letters already guessed in the session
}

// Rank returns the letters that are neither excluded, confirmed nor globally
// tried, most frequent first. Ties are ordered alphabetically.
//
// When no corpus word survives the filters the ranking is recomputed over
// the whole corpus and the tried letters are removed from it.
func Rank(c *corpus.Corpus, q Query) ([]byte, error) {
	letters := rank(c.Runes(), q)
	if len(letters) == 0 {
		tried := q.tried()
		letters = lo.Filter(rank(c.Runes(), Query{Length: AnyLength}), func(l byte, _ int) bool {
			return !tried[l-'A']
		})
	}
	if len(letters) == 0 {
		return nil, ErrNoCandidates
	}
	return letters, nil
}

func rank(words [][]rune, q Query) []byte {
	tried := q.tried()
	absent := letterSet(q.Excluded)

	var counts [26]int
	for _, w := range words {
		if q.Length != AnyLength && len(w) != q.Length {
			continue
		}
		if !q.consistent(w, absent) {
			continue
		}
		for _, r := range w {
			j := index(r)
			if j < 0 || tried[j] {
				continue
			}
			counts[j]++
		}
	}

	out := make([]byte, 0, 26)
	for j := 0; j < 26; j++ {
		if !tried[j] && counts[j] > 0 {
			out = append(out, byte('A'+j))
		}
	}
	slices.SortStableFunc(out, func(a, b byte) int {
		return counts[b-'A'] - counts[a-'A']
	})
	return out
}

// consistent reports whether w has none of the absent letters and carries
// every confirmed letter at its index.
func (q Query) consistent(w []rune, absent [26]bool) bool {
	for _, r := range w {
		if j := index(r); j >= 0 && absent[j] {
			return false
		}
	}
	for _, p := range q.Confirmed {
		if p.Index < 0 || p.Index >= len(w) || unicode.ToUpper(w[p.Index]) != unicode.ToUpper(rune(p.Letter)) {
			return false
		}
	}
	return true
}

// tried is the union of excluded, confirmed and global letters.
func (q Query) tried() [26]bool {
	set := letterSet(q.Excluded)
	for _, l := range q.Global {
		if j := index(rune(l)); j >= 0 {
			set[j] = true
		}
	}
	for _, p := range q.Confirmed {
		if j := index(rune(p.Letter)); j >= 0 {
			set[j] = true
		}
	}
	return set
}

func letterSet(letters []byte) [26]bool {
	var set [26]bool
	for _, l := range letters {
		if j := index(rune(l)); j >= 0 {
			set[j] = true
		}
	}
	return set
}

// index maps an ASCII letter of either case to 0..25, anything else to -1.
// Accented letters cannot be guessed, so they take up a position but are
// never counted.
func index(r rune) int {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	if r < 'A' || r > 'Z' {
		return -1
	}
	return int(r - 'A')
}
