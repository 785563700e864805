// Package corpus holds the static word list used for letter statistics.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrEmpty = errors.New("corpus: no words loaded")

// Corpus is an immutable list of uppercase words. It is safe to share
// between goroutines once built.
type Corpus struct {
	words []string
	runes [][]rune
}

// New builds a corpus from an in-memory list, normalizing every entry.
func New(words []string) *Corpus {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = normalize(w); w != "" {
			out = append(out, w)
		}
	}
	return build(out)
}

func build(words []string) *Corpus {
	runes := make([][]rune, len(words))
	for i, w := range words {
		runes[i] = []rune(w)
	}
	return &Corpus{words: words, runes: runes}
}

// Load reads one word per line from path.
func Load(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer f.Close()

	c, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", path, err)
	}
	return c, nil
}

// Read loads a newline-delimited word list. An empty list is an error.
func Read(r io.Reader) (*Corpus, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if w := normalize(sc.Text()); w != "" {
			out = append(out, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return build(out), nil
}

// Words returns the backing slice. Callers must not modify it.
func (c *Corpus) Words() []string { return c.words }

// Runes returns every word as letters, so lengths and positions count
// characters rather than bytes. Callers must not modify it.
func (c *Corpus) Runes() [][]rune { return c.runes }

func (c *Corpus) Len() int { return len(c.words) }

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
