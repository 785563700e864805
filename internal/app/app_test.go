package app

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"example.com/gallows-bot/internal/config"
	"example.com/gallows-bot/internal/corpus"
	"example.com/gallows-bot/internal/game"
)

// phraseService deals the same phrase to every session.
type phraseService struct {
	mu     sync.Mutex
	phrase string
	budget int
	next   int
	games  map[string]*phraseGame
}

type phraseGame struct {
	shown     []byte
	remaining int
}

func newPhraseService(phrase string, budget int) *phraseService {
	return &phraseService{phrase: phrase, budget: budget, games: make(map[string]*phraseGame)}
}

func (s *phraseService) reply(token string, g *phraseGame) game.Reply {
	status := game.StatusAlive
	switch {
	case !bytes.Contains(g.shown, []byte{game.Placeholder}):
		status = game.StatusWon
	case g.remaining == 0:
		status = game.StatusLost
	}
	return game.Reply{State: string(g.shown), RemainingGuesses: g.remaining, Status: status, Token: token}
}

func (s *phraseService) Start(ctx context.Context) (game.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	token := fmt.Sprintf("t%d", s.next)
	shown := []byte(s.phrase)
	for i := range shown {
		if shown[i] != ' ' {
			shown[i] = game.Placeholder
		}
	}
	g := &phraseGame{shown: shown, remaining: s.budget}
	s.games[token] = g
	return s.reply(token, g), nil
}

func (s *phraseService) Guess(ctx context.Context, token string, letter byte) (game.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[token]
	if !ok {
		return game.Reply{}, fmt.Errorf("unknown token %q", token)
	}
	found := false
	for i := 0; i < len(s.phrase); i++ {
		if s.phrase[i] == letter {
			g.shown[i] = letter
			found = true
		}
	}
	if !found {
		g.remaining--
	}
	return s.reply(token, g), nil
}

func testConfig(games, parallel int, verbose bool) config.Config {
	var c config.Config
	c.Log.Format = "text"
	c.Service.URL = "http://localhost/play"
	c.Service.Timeout = time.Second
	c.Service.Retries = 1
	c.Service.RetryBackoff = time.Millisecond
	c.Corpus.Path = "unused"
	c.Play.Games = games
	c.Play.Parallel = parallel
	c.Play.Verbose = verbose
	return c
}

func TestApp_PlaysConfiguredGames(t *testing.T) {
	var out bytes.Buffer
	svc := newPhraseService("CAT DOG", 6)

	a, err := New(context.Background(), testConfig(3, 2, true), zerolog.Nop(), Options{
		Out:     &out,
		Corpus:  corpus.New([]string{"CAT", "DOG", "COT", "HAT"}),
		Service: svc,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Run(ctx))

	sum, err := a.Results().Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, sum.Played)
	require.Equal(t, 3, sum.Won)

	require.Equal(t, 3, strings.Count(out.String(), "WON - CAT DOG"))
}

func TestApp_AbortedGameDoesNotStopLoop(t *testing.T) {
	// Nothing in the corpus shares a letter with X, so every game ends with
	// no candidates once A is spent.
	var out bytes.Buffer
	svc := newPhraseService("X", 6)

	a, err := New(context.Background(), testConfig(2, 1, true), zerolog.Nop(), Options{
		Out:     &out,
		Corpus:  corpus.New([]string{"A"}),
		Service: svc,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Run(ctx))

	svc.mu.Lock()
	require.Equal(t, 2, svc.next)
	svc.mu.Unlock()

	sum, err := a.Results().Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, sum.Played)

	// every aborted session still gets an outcome line
	require.Equal(t, 2, strings.Count(out.String(), "ABORTED - _"))
}

func TestApp_UnboundedUntilCanceled(t *testing.T) {
	svc := newPhraseService("CAT", 6)

	a, err := New(context.Background(), testConfig(0, 1, false), zerolog.Nop(), Options{
		Corpus:  corpus.New([]string{"CAT"}),
		Service: svc,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		sum, _ := a.Results().Summary(context.Background())
		return sum.Played >= 5
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNew_MissingCorpusIsFatal(t *testing.T) {
	cfg := testConfig(1, 1, false)
	cfg.Corpus.Path = t.TempDir() + "/missing.txt"

	_, err := New(context.Background(), cfg, zerolog.Nop(), Options{Service: newPhraseService("CAT", 6)})
	require.Error(t, err)
}
