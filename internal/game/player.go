package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"example.com/gallows-bot/internal/corpus"
	"example.com/gallows-bot/internal/ranker"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionOver     = errors.New("session already finished")
)

type Options struct {
	Sessions SessionStore // optional; snapshots are skipped when nil
	Observer Observer     // optional
	Log      zerolog.Logger
}

// Player plays sessions against a Service, guessing the letter the ranker
// puts first for the longest unsolved word.
type Player struct {
	corpus   *corpus.Corpus
	service  Service
	sessions SessionStore
	observer Observer
	log      zerolog.Logger
}

func NewPlayer(c *corpus.Corpus, svc Service, opts Options) *Player {
	if opts.Observer == nil {
		opts.Observer = Observers(nil)
	}
	return &Player{
		corpus:   c,
		service:  svc,
		sessions: opts.Sessions,
		observer: opts.Observer,
		log:      opts.Log,
	}
}

// Play starts a new session and plays it to the end.
func (p *Player) Play(ctx context.Context) (Result, error) {
	reply, err := p.service.Start(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("start session: %w", err)
	}
	if reply.Token == "" {
		return Result{}, errors.New("start session: empty token")
	}
	return p.Run(ctx, NewSession(uuid.NewString(), reply))
}

// Resume continues a session from its stored snapshot.
func (p *Player) Resume(ctx context.Context, sessionID string) (Result, error) {
	if p.sessions == nil {
		return Result{}, ErrSessionNotFound
	}
	snap, ok, err := p.sessions.Load(ctx, sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !ok {
		return Result{}, fmt.Errorf("load session %s: %w", sessionID, ErrSessionNotFound)
	}
	s := RestoreSession(snap)
	if !s.Alive() {
		return s.Result(), ErrSessionOver
	}
	return p.Run(ctx, s)
}

// Run guesses until the session is won, lost or out of guesses.
//
// An empty ranking or a service failure ends the session with an error;
// the partial result is still returned.
func (p *Player) Run(ctx context.Context, s *Session) (Result, error) {
	log := p.log.With().Str("session", s.ID).Logger()
	log.Debug().Str("state", s.State).Int("remaining", s.Remaining).Msg("session started")
	p.save(ctx, s)
	if len(s.Slots) == 0 {
		return p.abort(ctx, s, errors.New("session has an empty puzzle"))
	}

	for s.Alive() {
		if err := ctx.Err(); err != nil {
			return s.Result(), err
		}

		target := s.Target()
		slot := s.Slots[target]

		ranked, err := ranker.Rank(p.corpus, slot.Query(s.Global))
		if err != nil {
			log.Error().Err(err).Int("round", s.Round+1).Str("slot", slot.Word).Msg("no letter to guess")
			return p.abort(ctx, s, fmt.Errorf("round %d: slot %q: %w", s.Round+1, slot.Word, err))
		}
		guess := ranked[0]

		reply, err := p.service.Guess(ctx, s.Token, guess)
		if err != nil {
			return p.abort(ctx, s, fmt.Errorf("round %d: guess %c: %w", s.Round+1, guess, err))
		}

		hit := s.Apply(target, guess, reply)
		log.Debug().
			Int("round", s.Round).
			Str("guess", string(guess)).
			Bool("hit", hit).
			Str("state", reply.State).
			Int("remaining", s.Remaining).
			Msg("guessed")

		p.observer.OnRound(RoundEvent{
			SessionID: s.ID,
			Round:     s.Round,
			Target:    target,
			Slot:      slot,
			Guess:     string(guess),
			Ranked:    string(ranked),
			Reply:     reply,
			Slots:     cloneSlots(s.Slots),
			Hit:       hit,
		})
		p.save(ctx, s)
	}

	res := s.Result()
	log.Info().
		Str("status", string(res.Status)).
		Str("state", res.State).
		Int("rounds", res.Rounds).
		Int("misses", res.Misses).
		Msg("session finished")
	p.observer.OnFinish(res)
	return res, nil
}

// abort ends a session that cannot go on. Observers still get its outcome
// unless the caller canceled.
func (p *Player) abort(ctx context.Context, s *Session, err error) (Result, error) {
	res := s.Result()
	if ctx.Err() == nil {
		res.Error = err.Error()
		p.observer.OnFinish(res)
	}
	return res, err
}

func (p *Player) save(ctx context.Context, s *Session) {
	if p.sessions == nil {
		return
	}
	if err := p.sessions.Save(ctx, s.Snapshot()); err != nil {
		p.log.Warn().Err(err).Str("session", s.ID).Msg("save session snapshot")
	}
}
