package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"example.com/gallows-bot/internal/config"
	"example.com/gallows-bot/internal/corpus"
	"example.com/gallows-bot/internal/gallows"
	"example.com/gallows-bot/internal/game"
	"example.com/gallows-bot/internal/httpapi"
	"example.com/gallows-bot/internal/migrate"
	"example.com/gallows-bot/internal/ranker"
	"example.com/gallows-bot/internal/store"
)

type App struct {
	cfg config.Config
	log zerolog.Logger

	corpus   *corpus.Corpus
	player   *game.Player
	results  store.Results
	sessions game.SessionStore

	db  *pgxpool.Pool
	rdb *redis.Client

	srv *http.Server
}

type Options struct {
	Out     io.Writer      // verbose output; defaults to os.Stdout
	Corpus  *corpus.Corpus // preloaded corpus; read from cfg.Corpus.Path when nil
	Service game.Service   // defaults to an HTTP client for cfg.Service.URL
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger, opts Options) (*App, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	a := &App{cfg: cfg, log: log}

	// --- Corpus ---
	a.corpus = opts.Corpus
	if a.corpus == nil {
		c, err := corpus.Load(cfg.Corpus.Path)
		if err != nil {
			return nil, err
		}
		a.corpus = c
	}
	log.Info().Int("words", a.corpus.Len()).Msg("corpus loaded")

	// --- Game service ---
	svc := opts.Service
	if svc == nil {
		c, err := gallows.New(cfg.Service.URL, gallows.Options{
			Timeout: cfg.Service.Timeout,
			Retries: cfg.Service.Retries,
			Backoff: cfg.Service.RetryBackoff,
			Log:     log,
		})
		if err != nil {
			return nil, err
		}
		svc = c
	}

	if err := a.openStores(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	// --- Observers ---
	var observers game.Observers
	if cfg.Play.Verbose {
		observers = append(observers, game.NewPrinter(opts.Out))
	}
	if cfg.HTTP.Addr != "" {
		hub := httpapi.NewHub(log)
		observers = append(observers, hub)

		api := httpapi.NewServer(a.results, a.sessions, hub, log)
		a.srv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           api.Routes(),
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
		}
	}

	a.player = game.NewPlayer(a.corpus, svc, game.Options{
		Sessions: a.sessions,
		Observer: observers,
		Log:      log,
	})
	return a, nil
}

func (a *App) openStores(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// --- Redis ---
	if a.cfg.Redis.Addr != "" {
		a.rdb = redis.NewClient(&redis.Options{
			Addr: a.cfg.Redis.Addr,
			DB:   a.cfg.Redis.DB,
		})
		if err := a.rdb.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("redis ping (%s db=%d): %w", a.cfg.Redis.Addr, a.cfg.Redis.DB, err)
		}
		a.sessions = game.NewRedisSessionStore(a.rdb, a.cfg.Redis.SessionTTL)
	} else {
		a.sessions = game.NewInMemorySessionStore()
	}

	// --- Postgres ---
	if a.cfg.Postgres.URL != "" {
		if a.cfg.Postgres.RunMigrations {
			if err := migrate.Up(a.cfg.Postgres.URL, a.log); err != nil {
				return err
			}
		}
		pool, err := pgxpool.New(ctx, a.cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("pgxpool: %w", err)
		}
		a.db = pool
		if err := pool.Ping(pingCtx); err != nil {
			return fmt.Errorf("postgres ping: %w", err)
		}
		a.results = store.NewResultStore(pool)
	} else {
		a.results = store.NewMemoryResultStore()
	}
	return nil
}

// Results exposes the result store (useful for tests and the final summary).
func (a *App) Results() store.Results { return a.results }

// Run plays games until the configured count is reached or ctx is done,
// serving the status API alongside when enabled.
func (a *App) Run(ctx context.Context) error {
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)

	if a.srv != nil {
		a.log.Info().Str("addr", a.cfg.HTTP.Addr).Msg("status server starting")

		g.Go(func() error {
			err := a.srv.ListenAndServe()
			if err == nil || errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
			defer cancel()
			a.log.Info().Msg("status server shutting down")
			_ = a.srv.Shutdown(shutdownCtx)
			return nil
		})
	}

	g.Go(func() error {
		defer stop()
		return a.playGames(gctx)
	})

	err := g.Wait()
	a.logSummary()
	_ = a.Close()
	return err
}

// Resume finishes a stored session before the regular games start.
func (a *App) Resume(ctx context.Context, sessionID string) error {
	res, err := a.player.Resume(ctx, sessionID)
	if err != nil {
		return err
	}
	a.record(ctx, res)
	return nil
}

func (a *App) playGames(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Play.Parallel)

	for n := 1; a.cfg.Play.Games == 0 || n <= a.cfg.Play.Games; n++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			a.playOne(gctx, n)
			return nil
		})
	}
	return g.Wait()
}

// playOne plays a single game. Failures end that game only.
func (a *App) playOne(ctx context.Context, n int) {
	res, err := a.player.Play(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		ev := a.log.Error().Err(err).Int("game", n).Str("session", res.SessionID)
		switch {
		case errors.Is(err, ranker.ErrNoCandidates):
			ev.Str("kind", "no_candidates")
		case errors.Is(err, gallows.ErrService):
			ev.Str("kind", "service")
		}
		ev.Msg("game aborted")

		// keep a dead service from being hammered in a tight loop
		select {
		case <-ctx.Done():
		case <-time.After(a.cfg.Service.RetryBackoff):
		}
		return
	}
	a.record(ctx, res)
}

func (a *App) record(ctx context.Context, res game.Result) {
	if err := a.results.Record(ctx, res); err != nil {
		a.log.Warn().Err(err).Str("session", res.SessionID).Msg("record result")
	}
}

func (a *App) logSummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sum, err := a.results.Summary(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("load summary")
		return
	}
	a.log.Info().
		Int("played", sum.Played).
		Int("won", sum.Won).
		Int("lost", sum.Lost).
		Float64("win_rate", sum.WinRate).
		Msg("games summary")
}

func (a *App) Close() error {
	// best-effort
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
		a.rdb = nil
	}
	return nil
}
