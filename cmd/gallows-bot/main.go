package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"example.com/gallows-bot/internal/app"
	"example.com/gallows-bot/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	verbose  bool
	games    int
	parallel int
	corpus   string
	url      string
	resume   string
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:          "gallows-bot [-v]",
		Short:        "Play hangman against the gallows service using corpus letter frequencies",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, f, &cfg); err != nil {
				return err
			}

			logger := newLogger(cfg)
			log.Logger = logger

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, logger, app.Options{Out: cmd.OutOrStdout()})
			if err != nil {
				log.Error().Err(err).Msg("failed to start")
				return err
			}

			if f.resume != "" {
				if err := a.Resume(ctx, f.resume); err != nil {
					log.Warn().Err(err).Str("session", f.resume).Msg("resume failed")
				}
			}
			return a.Run(ctx)
		},
	}

	fs := cmd.Flags()
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "print per-round diagnostics and game outcomes")
	fs.IntVar(&f.games, "games", 0, "number of games to play, 0 plays until interrupted")
	fs.IntVar(&f.parallel, "parallel", 1, "number of games played at the same time")
	fs.StringVar(&f.corpus, "corpus", "", "newline-delimited word list")
	fs.StringVar(&f.url, "url", "", "gallows service endpoint")
	fs.StringVar(&f.resume, "resume", "", "finish a stored session before starting new games")
	return cmd
}

// applyFlags overrides the environment with explicitly set flags.
func applyFlags(cmd *cobra.Command, f flags, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("verbose") {
		cfg.Play.Verbose = f.verbose
	}
	if fs.Changed("games") {
		cfg.Play.Games = f.games
	}
	if fs.Changed("parallel") {
		cfg.Play.Parallel = f.parallel
	}
	if fs.Changed("corpus") {
		cfg.Corpus.Path = f.corpus
	}
	if fs.Changed("url") {
		cfg.Service.URL = f.url
	}
	return cfg.Validate()
}
