package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config describes all runtime settings for the bot.
//
// Loaded once in main, validated, then passed down explicitly.
type Config struct {
	Env string // dev|stage|prod

	Log struct {
		Level  string
		Format string // text|json
	}

	Service struct {
		URL          string
		Timeout      time.Duration
		Retries      int
		RetryBackoff time.Duration
	}

	Corpus struct {
		Path string
	}

	Play struct {
		Games    int // 0 => play until interrupted
		Parallel int
		Verbose  bool
	}

	Redis struct {
		Addr       string // empty => in-memory session snapshots
		DB         int
		SessionTTL time.Duration
	}

	Postgres struct {
		URL           string // empty => in-memory results
		RunMigrations bool
	}

	HTTP struct {
		Addr              string // empty => no status server
		ReadHeaderTimeout time.Duration
		IdleTimeout       time.Duration
		ShutdownTimeout   time.Duration
	}
}

// LoadFromEnv reads an optional .env file and then the process environment.
func LoadFromEnv() (Config, error) {
	_ = godotenv.Load()

	var c Config

	c.Env = envString("APP_ENV", "dev")
	c.Log.Level = envString("LOG_LEVEL", "info")
	c.Log.Format = envString("LOG_FORMAT", "text")

	c.Service.URL = envString("GALLOWS_URL", "http://gallows.hulu.com/play?code=bot@example.com")
	c.Service.Timeout = envDuration("SERVICE_TIMEOUT", 10*time.Second)
	c.Service.Retries = envInt("SERVICE_RETRIES", 3)
	c.Service.RetryBackoff = envDuration("SERVICE_RETRY_BACKOFF", 500*time.Millisecond)

	c.Corpus.Path = envString("CORPUS_PATH", "wiki-100k.txt")

	c.Play.Games = envInt("PLAY_GAMES", 0)
	c.Play.Parallel = envInt("PLAY_PARALLEL", 1)
	c.Play.Verbose = envBool("VERBOSE", false)

	c.Redis.Addr = envString("REDIS_ADDR", "")
	c.Redis.DB = envInt("REDIS_DB", 0)
	c.Redis.SessionTTL = envDuration("SESSION_TTL", time.Hour)

	c.Postgres.URL = envString("DATABASE_URL", "")
	c.Postgres.RunMigrations = envBool("RUN_MIGRATIONS", true)

	c.HTTP.Addr = envString("HTTP_ADDR", "")
	c.HTTP.ReadHeaderTimeout = envDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second)
	c.HTTP.IdleTimeout = envDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	c.HTTP.ShutdownTimeout = envDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Service.URL == "" {
		return errors.New("GALLOWS_URL is empty")
	}
	u, err := url.Parse(c.Service.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("GALLOWS_URL=%q is not an absolute url", c.Service.URL)
	}
	if c.Service.Timeout <= 0 {
		return errors.New("SERVICE_TIMEOUT must be positive")
	}
	if c.Service.Retries < 1 {
		return fmt.Errorf("SERVICE_RETRIES=%d (want >= 1)", c.Service.Retries)
	}
	if c.Corpus.Path == "" {
		return errors.New("CORPUS_PATH is empty")
	}
	if c.Play.Games < 0 {
		return fmt.Errorf("PLAY_GAMES=%d (want >= 0)", c.Play.Games)
	}
	if c.Play.Parallel < 1 {
		return fmt.Errorf("PLAY_PARALLEL=%d (want >= 1)", c.Play.Parallel)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT=%q (want text|json)", c.Log.Format)
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
