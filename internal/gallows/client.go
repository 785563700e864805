// Package gallows talks to the remote hangman service.
package gallows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"example.com/gallows-bot/internal/game"
)

// ErrService matches every failure to get a usable reply from the service.
var ErrService = errors.New("gallows service error")

// ServiceError is returned once all attempts for a call have failed.
type ServiceError struct {
	Op       string // start|guess
	Attempts int
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("gallows %s failed after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *ServiceError) Unwrap() []error { return []error{ErrService, e.Err} }

type Options struct {
	Timeout    time.Duration // per request; ignored when HTTPClient is set
	Retries    int           // attempts per call, at least 1
	Backoff    time.Duration // grows linearly with the attempt number
	HTTPClient *http.Client
	Log        zerolog.Logger
}

type Client struct {
	base    *url.URL
	http    *http.Client
	retries int
	backoff time.Duration
	log     zerolog.Logger
}

var _ game.Service = (*Client)(nil)

// New builds a client for the endpoint at rawURL. The URL may carry its own
// query parameters; they are kept on every request.
func New(rawURL string, opts Options) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("gallows: parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("gallows: url %q is not absolute", rawURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}

	return &Client{
		base:    u,
		http:    hc,
		retries: opts.Retries,
		backoff: opts.Backoff,
		log:     opts.Log,
	}, nil
}

// Start opens a new game.
func (c *Client) Start(ctx context.Context) (game.Reply, error) {
	return c.call(ctx, "start", nil)
}

// Guess submits one letter for the game identified by token.
func (c *Client) Guess(ctx context.Context, token string, letter byte) (game.Reply, error) {
	return c.call(ctx, "guess", url.Values{
		"token": {token},
		"guess": {string(letter)},
	})
}

func (c *Client) call(ctx context.Context, op string, params url.Values) (game.Reply, error) {
	target := c.url(params)

	var (
		reply    game.Reply
		attempts int
	)
	err := retry.Do(ctx, c.policy(), func(ctx context.Context) error {
		attempts++
		r, err := c.get(ctx, target)
		if err == nil && op == "start" && r.Token == "" {
			err = errors.New("reply has no token")
		}
		if err == nil {
			reply = r
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Str("op", op).Int("attempt", attempts).Msg("gallows call failed")
		return retry.RetryableError(err)
	})
	if err != nil {
		return game.Reply{}, &ServiceError{Op: op, Attempts: attempts, Err: err}
	}
	return reply, nil
}

// policy allows c.retries attempts in total, waiting backoff, 2*backoff, ...
// between them. Backoffs are stateful, so each call gets its own.
func (c *Client) policy() retry.Backoff {
	var b retry.Backoff = retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	if c.backoff > 0 {
		b = retry.NewLinear(c.backoff)
	}
	return retry.WithMaxRetries(uint64(c.retries-1), b)
}

func (c *Client) get(ctx context.Context, target string) (game.Reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return game.Reply{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return game.Reply{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return game.Reply{}, fmt.Errorf("unexpected status %d: %q", resp.StatusCode, body)
	}

	var reply game.Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return game.Reply{}, fmt.Errorf("decode reply: %w", err)
	}
	if !reply.Status.Valid() {
		return game.Reply{}, fmt.Errorf("unknown status %q", reply.Status)
	}
	return reply, nil
}

func (c *Client) url(params url.Values) string {
	u := *c.base
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String()
}
