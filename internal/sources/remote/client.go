// Package remote fetches the published prompt catalog: an index document
// listing categories and one prompt file per category.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/MrSnakeDoc/promptvault/internal/logger"
	"github.com/MrSnakeDoc/promptvault/internal/utils"
	"github.com/MrSnakeDoc/promptvault/internal/version"
)

const (
	// maxBodyBytes bounds how much of a remote document is read.
	maxBodyBytes = 10 << 20
	drainLimit   = 64 << 10
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrCircuitOpen      = errors.New("remote catalog temporarily unavailable")
)

// Options configures a Client.
type Options struct {
	IndexURL    string
	BaseURL     string
	Timeout     time.Duration
	MaxFailures int           // consecutive failures before the breaker opens
	OpenPeriod  time.Duration // time the breaker stays open

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client performs the HTTP GETs of the remote catalog behind a circuit
// breaker, so a dead source fails fast instead of holding up every
// category fetch for a full timeout.
type Client struct {
	http     *http.Client
	indexURL string
	baseURL  string
	cb       *gobreaker.CircuitBreaker
	log      logger.Logger
}

// NewClient builds a Client from opts.
func NewClient(opts Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenPeriod <= 0 {
		opts.OpenPeriod = time.Minute
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = newHTTPClient(opts.Timeout)
	}

	maxFailures := uint32(opts.MaxFailures)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "remote-catalog",
		MaxRequests: 1,
		Timeout:     opts.OpenPeriod,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// a cancelled refresh says nothing about the remote
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Client{
		http:     hc,
		indexURL: opts.IndexURL,
		baseURL:  opts.BaseURL,
		cb:       cb,
		log:      log,
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   8,
			ForceAttemptHTTP2:     true,
		},
	}
}

// BaseURL returns the prefix used for relative category paths.
func (c *Client) BaseURL() string { return c.baseURL }

// BreakerState reports the circuit breaker state ("closed", "half-open", "open").
func (c *Client) BreakerState() string { return c.cb.State().String() }

// FetchIndex downloads and decodes the catalog index.
func (c *Client) FetchIndex(ctx context.Context) (*IndexDocument, error) {
	body, err := c.get(ctx, c.indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}
	var doc IndexDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return &doc, nil
}

// FetchPrompts downloads a category file. Decoding is tolerant: a document
// in no known shape yields an empty list, not an error.
func (c *Client) FetchPrompts(ctx context.Context, url string) ([]RemotePrompt, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	prompts, shape := decodePrompts(body)
	c.log.Debug("decoded category file",
		logger.String("url", url),
		logger.String("shape", shape),
		logger.Int("prompts", len(prompts)),
	)
	return prompts, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", version.String())

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer utils.DrainClose(resp.Body, drainLimit)

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}
