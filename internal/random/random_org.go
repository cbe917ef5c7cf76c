package random

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// maxBodyBytes bounds how much of the upstream response is read.
const maxBodyBytes = 64

var (
	decimalZero = decimal.NewFromInt(0)
	decimalOne  = decimal.NewFromInt(1)
)

// RandomOrg fetches one decimal fraction per draw from random.org (or any
// endpoint returning a plain-text decimal). No retries: a failed call fails
// the bout.
type RandomOrg struct {
	url    string
	client *http.Client
}

// RandomOrgOptions configures a RandomOrg source.
type RandomOrgOptions struct {
	URL     string
	Timeout time.Duration
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// NewRandomOrg builds a RandomOrg source.
func NewRandomOrg(opts RandomOrgOptions) *RandomOrg {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &RandomOrg{url: opts.URL, client: client}
}

func (r *RandomOrg) Next(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, fmt.Errorf("%w: request to %s timed out: %w", ErrTransport, r.url, err)
		}
		return 0, fmt.Errorf("%w: request to %s failed: %w", ErrTransport, r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: unexpected status %d from %s", ErrTransport, resp.StatusCode, r.url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return 0, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	if len(body) > maxBodyBytes {
		return 0, fmt.Errorf("%w: response from %s exceeds %d bytes", ErrMalformed, r.url, maxBodyBytes)
	}
	return ParseFraction(string(body))
}

// ParseFraction parses a plain-text decimal in [0, 1].
func ParseFraction(raw string) (float64, error) {
	text := strings.TrimSpace(raw)
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, text)
	}
	if d.LessThan(decimalZero) || d.GreaterThan(decimalOne) {
		return 0, fmt.Errorf("%w: %s is outside [0, 1]", ErrMalformed, text)
	}
	return d.InexactFloat64(), nil
}
