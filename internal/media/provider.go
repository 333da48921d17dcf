// Package media opens playable resources for feed locators. Opening warms the
// asset: the head of the file is fetched so the first frames are local, and the
// duration is resolved from a hint or ffprobe.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"feedplay/internal/player"
)

const (
	defaultPrefetchBytes = 512 << 10
	defaultWarmTimeout   = 30 * time.Second
)

// Config tunes the Provider.
type Config struct {
	// PrefetchBytes is how much of each asset is fetched on open.
	PrefetchBytes int64
	// FFprobeBin enables duration probing when set and no hint is known.
	FFprobeBin string
	// DurationHint returns a known duration for a locator, 0 when unknown.
	DurationHint func(locator string) time.Duration
	// WarmTimeout bounds a shared warm, which outlives any single caller.
	WarmTimeout time.Duration
	HTTPClient  *http.Client
	Logger       *zerolog.Logger
}

func (c Config) withDefaultValues() Config {
	if c.PrefetchBytes <= 0 {
		c.PrefetchBytes = defaultPrefetchBytes
	}
	if c.WarmTimeout <= 0 {
		c.WarmTimeout = defaultWarmTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Logger == nil {
		l := zerolog.Nop()
		c.Logger = &l
	}
	return c
}

// asset is the shared result of warming one locator.
type asset struct {
	head     []byte
	duration time.Duration
}

// Provider implements player.Provider. Concurrent opens of one locator share
// a single warm; every caller still gets its own Clip.
type Provider struct {
	cfg    Config
	group  singleflight.Group
	logger zerolog.Logger
}

var _ player.Provider = (*Provider)(nil)

func NewProvider(cfg Config) *Provider {
	cfg = cfg.withDefaultValues()
	return &Provider{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("module", "media").Logger(),
	}
}

// Open warms locator and returns a new Clip for it. The warm is shared with
// concurrent callers and runs detached from ctx, so a caller giving up does not
// fail the others; ctx only bounds how long this caller waits.
func (p *Provider) Open(ctx context.Context, locator string) (player.Resource, error) {
	ch := p.group.DoChan(locator, func() (any, error) {
		warmCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.WarmTimeout)
		defer cancel()
		return p.warm(warmCtx, locator)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	a := res.Val.(*asset)
	p.logger.Debug().Str("locator", locator).Bool("shared", res.Shared).Int("head", len(a.head)).Dur("duration", a.duration).Msg("opened")
	return newClip(locator, a), nil
}

func (p *Provider) warm(ctx context.Context, locator string) (*asset, error) {
	head, err := p.fetchHead(ctx, locator)
	if err != nil {
		return nil, err
	}
	a := &asset{head: head}
	if p.cfg.DurationHint != nil {
		a.duration = p.cfg.DurationHint(locator)
	}
	if a.duration == 0 && p.cfg.FFprobeBin != "" {
		d, err := Probe(ctx, p.cfg.FFprobeBin, locator)
		if err != nil {
			// playable without a duration; progress and scrub stay disabled
			p.logger.Warn().Err(err).Str("locator", locator).Msg("probe failed")
		} else {
			a.duration = d
		}
	}
	return a, nil
}

func (p *Provider) fetchHead(ctx context.Context, locator string) ([]byte, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return nil, fmt.Errorf("parse locator: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return p.fetchHTTPHead(ctx, locator)
	case "file":
		return readFileHead(u.Path, p.cfg.PrefetchBytes)
	case "":
		return readFileHead(locator, p.cfg.PrefetchBytes)
	default:
		return nil, fmt.Errorf("unsupported locator scheme %q", u.Scheme)
	}
}

func (p *Provider) fetchHTTPHead(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", p.cfg.PrefetchBytes-1))
	resp, err := p.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", locator, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, p.cfg.PrefetchBytes))
}

func readFileHead(path string, n int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, n))
}
