// Package loader fetches raw coverage reports from local files or over HTTP.
package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 2
)

// ErrHTTPStatus is returned when a report URL answers with a non-2xx status.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Options configures a Loader.
type Options struct {
	Fs      afero.Fs
	Timeout time.Duration
	Retries int
	Logger  *zap.Logger
	// RetryWait is the initial backoff between HTTP attempts.
	RetryWait time.Duration
}

// Loader reads reports from the filesystem or from http(s) URLs.
type Loader struct {
	fs     afero.Fs
	client *resty.Client
	logger *zap.Logger
}

// New creates a Loader. Zero values in opts fall back to the OS filesystem,
// a 30s timeout and two retries.
func New(opts Options) *Loader {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json, text/plain").
		SetRetryCount(opts.Retries).
		AddRetryCondition(retryCondition)
	if opts.RetryWait > 0 {
		client.SetRetryWaitTime(opts.RetryWait).SetRetryMaxWaitTime(opts.RetryWait * 4)
	}

	return &Loader{fs: opts.Fs, client: client, logger: opts.Logger}
}

// retryCondition retries on network errors and server side failures.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	return r.StatusCode() >= http.StatusInternalServerError || r.StatusCode() == http.StatusTooManyRequests
}

// IsURL reports whether source should be fetched over HTTP.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load returns the raw bytes of a single report.
func (l *Loader) Load(ctx context.Context, source string) ([]byte, error) {
	if IsURL(source) {
		return l.fetch(ctx, source)
	}
	return l.read(source)
}

// LoadAll loads every source concurrently. Results keep the order of
// sources; the first failure cancels the remaining fetches.
func (l *Loader) LoadAll(ctx context.Context, sources []string) ([][]byte, error) {
	results := make([][]byte, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			data, err := l.Load(ctx, src)
			if err != nil {
				return err
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases idle HTTP connections.
func (l *Loader) Close() {
	l.client.GetClient().CloseIdleConnections()
}

func (l *Loader) read(path string) ([]byte, error) {
	l.logger.Debug("reading coverage report", zap.String("path", path))
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	start := time.Now()
	resp, err := l.client.R().SetContext(ctx).Get(source)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source, err)
	}
	if resp.IsError() || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetching %s: %w: %s", source, ErrHTTPStatus, resp.Status())
	}

	l.logger.Debug("fetched coverage report",
		zap.String("url", source),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("elapsed", time.Since(start)))
	return resp.Body(), nil
}
