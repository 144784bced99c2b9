package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/AngelCh415/perfdash/internal/utils"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// VendorError is a failed request to an external vendor API.
type VendorError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *VendorError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *VendorError) Unwrap() error { return e.Err }

// Client wraps the raw HTTP client with bounded retries and a request rate
// limit shared by all calls to one vendor.
type Client struct {
	c       HTTPClient
	backoff utils.Backoff
	limiter *rate.Limiter
	log     *slog.Logger
}

type ClientOptions struct {
	MaxRetries int
	RetryBase  time.Duration
	PerSecond  float64
}

func NewClient(c HTTPClient, opts ClientOptions, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if opts.PerSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(opts.PerSecond), 1)
	}
	return &Client{
		c:       c,
		backoff: utils.NewBackoff(opts.RetryBase, opts.MaxRetries),
		limiter: lim,
		log:     log,
	}
}

// stripURL drops the request URL from transport errors; vendor URLs can
// carry access tokens.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// do sends the request built by newReq, retrying transport errors, 429 and
// 5xx. The caller owns the returned response body.
func (c *Client) do(ctx context.Context, source string, newReq func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	var out *http.Response
	err := c.backoff.Do(ctx, func(attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return utils.Permanent(&VendorError{Source: source, Err: err})
		}
		req, err := newReq(ctx)
		if err != nil {
			return utils.Permanent(&VendorError{Source: source, Err: err})
		}
		resp, err := c.c.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return utils.Permanent(&VendorError{Source: source, Err: ctx.Err()})
			}
			c.log.Debug("vendor request failed", slog.String("source", source), slog.Int("attempt", attempt), slog.String("err", stripURL(err).Error()))
			return &VendorError{Source: source, Err: stripURL(err)}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body := readSnippet(resp)
			verr := &VendorError{Source: source, StatusCode: resp.StatusCode, Err: errors.New(body)}
			if retryable(resp.StatusCode) {
				c.log.Debug("vendor request retryable status", slog.String("source", source), slog.Int("attempt", attempt), slog.Int("status", resp.StatusCode))
				return verr
			}
			return utils.Permanent(verr)
		}
		out = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
