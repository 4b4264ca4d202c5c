// Package webclient implements spec.md §4.1's web client contract: GET
// returning bytes, final URL, and status; transparent gzip; a bounded
// retry policy; separate connect/read timeouts; optional inter-request
// delay with jitter; optional proxy.
//
// The fetch engine itself is a github.com/gocolly/colly/v2 Collector,
// following the construction pattern in
// internal/crawler/collector.go's NewCrawler (colly.NewCollector with
// functional options, c.Limit(&colly.LimitRule{...}) for rate limiting).
// colly.AllowURLRevisit is mandatory here: this package's caller (the
// recursion controller in internal/discover) is the sole authority on
// which URLs get re-fetched — colly's own visited-URL set must not
// silently swallow a legitimate re-fetch.
package webclient

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// retryableStatus is the recognised retryable status set from spec.md §4.1.
var retryableStatus = map[int]struct{}{
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

const maxAttempts = 3

// Response is the outcome of one Get call.
type Response struct {
	OK         bool
	FinalURL   string
	StatusCode int
	Header     http.Header
	Body       []byte

	Message   string
	Retryable bool
}

// Client is the contract named in spec.md §6: minimum get(url) plus the
// final-URL accessor (folded into Response here since Go returns values,
// not stateful response objects).
type Client interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// Option configures a CollyClient.
type Option func(*CollyClient)

// WithConnectTimeout sets the dial (connect) timeout. Default 9.05s
// per spec.md §4.1.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *CollyClient) { c.connectTimeout = d }
}

// WithReadTimeout sets the overall per-request timeout. Default 60s.
func WithReadTimeout(d time.Duration) Option {
	return func(c *CollyClient) { c.readTimeout = d }
}

// WithUserAgent sets the User-Agent header colly sends.
func WithUserAgent(ua string) Option {
	return func(c *CollyClient) { c.userAgent = ua }
}

// WithDelay configures a fixed inter-request delay and an optional
// uniform jitter added on top, mirroring colly.LimitRule's Delay and
// RandomDelay fields as used in internal/crawler/collector.go.
func WithDelay(delay, jitter time.Duration) Option {
	return func(c *CollyClient) { c.delay, c.jitter = delay, jitter }
}

// WithProxy routes requests through the given proxy URL.
func WithProxy(proxyURL string) Option {
	return func(c *CollyClient) { c.proxyURL = proxyURL }
}

// WithLogger attaches a structured logger; decompression failures and
// exhausted retries are logged at Warn.
func WithLogger(logger *zap.Logger) Option {
	return func(c *CollyClient) { c.logger = logger }
}

// CollyClient is the default Client implementation.
type CollyClient struct {
	connectTimeout time.Duration
	readTimeout    time.Duration
	userAgent      string
	delay, jitter  time.Duration
	proxyURL       string
	logger         *zap.Logger

	collector *colly.Collector
}

// NewCollyClient builds a Client backed by one colly.Collector configured
// per the supplied options.
func NewCollyClient(opts ...Option) (*CollyClient, error) {
	c := &CollyClient{
		connectTimeout: 9050 * time.Millisecond,
		readTimeout:    60 * time.Second,
		userAgent:      "sitemaptree/usp (+https://github.com/romangod6/sitemaptree)",
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.collector = colly.NewCollector(
		colly.UserAgent(c.userAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.collector.SetRequestTimeout(c.readTimeout)

	dialer := &net.Dialer{Timeout: c.connectTimeout}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: c.connectTimeout,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: false},
	}
	c.collector.WithTransport(transport)

	if c.delay > 0 || c.jitter > 0 {
		if err := c.collector.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Delay:       c.delay,
			RandomDelay: c.jitter,
			Parallelism: 1,
		}); err != nil {
			return nil, fmt.Errorf("webclient: configure rate limit: %w", err)
		}
	}

	if c.proxyURL != "" {
		if err := c.collector.SetProxy(c.proxyURL); err != nil {
			return nil, fmt.Errorf("webclient: configure proxy: %w", err)
		}
	}

	return c, nil
}

// Get performs the fetch, following spec.md §4.1's retry policy: up to
// maxAttempts total tries on the recognised retryable status set or a
// network error, decompressing gzip bodies transparently.
func (c *CollyClient) Get(ctx context.Context, rawURL string) (*Response, error) {
	var lastResp *Response
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, fetchErr := c.doFetch(rawURL)
		if fetchErr == nil && resp.OK {
			return resp, nil
		}

		lastResp, lastErr = resp, fetchErr
		if !isRetryable(resp, fetchErr) || attempt == maxAttempts {
			break
		}

		c.logger.Debug("retrying sitemap fetch",
			zap.String("url", rawURL), zap.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			return &Response{OK: false, Message: ctx.Err().Error()}, nil
		case <-time.After(backoff(attempt)):
		}
	}

	if isRetryable(lastResp, lastErr) {
		c.logger.Warn("giving up on sitemap fetch after retries",
			zap.String("url", rawURL), zap.Int("attempts", maxAttempts))
	}
	if lastResp != nil {
		return lastResp, nil
	}
	return &Response{OK: false, Message: lastErr.Error(), Retryable: true}, nil
}

func (c *CollyClient) doFetch(rawURL string) (*Response, error) {
	var (
		result   *Response
		visitErr error
	)

	col := c.collector.Clone()
	col.OnResponse(func(r *colly.Response) {
		body, _ := maybeGunzip(r.Body, r.Headers, c.logger)
		header := http.Header{}
		if r.Headers != nil {
			header = *r.Headers
		}
		result = &Response{
			OK:         true,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Header:     header,
			Body:       body,
		}
		if _, retryable := retryableStatus[r.StatusCode]; retryable {
			result.OK = false
			result.Retryable = true
			result.Message = fmt.Sprintf("retryable HTTP status %d", r.StatusCode)
		} else if r.StatusCode >= 400 {
			result.OK = false
			result.Message = fmt.Sprintf("HTTP status %d", r.StatusCode)
		}
	})
	col.OnError(func(r *colly.Response, err error) {
		visitErr = err
		status := 0
		finalURL := ""
		if r != nil {
			status = r.StatusCode
			if r.Request != nil {
				finalURL = r.Request.URL.String()
			}
		}
		result = &Response{
			OK:         false,
			StatusCode: status,
			FinalURL:   finalURL,
			Message:    err.Error(),
			Retryable:  status == 0 || isRetryableStatusCode(status),
		}
	})

	if err := col.Visit(rawURL); err != nil && result == nil {
		return &Response{OK: false, Message: err.Error(), Retryable: true}, err
	}
	if result == nil {
		return &Response{OK: false, Message: "no response received", Retryable: true}, visitErr
	}
	return result, nil
}

func isRetryableStatusCode(status int) bool {
	_, ok := retryableStatus[status]
	return ok
}

func isRetryable(resp *Response, err error) bool {
	if resp != nil {
		return resp.Retryable
	}
	return err != nil
}

func backoff(attempt int) time.Duration {
	base := time.Duration(attempt) * 200 * time.Millisecond
	return base + time.Duration(rand.Intn(100))*time.Millisecond
}

// maybeGunzip transparently decompresses a gzip body per spec.md §4.1: a
// gzip content signature or Content-Encoding triggers decompression; a
// failure is logged at Warn here, reported through decompressFailed, and
// the original bytes pass through unchanged.
func maybeGunzip(body []byte, header *http.Header, logger *zap.Logger) (out []byte, decompressFailed bool) {
	looksGzip := len(body) >= 2 && body[0] == 0x1f && body[1] == 0x8b
	encodingGzip := header != nil && header.Get("Content-Encoding") == "gzip"
	if !looksGzip && !encodingGzip {
		return body, false
	}

	r, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		logger.Warn("gzip decompression failed, passing through original bytes", zap.Error(err))
		return body, true
	}
	defer r.Close()

	decoded, err := io.ReadAll(r)
	if err != nil {
		logger.Warn("gzip decompression failed, passing through original bytes", zap.Error(err))
		return body, true
	}
	return decoded, false
}
