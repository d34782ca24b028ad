// Package transfer resolves catalog download links and streams their
// content over HTTP with range support.
package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/shelfsync/internal/logger"
	"github.com/glorpus-work/shelfsync/pkg/catalog"
	pkgerrors "github.com/glorpus-work/shelfsync/pkg/errors"
	"github.com/glorpus-work/shelfsync/pkg/model"
)

const (
	// DefaultIdleTimeout bounds how long a request may stay silent.
	DefaultIdleTimeout = 3 * time.Second
	defaultUserAgent   = "shelfsync/1.0"
)

// Options tune a single download.
type Options struct {
	// MaxBytesPerSecond caps the transfer rate. Zero means unlimited.
	MaxBytesPerSecond int64
}

// Client talks to the catalog's download endpoints.
type Client struct {
	baseURL     string
	auth        catalog.Authorizer
	client      *http.Client
	resolver    *http.Client
	idleTimeout time.Duration
	userAgent   string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithIdleTimeout sets the per-request idle timeout.
func WithIdleTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.idleTimeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithTransport replaces the HTTP transport of both internal clients.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.client.Transport = rt
		c.resolver.Transport = rt
	}
}

// NewClient creates a client. Relative entry URLs are resolved against
// baseURL.
func NewClient(baseURL string, auth catalog.Authorizer, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		auth:        auth,
		idleTimeout: DefaultIdleTimeout,
		userAgent:   defaultUserAgent,
		client:      &http.Client{},
		resolver: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.idleTimeout > 0 {
		c.client.Transport = withHeaderTimeout(c.client.Transport, c.idleTimeout)
		c.resolver.Timeout = c.idleTimeout
	}
	return c
}

func withHeaderTimeout(rt http.RoundTripper, d time.Duration) http.RoundTripper {
	if rt != nil {
		return rt
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = d
	return transport
}

// ResolveURL returns the direct download link of entry. ok is false when
// the catalog has no link for it.
func (c *Client) ResolveURL(ctx context.Context, entry model.Entry) (string, bool, error) {
	if strings.HasPrefix(entry.URL(), "/") {
		return c.resolveRedirect(ctx, c.baseURL+entry.URL())
	}
	return c.resolveDownlink(ctx, entry.URL())
}

func (c *Client) resolveRedirect(ctx context.Context, target string) (string, bool, error) {
	req, err := c.newRequest(ctx, http.MethodHead, target)
	if err != nil {
		return "", false, err
	}
	resp, err := c.resolver.Do(req)
	if err != nil {
		return "", false, pkgerrors.Wrapf(pkgerrors.ErrTransport, "HEAD %s: %v", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	location, err := resp.Location()
	if err != nil {
		logger.Debug("No download location returned", logger.Fields{"url": target, "status": resp.StatusCode})
		return "", false, nil
	}
	return location.String(), true, nil
}

func (c *Client) resolveDownlink(ctx context.Context, target string) (string, bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, target)
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.resolver.Do(req)
	if err != nil {
		return "", false, pkgerrors.Wrapf(pkgerrors.ErrTransport, "GET %s: %v", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", false, pkgerrors.Wrapf(pkgerrors.ErrTransport, "GET %s: unexpected status code %d", target, resp.StatusCode)
	}

	var payload struct {
		Downlink string `json:"downlink"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", false, pkgerrors.Wrapf(pkgerrors.ErrTransport, "GET %s: invalid response: %v", target, err)
	}
	if payload.Downlink == "" {
		return "", false, nil
	}
	return payload.Downlink, true, nil
}

// Filename returns the decoded base name of the resolved download link.
func (c *Client) Filename(ctx context.Context, entry model.Entry) (string, bool, error) {
	link, ok, err := c.ResolveURL(ctx, entry)
	if err != nil || !ok {
		return "", false, err
	}
	return FilenameFromURL(link)
}

// FilenameFromURL returns the last path segment of link with percent and
// plus encoding removed.
func FilenameFromURL(link string) (string, bool, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", false, fmt.Errorf("invalid download URL %q: %w", link, err)
	}
	base := path.Base(u.EscapedPath())
	if base == "." || base == "/" {
		return "", false, nil
	}
	name, err := url.QueryUnescape(base)
	if err != nil {
		return "", false, fmt.Errorf("invalid file name %q: %w", base, err)
	}
	return name, true, nil
}

// Download starts a transfer of entry. When startAt is set only the bytes
// from that offset on are requested. onProgress may be nil.
func (c *Client) Download(ctx context.Context, entry model.Entry, onProgress ProgressFunc, startAt *int64, opts Options) (*Stream, error) {
	link, ok, err := c.ResolveURL(ctx, entry)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrNoDownloadURL, "%s", entry.Describe())
	}

	req, err := c.newRequest(ctx, http.MethodGet, link)
	if err != nil {
		return nil, err
	}
	var offset int64
	if startAt != nil {
		offset = *startAt
		req.Header.Set("Range", "bytes="+strconv.FormatInt(offset, 10)+"-")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrTransport, "GET %s: %v", link, err)
	}

	switch {
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		_ = resp.Body.Close()
		return nil, pkgerrors.Wrapf(pkgerrors.ErrRangeNotSatisfiable, "GET %s (offset %d)", link, offset)
	case resp.StatusCode == http.StatusOK && offset > 0:
		// the server ignored the range, appending the body would corrupt the target
		_ = resp.Body.Close()
		return nil, pkgerrors.Wrapf(pkgerrors.ErrRangeNotSatisfiable, "GET %s: range not honored", link)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_ = resp.Body.Close()
		return nil, pkgerrors.Wrapf(pkgerrors.ErrTransport, "GET %s: unexpected status code %d", link, resp.StatusCode)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	logger.Debug("Download started", logger.Fields{"entry": entry.Describe(), "offset": offset, "length": total})

	return NewStream(ctx, resp.Body, offset, total,
		WithProgress(onProgress),
		WithStreamIdleTimeout(c.idleTimeout),
		WithBandwidth(opts.MaxBytesPerSecond),
	), nil
}

func (c *Client) newRequest(ctx context.Context, method, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, http.NoBody)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.auth != nil {
		token, err := c.auth.Authorization(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to get authorization")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}
