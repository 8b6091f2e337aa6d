// Package apiclient is the single path every call to the backend API takes.
// It adds the auth token header read from cookie storage and, when a request
// fails, notifies the user before handing the failure back to the caller.
package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/moxc-web/internal/app/notify"
	"github.com/FACorreiaa/moxc-web/internal/app/observability/metrics"
)

const DefaultHeaderName = "token"

// Client sends requests relative to a fixed base URL.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
	notifier   notify.Notifier
	headerName string
	lang       language.Tag
	logger     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithHeaderName sets the request header the token travels in.
func WithHeaderName(name string) Option {
	return func(c *Client) { c.headerName = name }
}

// WithLanguage selects the language of the default failure message.
func WithLanguage(tag language.Tag) Option {
	return func(c *Client) { c.lang = tag }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing base URL %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		tokens:     NoToken(),
		notifier:   notify.LogNotifier{},
		headerName: DefaultHeaderName,
		lang:       language.Chinese,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// With returns a copy of c with opts applied. Page handlers use it to bind
// the browser's cookies and session notifier to a shared client.
func (c *Client) With(opts ...Option) *Client {
	cp := *c
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Response is the backend's answer, returned as received.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "decoding response body")
	}
	return nil
}

// Do sends exactly one request. On a 2xx answer the response is returned
// unchanged. Any other outcome notifies the user and returns the error.
func (c *Client) Do(ctx context.Context, method, path string, body Body) (*Response, error) {
	start := time.Now()
	resp, err := c.do(ctx, method, path, body)

	m := metrics.Get()
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.String("status", statusLabel(resp, err)),
	)
	m.APIRequestsTotal.Add(ctx, 1, attrs)
	m.APIRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		m.APIErrorsTotal.Add(ctx, 1, attrs)
		c.fail(ctx, method, path, err)
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body Body) (*Response, error) {
	if body == nil {
		body = NoBody()
	}

	payload, err := body.reader()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), payload)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s %s", method, path)
	}
	if ct := body.ContentType(); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	if token := c.tokens.Token(ctx); token != "" {
		req.Header.Set(c.headerName, token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s %s response", method, path)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Body:       data,
		}
	}

	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: data}, nil
}

func (c *Client) fail(ctx context.Context, method, path string, err error) {
	msg := err.Error()
	if msg == "" {
		msg = notify.DefaultMessage(c.lang)
	}

	c.logger.Warn("API request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Error(err))

	c.notifier.Notify(ctx, notify.Notification{
		Level:   notify.LevelError,
		Message: msg,
	})
}

// resolve joins the endpoint path onto the base URL's path, so a base of
// http://host/api and a path of /test/submit yield http://host/api/test/submit.
func (c *Client) resolve(path string) string {
	u := *c.baseURL
	rel, err := url.Parse(path)
	if err != nil {
		u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
		return u.String()
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(rel.Path, "/")
	u.RawPath = ""
	if rel.RawPath != "" {
		u.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + "/" + strings.TrimLeft(rel.RawPath, "/")
	}
	u.RawQuery = rel.RawQuery
	return u.String()
}

func statusLabel(resp *Response, err error) string {
	if resp != nil {
		return strconv.Itoa(resp.StatusCode)
	}
	var se *StatusError
	if errors.As(err, &se) {
		return strconv.Itoa(se.StatusCode)
	}
	return "error"
}
