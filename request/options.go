package request

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"resty.dev/v3"
)

// ClientOption configures an HTTPClient at construction time.
type ClientOption func(*clientOptions)

type clientOptions struct {
	Logger          resty.Logger
	Timeout         time.Duration
	FollowRedirects bool
	MaxRedirects    int
	Proxy           string
	TLSClientConfig *tls.Config
	Transport       http.RoundTripper
	BaseURL         string
	Jar             http.CookieJar
}

func WithTransport(transport http.RoundTripper) ClientOption {
	return func(o *clientOptions) { o.Transport = transport }
}

func WithFollowRedirects(followRedirects bool, maxRedirects int) ClientOption {
	return func(o *clientOptions) {
		o.FollowRedirects = followRedirects
		o.MaxRedirects = maxRedirects
	}
}

func WithLogger(logger resty.Logger) ClientOption {
	return func(o *clientOptions) { o.Logger = logger }
}

func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) { o.BaseURL = baseURL }
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) { o.Timeout = timeout }
}

func WithCookieJar(jar http.CookieJar) ClientOption {
	return func(o *clientOptions) { o.Jar = jar }
}

func WithTLSClientConfig(config *tls.Config) ClientOption {
	return func(o *clientOptions) { o.TLSClientConfig = config }
}

func WithProxy(proxy string) ClientOption {
	return func(o *clientOptions) { o.Proxy = proxy }
}

func applyOptions(opts ...ClientOption) *clientOptions {
	options := &clientOptions{
		Timeout:         20 * time.Second,
		FollowRedirects: true,
		MaxRedirects:    21,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Options carries the per-request configuration for a single Get/Post call.
type Options struct {
	Headers http.Header
	Cookies []*http.Cookie
	Query   url.Values
	// Body is the request payload: a string, []byte, or io.Reader.
	Body any
}
