package engine

import (
	"net/url"
	"testing"
)

func TestCreateUriOmitsDefaultPort(t *testing.T) {
	opts := DefaultSocketOptions()
	opts.SetHostname("example.com")
	opts.SetPort("80")
	opts.SetSecure(false)
	opts.SetPath("/engine.io/")

	tr := MakeTransport()
	tr.Construct(nil, opts)

	uri := tr.CreateUri("http", url.Values{"transport": []string{"polling"}})
	if got, want := uri.Host, "example.com"; got != want {
		t.Fatalf("Host = %q, want %q (default port 80 should be omitted)", got, want)
	}
	if got, want := uri.String(), "http://example.com/engine.io/?transport=polling"; got != want {
		t.Fatalf("URI = %q, want %q", got, want)
	}
}

func TestCreateUriKeepsNonDefaultPort(t *testing.T) {
	opts := DefaultSocketOptions()
	opts.SetHostname("example.com")
	opts.SetPort("8080")
	opts.SetSecure(false)
	opts.SetPath("/engine.io/")

	tr := MakeTransport()
	tr.Construct(nil, opts)

	uri := tr.CreateUri("http", nil)
	if got, want := uri.Host, "example.com:8080"; got != want {
		t.Fatalf("Host = %q, want %q", got, want)
	}
}

func TestCreateUriBracketsIPv6Hostname(t *testing.T) {
	opts := DefaultSocketOptions()
	opts.SetHostname("::1")
	opts.SetPort("8080")
	opts.SetSecure(false)
	opts.SetPath("/engine.io/")

	tr := MakeTransport()
	tr.Construct(nil, opts)

	uri := tr.CreateUri("http", nil)
	if got, want := uri.Host, "[::1]:8080"; got != want {
		t.Fatalf("Host = %q, want %q", got, want)
	}
}
