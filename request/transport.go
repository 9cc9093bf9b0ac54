package request

import (
	"crypto/tls"
	"net/http"
)

// NewTransport builds the http.RoundTripper used by the polling transport's
// HTTP client. Unlike the wider socket.io ecosystem's request.Transport,
// this one does not attempt HTTP/3 (Alt-Svc) upgrades — that dance exists
// there to cooperate with a QUIC-backed WebTransport transport, which this
// module does not implement (see DESIGN.md).
func NewTransport(tlsClientConfig *tls.Config) http.RoundTripper {
	return &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: tlsClientConfig,
	}
}
