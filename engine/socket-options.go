package engine

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"github.com/zishang520/engine.io/v2/types"
)

// PerMessageDeflate configures WebSocket per-message compression.
// Messages smaller than Threshold bytes are sent uncompressed.
type PerMessageDeflate struct {
	Threshold int
}

// SocketOptionsInterface is the configuration surface read by Session and
// every Transport. Value options are pointer-typed fields with a getter
// that returns a sensible default when unset, a raw getter for
// merge-checking, and a setter — mirroring the teacher ecosystem's
// optional-field pattern so that a zero-value SocketOptions is always safe
// to read from. Options whose own zero value means unset (Transports,
// TLSClientConfig, Protocols, PerMessageDeflate, CookieJar, Agent) have
// only a getter and a setter.
type SocketOptionsInterface interface {
	Host() string
	SetHost(string)
	GetRawHost() *string

	Hostname() string
	SetHostname(string)
	GetRawHostname() *string

	Port() string
	SetPort(string)
	GetRawPort() *string

	Secure() bool
	SetSecure(bool)
	GetRawSecure() *bool

	Path() string
	SetPath(string)
	GetRawPath() *string

	Query() url.Values
	SetQuery(url.Values)
	GetRawQuery() *url.Values

	Upgrade() bool
	SetUpgrade(bool)
	GetRawUpgrade() *bool

	RememberUpgrade() bool
	SetRememberUpgrade(bool)
	GetRawRememberUpgrade() *bool

	Transports() *types.Slice[string]
	SetTransports(*types.Slice[string])

	ForceJSONP() bool
	SetForceJSONP(bool)
	GetRawForceJSONP() *bool

	ForceBase64() bool
	SetForceBase64(bool)
	GetRawForceBase64() *bool

	OnlyBinaryUpgrades() bool
	SetOnlyBinaryUpgrades(bool)
	GetRawOnlyBinaryUpgrades() *bool

	TimestampParam() string
	SetTimestampParam(string)
	GetRawTimestampParam() *string

	TimestampRequests() bool
	SetTimestampRequests(bool)
	GetRawTimestampRequests() *bool

	BinaryType() string
	SetBinaryType(string)
	GetRawBinaryType() *string

	RequestTimeout() time.Duration
	SetRequestTimeout(time.Duration)
	GetRawRequestTimeout() *time.Duration

	ExtraHeaders() http.Header
	SetExtraHeaders(http.Header)
	GetRawExtraHeaders() *http.Header

	TLSClientConfig() *tls.Config
	SetTLSClientConfig(*tls.Config)

	Protocols() []string
	SetProtocols([]string)

	PerMessageDeflate() *PerMessageDeflate
	SetPerMessageDeflate(*PerMessageDeflate)

	Proxy() string
	SetProxy(string)
	GetRawProxy() *string

	FollowRedirects() bool
	SetFollowRedirects(bool)
	GetRawFollowRedirects() *bool

	MaxRedirects() int
	SetMaxRedirects(int)
	GetRawMaxRedirects() *int

	CookieJar() http.CookieJar
	SetCookieJar(http.CookieJar)

	Agent() http.RoundTripper
	SetAgent(http.RoundTripper)

	Assign(SocketOptionsInterface) SocketOptionsInterface
}

// SocketOptions is the concrete, pointer-optional-field configuration
// record for a Socket and its transports.
type SocketOptions struct {
	host                *string
	hostname            *string
	port                *string
	secure              *bool
	path                *string
	query               *url.Values
	upgrade             *bool
	rememberUpgrade     *bool
	transports          *types.Slice[string]
	forceJSONP          *bool
	forceBase64         *bool
	onlyBinaryUpgrades  *bool
	timestampParam      *string
	timestampRequests   *bool
	binaryType          *string
	requestTimeout      *time.Duration
	extraHeaders        *http.Header
	tlsClientConfig     *tls.Config
	protocols           []string
	perMessageDeflate   *PerMessageDeflate
	proxy               *string
	followRedirects     *bool
	maxRedirects      *int
	cookieJar         http.CookieJar
	agent             http.RoundTripper
}

// DefaultSocketOptions returns a SocketOptions populated with the same
// defaults the original client used: upgrades enabled, the `t` timestamp
// query parameter name, the normalised "/engine.io/" path.
func DefaultSocketOptions() SocketOptionsInterface {
	o := &SocketOptions{}
	o.SetUpgrade(true)
	o.SetPath("/engine.io/")
	o.SetTimestampParam("t")
	o.SetRequestTimeout(20 * time.Second)
	o.SetMaxRedirects(21)
	o.SetFollowRedirects(true)
	o.SetTransports(types.NewSlice[string]("polling", "websocket"))
	return o
}

func (o *SocketOptions) Host() string {
	if o.host != nil {
		return *o.host
	}
	return ""
}
func (o *SocketOptions) SetHost(v string)    { o.host = &v }
func (o *SocketOptions) GetRawHost() *string { return o.host }

func (o *SocketOptions) Hostname() string {
	if o.hostname != nil {
		return *o.hostname
	}
	return "localhost"
}
func (o *SocketOptions) SetHostname(v string)    { o.hostname = &v }
func (o *SocketOptions) GetRawHostname() *string { return o.hostname }

func (o *SocketOptions) Port() string {
	if o.port != nil {
		return *o.port
	}
	return ""
}
func (o *SocketOptions) SetPort(v string)    { o.port = &v }
func (o *SocketOptions) GetRawPort() *string { return o.port }

func (o *SocketOptions) Secure() bool {
	if o.secure != nil {
		return *o.secure
	}
	return false
}
func (o *SocketOptions) SetSecure(v bool)    { o.secure = &v }
func (o *SocketOptions) GetRawSecure() *bool { return o.secure }

func (o *SocketOptions) Path() string {
	if o.path != nil {
		return *o.path
	}
	return "/engine.io/"
}
func (o *SocketOptions) SetPath(v string) {
	if len(v) == 0 || v[len(v)-1] != '/' {
		v += "/"
	}
	o.path = &v
}
func (o *SocketOptions) GetRawPath() *string { return o.path }

func (o *SocketOptions) Query() url.Values {
	if o.query != nil {
		return *o.query
	}
	return url.Values{}
}
func (o *SocketOptions) SetQuery(v url.Values)    { o.query = &v }
func (o *SocketOptions) GetRawQuery() *url.Values { return o.query }

func (o *SocketOptions) Upgrade() bool {
	if o.upgrade != nil {
		return *o.upgrade
	}
	return true
}
func (o *SocketOptions) SetUpgrade(v bool)    { o.upgrade = &v }
func (o *SocketOptions) GetRawUpgrade() *bool { return o.upgrade }

func (o *SocketOptions) RememberUpgrade() bool {
	if o.rememberUpgrade != nil {
		return *o.rememberUpgrade
	}
	return false
}
func (o *SocketOptions) SetRememberUpgrade(v bool)    { o.rememberUpgrade = &v }
func (o *SocketOptions) GetRawRememberUpgrade() *bool { return o.rememberUpgrade }

func (o *SocketOptions) Transports() *types.Slice[string] {
	if o.transports == nil {
		o.transports = types.NewSlice[string]()
	}
	return o.transports
}
func (o *SocketOptions) SetTransports(v *types.Slice[string]) { o.transports = v }

func (o *SocketOptions) ForceJSONP() bool {
	if o.forceJSONP != nil {
		return *o.forceJSONP
	}
	return false
}
func (o *SocketOptions) SetForceJSONP(v bool)    { o.forceJSONP = &v }
func (o *SocketOptions) GetRawForceJSONP() *bool { return o.forceJSONP }

func (o *SocketOptions) ForceBase64() bool {
	if o.forceBase64 != nil {
		return *o.forceBase64
	}
	return false
}
func (o *SocketOptions) SetForceBase64(v bool)    { o.forceBase64 = &v }
func (o *SocketOptions) GetRawForceBase64() *bool { return o.forceBase64 }

func (o *SocketOptions) OnlyBinaryUpgrades() bool {
	if o.onlyBinaryUpgrades != nil {
		return *o.onlyBinaryUpgrades
	}
	return false
}
func (o *SocketOptions) SetOnlyBinaryUpgrades(v bool)    { o.onlyBinaryUpgrades = &v }
func (o *SocketOptions) GetRawOnlyBinaryUpgrades() *bool { return o.onlyBinaryUpgrades }

func (o *SocketOptions) TimestampParam() string {
	if o.timestampParam != nil {
		return *o.timestampParam
	}
	return "t"
}
func (o *SocketOptions) SetTimestampParam(v string)    { o.timestampParam = &v }
func (o *SocketOptions) GetRawTimestampParam() *string { return o.timestampParam }

func (o *SocketOptions) TimestampRequests() bool {
	if o.timestampRequests != nil {
		return *o.timestampRequests
	}
	return false
}
func (o *SocketOptions) SetTimestampRequests(v bool)    { o.timestampRequests = &v }
func (o *SocketOptions) GetRawTimestampRequests() *bool { return o.timestampRequests }

func (o *SocketOptions) BinaryType() string {
	if o.binaryType != nil {
		return *o.binaryType
	}
	return ""
}
func (o *SocketOptions) SetBinaryType(v string)    { o.binaryType = &v }
func (o *SocketOptions) GetRawBinaryType() *string { return o.binaryType }

func (o *SocketOptions) RequestTimeout() time.Duration {
	if o.requestTimeout != nil {
		return *o.requestTimeout
	}
	return 20 * time.Second
}
func (o *SocketOptions) SetRequestTimeout(v time.Duration)    { o.requestTimeout = &v }
func (o *SocketOptions) GetRawRequestTimeout() *time.Duration { return o.requestTimeout }

func (o *SocketOptions) ExtraHeaders() http.Header {
	if o.extraHeaders != nil {
		return *o.extraHeaders
	}
	return http.Header{}
}
func (o *SocketOptions) SetExtraHeaders(v http.Header)    { o.extraHeaders = &v }
func (o *SocketOptions) GetRawExtraHeaders() *http.Header { return o.extraHeaders }

func (o *SocketOptions) TLSClientConfig() *tls.Config     { return o.tlsClientConfig }
func (o *SocketOptions) SetTLSClientConfig(v *tls.Config) { o.tlsClientConfig = v }

func (o *SocketOptions) Protocols() []string      { return o.protocols }
func (o *SocketOptions) SetProtocols(v []string)  { o.protocols = v }

func (o *SocketOptions) PerMessageDeflate() *PerMessageDeflate    { return o.perMessageDeflate }
func (o *SocketOptions) SetPerMessageDeflate(v *PerMessageDeflate) { o.perMessageDeflate = v }

func (o *SocketOptions) Proxy() string {
	if o.proxy != nil {
		return *o.proxy
	}
	return ""
}
func (o *SocketOptions) SetProxy(v string)    { o.proxy = &v }
func (o *SocketOptions) GetRawProxy() *string { return o.proxy }

func (o *SocketOptions) FollowRedirects() bool {
	if o.followRedirects != nil {
		return *o.followRedirects
	}
	return true
}
func (o *SocketOptions) SetFollowRedirects(v bool)    { o.followRedirects = &v }
func (o *SocketOptions) GetRawFollowRedirects() *bool { return o.followRedirects }

func (o *SocketOptions) MaxRedirects() int {
	if o.maxRedirects != nil {
		return *o.maxRedirects
	}
	return 21
}
func (o *SocketOptions) SetMaxRedirects(v int)    { o.maxRedirects = &v }
func (o *SocketOptions) GetRawMaxRedirects() *int { return o.maxRedirects }

func (o *SocketOptions) CookieJar() http.CookieJar    { return o.cookieJar }
func (o *SocketOptions) SetCookieJar(v http.CookieJar) { o.cookieJar = v }

// Agent is a passthrough http.RoundTripper, the Go analogue of the
// original client's HTTP(S) agent option: when set, it replaces the
// polling transport's default http.Transport wholesale (proxying, dial
// pooling, TLS — all of it becomes the caller's responsibility).
func (o *SocketOptions) Agent() http.RoundTripper    { return o.agent }
func (o *SocketOptions) SetAgent(v http.RoundTripper) { o.agent = v }

// Assign merges every option set on other into o, returning o. Fields left
// unset on other (nil pointer) are left untouched on o.
func (o *SocketOptions) Assign(other SocketOptionsInterface) SocketOptionsInterface {
	if other == nil {
		return o
	}
	if v := other.GetRawHost(); v != nil {
		o.SetHost(*v)
	}
	if v := other.GetRawHostname(); v != nil {
		o.SetHostname(*v)
	}
	if v := other.GetRawPort(); v != nil {
		o.SetPort(*v)
	}
	if v := other.GetRawSecure(); v != nil {
		o.SetSecure(*v)
	}
	if v := other.GetRawPath(); v != nil {
		o.SetPath(*v)
	}
	if v := other.GetRawQuery(); v != nil {
		o.SetQuery(*v)
	}
	if v := other.GetRawUpgrade(); v != nil {
		o.SetUpgrade(*v)
	}
	if v := other.GetRawRememberUpgrade(); v != nil {
		o.SetRememberUpgrade(*v)
	}
	if other.Transports() != nil && other.Transports().Len() > 0 {
		o.SetTransports(other.Transports())
	}
	if v := other.GetRawForceJSONP(); v != nil {
		o.SetForceJSONP(*v)
	}
	if v := other.GetRawForceBase64(); v != nil {
		o.SetForceBase64(*v)
	}
	if v := other.GetRawOnlyBinaryUpgrades(); v != nil {
		o.SetOnlyBinaryUpgrades(*v)
	}
	if v := other.GetRawTimestampParam(); v != nil {
		o.SetTimestampParam(*v)
	}
	if v := other.GetRawTimestampRequests(); v != nil {
		o.SetTimestampRequests(*v)
	}
	if v := other.GetRawBinaryType(); v != nil {
		o.SetBinaryType(*v)
	}
	if v := other.GetRawRequestTimeout(); v != nil {
		o.SetRequestTimeout(*v)
	}
	if v := other.GetRawExtraHeaders(); v != nil {
		o.SetExtraHeaders(*v)
	}
	if v := other.TLSClientConfig(); v != nil {
		o.SetTLSClientConfig(v)
	}
	if v := other.Protocols(); v != nil {
		o.SetProtocols(v)
	}
	if v := other.PerMessageDeflate(); v != nil {
		o.SetPerMessageDeflate(v)
	}
	if v := other.GetRawProxy(); v != nil {
		o.SetProxy(*v)
	}
	if v := other.GetRawFollowRedirects(); v != nil {
		o.SetFollowRedirects(*v)
	}
	if v := other.GetRawMaxRedirects(); v != nil {
		o.SetMaxRedirects(*v)
	}
	if v := other.CookieJar(); v != nil {
		o.SetCookieJar(v)
	}
	if v := other.Agent(); v != nil {
		o.SetAgent(v)
	}
	return o
}
