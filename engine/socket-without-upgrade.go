package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-go-parser/packet"
	"github.com/zishang520/engine.io/v2/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/engine.io/v2/utils"
)

var errNoTransports = errors.New("no transports available")

// priorWebsocketSuccess is process-wide: true iff the most recently opened
// Socket's current transport was "websocket". It is read by every new
// Socket when choosing its initial transport (RememberUpgrade) and
// written by every Socket as soon as it knows which transport won.
var priorWebsocketSuccess atomic.Bool

// ResetPriorWebsocketSuccess clears the process-wide "last connection used
// websocket" flag. Exported so tests that create multiple Sockets in the
// same process do not leak state between them.
func ResetPriorWebsocketSuccess() {
	priorWebsocketSuccess.Store(false)
}

// socketWithoutUpgrade implements the core Engine.IO client session:
// lifecycle, packet dispatch, heartbeat, and the buffered write pipeline.
// It deliberately does not attempt transport upgrades — see
// [socketWithUpgrade] for that layer.
type socketWithoutUpgrade struct {
	types.EventEmitter

	_proto_ SocketWithoutUpgrade

	mu sync.Mutex

	opts SocketOptionsInterface

	id             string
	readyState     atomic.Pointer[SocketState]
	transport      Transport
	upgrading      atomic.Bool
	cookieJar      http.CookieJar
	transportsList *types.Slice[string]

	writeBuffer    *types.Slice[*packet.Packet]
	callbackBuffer *types.Slice[func()]
	prevBufferLen  int

	pingInterval time.Duration
	pingTimeout  time.Duration
	pingDeadline time.Time

	pingIntervalTimer *utils.Timer
	pingTimeoutTimer  *utils.Timer
}

// MakeSocketWithoutUpgrade creates a new SocketWithoutUpgrade instance with
// default settings.
func MakeSocketWithoutUpgrade() SocketWithoutUpgrade {
	s := &socketWithoutUpgrade{
		EventEmitter:   types.NewEventEmitter(),
		writeBuffer:    types.NewSlice[*packet.Packet](),
		callbackBuffer: types.NewSlice[func()](),
		transportsList: types.NewSlice[string](),
	}
	s.setReadyState("")
	s.Prototype(s)
	return s
}

// NewSocketWithoutUpgrade creates a new SocketWithoutUpgrade instance
// against the given URI with the given options, and opens it.
func NewSocketWithoutUpgrade(uri string, opts SocketOptionsInterface) SocketWithoutUpgrade {
	s := MakeSocketWithoutUpgrade()
	s.Construct(uri, opts)
	return s
}

func (s *socketWithoutUpgrade) Prototype(_proto_ SocketWithoutUpgrade) { s._proto_ = _proto_ }
func (s *socketWithoutUpgrade) Proto() SocketWithoutUpgrade            { return s._proto_ }

func (s *socketWithoutUpgrade) Id() string { return s.id }

func (s *socketWithoutUpgrade) Transport() Transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport
}

func (s *socketWithoutUpgrade) setReadyState(state SocketState) {
	s.readyState.Store(&state)
}

func (s *socketWithoutUpgrade) ReadyState() SocketState {
	if v := s.readyState.Load(); v != nil {
		return *v
	}
	return ""
}

func (s *socketWithoutUpgrade) WriteBuffer() *types.Slice[*packet.Packet] { return s.writeBuffer }

func (s *socketWithoutUpgrade) Opts() SocketOptionsInterface { return s.opts }

func (s *socketWithoutUpgrade) Transports() *types.Slice[string] { return s.transportsList }

func (s *socketWithoutUpgrade) Upgrading() bool     { return s.upgrading.Load() }
func (s *socketWithoutUpgrade) SetUpgrading(v bool) { s.upgrading.Store(v) }

func (s *socketWithoutUpgrade) CookieJar() http.CookieJar { return s.cookieJar }

func (s *socketWithoutUpgrade) PriorWebsocketSuccess() bool     { return priorWebsocketSuccess.Load() }
func (s *socketWithoutUpgrade) SetPriorWebsocketSuccess(v bool) { priorWebsocketSuccess.Store(v) }

func (s *socketWithoutUpgrade) Protocol() int { return Protocol }

// Construct parses uri into the endpoint fields of opts (values present in
// uri replace those already set there), fills in the default transport
// list when none is given, and opens the session.
func (s *socketWithoutUpgrade) Construct(uri string, opts SocketOptionsInterface) {
	if opts == nil {
		opts = DefaultSocketOptions()
	}
	s.opts = opts
	s.cookieJar = opts.CookieJar()

	if uri != "" {
		if parsed, err := url.Parse(uri); err == nil {
			if parsed.Hostname() != "" {
				opts.SetHostname(parsed.Hostname())
			}
			secure := parsed.Scheme == "https" || parsed.Scheme == "wss"
			opts.SetSecure(secure)
			if parsed.Port() != "" {
				opts.SetPort(parsed.Port())
			} else if opts.Port() == "" {
				if secure {
					opts.SetPort("443")
				} else {
					opts.SetPort("80")
				}
			}
			if parsed.Path != "" {
				opts.SetPath(parsed.Path)
			}
			if parsed.RawQuery != "" {
				if q, err := url.ParseQuery(parsed.RawQuery); err == nil {
					merged := opts.Query()
					for k, vs := range q {
						for _, v := range vs {
							merged.Add(k, v)
						}
					}
					opts.SetQuery(merged)
				}
			}
		} else {
			client_socket_log.Error("invalid URL address: %v", err)
		}
	}

	if opts.Transports() == nil || opts.Transports().Len() == 0 {
		opts.SetTransports(types.NewSlice[string](transports.POLLING, transports.WEBSOCKET))
	}
	s.transportsList = opts.Transports()

	s.setReadyState("")
	s.open()
}

// CreateTransport instantiates a new transport of the given name, wired to
// this socket's current options and a fresh query carrying EIO, the
// transport name and, once a handshake has set it, the sid.
func (s *socketWithoutUpgrade) CreateTransport(name string) Transport {
	if name == transports.POLLING && s.opts.ForceJSONP() {
		name = "polling-jsonp"
	}

	client_socket_log.Debug(`creating transport "%s"`, name)

	query := url.Values{}
	for k, vs := range s.opts.Query() {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("EIO", strconv.Itoa(s.Protocol()))
	query.Set("transport", name)
	if s.id != "" {
		query.Set("sid", s.id)
	}

	opts := DefaultSocketOptions()
	opts.Assign(s.opts)
	opts.SetQuery(query)

	switch name {
	case "polling-jsonp":
		return NewPollingJSONP(s._proto_, opts)
	case transports.WEBSOCKET:
		return NewWebSocket(s._proto_, opts)
	default:
		return NewPolling(s._proto_, opts)
	}
}

// open selects the initial transport and begins connecting. Not part of
// SocketWithoutUpgrade's public surface: it runs once, at the end of
// Construct, exactly as the original client opens as soon as it is given
// a URI and options.
func (s *socketWithoutUpgrade) open() {
	if s.transportsList.Len() == 0 {
		go s.Emit("error", errNoTransports)
		return
	}

	candidate := s.transportsList.All()[0]
	if s.opts.RememberUpgrade() && priorWebsocketSuccess.Load() {
		for _, v := range s.transportsList.All() {
			if v == transports.WEBSOCKET {
				candidate = transports.WEBSOCKET
				break
			}
		}
	}

	s.setReadyState(SocketStateOpening)

	transport := s._proto_.CreateTransport(candidate)
	s._proto_.SetTransport(transport)

	transport.Open()
}

// SetTransport replaces the current transport, removing all listeners
// from the old one first so no stray callback fires against a transport
// that is no longer current (invariant I4).
func (s *socketWithoutUpgrade) SetTransport(transport Transport) {
	s.mu.Lock()
	old := s.transport
	s.transport = transport
	s.mu.Unlock()

	if old != nil {
		old.RemoveAllListeners("drain")
		old.RemoveAllListeners("packet")
		old.RemoveAllListeners("error")
		old.RemoveAllListeners("close")
	}

	transport.On("drain", func(...any) { s.onDrain() })
	transport.On("packet", func(args ...any) {
		if len(args) > 0 {
			if p, ok := args[0].(*packet.Packet); ok {
				s.onPacket(p)
			}
		}
	})
	transport.On("error", func(args ...any) {
		if len(args) > 0 {
			if e, ok := args[0].(error); ok {
				s.onError(e)
				return
			}
		}
		s.onError(nil)
	})
	transport.On("close", func(args ...any) {
		var err error
		if len(args) > 0 {
			err, _ = args[0].(error)
		}
		s.onClose("transport close", err)
	})
}

// OnOpen transitions the session to open once the current transport has
// connected. Handshake data arrives separately via OnHandshake.
func (s *socketWithoutUpgrade) OnOpen() {
	s.setReadyState(SocketStateOpen)
	if t := s.Transport(); t != nil {
		priorWebsocketSuccess.Store(t.Name() == transports.WEBSOCKET)
	}
	s.Emit("open")
	s._proto_.Flush()
}

// onDrain fires the callbacks for exactly the packets the transport just
// reported flushed (prevBufferLen of them), then either emits drain or
// flushes whatever arrived in the meantime.
func (s *socketWithoutUpgrade) onDrain() {
	s.mu.Lock()
	n := s.prevBufferLen
	if n > s.callbackBuffer.Len() {
		n = s.callbackBuffer.Len()
	}
	callbacks, _ := s.callbackBuffer.Splice(0, n)
	_, _ = s.writeBuffer.Splice(0, n)
	s.prevBufferLen = 0
	remaining := s.writeBuffer.Len()
	s.mu.Unlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb()
		}
	}

	if remaining == 0 {
		s.Emit("drain")
	} else {
		s._proto_.Flush()
	}
}

// onPacket dispatches one decoded packet from the current transport.
func (s *socketWithoutUpgrade) onPacket(p *packet.Packet) {
	state := s.ReadyState()
	if state != SocketStateOpening && state != SocketStateOpen {
		client_socket_log.Debug(`packet received with socket readyState "%s"`, state)
		return
	}

	s.Emit("packet", p)
	s.Emit("heartbeat")

	switch p.Type {
	case packet.OPEN:
		var data HandshakeData
		if p.Data != nil {
			_ = json.NewDecoder(p.Data).Decode(&data)
		}
		s._proto_.OnHandshake(&data)
	case packet.PONG:
		s.setPing()
	case packet.ERROR:
		s.Emit("error", fmt.Errorf("server error: %s", readAll(p.Data)))
	case packet.MESSAGE:
		s.Emit("data", p.Data)
		s.Emit("message", p.Data)
	}
}

func readAll(r io.Reader) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	_, _ = io.Copy(&sb, r)
	return sb.String()
}

// OnHandshake applies the server handshake: stores sid, adopts heartbeat
// timing, and starts the ping loop.
func (s *socketWithoutUpgrade) OnHandshake(data *HandshakeData) {
	s.Emit("handshake", data)
	s.id = data.Sid

	s.mu.Lock()
	s.pingInterval = time.Duration(data.PingInterval) * time.Millisecond
	s.pingTimeout = time.Duration(data.PingTimeout) * time.Millisecond
	transport := s.transport
	s.mu.Unlock()

	if transport != nil {
		transport.Query().Set("sid", data.Sid)
	}

	s._proto_.OnOpen()
	if s.ReadyState() == SocketStateClosed {
		return
	}

	s.RemoveAllListeners("heartbeat")
	s.On("heartbeat", func(...any) { s.resetPingTimeout(s.pingInterval + s.pingTimeout) })
	s.resetPingTimeout(s.pingInterval + s.pingTimeout)
	s.setPing()
}

// setPing arms the interval timer. On fire it sends a ping and arms the
// timeout with pingTimeout alone (not the sum) — this asymmetry versus the
// heartbeat-reset default is deliberate, preserved verbatim from the
// protocol this client implements.
func (s *socketWithoutUpgrade) setPing() {
	s.mu.Lock()
	interval := s.pingInterval
	utils.ClearTimeout(s.pingIntervalTimer)
	s.pingIntervalTimer = utils.SetTimeout(func() {
		client_socket_log.Debug("writing ping packet - expecting pong within %dms", s.pingTimeout.Milliseconds())
		s.sendPacket(packet.PING, nil, nil, nil)
		s.resetPingTimeout(s.pingTimeout)
	}, interval)
	s.mu.Unlock()
}

func (s *socketWithoutUpgrade) resetPingTimeout(timeout time.Duration) {
	s.mu.Lock()
	utils.ClearTimeout(s.pingTimeoutTimer)
	s.pingDeadline = time.Now().Add(timeout)
	s.pingTimeoutTimer = utils.SetTimeout(func() {
		s.onClose("ping timeout", nil)
	}, timeout)
	s.mu.Unlock()
}

// Write queues data for transmission and triggers a flush attempt.
func (s *socketWithoutUpgrade) Write(data io.Reader, options *packet.Options, callback func()) SocketWithoutUpgrade {
	s.sendPacket(packet.MESSAGE, data, options, callback)
	return s
}

// Send is an alias for Write.
func (s *socketWithoutUpgrade) Send(data io.Reader, options *packet.Options, callback func()) SocketWithoutUpgrade {
	return s.Write(data, options, callback)
}

func (s *socketWithoutUpgrade) sendPacket(t packet.Type, data io.Reader, options *packet.Options, callback func()) {
	if s.ReadyState() == SocketStateClosing || s.ReadyState() == SocketStateClosed {
		return
	}

	p := &packet.Packet{Type: t, Data: data, Options: options}
	s.Emit("packetCreate", p)

	s.mu.Lock()
	s.writeBuffer.Push(p)
	s.callbackBuffer.Push(callback)
	s.mu.Unlock()

	s._proto_.Flush()
}

// Flush writes the buffered packets to the current transport, unless the
// session is closed, mid-upgrade, or the transport cannot accept writes.
func (s *socketWithoutUpgrade) Flush() {
	s.mu.Lock()
	state := s.ReadyState()
	transport := s.transport
	canWrite := state != SocketStateClosed && !s.upgrading.Load() && transport != nil && transport.Writable() && s.writeBuffer.Len() > 0
	if !canWrite {
		s.mu.Unlock()
		return
	}
	s.prevBufferLen = s.writeBuffer.Len()
	packets := s.writeBuffer.All()
	s.mu.Unlock()

	client_socket_log.Debug("flushing %d packets in socket", len(packets))
	transport.Send(packets)
	s.Emit("flush")
}

// HasPingExpired reports whether the current ping timeout has already
// elapsed, i.e. the server has gone silent for longer than tolerated. Used
// to detect a throttled process timer (e.g. a suspended background tab)
// that fired its close callback late.
func (s *socketWithoutUpgrade) HasPingExpired() bool {
	s.mu.Lock()
	deadline := s.pingDeadline
	s.mu.Unlock()

	if deadline.IsZero() {
		return true
	}
	if time.Now().After(deadline) {
		s.mu.Lock()
		s.pingDeadline = time.Time{}
		s.mu.Unlock()
		go s.onClose("ping timeout", nil)
		return true
	}
	return false
}

// Close terminates the session from the user's side.
func (s *socketWithoutUpgrade) Close() SocketWithoutUpgrade {
	closeNow := func() {
		s.onClose("forced close", nil)
		if t := s.Transport(); t != nil {
			t.Close()
		}
	}

	if state := s.ReadyState(); state == SocketStateOpening || state == SocketStateOpen {
		s.setReadyState(SocketStateClosing)

		if s.writeBuffer.Len() > 0 {
			s.Once("drain", func(...any) { closeNow() })
		} else {
			closeNow()
		}
	}
	return s
}

func (s *socketWithoutUpgrade) onError(err error) {
	client_socket_log.Debug("socket error %v", err)
	priorWebsocketSuccess.Store(false)
	if err != nil {
		s.Emit("error", err)
	}
	s.onClose("transport error", err)
}

// onClose is the single teardown path: idempotent, cancels timers, closes
// and unwires the transport, emits close before clearing buffers so
// listeners can still inspect them.
func (s *socketWithoutUpgrade) onClose(reason string, desc error) {
	state := s.ReadyState()
	if state != SocketStateOpening && state != SocketStateOpen && state != SocketStateClosing {
		return
	}
	client_socket_log.Debug(`socket close with reason: "%s"`, reason)

	s.mu.Lock()
	utils.ClearTimeout(s.pingIntervalTimer)
	utils.ClearTimeout(s.pingTimeoutTimer)
	s.pingIntervalTimer = nil
	s.pingTimeoutTimer = nil
	transport := s.transport
	s.mu.Unlock()

	s.RemoveAllListeners("heartbeat")

	if transport != nil {
		transport.RemoveAllListeners("close")
		transport.Close()
	}

	s.setReadyState(SocketStateClosed)
	s.id = ""

	s.Emit("close", reason, desc)

	s.mu.Lock()
	s.writeBuffer.Clear()
	s.callbackBuffer.Clear()
	s.prevBufferLen = 0
	s.mu.Unlock()
}
