package engine

var (
	client_socket_log    = NewLog("engine-client:socket")
	client_transport_log = NewLog("engine-client:transport")
	client_polling_log   = NewLog("engine-client:polling")
	client_websocket_log = NewLog("engine-client:websocket")
)

// Protocol is the Engine.IO wire protocol version this client speaks.
const Protocol = 4

// SocketState represents the lifecycle state of a Socket.
type SocketState string

const (
	SocketStateOpening SocketState = "opening"
	SocketStateOpen    SocketState = "open"
	SocketStateClosing SocketState = "closing"
	SocketStateClosed  SocketState = "closed"
)

// TransportState represents the lifecycle state of a Transport.
type TransportState string

const (
	TransportStateOpening TransportState = "opening"
	TransportStateOpen    TransportState = "open"
	TransportStatePausing TransportState = "pausing"
	TransportStatePaused  TransportState = "paused"
	TransportStateClosed  TransportState = "closed"
)

// TransportCtor is the builder interface used to construct a named
// transport on demand. The session's CreateTransport does not consult
// these builders: it constructs the polling, polling-jsonp and websocket
// transports by name directly, so all three are always linked in.
type TransportCtor interface {
	Name() string
	New(Socket, SocketOptionsInterface) Transport
}
