package engine

// HandshakeData is the payload carried by the server's initial `open`
// packet: the session id and the heartbeat/upgrade parameters the Session
// adopts for the lifetime of the connection.
type HandshakeData struct {
	Sid          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload,omitempty"`
}
