package transports

import (
	"github.com/zishang520/engine.io-client-go/engine"
)

type (
	TransportCtor = engine.TransportCtor

	WebSocketBuilder    = engine.WebSocketBuilder
	PollingBuilder      = engine.PollingBuilder
	PollingJSONPBuilder = engine.PollingJSONPBuilder
)

var (
	Polling      TransportCtor = &PollingBuilder{}
	WebSocket    TransportCtor = &WebSocketBuilder{}
	PollingJSONP TransportCtor = &PollingJSONPBuilder{}
)
