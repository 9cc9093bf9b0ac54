package engine

import "github.com/zishang520/engine.io/v2/types"

// socket is the recommended entry point: a SocketWithUpgrade with no
// behavior of its own, kept as a distinct type so callers depending on
// [Socket] are insulated from future additions layered on top of upgrade
// support.
type socket struct {
	SocketWithUpgrade
}

// MakeSocket creates a new Socket instance with default settings.
func MakeSocket() Socket {
	s := &socket{
		SocketWithUpgrade: MakeSocketWithUpgrade(),
	}
	s.Prototype(s)
	return s
}

// NewSocket creates and opens a new Socket against uri. When opts does not
// specify a transport list, it defaults to ["polling", "websocket"].
func NewSocket(uri string, opts SocketOptionsInterface) Socket {
	if opts == nil {
		opts = DefaultSocketOptions()
	}
	if opts.Transports() == nil || opts.Transports().Len() == 0 {
		opts.SetTransports(types.NewSlice[string]("polling", "websocket"))
	}

	s := MakeSocket()
	s.Construct(uri, opts)

	return s
}
