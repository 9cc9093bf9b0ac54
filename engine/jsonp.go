package engine

// pollingJSONP is the JSONP variant of long-polling, selected when
// ForceJSONP is set. A browser-hosted client injects a <script> tag to
// receive each response and pads it with a callback wrapper; a Go process
// has no DOM to do that in, so this type only changes the transport name
// (and therefore what gets negotiated/filtered during upgrade selection)
// while speaking the same XHR wire format underneath. The actual JSONP
// padding/script-tag mechanics are the out-of-scope external collaborator
// named in the purpose & scope notes.
type pollingJSONP struct {
	Polling
}

// Name returns the identifier for the JSONP polling transport.
func (p *pollingJSONP) Name() string {
	return "polling-jsonp"
}

// MakePollingJSONP creates a new JSONP polling transport instance with
// default settings.
func MakePollingJSONP() Polling {
	s := &pollingJSONP{
		Polling: MakePolling(),
	}
	s.Prototype(s)
	return s
}

// NewPollingJSONP creates a new JSONP polling transport instance with the
// specified socket and options.
func NewPollingJSONP(socket Socket, opts SocketOptionsInterface) Polling {
	s := MakePollingJSONP()
	s.Construct(socket, opts)
	return s
}
