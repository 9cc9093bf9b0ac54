package transports

import "testing"

func TestRegistryNames(t *testing.T) {
	tests := []struct {
		ctor TransportCtor
		want string
	}{
		{Polling, "polling"},
		{WebSocket, "websocket"},
		{PollingJSONP, "polling-jsonp"},
	}

	for _, tt := range tests {
		if got := tt.ctor.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}
