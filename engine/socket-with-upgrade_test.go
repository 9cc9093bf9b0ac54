package engine

import (
	"io"
	"strings"
	"testing"

	"github.com/zishang520/engine.io-go-parser/packet"
	"github.com/zishang520/engine.io/v2/types"
)

// probeTransport is a minimal Transport used to drive the upgrade probe
// state machine without real network I/O. Pause invokes its callback
// immediately, and Write echoes a "probe" ping with a matching pong so a
// test can choose whether the probe succeeds or fails.
type probeTransport struct {
	Transport

	name      string
	echoProbe bool
}

func newProbeTransport(socket Socket, opts SocketOptionsInterface, name string, echoProbe bool) *probeTransport {
	p := &probeTransport{Transport: MakeTransport(), name: name, echoProbe: echoProbe}
	p.Construct(socket, opts)
	p.Prototype(p)
	return p
}

func (p *probeTransport) Name() string { return p.name }

func (p *probeTransport) DoOpen() { p.OnOpen() }

func (p *probeTransport) Pause(onPause func()) { onPause() }

func (p *probeTransport) Write(packets []*packet.Packet) {
	for _, pk := range packets {
		if pk.Type != packet.PING {
			continue
		}
		sb := new(strings.Builder)
		io.Copy(sb, pk.Data)
		if sb.String() != "probe" {
			continue
		}
		if p.echoProbe {
			p.OnPacket(&packet.Packet{Type: packet.PONG, Data: types.NewStringBufferString("probe")})
		} else {
			p.OnPacket(&packet.Packet{Type: packet.PONG, Data: types.NewStringBufferString("not-a-probe-reply")})
		}
	}
	p.SetWritable(true)
	p.Emit("drain")
}

// stubProbeSocket overrides CreateTransport so _probe's internally chosen
// candidate transport is a probeTransport instead of a real polling or
// websocket transport.
type stubProbeSocket struct {
	SocketWithUpgrade

	candidate Transport
}

func (s *stubProbeSocket) CreateTransport(string) Transport { return s.candidate }

func newUpgradeTestSocket(currentName string, candidateEchoesProbe bool) (*socketWithUpgrade, *probeTransport, *probeTransport) {
	ResetPriorWebsocketSuccess()

	s := MakeSocketWithUpgrade().(*socketWithUpgrade)
	inner := s.SocketWithoutUpgrade.(*socketWithoutUpgrade)
	inner.opts = DefaultSocketOptions()
	inner.transportsList = types.NewSlice[string]("polling", "websocket")
	inner.setReadyState(SocketStateOpen)

	current := newProbeTransport(s, inner.opts, currentName, true)
	current.SetWritable(true)
	inner.SetTransport(current)

	candidateName := "websocket"
	if currentName == "websocket" {
		candidateName = "polling"
	}
	candidate := newProbeTransport(s, inner.opts, candidateName, candidateEchoesProbe)

	s.Prototype(&stubProbeSocket{SocketWithUpgrade: s, candidate: candidate})

	return s, current, candidate
}

func TestProbeSwapsTransportOnMatchingPong(t *testing.T) {
	s, _, candidate := newUpgradeTestSocket("polling", true)
	inner := s.SocketWithoutUpgrade.(*socketWithoutUpgrade)

	var upgraded Transport
	s.On("upgrade", func(args ...any) {
		if len(args) > 0 {
			if tr, ok := args[0].(Transport); ok {
				upgraded = tr
			}
		}
	})

	s._probe("websocket")

	if inner.Transport() != candidate {
		t.Fatalf("Transport() after successful probe = %v, want the probed candidate", inner.Transport())
	}
	if upgraded != candidate {
		t.Fatalf("\"upgrade\" event did not carry the candidate transport")
	}
	if s.Upgrading() {
		t.Fatalf("Upgrading() = true after the swap completed, want false")
	}
	if !inner.PriorWebsocketSuccess() {
		t.Fatalf("PriorWebsocketSuccess() = false, want true after upgrading to websocket")
	}
}

func TestProbeLeavesCurrentTransportOnMismatchedPong(t *testing.T) {
	s, current, _ := newUpgradeTestSocket("polling", false)
	inner := s.SocketWithoutUpgrade.(*socketWithoutUpgrade)

	var upgradeErr error
	s.On("upgradeError", func(args ...any) {
		if len(args) > 0 {
			if err, ok := args[0].(error); ok {
				upgradeErr = err
			}
		}
	})

	s._probe("websocket")

	if inner.Transport() != current {
		t.Fatalf("Transport() after a failed probe = %v, want the original transport unchanged", inner.Transport())
	}
	if upgradeErr == nil {
		t.Fatalf("expected an \"upgradeError\" event when the probe pong does not match")
	}
	if s.Upgrading() {
		t.Fatalf("Upgrading() = true after a failed probe, want false")
	}
}

func TestFilterUpgradesKeepsOnlyConfiguredTransports(t *testing.T) {
	s := MakeSocketWithUpgrade().(*socketWithUpgrade)
	s.SocketWithoutUpgrade.(*socketWithoutUpgrade).opts = DefaultSocketOptions()
	s.SocketWithoutUpgrade.(*socketWithoutUpgrade).transportsList = types.NewSlice[string]("polling", "websocket")

	got := s._filterUpgrades([]string{"websocket", "webtransport", "polling"})

	if !got.Has("websocket") || !got.Has("polling") {
		t.Fatalf("expected websocket and polling to survive filtering, got %v", got.Keys())
	}
	if got.Has("webtransport") {
		t.Fatalf("webtransport is not a configured transport and should have been filtered out, got %v", got.Keys())
	}
	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}
}

func TestFilterUpgradesIgnoresUnknownServerUpgrades(t *testing.T) {
	s := MakeSocketWithUpgrade().(*socketWithUpgrade)
	s.SocketWithoutUpgrade.(*socketWithoutUpgrade).opts = DefaultSocketOptions()
	s.SocketWithoutUpgrade.(*socketWithoutUpgrade).transportsList = types.NewSlice[string]("polling")

	got := s._filterUpgrades([]string{"quic"})

	if got.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 for an upgrade the client never offered", got.Len())
	}
}
