package observer

import (
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"bartergrid/internal/protocol"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(log.New(os.Stdout, "[test] ", 0), func() protocol.HelloMsg {
		return protocol.HelloMsg{
			Type:            protocol.TypeHello,
			ProtocolVersion: protocol.Version,
			Name:            "test_world",
			Tick:            3,
			Width:           16,
			Height:          16,
			AgentCount:      2,
		}
	})
	ts := httptest.NewServer(s.WSHandler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSubscribeHandshakeAndBroadcast(t *testing.T) {
	s, ts := testServer(t)
	conn := dial(t, ts)

	if err := conn.WriteJSON(protocol.SubscribeMsg{
		Type:            protocol.TypeSubscribe,
		ProtocolVersion: protocol.Version,
	}); err != nil {
		t.Fatal(err)
	}

	var hello protocol.HelloMsg
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatal(err)
	}
	if hello.Type != protocol.TypeHello || hello.Name != "test_world" || hello.Tick != 3 {
		t.Fatalf("unexpected hello: %+v", hello)
	}

	// The subscriber is registered once the hello is out.
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.ClientCount() != 1 {
		t.Fatalf("expected one subscriber, got %d", s.ClientCount())
	}

	frame, err := json.Marshal(protocol.StepMsg{Type: protocol.TypeStep, Tick: 4, Digest: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	s.Broadcast(frame)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var step protocol.StepMsg
	if err := conn.ReadJSON(&step); err != nil {
		t.Fatal(err)
	}
	if step.Type != protocol.TypeStep || step.Tick != 4 || step.Digest != "abc" {
		t.Fatalf("unexpected step frame: %+v", step)
	}
}

func TestHandshakeRejectsWrongFirstMessage(t *testing.T) {
	_, ts := testServer(t)
	conn := dial(t, ts)

	if err := conn.WriteJSON(protocol.BaseMessage{Type: "PING"}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the connection to close on a bad handshake")
	}
}

func TestSendLatestDropsOldFrames(t *testing.T) {
	ch := make(chan []byte, 1)
	sendLatest(ch, []byte("old"))
	sendLatest(ch, []byte("new"))
	select {
	case got := <-ch:
		if string(got) != "new" {
			t.Fatalf("expected the newest frame to survive, got %q", got)
		}
	default:
		t.Fatal("channel should hold exactly one frame")
	}
}

func TestLoopbackGuard(t *testing.T) {
	if !isLoopbackRemote("127.0.0.1:5000") || !isLoopbackRemote("[::1]:5000") {
		t.Fatal("loopback addresses must pass")
	}
	if isLoopbackRemote("10.1.2.3:5000") || isLoopbackRemote("not-an-ip") {
		t.Fatal("non-loopback addresses must be rejected")
	}
}
