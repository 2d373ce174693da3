package provider

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// echoServer upgrades and echoes every frame back.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			mt, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if err := ws.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))

	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialSendReceive(t *testing.T) {
	srv := echoServer(t)
	d := NewDialer(DefaultConfig(), slog.Default())

	conn, err := d.Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.Send([]byte(`{"hello":"world"}`)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case data, ok := <-conn.Messages():
		if !ok {
			t.Fatal("message channel closed unexpectedly")
		}
		if string(data) != `{"hello":"world"}` {
			t.Errorf("echoed = %s, want original payload", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no echo received")
	}
}

func TestClose_EndsMessageChannel(t *testing.T) {
	srv := echoServer(t)
	d := NewDialer(DefaultConfig(), slog.Default())

	conn, err := d.Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	conn.Close()

	select {
	case _, ok := <-conn.Messages():
		if ok {
			t.Error("expected message channel to close, got a message")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message channel did not close")
	}

	if err := conn.Send([]byte("late")); err == nil {
		t.Error("Send after Close should fail")
	}
}

func TestServerClose_SurfacesAsChannelClose(t *testing.T) {
	srv := echoServer(t)
	d := NewDialer(DefaultConfig(), slog.Default())

	conn, err := d.Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	srv.CloseClientConnections()

	select {
	case _, ok := <-conn.Messages():
		if ok {
			t.Error("expected channel close after server hangup")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message channel did not close after server hangup")
	}
}

func TestDial_Unreachable(t *testing.T) {
	d := NewDialer(DefaultConfig(), slog.Default())

	if _, err := d.Dial(context.Background(), "ws://127.0.0.1:1/ws"); err == nil {
		t.Error("expected dial error for unreachable host")
	}
}
