package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

var testUpgrader = websocket.Upgrader{}

func TestHubLifecycle(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// Registers a client through a real websocket handshake. Returns the
	// external connection held by the test and the internal Client the
	// hub sees.
	register := func() (*websocket.Conn, *Client, func()) {
		ready := make(chan *Client, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := testUpgrader.Upgrade(w, r, nil)
			if err != nil {
				t.Errorf("upgrade: %v", err)
				return
			}
			client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
			hub.register <- client
			ready <- client
			go client.writePump()
			go client.readPump()
		}))

		ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		client := <-ready
		return ws, client, func() {
			server.Close()
			ws.Close()
		}
	}

	t.Run("broadcast reaches every client", func(t *testing.T) {
		ws1, _, cleanup1 := register()
		defer cleanup1()
		ws2, _, cleanup2 := register()
		defer cleanup2()

		hub.Publish(Event{Type: "ping"})

		for _, ws := range []*websocket.Conn{ws1, ws2} {
			_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, data, err := ws.ReadMessage()
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			assert.Contains(t, string(data), `"ping"`)
		}
	})

	t.Run("unregister closes the send queue", func(t *testing.T) {
		_, client, cleanup := register()
		defer cleanup()

		hub.unregister <- client

		select {
		case _, ok := <-client.send:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("send channel still open")
		}
	})
}

// envelope mirrors Event with a raw payload for precise decoding.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readEvent(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading websocket frame: %v", err)
	}
	var evt envelope
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("decoding %s: %v", data, err)
	}
	return evt
}

func TestWebSocketEvents(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.hub.Run(ctx)
	srv.BindEvents()

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	defer conn.Close()

	// The first frame is always the current play state.
	evt := readEvent(t, conn)
	assert.Equal(t, EventPlayerState, evt.Type)

	client := ts.Client()
	patch := func(target, body string) *http.Response {
		t.Helper()
		req, err := http.NewRequest("PATCH", ts.URL+target, strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp
	}

	t.Run("cell edit", func(t *testing.T) {
		resp := patch("/api/timestamps/1", `{"column": 0, "value": "0:00:03.000"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		evt := readEvent(t, conn)
		assert.Equal(t, EventTimestampsChanged, evt.Type)
		var p changedPayload
		assert.NoError(t, json.Unmarshal(evt.Payload, &p))
		assert.Equal(t, 1, p.Row)
		assert.Equal(t, 0, p.Col)
	})

	t.Run("rejected edit", func(t *testing.T) {
		resp := patch("/api/timestamps/0", `{"column": 0, "value": "bogus"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		evt := readEvent(t, conn)
		assert.Equal(t, EventTimestampsParseError, evt.Type)
		var p parseErrorPayload
		assert.NoError(t, json.Unmarshal(evt.Payload, &p))
		assert.Equal(t, "bogus", p.Text)
		assert.Equal(t, "Time invalid: bogus", p.Message)
	})

	t.Run("state change on arm", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/player/play", "application/json", strings.NewReader(`{"row": 0}`))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		evt := readEvent(t, conn)
		assert.Equal(t, EventPlayerState, evt.Type)
		var p statePayload
		assert.NoError(t, json.Unmarshal(evt.Payload, &p))
		assert.Equal(t, "armed", p.Phase)
		assert.True(t, p.Playing)
		assert.Equal(t, int64(5000), p.StartMS)
	})
}
