package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var envelope Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return envelope
}

func TestPublishWithNoClientsIsANoOp(t *testing.T) {
	hub := NewHub(nil)
	// Must not panic or block.
	hub.Publish("ANALYTICS_UPDATE", map[string]int{"total_results": 3})
}

func TestPublishReachesConnectedClient(t *testing.T) {
	hub := NewHub(nil)
	conn := dialTestHub(t, hub)
	waitForClients(t, hub, 1)

	hub.Publish("NEW_RESULT", map[string]string{"result_id": "res-1"})

	envelope := readEnvelope(t, conn)
	if envelope.Type != "NEW_RESULT" {
		t.Fatalf("expected NEW_RESULT, got %q", envelope.Type)
	}
	if envelope.Timestamp.IsZero() {
		t.Fatal("expected a stamped envelope")
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok || data["result_id"] != "res-1" {
		t.Fatalf("unexpected payload %v", envelope.Data)
	}
}

func TestRequestAnalyticsRepliesToRequestingClient(t *testing.T) {
	hub := NewHub(nil)
	providerErr := make(chan error, 1)
	hub.SetSnapshotProvider(func(ctx context.Context) (any, error) {
		// The provider runs gorm queries in production; a context tied
		// to the finished upgrade request would already be canceled.
		providerErr <- ctx.Err()
		return map[string]int{"total_results": 7}, nil
	})
	conn := dialTestHub(t, hub)
	waitForClients(t, hub, 1)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"REQUEST_ANALYTICS"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	envelope := readEnvelope(t, conn)
	if envelope.Type != "ANALYTICS_UPDATE" {
		t.Fatalf("expected ANALYTICS_UPDATE, got %q", envelope.Type)
	}
	if err := <-providerErr; err != nil {
		t.Fatalf("snapshot provider received a dead context: %v", err)
	}
}

func TestCloseDisconnectsClientsAndStopsSnapshots(t *testing.T) {
	hub := NewHub(nil)
	conn := dialTestHub(t, hub)
	waitForClients(t, hub, 1)

	hub.Close()
	waitForClients(t, hub, 0)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func TestClosedClientIsRemoved(t *testing.T) {
	hub := NewHub(nil)
	conn := dialTestHub(t, hub)
	waitForClients(t, hub, 1)

	_ = conn.Close()
	waitForClients(t, hub, 0)

	// Publishing after the disconnect must not block or panic.
	hub.Publish("ANALYTICS_UPDATE", nil)
}
