package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func newHubServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/sessions/{id}/ws", h.HandleWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, id string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + id + "/ws"
}

func TestHub_RejectsBadSession(t *testing.T) {
	known := uuid.New()
	h := NewHub(nil, func(id uuid.UUID) bool { return id == known }, nil)
	srv := newHubServer(t, h)

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"malformed id", "not-a-uuid", http.StatusBadRequest},
		{"unknown session", uuid.NewString(), http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tc.id), nil)
			if err == nil {
				t.Fatal("expected dial to fail")
			}
			if resp == nil || resp.StatusCode != tc.want {
				t.Fatalf("expected status %d, got %+v", tc.want, resp)
			}
		})
	}
}

func TestHub_BroadcastReachesWatchers(t *testing.T) {
	id := uuid.New()
	h := NewHub(nil, func(uuid.UUID) bool { return true }, nil)
	srv := newHubServer(t, h)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, id.String()), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.Connections(id) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.Broadcast(uuid.New(), []byte(`{"type":"other"}`))
	h.Broadcast(id, []byte(`{"type":"assistant_reply"}`))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != `{"type":"assistant_reply"}` {
		t.Fatalf("unexpected message %s", data)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for h.Connections(id) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection was not unregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
