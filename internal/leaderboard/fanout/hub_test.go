package fanout_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"codearena/internal/leaderboard/fanout"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// viewerServer upgrades every request and registers the connection on the
// hub under the contest named in the path.
func viewerServer(t *testing.T, hub *fanout.Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contestID := strings.TrimPrefix(r.URL.Path, "/ws/")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Register(r.Context(), contestID, conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialViewer(t *testing.T, srv *httptest.Server, contestID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + contestID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForViewers(t *testing.T, hub *fanout.Hub, contestID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ViewerCount(contestID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("viewer count for %s = %d, want %d", contestID, hub.ViewerCount(contestID), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastReachesOnlyContestViewers(t *testing.T) {
	hub := fanout.NewHub()
	defer hub.Close()
	srv := viewerServer(t, hub)

	c1a := dialViewer(t, srv, "c1")
	c1b := dialViewer(t, srv, "c1")
	c2 := dialViewer(t, srv, "c2")
	waitForViewers(t, hub, "c1", 2)
	waitForViewers(t, hub, "c2", 1)

	payload := []byte(`{"contest_id":"c1","leaderboard":[]}`)
	hub.Broadcast(context.Background(), "c1", payload)

	for _, conn := range []*websocket.Conn{c1a, c1b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, got, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read broadcast: %v", err)
		}
		if string(got) != string(payload) {
			t.Fatalf("viewer received %q, want payload forwarded verbatim", got)
		}
	}

	// The other contest's viewer must stay silent.
	_ = c2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := c2.ReadMessage(); err == nil {
		t.Fatal("viewer of another contest received the broadcast")
	}
}

func TestDisconnectedViewerIsUnregistered(t *testing.T) {
	hub := fanout.NewHub()
	defer hub.Close()
	srv := viewerServer(t, hub)

	conn := dialViewer(t, srv, "c1")
	waitForViewers(t, hub, "c1", 1)

	conn.Close()
	waitForViewers(t, hub, "c1", 0)

	// Broadcasting into an empty contest is a no-op.
	hub.Broadcast(context.Background(), "c1", []byte("{}"))
}

func TestCloseDropsAllViewers(t *testing.T) {
	hub := fanout.NewHub()
	srv := viewerServer(t, hub)

	conn := dialViewer(t, srv, "c1")
	waitForViewers(t, hub, "c1", 1)

	hub.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("read after hub close should fail")
	}
}
