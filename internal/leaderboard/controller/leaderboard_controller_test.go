package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codearena/internal/leaderboard/controller"
	"codearena/internal/leaderboard/fanout"
	"codearena/internal/scoring/model"
	appErr "codearena/pkg/errors"
)

type fakeSnapshotStore struct {
	rows map[string][]model.LeaderboardEntry
}

func (f *fakeSnapshotStore) ListByContest(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error) {
	rows, ok := f.rows[contestID]
	if !ok {
		return nil, appErr.Newf(appErr.LeaderboardNotFound, "contest %s has no leaderboard", contestID)
	}
	return rows, nil
}

func newTestServer(t *testing.T, store *fakeSnapshotStore, hub *fanout.Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	controller.NewLeaderboardController(store, hub).RegisterRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetLeaderboardSnapshot(t *testing.T) {
	store := &fakeSnapshotStore{rows: map[string][]model.LeaderboardEntry{
		"c1": {
			{Rank: 1, UserID: "u2", TotalScore: 104},
			{Rank: 2, UserID: "u1", TotalScore: 80},
		},
	}}
	hub := fanout.NewHub()
	defer hub.Close()
	srv := newTestServer(t, store, hub)

	resp, err := http.Get(srv.URL + "/api/v1/leaderboard/contest/c1")
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var envelope struct {
		Data controller.LeaderboardResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ContestID != "c1" {
		t.Fatalf("contest_id = %q, want c1", envelope.Data.ContestID)
	}
	if len(envelope.Data.Leaderboard) != 2 || envelope.Data.Leaderboard[0].UserID != "u2" {
		t.Fatalf("leaderboard = %+v, want ranked rows", envelope.Data.Leaderboard)
	}
}

func TestGetLeaderboardUnknownContest(t *testing.T) {
	store := &fakeSnapshotStore{rows: map[string][]model.LeaderboardEntry{}}
	hub := fanout.NewHub()
	defer hub.Close()
	srv := newTestServer(t, store, hub)

	resp, err := http.Get(srv.URL + "/api/v1/leaderboard/contest/ghost")
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestWatchLeaderboardReceivesBroadcasts(t *testing.T) {
	store := &fakeSnapshotStore{rows: map[string][]model.LeaderboardEntry{}}
	hub := fanout.NewHub()
	defer hub.Close()
	srv := newTestServer(t, store, hub)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/leaderboard/c1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ViewerCount("c1") != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("viewer not registered, count = %d", hub.ViewerCount("c1"))
		}
		time.Sleep(5 * time.Millisecond)
	}

	payload := []byte(`{"contest_id":"c1","leaderboard":[]}`)
	hub.Broadcast(context.Background(), "c1", payload)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, got, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("received %q, want the broadcast payload", got)
	}
}
