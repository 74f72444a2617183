package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/haasonsaas/easel/internal/board"
	"github.com/haasonsaas/easel/internal/translate"
)

func TestStreamReceivesBoardEvents(t *testing.T) {
	srv, manager := newTestServer(t, &fakeTranslator{result: &translate.Result{}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	b := &board.Board{ID: "b1", Name: "live"}
	if err := manager.Store().CreateBoard(context.Background(), b); err != nil {
		t.Fatal(err)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/boards/b1/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	// The subscription registers during the upgrade handshake; wait for it
	// before broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for manager.Hub().SubscriberCount("b1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(time.Millisecond)
	}

	manager.Hub().Broadcast(board.Event{
		Type:    board.EventCommandApplied,
		BoardID: "b1",
		Payload: json.RawMessage(`{"command":"create a circle"}`),
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event board.Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != board.EventCommandApplied || event.BoardID != "b1" {
		t.Errorf("event = %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Error("event timestamp not set")
	}
}

func TestStreamUnknownBoard(t *testing.T) {
	srv, _ := newTestServer(t, &fakeTranslator{result: &translate.Result{}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/boards/ghost/stream")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
