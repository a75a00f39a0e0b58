package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"oicoach.dev/internal/protocol"
)

func dialFeed(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readEntry(t *testing.T, conn *websocket.Conn) protocol.WeekLogEntry {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var e protocol.WeekLogEntry
	if err := json.Unmarshal(msg, &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return e
}

func TestObserverReceivesBacklogThenLive(t *testing.T) {
	feed := NewFeed(nil)
	defer feed.Close()

	if err := feed.WriteWeek(protocol.WeekLogEntry{Week: 1, Digest: "d1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := feed.WriteWeek(protocol.WeekLogEntry{Week: 2, Digest: "d2"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	srv := httptest.NewServer(feed.Handler())
	defer srv.Close()

	conn := dialFeed(t, srv)
	defer conn.Close()

	if e := readEntry(t, conn); e.Week != 1 {
		t.Fatalf("backlog out of order: got week %d", e.Week)
	}
	if e := readEntry(t, conn); e.Week != 2 {
		t.Fatalf("backlog out of order: got week %d", e.Week)
	}

	if err := feed.WriteWeek(protocol.WeekLogEntry{Week: 3, Digest: "d3"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if e := readEntry(t, conn); e.Week != 3 {
		t.Fatalf("live entry: got week %d", e.Week)
	}
}

func TestBacklogIsBounded(t *testing.T) {
	feed := NewFeed(nil)
	defer feed.Close()

	for i := 1; i <= backlogCap+50; i++ {
		if err := feed.WriteWeek(protocol.WeekLogEntry{Week: i}); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	srv := httptest.NewServer(feed.Handler())
	defer srv.Close()
	conn := dialFeed(t, srv)
	defer conn.Close()

	first := readEntry(t, conn)
	if first.Week != 51 {
		t.Fatalf("oldest retained entry should be week 51, got %d", first.Week)
	}
}
