package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"oicoach.dev/internal/protocol"
)

// Feed is a read-only websocket broadcast of week log entries. Observers
// connect, receive the retained backlog, then live entries as the season
// advances. Nothing an observer sends can influence the running game.
type Feed struct {
	log *log.Logger

	mu      sync.Mutex
	backlog []protocol.WeekLogEntry
	subs    map[chan []byte]struct{}

	upgrader websocket.Upgrader
}

const (
	backlogCap = 256
	subQueue   = 32
)

func NewFeed(logger *log.Logger) *Feed {
	return &Feed{
		log:  logger,
		subs: make(map[chan []byte]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// WriteWeek satisfies the engine's logger hook. Entries are retained for
// late joiners and fanned out to connected observers; a slow observer is
// dropped rather than allowed to stall the game loop.
func (f *Feed) WriteWeek(entry protocol.WeekLogEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.backlog = append(f.backlog, entry)
	if len(f.backlog) > backlogCap {
		f.backlog = f.backlog[len(f.backlog)-backlogCap:]
	}
	for ch := range f.subs {
		select {
		case ch <- b:
		default:
			delete(f.subs, ch)
			close(ch)
			if f.log != nil {
				f.log.Printf("observer too slow, dropped")
			}
		}
	}
	f.mu.Unlock()
	return nil
}

func (f *Feed) Close() error {
	f.mu.Lock()
	for ch := range f.subs {
		delete(f.subs, ch)
		close(ch)
	}
	f.mu.Unlock()
	return nil
}

func (f *Feed) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := f.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		out := f.subscribe(conn)
		if out == nil {
			return
		}
		defer f.unsubscribe(out)

		// Writer goroutine. Closing the connection on exit unblocks the
		// reader below.
		go func() {
			defer conn.Close()
			for b := range out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}()

		// Reader loop: observers send nothing meaningful, but reading is
		// what surfaces the close frame.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
}

// subscribe replays the backlog over the fresh connection and registers a
// live channel. Returns nil when the replay write fails.
func (f *Feed) subscribe(conn *websocket.Conn) chan []byte {
	f.mu.Lock()
	replay := make([][]byte, 0, len(f.backlog))
	for _, e := range f.backlog {
		b, err := json.Marshal(e)
		if err != nil {
			continue
		}
		replay = append(replay, b)
	}
	ch := make(chan []byte, subQueue)
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	for _, b := range replay {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			f.unsubscribe(ch)
			return nil
		}
	}
	return ch
}

func (f *Feed) unsubscribe(ch chan []byte) {
	f.mu.Lock()
	if _, ok := f.subs[ch]; ok {
		delete(f.subs, ch)
		close(ch)
	}
	f.mu.Unlock()
}
