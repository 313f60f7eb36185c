// Package live implements an optional live-feed broadcaster: a transport
// that relays already-encoded frame bytes to connected websocket clients
// as the driver emits them. It renders nothing itself; a separate
// visualization front-end, out of scope here, is the intended consumer.
package live

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	broadcastDepth = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Broadcaster fans frame bytes out to every connected client. It owns no
// simulation state and performs no simulation work: Relay is the only
// method the driver's goroutine calls, and it never blocks on I/O beyond
// a channel send.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[uuid.UUID]chan []byte
}

// NewBroadcaster returns an empty Broadcaster ready to accept connections
// at its Handler and relay frames via Relay.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[uuid.UUID]chan []byte)}
}

// Relay enqueues data for delivery to every currently-connected client. A
// client whose outgoing buffer is full is dropped rather than allowed to
// stall the broadcaster.
func (b *Broadcaster) Relay(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.clients {
		select {
		case ch <- data:
		default:
			log.WithField("client", id).Warn("live-feed client too slow, dropping connection")
			close(ch)
			delete(b.clients, id)
		}
	}
}

// Handler upgrades incoming requests to websocket connections and streams
// relayed frames to each one until it disconnects.
func (b *Broadcaster) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("live-feed upgrade failed")
		return
	}
	id := uuid.New()
	ch := make(chan []byte, broadcastDepth)

	b.mu.Lock()
	b.clients[id] = ch
	b.mu.Unlock()
	log.WithField("client", id).Info("live-feed client connected")

	go b.serve(conn, id, ch)
}

func (b *Broadcaster) serve(conn *websocket.Conn, id uuid.UUID, ch chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		b.mu.Lock()
		delete(b.clients, id)
		b.mu.Unlock()
		log.WithField("client", id).Info("live-feed client disconnected")
	}()

	for {
		select {
		case data, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ListenAndServe starts an HTTP server exposing the broadcaster at /feed.
func (b *Broadcaster) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", b.Handler)
	log.WithField("addr", addr).Info("live feed listening")
	return http.ListenAndServe(addr, mux)
}
