// internal/livereload/hub.go
//
// Live-reload channel.
//
// Context
// -------
// In development the server opens a second listener on port+1.  Browsers
// connect with a WebSocket (see ClientScript) and reload the page when
// they receive the text frame "reload".  The Watcher triggers a broadcast
// after the view engine has re-parsed the templates.
//
// Hub owns every connection: ServeHTTP blocks for the lifetime of one
// client, and Close disconnects everyone and waits for those handlers to
// return.
//
// Notes
// -----
// • A client too slow to drain its buffer misses that message.  The next
//   save sends another.
// • Oxford commas, two spaces after periods.
package livereload

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yanizio/campus/internal/metrics"
)

// MsgReload is the frame that tells a browser to reload.
const MsgReload = "reload"

const writeWait = 5 * time.Second

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans messages out to connected browsers.
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// NewHub returns an empty Hub.  Any origin may connect; the listener only
// runs in development.
func NewHub(log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.S()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  512,
			WriteBufferSize: 512,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and blocks until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "live reload stopped", http.StatusServiceUnavailable)
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()
	defer h.wg.Done()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debugw("livereload upgrade failed", "err", err)
		return
	}
	// Clear the server's ReadTimeout; this connection idles on purpose.
	_ = conn.SetReadDeadline(time.Time{})
	c := &client{conn: conn, send: make(chan []byte, 4)}
	if !h.add(c) {
		_ = conn.Close()
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()

	// Browsers never send anything; a read error means they left.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	<-done
	_ = conn.Close()
}

func (c *client) writeLoop() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			// Drain so remove() never blocks on a full buffer.
			for range c.send {
			}
			return
		}
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.LiveReloadClients.Inc()
	h.log.Debugw("livereload client connected", "clients", len(h.clients))
	return true
}

// remove unregisters c and closes its send channel.  Broadcast holds the
// read lock while sending, so no send can race the close.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.LiveReloadClients.Dec()
}

// Broadcast queues msg for every client and reports how many accepted it.
func (h *Hub) Broadcast(msg string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		select {
		case c.send <- []byte(msg):
			n++
		default:
		}
	}
	return n
}

// Clients reports the number of connected browsers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their handlers to return.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		_ = c.conn.Close()
	}
	h.mu.Unlock()
	h.wg.Wait()
}

// ClientScript is the inline script that connects a page to the hub on
// port.  It reconnects quietly when the server restarts.
func ClientScript(port int) string {
	return fmt.Sprintf(`<script>
(function () {
  function connect() {
    var ws = new WebSocket("ws://" + location.hostname + ":%d/");
    ws.onmessage = function (e) { if (e.data === %q) { location.reload(); } };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();
</script>`, port, MsgReload)
}
