package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// PredictionEvent is broadcast to feed subscribers for every served prediction.
type PredictionEvent struct {
	Species    string    `json:"species"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// PredictionHub fans prediction events out to websocket subscribers.
type PredictionHub struct {
	clients    map[*feedClient]bool
	broadcast  chan []byte
	register   chan *feedClient
	unregister chan *feedClient
	upgrader   websocket.Upgrader
	logger     *zap.Logger

	mu   sync.Mutex
	done chan struct{}
}

func NewPredictionHub(logger *zap.Logger) *PredictionHub {
	return &PredictionHub{
		clients:    make(map[*feedClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Run dispatches register/unregister/broadcast events until Stop is called.
func (h *PredictionHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("feed client connected", zap.Int("total", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.logger.Info("feed client disconnected", zap.Int("total", len(h.clients)))

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}

		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

func (h *PredictionHub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// Broadcast queues an event for all subscribers; it never blocks the caller.
func (h *PredictionHub) Broadcast(event PredictionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	default:
	}
}

// HandleWS upgrades the connection and subscribes it to the feed.
func (h *PredictionHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &feedClient{conn: conn, send: make(chan []byte, 64)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(client)
	go h.readPump(client)
}

func (h *PredictionHub) writePump(client *feedClient) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *PredictionHub) readPump(client *feedClient) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
		client.conn.Close()
	}()
	client.conn.SetReadLimit(512)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
