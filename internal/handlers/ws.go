package handlers

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/monocle-dev/carbontrack/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// LeaderboardHub pushes "refresh" hints to open leaderboard pages whenever
// a new emission is recorded. It never touches persisted state.
type LeaderboardHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
	// writeMu serializes broadcasts; a connection allows one writer at a time.
	writeMu  sync.Mutex
	upgrader websocket.Upgrader
}

// NewLeaderboardHub accepts same-host connections and those whose Origin is
// in allowedOrigins.
func NewLeaderboardHub(allowedOrigins []string) *LeaderboardHub {
	hub := &LeaderboardHub{clients: make(map[*websocket.Conn]bool)}

	hub.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if slices.Contains(allowedOrigins, origin) {
				return true
			}
			return origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}

	return hub
}

func (hub *LeaderboardHub) Clients() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.clients)
}

func (hub *LeaderboardHub) BroadcastRefresh() {
	hub.mu.RLock()
	if len(hub.clients) == 0 {
		hub.mu.RUnlock()
		return
	}

	// Copy so the lock is not held while writing.
	clients := make([]*websocket.Conn, 0, len(hub.clients))
	for conn := range hub.clients {
		clients = append(clients, conn)
	}
	hub.mu.RUnlock()

	hub.writeMu.Lock()
	defer hub.writeMu.Unlock()

	for _, conn := range clients {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			logging.Log.WithError(err).Warn("failed to set write deadline for broadcast")
			continue
		}

		err := conn.WriteJSON(map[string]string{
			"type":    "refresh",
			"message": "Leaderboard updated",
		})

		if err != nil {
			logging.Log.WithError(err).Warn("failed to broadcast refresh to client")
			hub.remove(conn)
		}
	}
}

func (hub *LeaderboardHub) remove(conn *websocket.Conn) {
	hub.mu.Lock()
	_, ok := hub.clients[conn]
	delete(hub.clients, conn)
	hub.mu.Unlock()

	if ok {
		conn.Close()
	}
}

// Serve upgrades the request and keeps the connection alive until the
// client goes away.
func (hub *LeaderboardHub) Serve(c *gin.Context) {
	conn, err := hub.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Log.WithError(err).Warn("failed to set initial read deadline")
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		conn.Close()
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":    "connected",
		"message": "WebSocket connection established",
	})
	if err != nil {
		logging.Log.WithError(err).Warn("failed to send welcome message")
		conn.Close()
		return
	}

	hub.mu.Lock()
	hub.clients[conn] = true
	hub.mu.Unlock()

	defer hub.remove(conn)

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Log.WithError(err).Warn("leaderboard WebSocket error")
			}
			return
		}
	}
}
