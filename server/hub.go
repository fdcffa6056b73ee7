package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"nanogrid/storage"
)

type hubMessage struct {
	Type      string             `json:"type"`
	Snapshot  *storage.Snapshot  `json:"snapshot,omitempty"`
	Snapshots []storage.Snapshot `json:"snapshots,omitempty"`
}

// Hub pushes fresh panel snapshots to connected websocket clients.
type Hub struct {
	engine   storage.SnapEngine
	upgrader websocket.Upgrader

	mutex       sync.Mutex
	subscribers map[*websocket.Conn]bool
}

func NewHub(engine storage.SnapEngine) *Hub {
	return &Hub{
		engine:      engine,
		subscribers: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (hub *Hub) addSubscriber(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.subscribers[conn] = true
}

func (hub *Hub) removeSubscriber(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.subscribers, conn)
}

// Broadcast is wired as the panel runner's notify hook.
func (hub *Hub) Broadcast(snapshot storage.Snapshot) {
	message := hubMessage{Type: "snapshot", Snapshot: &snapshot}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for conn := range hub.subscribers {
		if err := conn.WriteJSON(message); err != nil {
			logrus.Errorf("Failed to push snapshot, err [%s]", err)
			conn.Close()
			delete(hub.subscribers, conn)
		}
	}
}

func (hub *Hub) handle(ctx *gin.Context) {
	conn, err := hub.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logrus.Errorf("Failed to upgrade websocket, err [%s]", err)
		return
	}
	defer conn.Close()

	hub.addSubscriber(conn)
	defer hub.removeSubscriber(conn)

	// Send the current state before any live updates.
	if snapshots, err := hub.engine.Load(); err == nil {
		initial := hubMessage{Type: "snapshots"}
		for _, snapshot := range snapshots {
			initial.Snapshots = append(initial.Snapshots, snapshot)
		}
		hub.mutex.Lock()
		err = conn.WriteJSON(initial)
		hub.mutex.Unlock()
		if err != nil {
			return
		}
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
