package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/notewall/notewall/pkg/logger"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth happens at the HTTP layer before the upgrade; cross-origin
	// browser clients are expected.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterBoardRoutes mounts the push-channel endpoint. Middleware (auth,
// rate limiting) is supplied by the caller on the group.
func RegisterBoardRoutes(rg *gin.RouterGroup, hub *Hub) {
	rg.GET("/board/ws", func(c *gin.Context) {
		serveSession(hub, c.Writer, c.Request)
	})
}

// serveSession upgrades the connection, registers a session and pumps its
// event queue until either side goes away.
func serveSession(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	sess := hub.Connect()
	defer hub.Disconnect(sess.ID())
	defer conn.Close()

	done := make(chan struct{})

	// read loop: clients send nothing meaningful; we only watch for close
	// and answer pings per the protocol.
	go func() {
		defer close(done)
		conn.SetReadLimit(readLimit)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case payload, ok := <-sess.Events():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debugf("write to session %s failed: %v", sess.ID(), err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
