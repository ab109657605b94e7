package duels

import (
	"log"
	"net/http"

	"api/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// DuelWebSocket handles WebSocket connections watching a specific duel
func DuelWebSocket(c *gin.Context) {
	challengeID := c.Param("id")

	// Validate the challenge before upgrading
	if _, err := duelStore.Get(c.Request.Context(), challengeID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrChallengeNotFound})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	realtime.RegisterClient(challengeID, conn)
	defer func() {
		realtime.UnregisterClient(challengeID, conn)
		conn.Close()
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}
