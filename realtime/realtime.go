package realtime

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

var (
	duelClients = make(map[string]map[*websocket.Conn]bool) // Map of challenge ID to connected clients
	broadcast   = make(chan DuelUpdate)                     // Broadcast channel for updates
	mutex       sync.Mutex                                  // Mutex to protect duelClients map
)

// DuelUpdate notifies watchers of a challenge status change. Clients may
// still poll; this channel is a convenience, not a delivery guarantee.
type DuelUpdate struct {
	ChallengeID string  `json:"challenge_id"`
	Status      string  `json:"status"`
	WinnerID    *string `json:"winner_id,omitempty"`
}

// RegisterClient adds a WebSocket client watching a specific challenge
func RegisterClient(challengeID string, conn *websocket.Conn) {
	mutex.Lock()
	if duelClients[challengeID] == nil {
		duelClients[challengeID] = make(map[*websocket.Conn]bool)
	}
	duelClients[challengeID][conn] = true
	mutex.Unlock()
}

// UnregisterClient removes a WebSocket client from a specific challenge
func UnregisterClient(challengeID string, conn *websocket.Conn) {
	mutex.Lock()
	if clients, exists := duelClients[challengeID]; exists {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(duelClients, challengeID)
		}
	}
	mutex.Unlock()
}

// BroadcastDuelUpdate sends an update to all clients watching the challenge
func BroadcastDuelUpdate(update DuelUpdate) {
	broadcast <- update
}

func handleBroadcast() {
	for {
		update := <-broadcast
		mutex.Lock()
		if clients, exists := duelClients[update.ChallengeID]; exists {
			for client := range clients {
				if err := client.WriteJSON(update); err != nil {
					log.Printf("WebSocket write error: %v", err)
					client.Close()
					delete(clients, client)
				}
			}
		}
		mutex.Unlock()
	}
}

func init() {
	go handleBroadcast()
}
