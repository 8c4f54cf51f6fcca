package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// Event is pushed to a connected client or designer when their order moves.
type Event struct {
	Type    string `json:"type"`
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message"`
}

type userEvent struct {
	userID uuid.UUID
	event  *Event
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var events = make(chan userEvent, 64)

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case ue := <-events:
			clientsMu.RLock()
			conn, ok := clients[ue.userID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(ue.event); err != nil {
				log.Printf("Error sending event to client %s: %v", ue.userID, err)
				conn.Close()
				clientsMu.Lock()
				delete(clients, ue.userID)
				clientsMu.Unlock()
			}
		}
	}
}

// Notify enqueues an event for one user without blocking the caller. Events
// for users with no live connection, or beyond the buffer, are dropped.
func Notify(userID uuid.UUID, eventType, orderID, message string) {
	select {
	case events <- userEvent{userID: userID, event: &Event{Type: eventType, OrderID: orderID, Message: message}}:
	default:
		log.Printf("Event buffer full, dropping %s event for %s", eventType, userID)
	}
}
