package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"stock-exchange-game/models"
)

// Greeter returns the messages a client receives right after connecting,
// before any broadcast.
type Greeter func(r *http.Request) []models.WSMessage

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins; the API is already open through CORS
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWs upgrades the request, queues the greeting and registers the
// client with the hub.
func ServeWs(h *models.Hub, w http.ResponseWriter, r *http.Request, greet Greeter, log zerolog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	client := &models.Client{Conn: conn, Send: make(chan models.WSMessage, 256)}
	if greet != nil {
		for _, msg := range greet(r) {
			select {
			case client.Send <- msg:
			default:
				log.Warn().Str("event", msg.Event).Msg("Greeting dropped")
			}
		}
	}
	if !h.Join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(h)
}
