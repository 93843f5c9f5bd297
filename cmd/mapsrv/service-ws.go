package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketService serves MapRequests over a WebSocket at /ws.  One
// JSON request per message, one JSON response per message.
func (s *Service) WebSocketService(ctx context.Context) error {

	var upgrader = websocket.Upgrader{} // use default options

	api := func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Service.WebSocketService connection")

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				log.Println("read error", err)
				break
			}

			var req MapRequest
			if err := json.Unmarshal(message, &req); err != nil {
				resp := &MapResponse{Error: "can't parse: " + err.Error()}
				js, _ := json.Marshal(resp)
				if err = c.WriteMessage(mt, js); err != nil {
					log.Println("write (err)", err)
					break
				}
				continue
			}

			js, err := json.Marshal(s.Process(ctx, &req))
			if err != nil {
				log.Printf("Service.WebSocketService Marshal error %v", err)
				continue
			}
			if err = c.WriteMessage(mt, js); err != nil {
				log.Println("write error", err)
				break
			}
		}
	}

	http.HandleFunc("/ws", api)

	return nil
}
