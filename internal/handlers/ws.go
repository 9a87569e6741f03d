package handlers

import (
	"github.com/coder/websocket"
	"github.com/pocketbase/pocketbase/core"

	"github.com/manv6/trumps-dashboard/internal/services"
)

type WSHandler struct {
	hub     *services.Hub
	origins []string
}

func NewWSHandler(hub *services.Hub, origins []string) *WSHandler {
	return &WSHandler{
		hub:     hub,
		origins: origins,
	}
}

// HandleWebSocket upgrades the request and hands the connection to the
// hub. The connection starts unjoined; the client's first message is
// expected to be join-game.
func (h *WSHandler) HandleWebSocket(re *core.RequestEvent) error {
	conn, err := websocket.Accept(re.Response, re.Request, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		return err
	}

	client := services.NewClient(conn, h.hub)
	client.Start()
	client.Wait()
	return nil
}
