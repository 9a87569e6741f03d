package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/manv6/trumps-dashboard/internal/models"
	"github.com/manv6/trumps-dashboard/internal/security"
)

// Sender is the hub surface the router needs: attaching a joined
// connection and delivering events. Split out so router tests can run
// without sockets.
type Sender interface {
	Join(code string, c *Client)
	BroadcastToSession(code string, message *models.WSMessage)
	SendToClient(c *Client, message *models.WSMessage)
}

// Router dispatches inbound client messages to session mutations and
// broadcasts the resulting state. Each client moves through
// unjoined → joined; game actions are only accepted after a join.
type Router struct {
	registry *Registry
	sender   Sender
}

func NewRouter(registry *Registry, sender Sender) *Router {
	return &Router{
		registry: registry,
		sender:   sender,
	}
}

// HandleMessage processes one raw frame from a client. Malformed or
// unauthorized messages produce a client-directed error event and never
// mutate state or broadcast.
func (r *Router) HandleMessage(c *Client, raw []byte) {
	var msg models.WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		r.sender.SendToClient(c, models.NewErrorMessage("malformed message"))
		return
	}
	if !security.IsValidMessageType(msg.Type) {
		r.sender.SendToClient(c, models.NewErrorMessage(fmt.Sprintf("unknown message type: %s", msg.Type)))
		return
	}

	switch msg.Type {
	case models.MsgTypeJoinGame:
		r.handleJoin(c, msg.Payload)
	case models.MsgTypeGameAction:
		r.handleAction(c, msg.Payload)
	}
}

func (r *Router) handleJoin(c *Client, payload json.RawMessage) {
	var p models.JoinGamePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		r.sender.SendToClient(c, models.NewErrorMessage("malformed join payload"))
		return
	}
	if err := security.ValidateSessionCode(p.Code); err != nil {
		r.sender.SendToClient(c, models.NewErrorMessage(err.Error()))
		return
	}

	var slot int
	snapshot, err := r.registry.Update(p.Code, func(s *models.Session) error {
		if s.SlotOf(p.UserID) == -1 {
			// First contact over the socket; seat the player the same
			// way the HTTP join endpoint would.
			name, err := security.ValidateParticipantName(p.Name)
			if err != nil {
				return err
			}
			if err := s.Join(p.UserID, name); err != nil {
				return err
			}
		}
		s.SetConnected(p.UserID, true)
		slot = s.SlotOf(p.UserID)
		return nil
	})
	if err != nil {
		r.sender.SendToClient(c, models.NewErrorMessage(err.Error()))
		return
	}

	c.setSession(p.Code, p.UserID, slot)
	r.sender.Join(p.Code, c)

	r.sender.SendToClient(c, models.NewStateMessage(snapshot))
	r.broadcast(p.Code, models.MsgTypePlayerJoined, models.PlayerJoinedPayload{
		Name:         snapshot.Participants[slot].Name,
		Participants: snapshot.Participants,
	})
}

func (r *Router) handleAction(c *Client, payload json.RawMessage) {
	code, userID := c.session()
	if code == "" {
		r.sender.SendToClient(c, models.NewErrorMessage(models.ErrNotJoined.Error()))
		return
	}

	var p models.GameActionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		r.sender.SendToClient(c, models.NewErrorMessage("malformed action payload"))
		return
	}

	now := time.Now()
	snapshot, err := r.registry.Update(code, func(s *models.Session) error {
		switch p.Action {
		case models.ActionSetBid:
			return s.SetBid(userID, p.Round, p.Slot, p.Value)
		case models.ActionSetOutcome:
			return s.SetOutcome(userID, p.Round, p.Slot, p.Value)
		case models.ActionStartGame:
			return s.Start(userID)
		case models.ActionAdvanceRound:
			ready, err := s.AdvanceRound()
			if err != nil || !ready {
				return err
			}
			_, err = Complete(s, now)
			return err
		case models.ActionGoBackRound:
			return s.RetreatRound()
		case models.ActionResetGame:
			return s.Reset(userID)
		case models.ActionCompleteGame:
			if userID != s.HostID {
				return models.ErrNotHost
			}
			_, err := Complete(s, now)
			return err
		default:
			return fmt.Errorf("unknown action: %s", p.Action)
		}
	})
	if err != nil {
		r.sender.SendToClient(c, models.NewErrorMessage(err.Error()))
		return
	}

	r.sender.BroadcastToSession(code, models.NewStateMessage(snapshot))
}

// HandleDisconnect clears the participant's connected flag and tells
// the rest of the session. The slot is kept; rejoining with the same
// user id restores it.
func (r *Router) HandleDisconnect(c *Client) {
	code, userID := c.session()
	if code == "" || userID == "" {
		return
	}

	snapshot, err := r.registry.Update(code, func(s *models.Session) error {
		s.SetConnected(userID, false)
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrSessionNotFound) {
			log.Printf("disconnect update failed (session=%s): %v", code, err)
		}
		return
	}

	r.broadcast(code, models.MsgTypePlayerDisconnected, models.PlayerDisconnectedPayload{
		UserID:       userID,
		Participants: snapshot.Participants,
	})
}

func (r *Router) broadcast(code, msgType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("error marshaling %s payload: %v", msgType, err)
		return
	}
	r.sender.BroadcastToSession(code, &models.WSMessage{Type: msgType, Payload: raw})
}
