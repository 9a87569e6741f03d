package models

import "encoding/json"

// WSMessage is the envelope for every realtime message in either
// direction. Payload stays raw until the router knows the type.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client → Server message types
const (
	MsgTypeJoinGame   = "join-game"
	MsgTypeGameAction = "game-action"
)

// Game actions carried by MsgTypeGameAction
const (
	ActionSetBid       = "set-bid"
	ActionSetOutcome   = "set-outcome"
	ActionStartGame    = "start-game"
	ActionAdvanceRound = "advance-round"
	ActionGoBackRound  = "go-back-round"
	ActionResetGame    = "reset-game"
	ActionCompleteGame = "complete-game"
)

// Server → Client message types
const (
	MsgTypeGameState          = "game-state"
	MsgTypePlayerJoined       = "player-joined"
	MsgTypePlayerDisconnected = "player-disconnected"
	MsgTypeError              = "error"
)

// JoinGamePayload attaches a connection to a session.
type JoinGamePayload struct {
	Code   string `json:"code"`
	UserID string `json:"userId"`
	Name   string `json:"username"`
}

// GameActionPayload carries one of the Action* values plus its
// arguments. Value is a pointer so clearing a cell ships as null.
type GameActionPayload struct {
	Action string `json:"action"`
	Round  int    `json:"round"`
	Slot   int    `json:"slot"`
	Value  *int   `json:"value"`
}

// BidHints is the advisory turn-order info derived for the current
// round and shipped with every state broadcast.
type BidHints struct {
	FirstBidder  int  `json:"firstBidder"`
	LastBidder   int  `json:"lastBidder"`
	ForbiddenBid *int `json:"forbiddenBid,omitempty"`
}

// GameStatePayload is the full post-mutation snapshot broadcast to
// every connection in the session.
type GameStatePayload struct {
	Session *Session `json:"game"`
	Hints   BidHints `json:"hints"`
}

// PlayerJoinedPayload notifies a session that a participant joined or
// reconnected.
type PlayerJoinedPayload struct {
	Name         string         `json:"username"`
	Participants []*Participant `json:"players"`
}

// PlayerDisconnectedPayload notifies a session that a participant's
// connection dropped. The slot is retained.
type PlayerDisconnectedPayload struct {
	UserID       string         `json:"userId"`
	Participants []*Participant `json:"players"`
}

// ErrorPayload is sent to the acting client only; errors never mutate
// state and are never broadcast.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewStateMessage wraps a session snapshot (plus derived bid hints)
// into a broadcastable message.
func NewStateMessage(s *Session) *WSMessage {
	hints := BidHints{
		FirstBidder: FirstBidder(s, s.CurrentRound),
		LastBidder:  LastBidder(s, s.CurrentRound),
	}
	if !s.Completed {
		hints.ForbiddenBid = ForbiddenBid(s, s.CurrentRound)
	}
	return mustMessage(MsgTypeGameState, GameStatePayload{Session: s, Hints: hints})
}

// NewErrorMessage builds a client-directed error event.
func NewErrorMessage(msg string) *WSMessage {
	return mustMessage(MsgTypeError, ErrorPayload{Message: msg})
}

func mustMessage(msgType string, payload any) *WSMessage {
	raw, err := json.Marshal(payload)
	if err != nil {
		// Payload types are all plain data; a marshal failure is a bug.
		panic(err)
	}
	return &WSMessage{Type: msgType, Payload: raw}
}
