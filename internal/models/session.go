package models

import (
	"fmt"
	"time"
)

// Participant is one user attached to a session. Participants are never
// removed once added; disconnects only flip the Connected flag so the
// slot survives for reconnection.
type Participant struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"username"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// PlayerRecord holds one slot's per-round columns. Cells are *int so an
// unset entry stays distinct from a recorded zero; all three slices are
// sized to the round plan.
type PlayerRecord struct {
	Name     string `json:"name"`
	Bids     []*int `json:"bids"`
	Outcomes []*int `json:"outcomes"`
	Points   []*int `json:"points"`
}

// Session is the authoritative in-memory state of one game. All
// mutations go through the registry's per-session lock; Session itself
// is not safe for concurrent use.
type Session struct {
	Code         string          `json:"code"`
	HostID       string          `json:"hostId"`
	Capacity     int             `json:"capacity"`
	Participants []*Participant  `json:"participants"`
	RoundPlan    []int           `json:"roundPlan"`
	CurrentRound int             `json:"currentRound"`
	Started      bool            `json:"started"`
	Completed    bool            `json:"completed"`
	Players      []*PlayerRecord `json:"players"`
	FinalScores  map[string]int  `json:"finalScores,omitempty"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// PlaceholderName is the display name for a slot no one occupies yet.
func PlaceholderName(slot int) string {
	return fmt.Sprintf("Player %d", slot+1)
}

// NewSession builds a session with the host seated in slot 0 and
// placeholder names in the remaining slots.
func NewSession(code, hostID, hostName string, capacity int) (*Session, error) {
	plan, err := RoundPlan(capacity)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Code:     code,
		HostID:   hostID,
		Capacity: capacity,
		Participants: []*Participant{{
			UserID:   hostID,
			Name:     hostName,
			JoinedAt: time.Now(),
		}},
		RoundPlan: plan,
		Players:   make([]*PlayerRecord, capacity),
		CreatedAt: time.Now(),
	}
	for i := range s.Players {
		name := PlaceholderName(i)
		if i == 0 {
			name = hostName
		}
		s.Players[i] = &PlayerRecord{
			Name:     name,
			Bids:     make([]*int, len(plan)),
			Outcomes: make([]*int, len(plan)),
			Points:   make([]*int, len(plan)),
		}
	}
	return s, nil
}

// SlotOf returns the slot index occupied by userID, or -1.
func (s *Session) SlotOf(userID string) int {
	for i, p := range s.Participants {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// Join seats a new participant in the next free slot.
func (s *Session) Join(userID, name string) error {
	if s.SlotOf(userID) != -1 {
		return ErrAlreadyJoined
	}
	if len(s.Participants) >= s.Capacity {
		return ErrSessionFull
	}

	s.Participants = append(s.Participants, &Participant{
		UserID:   userID,
		Name:     name,
		JoinedAt: time.Now(),
	})
	s.Players[len(s.Participants)-1].Name = name
	return nil
}

// SetBid records (or clears, when value is nil) a bid after checking the
// turn guard, and recomputes the cell's points so a bid change on an
// already-scored outcome stays consistent.
func (s *Session) SetBid(actingUserID string, round, slot int, value *int) error {
	if err := s.authorizeWrite(actingUserID, round, slot, FieldBid, value); err != nil {
		return err
	}
	s.Players[slot].Bids[round] = value
	s.Players[slot].Points[round] = Score(value, s.Players[slot].Outcomes[round])
	return nil
}

// SetOutcome records (or clears) an outcome and recomputes the cell's
// points.
func (s *Session) SetOutcome(actingUserID string, round, slot int, value *int) error {
	if err := s.authorizeWrite(actingUserID, round, slot, FieldOutcome, value); err != nil {
		return err
	}
	s.Players[slot].Outcomes[round] = value
	s.Players[slot].Points[round] = Score(s.Players[slot].Bids[round], value)
	return nil
}

func (s *Session) authorizeWrite(actingUserID string, round, slot int, field Field, value *int) error {
	if round < 0 || round >= len(s.RoundPlan) {
		return ErrRoundLocked
	}
	if slot < 0 || slot >= s.Capacity {
		return ErrNotYourSlot
	}
	actorSlot := s.SlotOf(actingUserID)
	if actorSlot == -1 || actorSlot != slot {
		return ErrNotYourSlot
	}
	if value != nil && (*value < 0 || *value > s.RoundPlan[round]) {
		return ErrValueOutOfRange
	}
	return CanWrite(s, actorSlot, round, field)
}

// Start flags the game as started. Any participant may start; the flag
// only ever goes false to true.
func (s *Session) Start(actingUserID string) error {
	if s.Completed {
		return ErrSessionCompleted
	}
	if s.SlotOf(actingUserID) == -1 {
		return ErrNotJoined
	}
	s.Started = true
	return nil
}

// AllOutcomesIn reports whether every occupied slot has an outcome
// recorded for the given round.
func (s *Session) AllOutcomesIn(round int) bool {
	for i := range s.Participants {
		if s.Players[i].Outcomes[round] == nil {
			return false
		}
	}
	return true
}

// AdvanceRound moves to the next round. At the final round it does not
// move; instead it reports whether the session is ready to complete
// (all outcomes for the final round are in), leaving the completion
// itself to the completion engine.
func (s *Session) AdvanceRound() (readyToComplete bool, err error) {
	if s.Completed {
		return false, ErrSessionCompleted
	}
	last := len(s.RoundPlan) - 1
	if s.CurrentRound < last {
		s.CurrentRound++
		return false, nil
	}
	return s.AllOutcomesIn(last), nil
}

// RetreatRound steps back one round. Retreating out of a completed
// session reopens it for editing; this is deliberate undo behavior.
func (s *Session) RetreatRound() error {
	if s.CurrentRound == 0 {
		return ErrRoundLocked
	}
	s.CurrentRound--
	s.Completed = false
	s.CompletedAt = nil
	s.FinalScores = nil
	return nil
}

// Reset clears the whole scoreboard back to round 0. Host only.
func (s *Session) Reset(actingUserID string) error {
	if actingUserID != s.HostID {
		return ErrNotHost
	}
	for i, rec := range s.Players {
		if i < len(s.Participants) {
			rec.Name = s.Participants[i].Name
		} else {
			rec.Name = PlaceholderName(i)
		}
		rec.Bids = make([]*int, len(s.RoundPlan))
		rec.Outcomes = make([]*int, len(s.RoundPlan))
		rec.Points = make([]*int, len(s.RoundPlan))
	}
	s.CurrentRound = 0
	s.Started = false
	s.Completed = false
	s.CompletedAt = nil
	s.FinalScores = nil
	return nil
}

// SetConnected updates a participant's connectivity flag. Unknown users
// are ignored; the transport layer may race a disconnect against
// eviction.
func (s *Session) SetConnected(userID string, connected bool) {
	if slot := s.SlotOf(userID); slot != -1 {
		s.Participants[slot].Connected = connected
	}
}

// ConnectedCount returns how many participants currently have a live
// connection.
func (s *Session) ConnectedCount() int {
	n := 0
	for _, p := range s.Participants {
		if p.Connected {
			n++
		}
	}
	return n
}

// Clone deep-copies the session so broadcasts and persistence see a
// consistent snapshot after the per-session lock is released.
func (s *Session) Clone() *Session {
	c := *s

	c.Participants = make([]*Participant, len(s.Participants))
	for i, p := range s.Participants {
		cp := *p
		c.Participants[i] = &cp
	}

	c.RoundPlan = append([]int(nil), s.RoundPlan...)

	c.Players = make([]*PlayerRecord, len(s.Players))
	for i, rec := range s.Players {
		c.Players[i] = &PlayerRecord{
			Name:     rec.Name,
			Bids:     cloneCells(rec.Bids),
			Outcomes: cloneCells(rec.Outcomes),
			Points:   cloneCells(rec.Points),
		}
	}

	if s.FinalScores != nil {
		c.FinalScores = make(map[string]int, len(s.FinalScores))
		for k, v := range s.FinalScores {
			c.FinalScores[k] = v
		}
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func cloneCells(cells []*int) []*int {
	out := make([]*int, len(cells))
	for i, v := range cells {
		if v != nil {
			n := *v
			out[i] = &n
		}
	}
	return out
}
