package models

// Field identifies which per-round column a write targets.
type Field string

const (
	FieldBid     Field = "bid"
	FieldOutcome Field = "outcome"
)

// CanWrite decides whether the participant in actorSlot may write the
// given field for the given round right now. Bids are open for the
// current and future rounds (pre-committing is allowed); outcomes are
// open for the current and earlier rounds (corrections are allowed) but
// only once every occupied slot has bid for that round. Nothing is
// writable on a completed session.
func CanWrite(s *Session, actorSlot, round int, field Field) error {
	if s.Completed {
		return ErrSessionCompleted
	}
	if actorSlot < 0 || actorSlot >= len(s.Participants) {
		return ErrNotYourSlot
	}

	switch field {
	case FieldBid:
		if round < s.CurrentRound {
			return ErrRoundLocked
		}
	case FieldOutcome:
		if round > s.CurrentRound {
			return ErrRoundLocked
		}
		if !AllBidsIn(s, round) {
			return ErrBidsIncomplete
		}
	default:
		return ErrRoundLocked
	}
	return nil
}

// AllBidsIn reports whether every occupied slot has a bid for the round.
func AllBidsIn(s *Session, round int) bool {
	for i := range s.Participants {
		if s.Players[i].Bids[round] == nil {
			return false
		}
	}
	return true
}

// FirstBidder returns the slot that opens the bidding for a round. The
// opener rotates one seat per round.
func FirstBidder(s *Session, round int) int {
	return round % s.Capacity
}

// LastBidder returns the slot that bids last in a round, the seat
// circularly before the opener.
func LastBidder(s *Session, round int) int {
	return (FirstBidder(s, round) + s.Capacity - 1) % s.Capacity
}

// ForbiddenBid computes the advisory fairness hint for a round's last
// bidder: the bid that would make the round's bids sum to exactly the
// card count. It returns nil until every other occupied slot has bid,
// or when no non-negative bid would hit the sum. The hint is surfaced
// to clients but submitting the forbidden value is still accepted.
func ForbiddenBid(s *Session, round int) *int {
	last := LastBidder(s, round)
	sum := 0
	for i := range s.Participants {
		if i == last {
			continue
		}
		bid := s.Players[i].Bids[round]
		if bid == nil {
			return nil
		}
		sum += *bid
	}
	forbidden := s.RoundPlan[round] - sum
	if forbidden < 0 || forbidden > s.RoundPlan[round] {
		return nil
	}
	return &forbidden
}
