package models

const (
	MinCapacity = 2
	MaxCapacity = 8
)

// MaxCards returns the card count of the largest round for a given
// player count. Up to 5 players everyone can get 10 cards; beyond that
// the deck caps the hand size.
func MaxCards(capacity int) int {
	if capacity <= 5 {
		return 10
	}
	return 52 / capacity
}

// RoundPlan builds the fixed sequence of per-round card counts for a
// session: max down to 3, then `capacity` rounds of 2, then 3 back up
// to max. For capacity 4 that is
// [10 9 8 7 6 5 4 3 2 2 2 2 3 4 5 6 7 8 9 10].
func RoundPlan(capacity int) ([]int, error) {
	if capacity < MinCapacity || capacity > MaxCapacity {
		return nil, ErrInvalidCapacity
	}

	max := MaxCards(capacity)
	plan := make([]int, 0, 2*(max-2)+capacity)
	for i := max; i > 2; i-- {
		plan = append(plan, i)
	}
	for i := 0; i < capacity; i++ {
		plan = append(plan, 2)
	}
	for i := 3; i <= max; i++ {
		plan = append(plan, i)
	}
	return plan, nil
}
