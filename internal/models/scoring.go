package models

// Score computes the points for one round cell. An exact bid earns the
// outcome plus a 10 point bonus; a missed (or missing) bid earns the
// outcome alone. A nil outcome means the cell is not yet scored.
func Score(bid, outcome *int) *int {
	if outcome == nil {
		return nil
	}
	points := *outcome
	if bid != nil && *bid == *outcome {
		points += 10
	}
	return &points
}
