package services

import (
	"sort"
	"time"

	"github.com/manv6/trumps-dashboard/internal/models"
)

// Complete finalizes a session: every occupied slot that scored at
// least one round gets the sum of its points recorded under its user
// id, and the session is frozen. Completing twice is rejected and
// leaves the first result untouched.
func Complete(s *models.Session, now time.Time) (map[string]int, error) {
	if s.Completed {
		return nil, models.ErrAlreadyCompleted
	}

	finalScores := make(map[string]int)
	for slot, p := range s.Participants {
		total, scored := 0, false
		for _, points := range s.Players[slot].Points {
			if points != nil {
				total += *points
				scored = true
			}
		}
		if scored {
			finalScores[p.UserID] = total
		}
	}

	s.FinalScores = finalScores
	s.Completed = true
	s.CompletedAt = &now
	return finalScores, nil
}

// RankedScore is one row of the final standings.
type RankedScore struct {
	UserID string `json:"userId"`
	Name   string `json:"username"`
	Score  int    `json:"score"`
	Rank   int    `json:"rank"`
}

// Rankings derives the final standings from a completed session using
// competition ranking: equal scores share a rank and the next distinct
// score resumes at its list position + 1.
func Rankings(s *models.Session) []RankedScore {
	ranked := make([]RankedScore, 0, len(s.FinalScores))
	for userID, score := range s.FinalScores {
		name := userID
		if slot := s.SlotOf(userID); slot != -1 {
			name = s.Participants[slot].Name
		}
		ranked = append(ranked, RankedScore{UserID: userID, Name: name, Score: score})
	}

	// Descending by score, then by user id for a stable order on ties.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	for i := range ranked {
		if i > 0 && ranked[i].Score == ranked[i-1].Score {
			ranked[i].Rank = ranked[i-1].Rank
		} else {
			ranked[i].Rank = i + 1
		}
	}
	return ranked
}
