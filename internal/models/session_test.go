package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manv6/trumps-dashboard/internal/models"
)

func newTestSession(t *testing.T, capacity int) *models.Session {
	t.Helper()
	s, err := models.NewSession("ABCD1234", "host-1", "Alice", capacity)
	require.NoError(t, err)
	return s
}

// seat fills the remaining slots so the session is full.
func seat(t *testing.T, s *models.Session, names ...string) {
	t.Helper()
	for i, name := range names {
		require.NoError(t, s.Join(userID(i+1), name))
	}
}

func userID(i int) string {
	return []string{"host-1", "user-2", "user-3", "user-4", "user-5"}[i]
}

func TestNewSession(t *testing.T) {
	t.Run("seats the host in slot zero", func(t *testing.T) {
		s := newTestSession(t, 4)

		assert.Equal(t, "ABCD1234", s.Code)
		assert.Equal(t, "host-1", s.HostID)
		assert.Len(t, s.Participants, 1)
		assert.Equal(t, "Alice", s.Players[0].Name)
		assert.Equal(t, "Player 2", s.Players[1].Name)
		assert.Equal(t, 0, s.CurrentRound)
		assert.False(t, s.Started)
		assert.False(t, s.Completed)
	})

	t.Run("sizes records to the round plan", func(t *testing.T) {
		s := newTestSession(t, 4)

		require.Len(t, s.Players, 4)
		for _, rec := range s.Players {
			assert.Len(t, rec.Bids, 20)
			assert.Len(t, rec.Outcomes, 20)
			assert.Len(t, rec.Points, 20)
		}
	})

	t.Run("rejects invalid capacity", func(t *testing.T) {
		_, err := models.NewSession("ABCD1234", "host-1", "Alice", 1)
		assert.ErrorIs(t, err, models.ErrInvalidCapacity)
	})
}

func TestSession_Join(t *testing.T) {
	t.Run("fills slots in order with display names", func(t *testing.T) {
		s := newTestSession(t, 4)
		seat(t, s, "Bob", "Carol")

		assert.Len(t, s.Participants, 3)
		assert.Equal(t, 1, s.SlotOf("user-2"))
		assert.Equal(t, "Bob", s.Players[1].Name)
		assert.Equal(t, "Carol", s.Players[2].Name)
		assert.Equal(t, "Player 4", s.Players[3].Name)
	})

	t.Run("rejects duplicate user without adding a slot", func(t *testing.T) {
		s := newTestSession(t, 4)
		seat(t, s, "Bob")

		err := s.Join("user-2", "Bob again")
		assert.ErrorIs(t, err, models.ErrAlreadyJoined)
		assert.Len(t, s.Participants, 2)
	})

	t.Run("rejects joins past capacity", func(t *testing.T) {
		s := newTestSession(t, 2)
		seat(t, s, "Bob")

		err := s.Join("user-3", "Carol")
		assert.ErrorIs(t, err, models.ErrSessionFull)
		assert.Len(t, s.Participants, 2)
	})
}

func TestSession_SetBid(t *testing.T) {
	t.Run("records the bid for the actor's own slot", func(t *testing.T) {
		s := newTestSession(t, 4)
		seat(t, s, "Bob", "Carol", "Dave")

		require.NoError(t, s.SetBid("user-2", 0, 1, intPtr(3)))
		require.NotNil(t, s.Players[1].Bids[0])
		assert.Equal(t, 3, *s.Players[1].Bids[0])
	})

	t.Run("rejects writing someone else's column", func(t *testing.T) {
		s := newTestSession(t, 4)
		seat(t, s, "Bob", "Carol", "Dave")

		err := s.SetBid("user-2", 0, 0, intPtr(3))
		assert.ErrorIs(t, err, models.ErrNotYourSlot)
		assert.Nil(t, s.Players[0].Bids[0])
	})

	t.Run("rejects values beyond the round card count", func(t *testing.T) {
		s := newTestSession(t, 4)
		seat(t, s, "Bob", "Carol", "Dave")

		assert.ErrorIs(t, s.SetBid("host-1", 0, 0, intPtr(11)), models.ErrValueOutOfRange)
		assert.ErrorIs(t, s.SetBid("host-1", 0, 0, intPtr(-1)), models.ErrValueOutOfRange)
	})

	t.Run("bid change on a scored outcome recomputes points", func(t *testing.T) {
		s := newTestSession(t, 2)
		seat(t, s, "Bob")
		require.NoError(t, s.SetBid("host-1", 0, 0, intPtr(3)))
		require.NoError(t, s.SetBid("user-2", 0, 1, intPtr(2)))
		require.NoError(t, s.SetOutcome("host-1", 0, 0, intPtr(4)))
		require.Equal(t, 4, *s.Players[0].Points[0])

		// Correcting the bid to match the outcome re-scores the cell.
		require.NoError(t, s.SetBid("host-1", 0, 0, intPtr(4)))
		assert.Equal(t, 14, *s.Players[0].Points[0])
	})

	t.Run("clearing a bid drops the bonus", func(t *testing.T) {
		s := newTestSession(t, 2)
		seat(t, s, "Bob")
		require.NoError(t, s.SetBid("host-1", 0, 0, intPtr(4)))
		require.NoError(t, s.SetBid("user-2", 0, 1, intPtr(2)))
		require.NoError(t, s.SetOutcome("host-1", 0, 0, intPtr(4)))
		require.Equal(t, 14, *s.Players[0].Points[0])

		require.NoError(t, s.SetBid("host-1", 0, 0, nil))
		assert.Equal(t, 4, *s.Players[0].Points[0])
	})
}

func TestSession_SetOutcome(t *testing.T) {
	t.Run("rejected until all occupied slots have bid", func(t *testing.T) {
		s := newTestSession(t, 2)
		seat(t, s, "Bob")
		require.NoError(t, s.SetBid("host-1", 0, 0, intPtr(1)))

		err := s.SetOutcome("host-1", 0, 0, intPtr(1))
		assert.ErrorIs(t, err, models.ErrBidsIncomplete)
	})

	t.Run("scores the cell immediately", func(t *testing.T) {
		s := newTestSession(t, 2)
		seat(t, s, "Bob")
		require.NoError(t, s.SetBid("host-1", 0, 0, intPtr(1)))
		require.NoError(t, s.SetBid("user-2", 0, 1, intPtr(0)))

		require.NoError(t, s.SetOutcome("host-1", 0, 0, intPtr(1)))
		assert.Equal(t, 11, *s.Players[0].Points[0])
	})
}

func TestSession_Rounds(t *testing.T) {
	t.Run("advance moves forward until the last round", func(t *testing.T) {
		s := newTestSession(t, 4)

		ready, err := s.AdvanceRound()
		assert.NoError(t, err)
		assert.False(t, ready)
		assert.Equal(t, 1, s.CurrentRound)
	})

	t.Run("advance at the last round reports completion readiness", func(t *testing.T) {
		s := newTestSession(t, 2)
		seat(t, s, "Bob")
		last := len(s.RoundPlan) - 1
		s.CurrentRound = last

		ready, err := s.AdvanceRound()
		assert.NoError(t, err)
		assert.False(t, ready, "outcomes missing")
		assert.Equal(t, last, s.CurrentRound)

		for slot, uid := range []string{"host-1", "user-2"} {
			require.NoError(t, s.SetBid(uid, last, slot, intPtr(1)))
		}
		for slot, uid := range []string{"host-1", "user-2"} {
			require.NoError(t, s.SetOutcome(uid, last, slot, intPtr(1)))
		}

		ready, err = s.AdvanceRound()
		assert.NoError(t, err)
		assert.True(t, ready)
	})

	t.Run("retreat reopens a completed session", func(t *testing.T) {
		s := newTestSession(t, 4)
		s.CurrentRound = 5
		s.Completed = true
		s.FinalScores = map[string]int{"host-1": 10}

		require.NoError(t, s.RetreatRound())
		assert.Equal(t, 4, s.CurrentRound)
		assert.False(t, s.Completed)
		assert.Nil(t, s.FinalScores)
	})

	t.Run("retreat at round zero is rejected", func(t *testing.T) {
		s := newTestSession(t, 4)
		assert.ErrorIs(t, s.RetreatRound(), models.ErrRoundLocked)
	})
}

func TestSession_Reset(t *testing.T) {
	t.Run("host wipes the scoreboard", func(t *testing.T) {
		s := newTestSession(t, 4)
		seat(t, s, "Bob")
		require.NoError(t, s.SetBid("host-1", 0, 0, intPtr(2)))
		s.CurrentRound = 3
		s.Started = true

		require.NoError(t, s.Reset("host-1"))
		assert.Equal(t, 0, s.CurrentRound)
		assert.False(t, s.Started)
		assert.Nil(t, s.Players[0].Bids[0])
		assert.Equal(t, "Alice", s.Players[0].Name)
		assert.Equal(t, "Bob", s.Players[1].Name)
		assert.Equal(t, "Player 3", s.Players[2].Name)
	})

	t.Run("non-host cannot reset", func(t *testing.T) {
		s := newTestSession(t, 4)
		seat(t, s, "Bob")

		assert.ErrorIs(t, s.Reset("user-2"), models.ErrNotHost)
	})
}

func TestSession_Clone(t *testing.T) {
	t.Run("mutating the clone leaves the original alone", func(t *testing.T) {
		s := newTestSession(t, 2)
		seat(t, s, "Bob")
		require.NoError(t, s.SetBid("host-1", 0, 0, intPtr(2)))

		c := s.Clone()
		*c.Players[0].Bids[0] = 9
		c.Participants[0].Name = "Mallory"
		c.RoundPlan[0] = 99

		assert.Equal(t, 2, *s.Players[0].Bids[0])
		assert.Equal(t, "Alice", s.Participants[0].Name)
		assert.Equal(t, 10, s.RoundPlan[0])
	})
}
