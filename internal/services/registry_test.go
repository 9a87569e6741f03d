package services_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manv6/trumps-dashboard/internal/models"
	"github.com/manv6/trumps-dashboard/internal/services"
)

// fakeStore records mirrored snapshots and can be told to fail.
type fakeStore struct {
	mu    sync.Mutex
	saved []*models.Session
	fail  bool
}

func (f *fakeStore) SaveSnapshot(s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("store unavailable")
	}
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeStore) FindByCode(code string) (*models.Session, error) {
	return nil, models.ErrSessionNotFound
}

func (f *fakeStore) ListAll() ([]*models.Session, error) { return nil, nil }

func (f *fakeStore) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func TestRegistry_Create(t *testing.T) {
	t.Run("assigns unique 8 character codes", func(t *testing.T) {
		registry := services.NewRegistry(nil)
		seen := make(map[string]bool)

		for i := 0; i < 50; i++ {
			s, err := registry.Create("host-1", "Alice", 4)
			require.NoError(t, err)
			assert.Len(t, s.Code, 8)
			assert.False(t, seen[s.Code], "duplicate code %s", s.Code)
			seen[s.Code] = true
		}
	})

	t.Run("propagates capacity validation", func(t *testing.T) {
		registry := services.NewRegistry(nil)
		_, err := registry.Create("host-1", "Alice", 9)
		assert.ErrorIs(t, err, models.ErrInvalidCapacity)
	})
}

func TestRegistry_Get(t *testing.T) {
	t.Run("unknown code is not found", func(t *testing.T) {
		registry := services.NewRegistry(nil)
		_, err := registry.Get("NOPENOPE")
		assert.ErrorIs(t, err, models.ErrSessionNotFound)
	})

	t.Run("returns an isolated snapshot", func(t *testing.T) {
		registry := services.NewRegistry(nil)
		created, err := registry.Create("host-1", "Alice", 4)
		require.NoError(t, err)

		snap, err := registry.Get(created.Code)
		require.NoError(t, err)
		snap.Participants[0].Name = "Mallory"

		again, err := registry.Get(created.Code)
		require.NoError(t, err)
		assert.Equal(t, "Alice", again.Participants[0].Name)
	})
}

func TestRegistry_Update(t *testing.T) {
	t.Run("a failed mutation leaves state untouched", func(t *testing.T) {
		registry := services.NewRegistry(nil)
		created, err := registry.Create("host-1", "Alice", 2)
		require.NoError(t, err)
		_, err = registry.Update(created.Code, func(s *models.Session) error {
			return s.Join("user-2", "Bob")
		})
		require.NoError(t, err)

		_, err = registry.Update(created.Code, func(s *models.Session) error {
			return s.Join("user-3", "Carol")
		})
		assert.ErrorIs(t, err, models.ErrSessionFull)

		snap, err := registry.Get(created.Code)
		require.NoError(t, err)
		assert.Len(t, snap.Participants, 2)
	})

	t.Run("concurrent updates on one session serialize", func(t *testing.T) {
		registry := services.NewRegistry(nil)
		created, err := registry.Create("host-1", "Alice", 8)
		require.NoError(t, err)

		var wg sync.WaitGroup
		users := []string{"user-2", "user-3", "user-4", "user-5"}
		for _, uid := range users {
			wg.Add(1)
			go func(uid string) {
				defer wg.Done()
				_, err := registry.Update(created.Code, func(s *models.Session) error {
					return s.Join(uid, uid)
				})
				assert.NoError(t, err)
			}(uid)
		}
		wg.Wait()

		snap, err := registry.Get(created.Code)
		require.NoError(t, err)
		assert.Len(t, snap.Participants, 5)
	})
}

func TestRegistry_List(t *testing.T) {
	t.Run("hides completed sessions unless asked", func(t *testing.T) {
		registry := services.NewRegistry(nil)
		open, err := registry.Create("host-1", "Alice", 4)
		require.NoError(t, err)
		done, err := registry.Create("host-2", "Bob", 4)
		require.NoError(t, err)
		_, err = registry.Update(done.Code, func(s *models.Session) error {
			_, err := services.Complete(s, time.Now())
			return err
		})
		require.NoError(t, err)

		visible := registry.List(false)
		require.Len(t, visible, 1)
		assert.Equal(t, open.Code, visible[0].Code)

		all := registry.List(true)
		assert.Len(t, all, 2)
	})

	t.Run("summaries expose lobby fields", func(t *testing.T) {
		registry := services.NewRegistry(nil)
		created, err := registry.Create("host-1", "Alice", 4)
		require.NoError(t, err)
		_, err = registry.Update(created.Code, func(s *models.Session) error {
			return s.Join("user-2", "Bob")
		})
		require.NoError(t, err)

		summaries := registry.List(false)
		require.Len(t, summaries, 1)
		got := summaries[0]
		assert.Equal(t, "Alice", got.HostName)
		assert.Equal(t, 2, got.PlayerCount)
		assert.Equal(t, 2, got.SpotsAvailable)
		assert.Equal(t, 1, got.CurrentRound)
		assert.Equal(t, 20, got.TotalRounds)
		assert.Equal(t, []string{"Alice", "Bob"}, got.PlayerNames)
	})
}

func TestRegistry_Remove(t *testing.T) {
	registry := services.NewRegistry(nil)
	created, err := registry.Create("host-1", "Alice", 4)
	require.NoError(t, err)

	registry.Remove(created.Code)
	_, err = registry.Get(created.Code)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestRegistry_Mirroring(t *testing.T) {
	t.Run("mutations reach the store eventually", func(t *testing.T) {
		store := &fakeStore{}
		registry := services.NewRegistry(store)

		created, err := registry.Create("host-1", "Alice", 4)
		require.NoError(t, err)
		_, err = registry.Update(created.Code, func(s *models.Session) error {
			return s.Join("user-2", "Bob")
		})
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			return store.savedCount() >= 2
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("store failures do not affect the mutation", func(t *testing.T) {
		store := &fakeStore{fail: true}
		registry := services.NewRegistry(store)

		created, err := registry.Create("host-1", "Alice", 4)
		require.NoError(t, err)

		snap, err := registry.Update(created.Code, func(s *models.Session) error {
			return s.Join("user-2", "Bob")
		})
		require.NoError(t, err)
		assert.Len(t, snap.Participants, 2)
	})
}
