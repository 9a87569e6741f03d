package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"

	"github.com/manv6/trumps-dashboard/internal/models"
	"github.com/manv6/trumps-dashboard/internal/security"
	"github.com/manv6/trumps-dashboard/internal/services"
)

// SessionHandlers exposes the REST surface around the registry: the
// lobby, joining, history, and the host's force-complete.
type SessionHandlers struct {
	registry *services.Registry
	hub      *services.Hub

	// Optional read fallback for games that are no longer in memory.
	store services.Store
}

func NewSessionHandlers(registry *services.Registry, hub *services.Hub, store services.Store) *SessionHandlers {
	return &SessionHandlers{registry: registry, hub: hub, store: store}
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotHost):
		return http.StatusForbidden
	case errors.Is(err, models.ErrSessionFull),
		errors.Is(err, models.ErrAlreadyJoined),
		errors.Is(err, models.ErrAlreadyCompleted):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func jsonError(re *core.RequestEvent, err error) error {
	return re.JSON(errStatus(err), map[string]string{"error": err.Error()})
}

// CreateSession handles POST /api/games.
func (h *SessionHandlers) CreateSession(re *core.RequestEvent) error {
	var req struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
		Capacity int    `json:"capacity"`
	}
	if err := re.BindBody(&req); err != nil {
		return re.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	name, err := security.ValidateParticipantName(req.Username)
	if err != nil {
		return jsonError(re, err)
	}
	if req.UserID == "" {
		return re.JSON(http.StatusBadRequest, map[string]string{"error": "userId is required"})
	}

	session, err := h.registry.Create(req.UserID, name, req.Capacity)
	if err != nil {
		return jsonError(re, err)
	}

	return re.JSON(http.StatusOK, map[string]any{
		"code": session.Code,
		"game": session,
	})
}

// JoinSession handles POST /api/games/{code}/join.
func (h *SessionHandlers) JoinSession(re *core.RequestEvent) error {
	code := re.Request.PathValue("code")

	var req struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
	}
	if err := re.BindBody(&req); err != nil {
		return re.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	name, err := security.ValidateParticipantName(req.Username)
	if err != nil {
		return jsonError(re, err)
	}

	session, err := h.registry.Update(code, func(s *models.Session) error {
		return s.Join(req.UserID, name)
	})
	if err != nil {
		return jsonError(re, err)
	}

	return re.JSON(http.StatusOK, map[string]any{"game": session})
}

// GetSession handles GET /api/games/{code}.
func (h *SessionHandlers) GetSession(re *core.RequestEvent) error {
	code := re.Request.PathValue("code")
	session, err := h.registry.Get(code)
	if err != nil {
		// Evicted or pre-restart games may still exist in the store.
		if h.store != nil && errors.Is(err, models.ErrSessionNotFound) {
			if stored, serr := h.store.FindByCode(code); serr == nil {
				return re.JSON(http.StatusOK, map[string]any{"game": stored})
			}
		}
		return jsonError(re, err)
	}
	return re.JSON(http.StatusOK, map[string]any{"game": session})
}

// ListSessions handles GET /api/games. Completed games are hidden
// unless ?includeCompleted=true.
func (h *SessionHandlers) ListSessions(re *core.RequestEvent) error {
	includeCompleted := re.Request.URL.Query().Get("includeCompleted") == "true"
	return re.JSON(http.StatusOK, map[string]any{
		"games": h.registry.List(includeCompleted),
	})
}

// HistoryEntry is one row of GET /api/games/history: a summary plus
// the requesting user's result when the game is completed.
type HistoryEntry struct {
	models.Summary
	IsParticipant bool                   `json:"isParticipant"`
	UserScore     *int                   `json:"userScore,omitempty"`
	UserRank      *int                   `json:"userRank,omitempty"`
	FinalResults  []services.RankedScore `json:"finalResults,omitempty"`
}

// History handles GET /api/games/history?userId=.
func (h *SessionHandlers) History(re *core.RequestEvent) error {
	userID := re.Request.URL.Query().Get("userId")

	sessions := h.registry.All()
	if h.store != nil {
		// Merge in persisted games that have since left the registry.
		inMemory := make(map[string]bool, len(sessions))
		for _, s := range sessions {
			inMemory[s.Code] = true
		}
		if stored, err := h.store.ListAll(); err == nil {
			for _, s := range stored {
				if !inMemory[s.Code] {
					sessions = append(sessions, s)
				}
			}
		}
	}
	history := make([]HistoryEntry, 0, len(sessions))
	for _, s := range sessions {
		entry := HistoryEntry{
			Summary:       s.Summarize(),
			IsParticipant: s.SlotOf(userID) != -1,
		}
		if s.Completed {
			entry.FinalResults = services.Rankings(s)
			for _, r := range entry.FinalResults {
				if r.UserID == userID {
					score, rank := r.Score, r.Rank
					entry.UserScore = &score
					entry.UserRank = &rank
				}
			}
		}
		history = append(history, entry)
	}

	return re.JSON(http.StatusOK, map[string]any{"games": history})
}

// CurrentGame handles GET /api/users/current-game?userId=, the lobby's
// "am I already in a game" probe.
func (h *SessionHandlers) CurrentGame(re *core.RequestEvent) error {
	userID := re.Request.URL.Query().Get("userId")

	for _, summary := range h.registry.List(false) {
		session, err := h.registry.Get(summary.Code)
		if err != nil {
			continue
		}
		if session.SlotOf(userID) != -1 {
			status := "waiting"
			if session.Started {
				status = "in-progress"
			}
			return re.JSON(http.StatusOK, map[string]any{
				"isInGame":   true,
				"code":       session.Code,
				"gameStatus": status,
			})
		}
	}

	return re.JSON(http.StatusOK, map[string]any{"isInGame": false})
}

// CompleteSession handles POST /api/games/{code}/complete, the host's
// force-complete.
func (h *SessionHandlers) CompleteSession(re *core.RequestEvent) error {
	code := re.Request.PathValue("code")

	var req struct {
		UserID string `json:"userId"`
	}
	if err := re.BindBody(&req); err != nil || req.UserID == "" {
		return re.JSON(http.StatusBadRequest, map[string]string{"error": "userId is required"})
	}

	var finalScores map[string]int
	session, err := h.registry.Update(code, func(s *models.Session) error {
		if s.HostID != req.UserID {
			return models.ErrNotHost
		}
		var err error
		finalScores, err = services.Complete(s, time.Now())
		return err
	})
	if err != nil {
		return jsonError(re, err)
	}

	// Everyone watching gets the frozen final state.
	h.hub.BroadcastToSession(code, models.NewStateMessage(session))

	return re.JSON(http.StatusOK, map[string]any{
		"success":     true,
		"finalScores": finalScores,
		"rankings":    services.Rankings(session),
		"code":        code,
	})
}

// GuestIdentity handles POST /api/guest: hands out an opaque user id
// for unauthenticated play. Real accounts live in PocketBase's users
// collection; the game core only ever sees the id.
func (h *SessionHandlers) GuestIdentity(re *core.RequestEvent) error {
	return re.JSON(http.StatusOK, map[string]string{"userId": uuid.New().String()})
}
