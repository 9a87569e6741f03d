// Package store mirrors session snapshots into PocketBase. The
// registry's in-memory state stays authoritative; everything here is
// best-effort and the server runs fine without it.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"github.com/manv6/trumps-dashboard/internal/models"
)

type PocketBase struct {
	app core.App
}

func New(app core.App) *PocketBase {
	return &PocketBase{app: app}
}

// SaveSnapshot upserts the session's record in the games collection,
// keyed by its code.
func (s *PocketBase) SaveSnapshot(session *models.Session) error {
	record, err := s.findRecord(session.Code)
	if err != nil {
		collection, err := s.app.FindCollectionByNameOrId("games")
		if err != nil {
			return fmt.Errorf("failed to find games collection: %w", err)
		}
		record = core.NewRecord(collection)
		record.Set("code", session.Code)
	}

	state, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	record.Set("host_id", session.HostID)
	record.Set("capacity", session.Capacity)
	record.Set("completed", session.Completed)
	if session.CompletedAt != nil {
		record.Set("completed_at", *session.CompletedAt)
	}
	record.Set("state", state)

	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("failed to save game record: %w", err)
	}
	return nil
}

// FindByCode loads a mirrored session.
func (s *PocketBase) FindByCode(code string) (*models.Session, error) {
	record, err := s.findRecord(code)
	if err != nil {
		return nil, models.ErrSessionNotFound
	}
	return decodeState(record)
}

// ListAll loads every mirrored session.
func (s *PocketBase) ListAll() ([]*models.Session, error) {
	records, err := s.app.FindRecordsByFilter("games", "id != ''", "-created", 500, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	sessions := make([]*models.Session, 0, len(records))
	for _, record := range records {
		session, err := decodeState(record)
		if err != nil {
			// Skip corrupt rows rather than failing the whole listing.
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *PocketBase) findRecord(code string) (*core.Record, error) {
	records, err := s.app.FindRecordsByFilter(
		"games",
		"code = {:code}",
		"",
		1,
		0,
		map[string]any{"code": code},
	)
	if err != nil || len(records) == 0 {
		return nil, fmt.Errorf("game record not found")
	}
	return records[0], nil
}

func decodeState(record *core.Record) (*models.Session, error) {
	var session models.Session
	if err := json.Unmarshal([]byte(record.GetString("state")), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return &session, nil
}
