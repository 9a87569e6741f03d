package services

import "github.com/manv6/trumps-dashboard/internal/models"

// Store is the persistence collaborator. The in-memory registry is
// authoritative; stores only mirror snapshots for later retrieval, and
// every method may fail without affecting gameplay.
type Store interface {
	SaveSnapshot(s *models.Session) error
	FindByCode(code string) (*models.Session, error)
	ListAll() ([]*models.Session, error)
}
