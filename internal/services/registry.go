package services

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/manv6/trumps-dashboard/internal/config"
	"github.com/manv6/trumps-dashboard/internal/models"
)

// Registry is the process-wide directory of active sessions. Each
// session sits behind its own mutex so operations on different sessions
// never contend; the registry-level lock only guards the map itself.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	// Optional persistence mirroring. May be nil (in-memory-only mode).
	store Store
}

type sessionEntry struct {
	mu      sync.Mutex
	session *models.Session
}

func NewRegistry(store Store) *Registry {
	return &Registry{
		sessions: make(map[string]*sessionEntry),
		store:    store,
	}
}

// newCode derives a short join code the way the original dashboard did:
// the first 8 hex characters of a v4 UUID, uppercased.
func newCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

// Create builds a new session with a registry-unique code. Code
// collisions are retried internally and never surface to the caller.
func (r *Registry) Create(hostID, hostName string, capacity int) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= config.MaxSessions {
		return nil, fmt.Errorf("session limit reached")
	}

	code := newCode()
	for r.sessions[code] != nil {
		code = newCode()
	}

	session, err := models.NewSession(code, hostID, hostName, capacity)
	if err != nil {
		return nil, err
	}
	r.sessions[code] = &sessionEntry{session: session}

	snapshot := session.Clone()
	go r.mirror(snapshot)
	return snapshot, nil
}

func (r *Registry) entry(code string) (*sessionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[code]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return e, nil
}

// Get returns a consistent snapshot of a session.
func (r *Registry) Get(code string) (*models.Session, error) {
	e, err := r.entry(code)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// Update applies fn to a session under its lock and returns a
// post-mutation snapshot. If fn errors the mutation is considered not
// to have happened and nothing is mirrored or broadcast. Mirroring runs
// after the lock is released, fire and forget.
func (r *Registry) Update(code string, fn func(*models.Session) error) (*models.Session, error) {
	e, err := r.entry(code)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if err := fn(e.session); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	snapshot := e.session.Clone()
	e.mu.Unlock()

	go r.mirror(snapshot)
	return snapshot, nil
}

// List returns lobby summaries, newest first. Completed sessions are
// filtered out unless asked for.
func (r *Registry) List(includeCompleted bool) []models.Summary {
	r.mu.RLock()
	entries := make([]*sessionEntry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	summaries := make([]models.Summary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.session.Completed && !includeCompleted {
			e.mu.Unlock()
			continue
		}
		summaries = append(summaries, e.session.Summarize())
		e.mu.Unlock()
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries
}

// All returns snapshots of every session in the registry, for history
// views that also want completed games.
func (r *Registry) All() []*models.Session {
	r.mu.RLock()
	entries := make([]*sessionEntry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sessions := make([]*models.Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		sessions = append(sessions, e.session.Clone())
		e.mu.Unlock()
	}
	return sessions
}

// Remove evicts a session from the registry. Completed sessions are
// retained so history views and late reads keep working; no serving
// path evicts yet, and the store keeps a mirror either way.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	delete(r.sessions, code)
	r.mu.Unlock()
}

// mirror pushes a snapshot to the persistence collaborator. Failures
// are logged and swallowed: in-memory state stays authoritative.
func (r *Registry) mirror(snapshot *models.Session) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveSnapshot(snapshot); err != nil {
		log.Printf("failed to mirror session %s: %v", snapshot.Code, err)
	}
}
