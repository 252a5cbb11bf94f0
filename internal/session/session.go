// Package session provides per-user dialogue session management.
//
// A Session holds the user's current step plus the typed draft data that
// accumulates while walking a multi-step flow. Sessions are process-local;
// a restart drops drafts but never persisted records.
package session

import (
	"log/slog"
	"sync"

	"github.com/daftarche/bankbook/internal/models"
)

// Session is the per-user dialogue state. At most one Session exists per
// user; it is never shared across users.
type Session struct {
	UserID int64
	Step   models.Step

	// Page is the pagination cursor of the listing step currently shown.
	Page int

	// Selected person, shared by the view/add/change/delete flows.
	PersonID   int64
	PersonName string

	// Label→id lookups for the listing step currently shown.
	Persons   map[string]int64
	Accounts  map[string]int64
	Documents map[string]int64

	// Flow drafts. Exactly one is non-nil while the matching flow runs.
	Account     *models.AccountDraft
	Document    *models.DocumentDraft
	FieldEdit   *models.FieldEditDraft
	Delete      *models.DeleteTarget
	PendingUser *models.ChatUser
}

// ClearDrafts empties every draft and selection while keeping the step.
func (s *Session) ClearDrafts() {
	s.Page = 0
	s.PersonID = 0
	s.PersonName = ""
	s.Persons = nil
	s.Accounts = nil
	s.Documents = nil
	s.Account = nil
	s.Document = nil
	s.FieldEdit = nil
	s.Delete = nil
	s.PendingUser = nil
}

// Store keeps one Session per user id, creating sessions at the root step on
// first access. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	root     models.Step
}

// NewStore creates a session store whose fresh sessions start at root.
func NewStore(root models.Step) *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		root:     root,
	}
}

// Get returns the user's session, creating an empty one at the root step if
// none exists.
func (st *Store) Get(userID int64) *Session {
	st.mu.RLock()
	s, ok := st.sessions[userID]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[userID]; ok {
		return s
	}
	s = &Session{UserID: userID, Step: st.root}
	st.sessions[userID] = s
	slog.Debug("session created", "userID", userID, "step", st.root)
	return s
}

// Reset discards the user's drafts and returns the session to the root step.
func (st *Store) Reset(userID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := &Session{UserID: userID, Step: st.root}
	st.sessions[userID] = s
	slog.Debug("session reset", "userID", userID, "step", st.root)
	return s
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
