// Package session holds the in-memory session store.
//
// Sessions live for the process lifetime only. That is a deliberate
// limitation: the service is a per-user assistant, a restart loses
// in-flight sessions and clients simply resubmit.
package session

import (
	"fmt"
	"sync"
	"time"

	"job-assistant/internal/domain"
)

type entry struct {
	mu sync.Mutex
	s  domain.Session
}

// Store is a mutex-guarded session map. All mutation goes through Update,
// which serializes writers per session while leaving distinct sessions
// fully independent.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Create registers a new empty session under id.
func (st *Store) Create(_ domain.Context, id string) (*domain.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.entries[id]; ok {
		return nil, fmt.Errorf("%w: session %q already exists", domain.ErrInvalidArgument, id)
	}
	now := time.Now().UTC()
	e := &entry{s: domain.Session{
		ID:        id,
		State:     domain.StateEmpty,
		Tasks:     make(map[domain.TaskKind]*domain.Task),
		CreatedAt: now,
		UpdatedAt: now,
	}}
	st.entries[id] = e
	s := cloneSession(&e.s)
	return &s, nil
}

// Get returns a snapshot of the session. The snapshot's task handles are
// copies; record maps are shared but treated as immutable once committed.
func (st *Store) Get(_ domain.Context, id string) (domain.Session, error) {
	e, err := st.lookup(id)
	if err != nil {
		return domain.Session{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneSession(&e.s), nil
}

// Update runs fn against the live session under its lock. If fn returns an
// error the store keeps whatever fn did to the session; fn is expected to
// be all-or-nothing on its own.
func (st *Store) Update(_ domain.Context, id string, fn func(*domain.Session) error) error {
	e, err := st.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(&e.s); err != nil {
		return err
	}
	e.s.UpdatedAt = time.Now().UTC()
	return nil
}

func (st *Store) Delete(_ domain.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.entries[id]; !ok {
		return fmt.Errorf("%w: session %q", domain.ErrNotFound, id)
	}
	delete(st.entries, id)
	return nil
}

// Len reports how many sessions are live. Readiness reporting uses it.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.entries)
}

func (st *Store) lookup(id string) (*entry, error) {
	st.mu.RLock()
	e, ok := st.entries[id]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: session %q", domain.ErrNotFound, id)
	}
	return e, nil
}

func cloneSession(s *domain.Session) domain.Session {
	out := *s
	out.Tasks = make(map[domain.TaskKind]*domain.Task, len(s.Tasks))
	for k, t := range s.Tasks {
		tc := *t
		out.Tasks[k] = &tc
	}
	return out
}
