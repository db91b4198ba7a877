package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
)

// Store owns the canonical, mutable transaction collection. It is the single
// source of truth; every derived view is recomputed from its contents.
//
// Observers registered with Subscribe run synchronously after every
// successful mutation, before the mutating call returns, so no caller can
// ever observe an aggregate that lags behind the store.
type Store struct {
	mu         sync.Mutex
	order      []uuid.UUID
	byID       map[uuid.UUID]core.Transaction
	generation uint64
	observers  []func()
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		byID: make(map[uuid.UUID]core.Transaction),
		now:  time.Now,
	}
}

// WithClock overrides the store clock. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Subscribe registers an observer invoked after every successful mutation.
func (s *Store) Subscribe(fn func()) {
	s.observers = append(s.observers, fn)
}

// Add assigns a fresh ID, stores the transaction and returns the stored
// record. It never fails: field normalization happens upstream.
func (s *Store) Add(t core.Transaction) core.Transaction {
	s.mu.Lock()
	t.ID = uuid.New()
	now := s.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.byID[t.ID] = t
	s.order = append(s.order, t.ID)
	s.generation++
	s.mu.Unlock()

	s.notify()
	return t
}

// Update replaces the full record for id. The creation timestamp and the
// position in insertion order are preserved.
func (s *Store) Update(id uuid.UUID, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	existing, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	t.ID = id
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = s.now()
	s.byID[id] = t
	s.generation++
	s.mu.Unlock()

	s.notify()
	return t, nil
}

// Remove deletes the record if present and reports whether it did anything.
// Removing an absent id is a no-op, not an error.
func (s *Store) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.generation++
	s.mu.Unlock()

	s.notify()
	return true
}

// Seed loads already-identified transactions, preserving their order.
// Observers are not notified: seeding restores state, it does not mutate it.
func (s *Store) Seed(txs []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range txs {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if _, ok := s.byID[t.ID]; !ok {
			s.order = append(s.order, t.ID)
		}
		s.byID[t.ID] = t
	}
	s.generation++
}

// Get returns the transaction for id, if present.
func (s *Store) Get(id uuid.UUID) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	return t, ok
}

// All returns a copy of the transactions in insertion order.
func (s *Store) All() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Generation increments on every mutation. Cache keys derived from it can
// never serve a view of a store that has since changed.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Store) notify() {
	for _, fn := range s.observers {
		fn()
	}
}
