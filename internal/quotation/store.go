package quotation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQuotationNotFound indicates the draft does not exist or has expired.
var ErrQuotationNotFound = errors.New("quotation not found")

type entry struct {
	q         Quotation
	expiresAt time.Time
}

// Store keeps quotation drafts in memory. Drafts expire TTL after their last write. Expired
// drafts are evicted on access, swept on Put at most once per sweep interval, and swept by Run.
type Store struct {
	TTL time.Duration
	Now func() time.Time

	mu        sync.Mutex
	drafts    map[uuid.UUID]entry
	lastSweep time.Time
}

const maxSweepInterval = time.Minute

// NewStore constructs a Store with the given TTL. A non-positive TTL disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{TTL: ttl, drafts: make(map[uuid.UUID]entry)}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) expiry() time.Time {
	if s.TTL <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.TTL)
}

func (s *Store) live(e entry) bool {
	return e.expiresAt.IsZero() || s.now().Before(e.expiresAt)
}

// Put saves q, replacing any draft with the same id.
func (s *Store) Put(q Quotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drafts == nil {
		s.drafts = make(map[uuid.UUID]entry)
	}
	now := s.now()
	if s.TTL > 0 && now.Sub(s.lastSweep) >= s.sweepInterval() {
		s.sweepLocked(now)
	}
	s.drafts[q.ID] = entry{q: q.Clone(), expiresAt: s.expiry()}
}

func (s *Store) sweepInterval() time.Duration {
	if s.TTL < maxSweepInterval {
		return s.TTL
	}
	return maxSweepInterval
}

func (s *Store) sweepLocked(now time.Time) int {
	s.lastSweep = now
	removed := 0
	for id, e := range s.drafts {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(s.drafts, id)
			removed++
		}
	}
	return removed
}

// Sweep drops every expired draft and reports how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

// Run sweeps expired drafts every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.TTL <= 0 {
		return
	}
	if interval <= 0 {
		interval = s.sweepInterval()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Get returns a copy of the draft.
func (s *Store) Get(id uuid.UUID) (Quotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.drafts[id]
	if !ok {
		return Quotation{}, ErrQuotationNotFound
	}
	if !s.live(e) {
		delete(s.drafts, id)
		return Quotation{}, ErrQuotationNotFound
	}
	return e.q.Clone(), nil
}

// Update replaces the draft with the result of fn while holding the store lock.
// The draft is left untouched when fn returns an error.
func (s *Store) Update(id uuid.UUID, fn func(Quotation) (Quotation, error)) (Quotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.drafts[id]
	if !ok {
		return Quotation{}, ErrQuotationNotFound
	}
	if !s.live(e) {
		delete(s.drafts, id)
		return Quotation{}, ErrQuotationNotFound
	}
	next, err := fn(e.q.Clone())
	if err != nil {
		return Quotation{}, err
	}
	s.drafts[id] = entry{q: next.Clone(), expiresAt: s.expiry()}
	return next.Clone(), nil
}

// Delete removes the draft if present.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
}

// Len reports the number of stored drafts, expired ones included until they are swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
