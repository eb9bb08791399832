package auth

import (
	"context"
	"sync"
)

// MemoryUserStore is a UserStore backed by a map keyed by normalized
// email. It is safe for concurrent use.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]UserRecord
}

var _ UserStore = (*MemoryUserStore)(nil)

// NewMemoryUserStore returns a store seeded with records
func NewMemoryUserStore(records ...UserRecord) *MemoryUserStore {
	s := &MemoryUserStore{users: make(map[string]UserRecord, len(records))}
	for _, r := range records {
		s.Put(r)
	}
	return s
}

// Put adds or replaces a record
func (s *MemoryUserStore) Put(record UserRecord) {
	record.Email = NormalizeEmail(record.Email)
	record.Roles = append([]string(nil), record.Roles...)

	s.mu.Lock()
	s.users[record.Email] = record
	s.mu.Unlock()
}

// FindUserByEmail implements UserStore
func (s *MemoryUserStore) FindUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	record, ok := s.users[NormalizeEmail(email)]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrRecordNotFound
	}

	record.Roles = append([]string(nil), record.Roles...)
	return &record, nil
}
