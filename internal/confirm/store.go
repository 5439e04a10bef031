package confirm

import (
	"hash/fnv"
	"sync"
	"time"
)

// Store is minimal CRUD over pending actions keyed by id. Implementations
// must make each call atomic per id; the store never runs timers of its own,
// expiry is driven externally through SweepExpired.
type Store interface {
	// Put inserts an action; the caller guarantees id uniqueness.
	Put(action *PendingAction)
	// Get returns a snapshot of the action, if present.
	Get(id string) (*PendingAction, bool)
	// Update applies mutate to the stored action under the per-id lock.
	// When mutate returns an error the stored record is left unchanged.
	Update(id string, mutate func(*PendingAction) error) (*PendingAction, error)
	// Take atomically removes and returns the action. A sweep racing just
	// after a Take finds nothing, so no extra coordination is needed.
	Take(id string) (*PendingAction, bool)
	// Delete removes the action; deleting a missing id is a no-op.
	Delete(id string)
	// SweepExpired removes all entries older than maxAge and returns how
	// many were removed.
	SweepExpired(maxAge time.Duration) int
}

const storeShardCount = 16

type storeShard struct {
	mu    sync.Mutex
	items map[string]*PendingAction
}

// MemoryStore is the default in-process Store. Entries are sharded by id so
// operations on distinct ids do not contend on a single lock.
type MemoryStore struct {
	shards [storeShardCount]storeShard
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates a store with an injected clock, used by
// tests to drive expiry deterministically.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	s := &MemoryStore{now: now}
	for i := range s.shards {
		s.shards[i].items = make(map[string]*PendingAction)
	}
	return s
}

func (s *MemoryStore) shardFor(id string) *storeShard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.shards[h.Sum32()%storeShardCount]
}

// Put inserts an action.
func (s *MemoryStore) Put(action *PendingAction) {
	shard := s.shardFor(action.ID)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	shard.items[action.ID] = action.clone()
}

// Get returns a snapshot of the action, if present.
func (s *MemoryStore) Get(id string) (*PendingAction, bool) {
	shard := s.shardFor(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	action, ok := shard.items[id]
	if !ok {
		return nil, false
	}
	return action.clone(), true
}

// Update applies mutate under the shard lock. The mutation runs against a
// copy; the copy replaces the stored record only when mutate succeeds, so a
// failed edit never leaves the record half-modified.
func (s *MemoryStore) Update(id string, mutate func(*PendingAction) error) (*PendingAction, error) {
	shard := s.shardFor(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	action, ok := shard.items[id]
	if !ok {
		return nil, ErrActionNotFound
	}
	updated := action.clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}
	shard.items[id] = updated
	return updated.clone(), nil
}

// Take atomically removes and returns the action.
func (s *MemoryStore) Take(id string) (*PendingAction, bool) {
	shard := s.shardFor(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	action, ok := shard.items[id]
	if !ok {
		return nil, false
	}
	delete(shard.items, id)
	return action, true
}

// Delete removes the action if present.
func (s *MemoryStore) Delete(id string) {
	shard := s.shardFor(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	delete(shard.items, id)
}

// SweepExpired removes all entries whose CreatedAt is older than maxAge.
func (s *MemoryStore) SweepExpired(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)
	removed := 0
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.Lock()
		for id, action := range shard.items {
			if action.CreatedAt.Before(cutoff) {
				delete(shard.items, id)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed
}

// Len reports the number of stored actions.
func (s *MemoryStore) Len() int {
	total := 0
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.Lock()
		total += len(shard.items)
		shard.mu.Unlock()
	}
	return total
}
