package confirm

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAction(id string, createdAt time.Time) *PendingAction {
	return &PendingAction{
		ID:           id,
		Kind:         KindSendEmail,
		Status:       StatusPending,
		OriginalData: map[string]any{FieldSubject: "Hi"},
		CreatedAt:    createdAt,
	}
}

func TestMemoryStorePutGetTake(t *testing.T) {
	store := NewMemoryStore()
	store.Put(testAction("a1", time.Now()))

	got, ok := store.Get("a1")
	require.True(t, ok)
	assert.Equal(t, "a1", got.ID)

	taken, ok := store.Take("a1")
	require.True(t, ok)
	assert.Equal(t, "a1", taken.ID)

	_, ok = store.Get("a1")
	assert.False(t, ok)
	_, ok = store.Take("a1")
	assert.False(t, ok)
}

func TestMemoryStoreDeleteMissingIsNoop(t *testing.T) {
	store := NewMemoryStore()
	store.Delete("never-existed")
	store.Delete("never-existed")
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreGetReturnsSnapshot(t *testing.T) {
	store := NewMemoryStore()
	store.Put(testAction("a1", time.Now()))

	got, _ := store.Get("a1")
	got.OriginalData[FieldSubject] = "tampered"

	again, _ := store.Get("a1")
	assert.Equal(t, "Hi", again.OriginalData[FieldSubject])
}

func TestMemoryStoreUpdateFailureLeavesRecordUnchanged(t *testing.T) {
	store := NewMemoryStore()
	store.Put(testAction("a1", time.Now()))

	_, err := store.Update("a1", func(action *PendingAction) error {
		action.OriginalData[FieldSubject] = "tampered"
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	got, _ := store.Get("a1")
	assert.Equal(t, "Hi", got.OriginalData[FieldSubject])
}

func TestMemoryStoreUpdateMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Update("missing", func(*PendingAction) error { return nil })
	assert.ErrorIs(t, err, ErrActionNotFound)
}

func TestMemoryStoreSweepExpired(t *testing.T) {
	now := time.Now()
	store := NewMemoryStoreWithClock(func() time.Time { return now })

	store.Put(testAction("old", now.Add(-2*time.Hour)))
	store.Put(testAction("fresh", now.Add(-time.Minute)))

	removed := store.SweepExpired(time.Hour)
	assert.Equal(t, 1, removed)

	_, ok := store.Get("old")
	assert.False(t, ok)
	_, ok = store.Get("fresh")
	assert.True(t, ok)
}

func TestMemoryStoreConcurrentDistinctIDs(t *testing.T) {
	store := NewMemoryStore()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("a%d", i)
			store.Put(testAction(id, time.Now()))
			_, err := store.Update(id, func(action *PendingAction) error {
				action.Status = StatusEdited
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, store.Len())
}

func TestMemoryStoreConcurrentTakeSingleWinner(t *testing.T) {
	store := NewMemoryStore()
	store.Put(testAction("a1", time.Now()))

	const attempts = 16
	wins := make(chan struct{}, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := store.Take("a1"); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count)
}
