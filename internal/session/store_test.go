package session

import (
	"context"
	"testing"

	"aria/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "s1")
			assert.ErrorIs(t, err, ErrNotFound)

			session, err := store.GetOrCreate(ctx, "s1")
			require.NoError(t, err)

			session.AddMessage(llm.Message{Role: "user", Content: "hello"})
			session.AddMessage(llm.Message{Role: "assistant", Content: "hi there"})
			require.NoError(t, store.Save(ctx, session))

			loaded, err := store.Get(ctx, "s1")
			require.NoError(t, err)
			require.Len(t, loaded.Messages, 2)
			assert.Equal(t, "hello", loaded.Messages[0].Content)

			ids, err := store.List(ctx)
			require.NoError(t, err)
			assert.Contains(t, ids, "s1")

			require.NoError(t, store.Delete(ctx, "s1"))
			_, err = store.Get(ctx, "s1")
			assert.ErrorIs(t, err, ErrNotFound)

			// Idempotent delete.
			assert.NoError(t, store.Delete(ctx, "s1"))
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	session.AddMessage(llm.Message{Role: "user", Content: "original"})
	require.NoError(t, store.Save(ctx, session))

	loaded, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	loaded.Messages[0].Content = "mutated"

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Messages[0].Content)
}

func TestFileStoreSanitizesIDs(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.GetOrCreate(context.Background(), "../escape/attempt")
	require.NoError(t, err)

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.NotContains(t, ids[0], "/")
}
