package confirm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine *Engine
	store  *MemoryStore
	now    time.Time
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }
	f.store = NewMemoryStoreWithClock(clock)
	f.engine = NewEngine(f.store, nil, nil, WithClock(clock))
	return f
}

func (f *engineFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func sendEmailData() map[string]any {
	return map[string]any{
		FieldRecipientName: "Jane Doe",
		FieldSubject:       "Hi",
		FieldBody:          "Test",
		FieldCCRecipients:  []string{"Bob"},
	}
}

func TestCreatePreview(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	preview, err := f.engine.CreatePreview(ctx, KindSendEmail, sendEmailData(), CreateOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, preview.ID)
	assert.Equal(t, StatusPending, preview.Status)
	assert.Equal(t, "Send Email", preview.Title)
	assert.Equal(t, "Jane Doe", preview.Fields[FieldRecipientName])
	assert.Equal(t, "Hi", preview.Fields[FieldSubject])
	assert.Equal(t, "Test", preview.Fields[FieldBody])
	assert.Equal(t, "Bob", preview.Fields[FieldCCRecipients])
	assert.Equal(t, 1, f.store.Len())
}

func TestCreatePreviewUnknownKind(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.CreatePreview(context.Background(), ActionKind("format_disk"), nil, CreateOptions{})
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, 0, f.store.Len())
}

func TestCreatePreviewGeneratesUniqueIDs(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		preview, err := f.engine.CreatePreview(ctx, KindSendEmail, sendEmailData(), CreateOptions{})
		require.NoError(t, err)
		assert.False(t, seen[preview.ID], "duplicate id %s", preview.ID)
		seen[preview.ID] = true
	}
}

func TestEditOverlaysOntoOriginal(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	preview, err := f.engine.CreatePreview(ctx, KindSendEmail, sendEmailData(), CreateOptions{})
	require.NoError(t, err)

	edited, err := f.engine.Edit(ctx, preview.ID, "", map[string]any{FieldSubject: "Updated Subject"})
	require.NoError(t, err)
	assert.Equal(t, StatusEdited, edited.Status)
	assert.Equal(t, "Updated Subject", edited.Fields[FieldSubject])
	assert.Equal(t, "Test", edited.Fields[FieldBody])

	// Effective data carries the edit, every other field keeps its
	// original value.
	payload, err := f.engine.Confirm(ctx, preview.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Updated Subject", payload.Data[FieldSubject])
	assert.Equal(t, "Test", payload.Data[FieldBody])
	assert.Equal(t, "Jane Doe", payload.Data[FieldRecipientName])
	assert.Equal(t, []string{"Bob"}, payload.Data[FieldCCRecipients])
}

func TestEditRejectionIsAtomic(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	preview, err := f.engine.CreatePreview(ctx, KindSendEmail, sendEmailData(), CreateOptions{})
	require.NoError(t, err)

	_, err = f.engine.Edit(ctx, preview.ID, "", map[string]any{FieldSubject: "Updated Subject"})
	require.NoError(t, err)

	// One illegal field rejects the whole call, including the legal
	// body edit riding along with it.
	_, err = f.engine.Edit(ctx, preview.ID, "", map[string]any{
		FieldBody:           "x",
		FieldRecipientEmail: "hack@x.com",
	})
	field, ok := IsFieldNotEditable(err)
	require.True(t, ok, "expected FieldNotEditableError, got %v", err)
	assert.Equal(t, FieldRecipientEmail, field)

	payload, err := f.engine.Confirm(ctx, preview.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Updated Subject", payload.Data[FieldSubject])
	assert.Equal(t, "Test", payload.Data[FieldBody])
	assert.NotContains(t, payload.Data, FieldRecipientEmail)
}

func TestReEditOverwritesField(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	preview, err := f.engine.CreatePreview(ctx, KindSendEmail, sendEmailData(), CreateOptions{})
	require.NoError(t, err)

	_, err = f.engine.Edit(ctx, preview.ID, "", map[string]any{FieldSubject: "First"})
	require.NoError(t, err)
	edited, err := f.engine.Edit(ctx, preview.ID, "", map[string]any{FieldSubject: "Second"})
	require.NoError(t, err)

	assert.Equal(t, StatusEdited, edited.Status)
	assert.Equal(t, "Second", edited.Fields[FieldSubject])
}

func TestConfirmWithoutEditUsesOriginalData(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	preview, err := f.engine.CreatePreview(ctx, KindSendEmail, sendEmailData(), CreateOptions{
		CachedLookup: map[string]any{"email": "jane.doe@example.com"},
	})
	require.NoError(t, err)

	payload, err := f.engine.Confirm(ctx, preview.ID, "")
	require.NoError(t, err)
	assert.Equal(t, KindSendEmail, payload.Kind)
	assert.Equal(t, "Hi", payload.Data[FieldSubject])
	assert.Equal(t, "jane.doe@example.com", payload.CachedLookup["email"])
}

func TestTerminalRemoval(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// Confirmed ids become unreachable.
	preview, err := f.engine.CreatePreview(ctx, KindSendEmail, sendEmailData(), CreateOptions{})
	require.NoError(t, err)
	_, err = f.engine.Confirm(ctx, preview.ID, "")
	require.NoError(t, err)

	_, err = f.engine.Edit(ctx, preview.ID, "", map[string]any{FieldSubject: "x"})
	assert.ErrorIs(t, err, ErrActionNotFound)
	_, err = f.engine.Confirm(ctx, preview.ID, "")
	assert.ErrorIs(t, err, ErrActionNotFound)
	assert.ErrorIs(t, f.engine.Cancel(ctx, preview.ID, ""), ErrActionNotFound)

	// Cancelled ids become unreachable too.
	preview2, err := f.engine.CreatePreview(ctx, KindSendChatMessage, map[string]any{
		FieldRecipientName: "Bob",
		FieldMessageText:   "hello",
	}, CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, f.engine.Cancel(ctx, preview2.ID, ""))

	_, err = f.engine.Confirm(ctx, preview2.ID, "")
	assert.ErrorIs(t, err, ErrActionNotFound)
	assert.ErrorIs(t, f.engine.Cancel(ctx, preview2.ID, ""), ErrActionNotFound)
	assert.Equal(t, 0, f.store.Len())
}

func TestExpiryBoundary(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	preview, err := f.engine.CreatePreview(ctx, KindSendEmail, sendEmailData(), CreateOptions{})
	require.NoError(t, err)

	// One second short of the window the action survives.
	f.advance(time.Hour - time.Second)
	assert.Equal(t, 0, f.engine.SweepExpired(ctx, time.Hour))
	_, err = f.engine.Preview(ctx, preview.ID, "")
	assert.NoError(t, err)

	// Just past the window it is removed.
	f.advance(2 * time.Second)
	assert.Equal(t, 1, f.engine.SweepExpired(ctx, time.Hour))
	_, err = f.engine.Confirm(ctx, preview.ID, "")
	assert.ErrorIs(t, err, ErrActionNotFound)
}

func TestSessionOwnership(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	preview, err := f.engine.CreatePreview(ctx, KindSendEmail, sendEmailData(), CreateOptions{SessionID: "session-a"})
	require.NoError(t, err)

	// A different session sees the same error as a missing id.
	_, err = f.engine.Confirm(ctx, preview.ID, "session-b")
	assert.ErrorIs(t, err, ErrActionNotFound)
	_, err = f.engine.Edit(ctx, preview.ID, "session-b", map[string]any{FieldSubject: "x"})
	assert.ErrorIs(t, err, ErrActionNotFound)
	assert.ErrorIs(t, f.engine.Cancel(ctx, preview.ID, "session-b"), ErrActionNotFound)

	// The hijack attempt must not have consumed the action.
	payload, err := f.engine.Confirm(ctx, preview.ID, "session-a")
	require.NoError(t, err)
	assert.Equal(t, "Hi", payload.Data[FieldSubject])
}

func TestDeleteKindsHaveNoEditableFields(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	preview, err := f.engine.CreatePreview(ctx, KindDeleteEmail, map[string]any{
		FieldSubject: "Quarterly report",
		FieldSender:  "Bob",
	}, CreateOptions{})
	require.NoError(t, err)
	assert.Empty(t, preview.EditableFields)

	_, err = f.engine.Edit(ctx, preview.ID, "", map[string]any{FieldSubject: "x"})
	_, ok := IsFieldNotEditable(err)
	assert.True(t, ok)
}

func TestConcurrentEditAndConfirmDoNotCorrupt(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		preview, err := f.engine.CreatePreview(ctx, KindSendEmail, sendEmailData(), CreateOptions{})
		require.NoError(t, err)

		done := make(chan error, 2)
		go func() {
			_, err := f.engine.Edit(ctx, preview.ID, "", map[string]any{FieldSubject: "raced"})
			done <- err
		}()
		payloadCh := make(chan ExecutionPayload, 1)
		go func() {
			payload, err := f.engine.Confirm(ctx, preview.ID, "")
			if err == nil {
				payloadCh <- payload
			}
			close(payloadCh)
			done <- err
		}()
		<-done
		<-done

		// Whatever the interleaving, a successful confirm hands back a
		// consistent record: subject is either original or fully edited.
		if payload, ok := <-payloadCh; ok {
			subject := payload.Data[FieldSubject]
			assert.Contains(t, []any{"Hi", "raced"}, subject)
			assert.Equal(t, "Test", payload.Data[FieldBody])
		}
		f.store.Delete(preview.ID)
	}
}

func TestSweepConfirmRace(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	preview, err := f.engine.CreatePreview(ctx, KindSendEmail, sendEmailData(), CreateOptions{})
	require.NoError(t, err)
	f.advance(2 * time.Hour)

	confirmErr := make(chan error, 1)
	go func() {
		_, err := f.engine.Confirm(ctx, preview.ID, "")
		confirmErr <- err
	}()
	removed := f.engine.SweepExpired(ctx, time.Hour)
	err = <-confirmErr

	// Exactly one of the two wins the removal.
	if err == nil {
		assert.Equal(t, 0, removed)
	} else {
		assert.ErrorIs(t, err, ErrActionNotFound)
		assert.Equal(t, 1, removed)
	}
	assert.Equal(t, 0, f.store.Len())
}

func TestIDFormatIsOpaque(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := newActionID(now)
	assert.Contains(t, id, fmt.Sprintf("act_%d_", now.UnixMilli()))
	assert.Greater(t, len(id), 20)
}
