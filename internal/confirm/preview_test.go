package confirm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPreviewFiltersToDisplayAllowlist(t *testing.T) {
	raw := map[string]any{
		FieldRecipientName: "Jane Doe",
		FieldSubject:       "Hi",
		FieldBody:          "Test",
		FieldCCRecipients:  []string{"Bob"},
		// Internal state that must never reach the user-facing preview.
		FieldRecipientEmail: "jane.doe@example.com",
		"accessToken":       "secret-token",
		"rawApiPayload":     map[string]any{"huge": true},
	}

	preview, err := BuildPreview(KindSendEmail, "act_1", StatusPending, raw)
	require.NoError(t, err)

	spec, _ := SpecFor(KindSendEmail)
	assert.Len(t, preview.Fields, len(spec.DisplayFields))
	for _, field := range spec.DisplayFields {
		assert.Contains(t, preview.Fields, field)
	}
	assert.NotContains(t, preview.Fields, FieldRecipientEmail)
	assert.NotContains(t, preview.Fields, "accessToken")
	assert.NotContains(t, preview.Fields, "rawApiPayload")

	assert.Equal(t, "Jane Doe", preview.Fields[FieldRecipientName])
	assert.Equal(t, "Bob", preview.Fields[FieldCCRecipients])
	assert.Equal(t, `Send email to Jane Doe with subject: "Hi"`, preview.Summary)
}

func TestBuildPreviewMissingFieldsRenderPlaceholder(t *testing.T) {
	preview, err := BuildPreview(KindSendEmail, "act_2", StatusPending, map[string]any{
		FieldRecipientName: "Jane Doe",
		FieldSubject:       "Hi",
	})
	require.NoError(t, err)

	assert.Equal(t, PlaceholderNone, preview.Fields[FieldBody])
	assert.Equal(t, PlaceholderNone, preview.Fields[FieldCCRecipients])
}

func TestBuildPreviewUnknownKind(t *testing.T) {
	_, err := BuildPreview(ActionKind("launch_rocket"), "act_3", StatusPending, nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestBuildPreviewIsPure(t *testing.T) {
	raw := map[string]any{FieldRecipientName: "Jane", FieldMessageText: "hello"}

	first, err := BuildPreview(KindSendChatMessage, "act_4", StatusPending, raw)
	require.NoError(t, err)
	second, err := BuildPreview(KindSendChatMessage, "act_4", StatusPending, raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, map[string]any{FieldRecipientName: "Jane", FieldMessageText: "hello"}, raw)
}

func TestBuildPreviewJoinsAnySlices(t *testing.T) {
	preview, err := BuildPreview(KindSendEmail, "act_5", StatusPending, map[string]any{
		FieldRecipientName: "Jane",
		FieldSubject:       "Hi",
		FieldBody:          "Test",
		// Tool arguments decoded from JSON arrive as []any, not []string.
		FieldCCRecipients: []any{"Bob", "Carol"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob, Carol", preview.Fields[FieldCCRecipients])
}

func TestBuildPreviewChatSummaryTruncates(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	preview, err := BuildPreview(KindSendChatMessage, "act_6", StatusPending, map[string]any{
		FieldRecipientName: "Jane",
		FieldMessageText:   string(long),
	})
	require.NoError(t, err)
	assert.Less(t, len(preview.Summary), 120)
}
