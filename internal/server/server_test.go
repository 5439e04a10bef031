package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"aria/internal/assistant"
	"aria/internal/confirm"
	"aria/internal/graph"
	"aria/internal/llm"
	"aria/internal/session"
	"aria/internal/tools"
	"aria/internal/voice"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mu       sync.Mutex
	sentMail []map[string]any

	mock     *llm.MockClient
	confirms *confirm.Engine
	api      *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}

	workspace := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/me/sendMail":
			var payload map[string]any
			json.NewDecoder(r.Body).Decode(&payload)
			f.sentMail = append(f.sentMail, payload)
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodGet && r.URL.Path == "/me/people":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"value": []graph.Contact{
				{ID: "u1", DisplayName: "Dana Reyes", EmailAddress: "dana@example.com"},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(workspace.Close)

	client, err := graph.NewClient(graph.Config{BaseURL: workspace.URL, Timeout: 5 * time.Second},
		graph.StaticTokenSource("test-token"), nil)
	require.NoError(t, err)

	f.confirms = confirm.NewEngine(confirm.NewMemoryStore(), nil, nil)
	dispatcher := tools.NewDispatcher(f.confirms, client, nil)

	registry := tools.NewRegistry()
	require.NoError(t, tools.RegisterGated(registry, f.confirms, client))
	require.NoError(t, tools.RegisterConfirmation(registry, dispatcher))

	f.mock = llm.NewMockClient("test-model")
	engine := assistant.NewEngine(f.mock, registry, session.NewMemoryStore(), nil, nil, assistant.Config{})

	srv := New(Config{Host: "localhost", Port: 0, EnableCORS: true},
		engine, f.confirms, dispatcher,
		voice.MockTranscriber{Transcript: "what is on my calendar"}, voice.MockSynthesizer{}, nil, nil)

	f.api = httptest.NewServer(srv.Handler())
	t.Cleanup(f.api.Close)
	return f
}

// pendingSendEmail seeds a pending action the way the send_email tool would.
func (f *fixture) pendingSendEmail(t *testing.T, sessionID string) confirm.Preview {
	t.Helper()
	preview, err := f.confirms.CreatePreview(context.Background(), confirm.KindSendEmail,
		map[string]any{
			confirm.FieldRecipientName: "Dana Reyes",
			confirm.FieldSubject:       "Standup notes",
			confirm.FieldBody:          "Here are the notes.",
		},
		confirm.CreateOptions{
			SessionID: sessionID,
			CachedLookup: map[string]any{
				"contactId":    "u1",
				"displayName":  "Dana Reyes",
				"emailAddress": "dana@example.com",
			},
		})
	require.NoError(t, err)
	return preview
}

func (f *fixture) postJSON(t *testing.T, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(f.api.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.api.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsRouteAbsentWhenDisabled(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.api.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatEndpoint(t *testing.T) {
	f := newFixture(t)
	f.mock.EnqueueText("You have nothing scheduled today.")

	resp, body := f.postJSON(t, "/api/chat", map[string]any{
		"session_id": "s1",
		"message":    "what is on my calendar?",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "You have nothing scheduled today.", body["text"])
	assert.Equal(t, "s1", body["session_id"])
}

func TestChatEndpointValidation(t *testing.T) {
	f := newFixture(t)
	resp, body := f.postJSON(t, "/api/chat", map[string]any{"session_id": "s1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "required")
}

func TestActionLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)
	preview := f.pendingSendEmail(t, "s1")

	// Read it back.
	resp, err := http.Get(fmt.Sprintf("%s/api/actions/%s?session_id=s1", f.api.URL, preview.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched confirm.Preview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	assert.Equal(t, "Standup notes", fetched.Fields["subject"])

	// Edit the subject.
	editResp, edited := f.postJSON(t, "/api/actions/"+preview.ID+"/edit", map[string]any{
		"session_id": "s1",
		"edits":      map[string]any{"subject": "Standup notes (final)"},
	})
	require.Equal(t, http.StatusOK, editResp.StatusCode)
	fields := edited["fields"].(map[string]any)
	assert.Equal(t, "Standup notes (final)", fields["subject"])

	// Confirm executes the send.
	confirmResp, confirmed := f.postJSON(t, "/api/actions/"+preview.ID+"/confirm", map[string]any{
		"session_id": "s1",
	})
	require.Equal(t, http.StatusOK, confirmResp.StatusCode)
	assert.Equal(t, "confirmed", confirmed["status"])
	require.Len(t, f.sentMail, 1)
	message := f.sentMail[0]["message"].(map[string]any)
	assert.Equal(t, "Standup notes (final)", message["subject"])

	// The action is gone afterwards.
	gone, err := http.Get(fmt.Sprintf("%s/api/actions/%s?session_id=s1", f.api.URL, preview.ID))
	require.NoError(t, err)
	defer gone.Body.Close()
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestEditRejectsNonEditableField(t *testing.T) {
	f := newFixture(t)
	preview := f.pendingSendEmail(t, "s1")

	resp, body := f.postJSON(t, "/api/actions/"+preview.ID+"/edit", map[string]any{
		"session_id": "s1",
		"edits":      map[string]any{"secretHeader": "x"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "secretHeader", body["field"])
}

func TestCancelActionOverHTTP(t *testing.T) {
	f := newFixture(t)
	preview := f.pendingSendEmail(t, "s1")

	resp, body := f.postJSON(t, "/api/actions/"+preview.ID+"/cancel", map[string]any{"session_id": "s1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", body["status"])

	again, _ := f.postJSON(t, "/api/actions/"+preview.ID+"/confirm", map[string]any{"session_id": "s1"})
	assert.Equal(t, http.StatusNotFound, again.StatusCode)
	assert.Empty(t, f.sentMail)
}

func TestForeignSessionCannotTouchAction(t *testing.T) {
	f := newFixture(t)
	preview := f.pendingSendEmail(t, "s1")

	resp, _ := f.postJSON(t, "/api/actions/"+preview.ID+"/confirm", map[string]any{"session_id": "intruder"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, f.sentMail)
}

func TestVoiceWebSocketTurn(t *testing.T) {
	f := newFixture(t)
	f.mock.EnqueueText("Your calendar is clear.")

	wsURL := strings.Replace(f.api.URL, "http://", "ws://", 1) + "/ws/voice?session_id=v1"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("fake-audio-bytes")))

	messageType, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, messageType)
	var reply struct {
		Type       string `json:"type"`
		Transcript string `json:"transcript"`
		Text       string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(frame, &reply))
	assert.Equal(t, "reply", reply.Type)
	assert.Equal(t, "what is on my calendar", reply.Transcript)
	assert.Equal(t, "Your calendar is clear.", reply.Text)

	messageType, audio, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, messageType)
	assert.NotEmpty(t, audio)
}

func TestVoiceWebSocketRequiresSession(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.api.URL + "/ws/voice")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
