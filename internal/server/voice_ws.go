package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"aria/internal/voice"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	// The HTTP layer already applies CORS; the websocket handshake does not
	// restrict further.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	maxVoiceFrameBytes = 8 << 20 // 8 MiB of audio per utterance
	voiceTurnTimeout   = 2 * time.Minute
)

// voiceReply is the JSON frame sent before the synthesized audio frame.
type voiceReply struct {
	Type            string `json:"type"`
	SessionID       string `json:"session_id"`
	Transcript      string `json:"transcript,omitempty"`
	Text            string `json:"text,omitempty"`
	PendingActionID string `json:"pending_action_id,omitempty"`
	Error           string `json:"error,omitempty"`
}

// handleVoiceWS runs voice turns over a websocket: each binary frame is one
// utterance, answered with a JSON reply frame followed by a binary audio
// frame of the spoken response.
func (s *Server) handleVoiceWS(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id query parameter is required"})
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WarnContext(c.Request.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxVoiceFrameBytes)

	ctx := c.Request.Context()
	for {
		messageType, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.WarnContext(ctx, "voice websocket closed unexpectedly", "error", err)
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			s.writeVoiceError(conn, sessionID, "expected a binary audio frame")
			continue
		}

		turnCtx, cancel := context.WithTimeout(ctx, voiceTurnTimeout)
		err = s.runVoiceTurn(turnCtx, sessionID, frame, conn)
		cancel()
		if err != nil {
			return
		}
	}
}

// runVoiceTurn transcribes one utterance, runs the assistant and streams the
// reply back. A non-nil return ends the connection.
func (s *Server) runVoiceTurn(ctx context.Context, sessionID string, audio []byte, conn *websocket.Conn) error {
	transcription, err := s.transcriber.Transcribe(ctx, voice.TranscriptionRequest{
		Audio:       audio,
		ContentType: "audio/wav",
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "transcription failed", "error", err)
		s.writeVoiceError(conn, sessionID, "could not transcribe audio")
		return nil
	}

	reply, err := s.engine.HandleMessage(ctx, sessionID, transcription.Text)
	if err != nil {
		s.logger.ErrorContext(ctx, "voice chat turn failed", "error", err)
		s.writeVoiceError(conn, sessionID, "assistant failed to process the message")
		return nil
	}

	payload, _ := json.Marshal(voiceReply{
		Type:            "reply",
		SessionID:       sessionID,
		Transcript:      transcription.Text,
		Text:            reply.Text,
		PendingActionID: reply.PendingActionID,
	})
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return err
	}

	synthesis, err := s.synthesizer.Synthesize(ctx, voice.SynthesisRequest{Text: reply.Text})
	if err != nil {
		s.logger.ErrorContext(ctx, "synthesis failed", "error", err)
		s.writeVoiceError(conn, sessionID, "could not synthesize reply audio")
		return nil
	}
	return conn.WriteMessage(websocket.BinaryMessage, synthesis.Audio)
}

func (s *Server) writeVoiceError(conn *websocket.Conn, sessionID, message string) {
	payload, _ := json.Marshal(voiceReply{Type: "error", SessionID: sessionID, Error: message})
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}
