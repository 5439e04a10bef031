package server

import (
	"errors"
	"net/http"

	"aria/internal/confirm"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and message are required"})
		return
	}

	reply, err := s.engine.HandleMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		s.logger.ErrorContext(c.Request.Context(), "chat turn failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assistant failed to process the message"})
		return
	}
	c.JSON(http.StatusOK, reply)
}

// actionRequest scopes a pending-action operation to its session.
type actionRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleGetAction(c *gin.Context) {
	preview, err := s.confirms.Preview(c.Request.Context(), c.Param("id"), c.Query("session_id"))
	if err != nil {
		s.writeActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (s *Server) handleConfirmAction(c *gin.Context) {
	// The body is optional; without a session id the ownership check is
	// skipped for trusted callers.
	var req actionRequest
	_ = c.ShouldBindJSON(&req)

	summary, err := s.dispatcher.Confirm(c.Request.Context(), c.Param("id"), req.SessionID)
	if err != nil {
		s.writeActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "confirmed", "result": summary})
}

type editRequest struct {
	SessionID string         `json:"session_id"`
	Edits     map[string]any `json:"edits" binding:"required"`
}

func (s *Server) handleEditAction(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Edits) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a non-empty edits object is required"})
		return
	}

	preview, err := s.confirms.Edit(c.Request.Context(), c.Param("id"), req.SessionID, req.Edits)
	if err != nil {
		s.writeActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (s *Server) handleCancelAction(c *gin.Context) {
	var req actionRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.confirms.Cancel(c.Request.Context(), c.Param("id"), req.SessionID); err != nil {
		s.writeActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// writeActionError maps confirmation-workflow errors onto HTTP statuses.
func (s *Server) writeActionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, confirm.ErrActionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "pending action not found; it may have expired or already been handled"})
	case errors.Is(err, confirm.ErrUnknownKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if field, ok := confirm.IsFieldNotEditable(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": field})
			return
		}
		s.logger.ErrorContext(c.Request.Context(), "action operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
