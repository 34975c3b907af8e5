package api

import (
	"errors"
	"net/http"

	"fitcoach/fitness-backend/internal/domain"
	"fitcoach/fitness-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionHandler holds the session service dependency.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- DTOs ---

// CompleteSessionRequest carries the optional completion details.
// DurationMinutes is deliberately untyped: the service validates that the
// raw JSON value parses as a non-negative integer before anything persists.
type CompleteSessionRequest struct {
	DurationMinutes any     `json:"duration_minutes"`
	Notes           *string `json:"notes"`
}

// SessionResponse is the wire representation of a workout session.
type SessionResponse struct {
	ID              string               `json:"id"`
	Date            string               `json:"date"`
	Status          domain.SessionStatus `json:"status"`
	IsCompleted     bool                 `json:"is_completed"`
	DurationMinutes *int                 `json:"duration_minutes"`
	Notes           string               `json:"notes"`
	ProgramID       *string              `json:"program_id,omitempty"`
}

// MapSessionToResponse converts a domain.WorkoutSession to its DTO.
func MapSessionToResponse(s *domain.WorkoutSession) SessionResponse {
	resp := SessionResponse{
		ID:              s.ID.Hex(),
		Date:            domain.FormatDate(s.Date),
		Status:          s.Status,
		IsCompleted:     s.IsCompleted,
		DurationMinutes: s.DurationMinutes,
		Notes:           s.Notes,
	}
	if s.ProgramID != nil {
		id := s.ProgramID.Hex()
		resp.ProgramID = &id
	}
	return resp
}

// --- Handler Methods ---

// StartSession gets or creates the session for the date with status
// in_progress. Starting an already-completed session never reverts it.
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, err := getUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD.")
		return
	}

	session, err := h.sessionService.StartSession(c.Request.Context(), userID, date)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, MapSessionToResponse(session))
}

// CompleteSession marks the date's session completed, creating the record
// if the user never explicitly started it.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	userID, err := getUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	date, err := domain.ParseDate(c.Param("date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD.")
		return
	}

	var req CompleteSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}

	session, err := h.sessionService.CompleteSession(c.Request.Context(), userID, date, req.DurationMinutes, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDuration) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, MapSessionToResponse(session))
}
