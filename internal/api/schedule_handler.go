package api

import (
	"errors"
	"net/http"
	"time"

	"fitcoach/fitness-backend/internal/domain"
	"fitcoach/fitness-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleHandler holds the schedule and calendar service dependencies.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	calendarService service.CalendarService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService, calendarService service.CalendarService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		calendarService: calendarService,
	}
}

// --- DTOs ---

type GenerateScheduleRequest struct {
	ProgramID string   `json:"program_id" binding:"required"`
	StartDate *string  `json:"start_date"`
	RestDays  []string `json:"rest_days"`
}

type UpdateStartDateRequest struct {
	StartDate string `json:"start_date" binding:"required"`
}

// ScheduleResponse is the wire representation of a user schedule.
type ScheduleResponse struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id"`
	StartDate      string              `json:"start_date"`
	WeeklySchedule map[string][]string `json:"weekly_schedule"`
	IsActive       bool                `json:"is_active"`
	ProgramIDs     []string            `json:"program_ids"`
	CreatedAt      time.Time           `json:"created_at"`
}

// MapScheduleToResponse converts a domain.UserSchedule to its DTO.
func MapScheduleToResponse(s *domain.UserSchedule) *ScheduleResponse {
	if s == nil {
		return nil
	}
	weekly := make(map[string][]string, len(domain.Weekdays))
	for _, day := range domain.Weekdays {
		ids := s.WeeklySchedule.Slot(day)
		hexIDs := make([]string, 0, len(ids))
		for _, id := range ids {
			hexIDs = append(hexIDs, id.Hex())
		}
		weekly[day.String()] = hexIDs
	}
	programIDs := make([]string, 0, len(s.ProgramIDs))
	for _, id := range s.ProgramIDs {
		programIDs = append(programIDs, id.Hex())
	}
	return &ScheduleResponse{
		ID:             s.ID.Hex(),
		UserID:         s.UserID.Hex(),
		StartDate:      domain.FormatDate(s.StartDate),
		WeeklySchedule: weekly,
		IsActive:       s.IsActive,
		ProgramIDs:     programIDs,
		CreatedAt:      s.CreatedAt,
	}
}

// --- Handler Methods ---

// GenerateSchedule adds a program to the user's active schedule, creating
// the schedule on first use.
func (h *ScheduleHandler) GenerateSchedule(c *gin.Context) {
	var req GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := getUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	programID, err := primitive.ObjectIDFromHex(req.ProgramID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program_id format.")
		return
	}

	var startDate *time.Time
	if req.StartDate != nil {
		parsed, err := domain.ParseDate(*req.StartDate)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "start_date must be formatted as YYYY-MM-DD.")
			return
		}
		startDate = &parsed
	}

	restDays := make([]domain.Weekday, 0, len(req.RestDays))
	for _, name := range req.RestDays {
		day, err := domain.ParseWeekday(name)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		restDays = append(restDays, day)
	}

	schedule, err := h.scheduleService.GenerateSchedule(c.Request.Context(), userID, programID, startDate, restDays)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrEmptyProgram) || errors.Is(err, service.ErrDuplicateProgram) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"schedule": MapScheduleToResponse(schedule)})
}

// RemoveProgram detaches a program from the active schedule.
func (h *ScheduleHandler) RemoveProgram(c *gin.Context) {
	userID, err := getUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	programID, err := primitive.ObjectIDFromHex(c.Param("programId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program id format.")
		return
	}

	schedule, err := h.scheduleService.RemoveProgram(c.Request.Context(), userID, programID)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) || errors.Is(err, service.ErrNoActiveSchedule) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrProgramNotScheduled) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"removed":            true,
		"remaining_programs": len(schedule.ProgramIDs),
		"schedule_active":    schedule.IsActive,
	})
}

// GetActiveSchedule returns the active schedule plus its four-week calendar
// projection, or a null schedule when none is active.
func (h *ScheduleHandler) GetActiveSchedule(c *gin.Context) {
	userID, err := getUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	schedule, entries, err := h.calendarService.ProjectCalendar(c.Request.Context(), userID, service.DefaultCalendarHorizonDays)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"schedule":        MapScheduleToResponse(schedule),
		"calendar_events": entries,
	})
}

// UpdateStartDate moves the active schedule's projection anchor.
func (h *ScheduleHandler) UpdateStartDate(c *gin.Context) {
	var req UpdateStartDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := getUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	startDate, err := domain.ParseDate(req.StartDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "start_date must be formatted as YYYY-MM-DD.")
		return
	}

	schedule, err := h.scheduleService.UpdateStartDate(c.Request.Context(), userID, startDate)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSchedule) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"start_date": domain.FormatDate(schedule.StartDate)})
}

// WorkoutForDate returns the full workout detail for a single date.
func (h *ScheduleHandler) WorkoutForDate(c *gin.Context) {
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

	day, err := h.calendarService.WorkoutsForDate(c.Request.Context(), userID, date)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSchedule) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, day)
}

// DeactivateSchedule deactivates every active schedule of the user.
func (h *ScheduleHandler) DeactivateSchedule(c *gin.Context) {
	userID, err := getUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	count, err := h.scheduleService.DeactivateSchedules(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"deactivated": count})
}

// CheckProgramMembership reports whether a program is part of the user's
// active schedule.
func (h *ScheduleHandler) CheckProgramMembership(c *gin.Context) {
	userID, err := getUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	programID, err := primitive.ObjectIDFromHex(c.Param("programId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program id format.")
		return
	}

	membership, err := h.scheduleService.ProgramMembership(c.Request.Context(), userID, programID)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, membership)
}
