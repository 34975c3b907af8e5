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

// ProgramHandler holds the program service dependency.
type ProgramHandler struct {
	programService service.ProgramService
}

// NewProgramHandler creates a new ProgramHandler.
func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- DTOs ---

type CreateProgramRequest struct {
	Name            string                 `json:"name" binding:"required"`
	Description     string                 `json:"description"`
	Focus           []domain.Focus         `json:"focus" binding:"required,min=1"`
	Difficulty      string                 `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	WeeklyFrequency int                    `json:"weekly_frequency" binding:"required,min=1"`
	SessionLength   int                    `json:"session_length" binding:"omitempty,min=1"`
	Sections        []CreateSectionRequest `json:"sections" binding:"required,min=1"`
}

type CreateSectionRequest struct {
	Name      string                  `json:"name" binding:"required"`
	Type      string                  `json:"type"`
	IsRestDay bool                    `json:"is_rest_day"`
	Exercises []CreateExerciseRequest `json:"exercises"`
}

type CreateExerciseRequest struct {
	Name string             `json:"name" binding:"required"`
	Sets []CreateSetRequest `json:"sets"`
}

type CreateSetRequest struct {
	Reps        *int `json:"reps"`
	TimeSeconds *int `json:"time_seconds"`
	RestSeconds int  `json:"rest_seconds" binding:"omitempty,min=0"`
}

// ProgramResponse is the wire representation of a workout program with its
// full section tree.
type ProgramResponse struct {
	ID              string            `json:"id"`
	TrainerID       *string           `json:"trainer_id,omitempty"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Focus           []domain.Focus    `json:"focus"`
	Difficulty      string            `json:"difficulty,omitempty"`
	WeeklyFrequency int               `json:"weekly_frequency"`
	SessionLength   int               `json:"session_length,omitempty"`
	Sections        []SectionResponse `json:"sections"`
	CreatedAt       time.Time         `json:"created_at"`
}

type SectionResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      string             `json:"type,omitempty"`
	IsRestDay bool               `json:"is_rest_day"`
	Order     int                `json:"order"`
	Exercises []ExerciseResponse `json:"exercises"`
}

type ExerciseResponse struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Order int           `json:"order"`
	Sets  []SetResponse `json:"sets"`
}

type SetResponse struct {
	SetNumber   int  `json:"set_number"`
	Reps        *int `json:"reps,omitempty"`
	TimeSeconds *int `json:"time_seconds,omitempty"`
	RestSeconds int  `json:"rest_seconds"`
}

// MapProgramToResponse converts a domain.WorkoutProgram to its DTO.
func MapProgramToResponse(p *domain.WorkoutProgram) ProgramResponse {
	resp := ProgramResponse{
		ID:              p.ID.Hex(),
		Name:            p.Name,
		Description:     p.Description,
		Focus:           p.Focus,
		Difficulty:      p.Difficulty,
		WeeklyFrequency: p.WeeklyFrequency,
		SessionLength:   p.SessionLength,
		Sections:        make([]SectionResponse, 0, len(p.Sections)),
		CreatedAt:       p.CreatedAt,
	}
	if p.TrainerID != nil {
		id := p.TrainerID.Hex()
		resp.TrainerID = &id
	}
	for _, sec := range p.Sections {
		secResp := SectionResponse{
			ID:        sec.ID.Hex(),
			Name:      sec.Name,
			Type:      sec.Type,
			IsRestDay: sec.IsRestDay,
			Order:     sec.Order,
			Exercises: make([]ExerciseResponse, 0, len(sec.Exercises)),
		}
		for _, ex := range sec.Exercises {
			exResp := ExerciseResponse{
				ID:    ex.ID.Hex(),
				Name:  ex.Name,
				Order: ex.Order,
				Sets:  make([]SetResponse, 0, len(ex.Sets)),
			}
			for _, set := range ex.Sets {
				exResp.Sets = append(exResp.Sets, SetResponse{
					SetNumber:   set.SetNumber,
					Reps:        set.Reps,
					TimeSeconds: set.TimeSeconds,
					RestSeconds: set.RestSeconds,
				})
			}
			secResp.Exercises = append(secResp.Exercises, exResp)
		}
		resp.Sections = append(resp.Sections, secResp)
	}
	return resp
}

// MapProgramsToResponse converts a slice of programs to DTOs.
func MapProgramsToResponse(programs []domain.WorkoutProgram) []ProgramResponse {
	responses := make([]ProgramResponse, len(programs))
	for i := range programs {
		responses[i] = MapProgramToResponse(&programs[i])
	}
	return responses
}

// --- Handler Methods ---

// CreateProgram creates a program with its full nested section tree.
// Only trainers may create programs.
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, err := getUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	input := service.ProgramInput{
		Name:            req.Name,
		Description:     req.Description,
		Focus:           req.Focus,
		Difficulty:      req.Difficulty,
		WeeklyFrequency: req.WeeklyFrequency,
		SessionLength:   req.SessionLength,
		Sections:        make([]service.SectionInput, 0, len(req.Sections)),
	}
	for _, sec := range req.Sections {
		secInput := service.SectionInput{
			Name:      sec.Name,
			Type:      sec.Type,
			IsRestDay: sec.IsRestDay,
			Exercises: make([]service.ExerciseInput, 0, len(sec.Exercises)),
		}
		for _, ex := range sec.Exercises {
			exInput := service.ExerciseInput{
				Name: ex.Name,
				Sets: make([]service.SetInput, 0, len(ex.Sets)),
			}
			for _, set := range ex.Sets {
				exInput.Sets = append(exInput.Sets, service.SetInput{
					Reps:        set.Reps,
					TimeSeconds: set.TimeSeconds,
					RestSeconds: set.RestSeconds,
				})
			}
			secInput.Exercises = append(secInput.Exercises, exInput)
		}
		input.Sections = append(input.Sections, secInput)
	}

	program, err := h.programService.CreateProgram(c.Request.Context(), trainerID, input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProgram) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create program.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapProgramToResponse(program))
}

// GetProgram returns a single program with its section tree.
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	programID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program id format.")
		return
	}

	program, err := h.programService.GetProgram(c.Request.Context(), programID)
	if err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve program.")
		}
		return
	}

	c.JSON(http.StatusOK, MapProgramToResponse(program))
}

// GetMyPrograms lists the authenticated trainer's own programs.
func (h *ProgramHandler) GetMyPrograms(c *gin.Context) {
	trainerID, err := getUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	programs, err := h.programService.GetTrainerPrograms(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve programs.")
		return
	}

	c.JSON(http.StatusOK, MapProgramsToResponse(programs))
}

// DeleteProgram soft-deletes a program owned by the trainer.
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	programID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program id format.")
		return
	}
	trainerID, err := getUserObjectID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return
	}

	if err := h.programService.DeleteProgram(c.Request.Context(), programID, trainerID); err != nil {
		if errors.Is(err, service.ErrProgramNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete program.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
