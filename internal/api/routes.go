package api

import (
	"net/http"

	"fitcoach/fitness-backend/internal/domain"
	"fitcoach/fitness-backend/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	programService service.ProgramService,
	scheduleService service.ScheduleService,
	calendarService service.CalendarService,
	sessionService service.SessionService,
) {
	authHandler := NewAuthHandler(authService)
	programHandler := NewProgramHandler(programService)
	scheduleHandler := NewScheduleHandler(scheduleService, calendarService)
	sessionHandler := NewSessionHandler(sessionService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Program Routes ---
		programGroup := protected.Group("/programs")
		{
			// Any authenticated user can browse programs to schedule them;
			// only trainers create and delete.
			programGroup.POST("", RoleMiddleware(domain.RoleTrainer), programHandler.CreateProgram)
			programGroup.GET("", RoleMiddleware(domain.RoleTrainer), programHandler.GetMyPrograms)
			programGroup.GET("/:id", programHandler.GetProgram)
			programGroup.DELETE("/:id", RoleMiddleware(domain.RoleTrainer), programHandler.DeleteProgram)
		}

		// --- Schedule Routes ---
		scheduleGroup := protected.Group("/schedule")
		{
			scheduleGroup.POST("/generate", scheduleHandler.GenerateSchedule)
			scheduleGroup.GET("/active", scheduleHandler.GetActiveSchedule)
			scheduleGroup.PATCH("/start-date", scheduleHandler.UpdateStartDate)
			scheduleGroup.DELETE("", scheduleHandler.DeactivateSchedule)
			scheduleGroup.GET("/programs/:programId", scheduleHandler.CheckProgramMembership)
			scheduleGroup.DELETE("/programs/:programId", scheduleHandler.RemoveProgram)
			scheduleGroup.GET("/workouts/:date", scheduleHandler.WorkoutForDate)
		}

		// --- Session Routes ---
		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("/:date/start", sessionHandler.StartSession)
			sessionGroup.POST("/:date/complete", sessionHandler.CompleteSession)
		}
	}
}
