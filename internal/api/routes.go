package api

import (
	"net/http"

	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// Services bundles the service dependencies SetupRoutes wires into
// handlers.
type Services struct {
	Auth     service.AuthService
	User     service.UserService
	Plan     service.PlanService
	Exercise service.ExerciseService
	Workout  service.WorkoutSessionService
	Progress service.ProgressService
	Goal     service.GoalService
	Template service.TemplateService
	Activity service.ActivityService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svcs Services) {
	authHandler := NewAuthHandler(svcs.Auth)
	userHandler := NewUserHandler(svcs.User)
	planHandler := NewPlanHandler(svcs.Plan)
	exerciseHandler := NewExerciseHandler(svcs.Exercise)
	workoutHandler := NewWorkoutHandler(svcs.Workout)
	progressHandler := NewProgressHandler(svcs.Progress)
	goalHandler := NewGoalHandler(svcs.Goal)
	templateHandler := NewTemplateHandler(svcs.Template)
	adminHandler := NewAdminHandler(svcs.User, svcs.Activity)

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
		// --- Profile ---
		protected.GET("/me", userHandler.GetProfile)
		protected.PUT("/me", userHandler.UpdateProfile)

		// --- Workout Plans ---
		planGroup := protected.Group("/plans")
		{
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("", planHandler.GetPlans)
			planGroup.GET("/archived", planHandler.GetArchivedPlans)
			planGroup.GET("/:id", planHandler.GetPlanByID)
			planGroup.PUT("/:id", planHandler.UpdatePlan)
			planGroup.POST("/:id/archive", planHandler.ArchivePlan)
			planGroup.DELETE("/:id", planHandler.DeletePlan)
		}

		// --- Exercise Library (read-only for users) ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.GetLibrary)
			exerciseGroup.GET("/:id", exerciseHandler.GetExerciseByID)
			exerciseGroup.GET("/:id/media", exerciseHandler.GetMediaURL)
		}

		// --- Workout Sessions ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.LogSession)
			workoutGroup.GET("", workoutHandler.GetSessions)
			workoutGroup.GET("/:id", workoutHandler.GetSessionByID)
			workoutGroup.PUT("/:id/exercises", workoutHandler.UpdateExercises)
			workoutGroup.POST("/:id/complete", workoutHandler.CompleteSession)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteSession)
		}

		// --- Progress Tracking ---
		progressGroup := protected.Group("/progress")
		{
			progressGroup.POST("", progressHandler.RecordEntry)
			progressGroup.GET("", progressHandler.GetEntries)
			progressGroup.PUT("/:id", progressHandler.UpdateEntry)
			progressGroup.DELETE("/:id", progressHandler.DeleteEntry)
		}

		// --- Goals ---
		goalGroup := protected.Group("/goals")
		{
			goalGroup.POST("", goalHandler.CreateGoal)
			goalGroup.GET("", goalHandler.GetGoals)
			goalGroup.PUT("/:id/progress", goalHandler.UpdateProgress)
			goalGroup.POST("/:id/abandon", goalHandler.AbandonGoal)
			goalGroup.DELETE("/:id", goalHandler.DeleteGoal)
		}

		// --- Workout Templates (read-only for users) ---
		templateGroup := protected.Group("/templates")
		{
			templateGroup.GET("", templateHandler.GetTemplates)
			templateGroup.GET("/:id", templateHandler.GetTemplateByID)
		}

		// --- Admin ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.PUT("/users/:uid/role", adminHandler.SetRole)
			adminGroup.PUT("/users/:uid/status", adminHandler.SetStatus)
			adminGroup.GET("/users/:uid/activity", adminHandler.GetUserActivity)
			adminGroup.GET("/activity", adminHandler.GetRecentActivity)

			adminGroup.POST("/exercises", exerciseHandler.CreateExercise)
			adminGroup.GET("/exercises", exerciseHandler.GetAllExercises)
			adminGroup.PUT("/exercises/:id", exerciseHandler.UpdateExercise)
			adminGroup.DELETE("/exercises/:id", exerciseHandler.DeleteExercise)
			adminGroup.POST("/exercises/:id/media", exerciseHandler.RequestMediaUpload)

			adminGroup.POST("/templates", templateHandler.CreateTemplate)
			adminGroup.PUT("/templates/:id", templateHandler.UpdateTemplate)
			adminGroup.POST("/templates/:id/archive", templateHandler.ArchiveTemplate)
			adminGroup.DELETE("/templates/:id", templateHandler.DeleteTemplate)
		}
	}
}
