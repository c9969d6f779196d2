package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fittrack/fitness-tracker/internal/api"
	"fittrack/fitness-tracker/internal/cache"
	"fittrack/fitness-tracker/internal/config"
	"fittrack/fitness-tracker/internal/domain"
	"fittrack/fitness-tracker/internal/repository/mongo"
	"fittrack/fitness-tracker/internal/service"
	"fittrack/fitness-tracker/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Fitness Tracker API
// @version 1.0
// @description API for workout plans, sessions, goals, progress tracking and the exercise library.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Fitness Tracker Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureWorkoutPlanIndexes(ctx, appDB.Collection("workout-plans"))
		mongo.EnsureWorkoutTemplateIndexes(ctx, appDB.Collection("workout-templates"))
		mongo.EnsureWorkoutSessionIndexes(ctx, appDB.Collection("workout-sessions"))
		mongo.EnsureGoalIndexes(ctx, appDB.Collection("goals"))
		mongo.EnsureProgressIndexes(ctx, appDB.Collection("progress-entries"))
		mongo.EnsureActivityIndexes(ctx, appDB.Collection("activity-logs"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	planRepo := mongo.NewMongoWorkoutPlanRepository(appDB)
	templateRepo := mongo.NewMongoWorkoutTemplateRepository(appDB)
	sessionRepo := mongo.NewMongoWorkoutSessionRepository(appDB)
	goalRepo := mongo.NewMongoGoalRepository(appDB)
	progressRepo := mongo.NewMongoProgressRepository(appDB)
	activityRepo := mongo.NewMongoActivityRepository(appDB)

	// --- Initialize Caches ---
	// One store per collection; keys are per-user for owned entities and
	// shared for the public library and templates.
	planCache := cache.NewStore[domain.WorkoutPlan]()
	exerciseCache := cache.NewStore[domain.Exercise]()
	sessionCache := cache.NewStore[domain.WorkoutSession]()
	goalCache := cache.NewStore[domain.Goal]()
	progressCache := cache.NewStore[domain.ProgressEntry]()
	templateCache := cache.NewStore[domain.WorkoutTemplate]()

	// --- Initialize Services ---
	log.Println("Initializing services...")
	activityService := service.NewActivityService(activityRepo)
	authService := service.NewAuthService(userRepo, activityService, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo, activityService)
	planService := service.NewPlanService(planRepo, activityService, planCache)
	exerciseService := service.NewExerciseService(exerciseRepo, activityService, fileStorage, exerciseCache)
	workoutService := service.NewWorkoutSessionService(sessionRepo, activityService, sessionCache)
	progressService := service.NewProgressService(progressRepo, activityService, progressCache)
	goalService := service.NewGoalService(goalRepo, activityService, goalCache)
	templateService := service.NewTemplateService(templateRepo, activityService, templateCache)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, api.Services{
		Auth:     authService,
		User:     userService,
		Plan:     planService,
		Exercise: exerciseService,
		Workout:  workoutService,
		Progress: progressService,
		Goal:     goalService,
		Template: templateService,
		Activity: activityService,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
