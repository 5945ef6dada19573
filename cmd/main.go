package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mtnvale/stridecoach-backend/internal/db"
	"github.com/mtnvale/stridecoach-backend/internal/handlers"
	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/middleware"
	"github.com/mtnvale/stridecoach-backend/internal/realtime/bus"
	"github.com/mtnvale/stridecoach-backend/internal/repos"
	"github.com/mtnvale/stridecoach-backend/internal/server"
	"github.com/mtnvale/stridecoach-backend/internal/services"
	"github.com/mtnvale/stridecoach-backend/internal/sse"
	"github.com/mtnvale/stridecoach-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "", log)
	if jwtSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	slaHours := utils.GetEnvAsInt("SLA_HOURS", 48, log)
	maxUploadBytes := utils.GetEnvAsInt64("MAX_UPLOAD_BYTES", 512<<20, log)
	port := utils.GetEnv("PORT", "8080", log)

	// Database
	databaseService, err := db.NewDatabaseService(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err = databaseService.AutoMigrateAll(); err != nil {
		log.Fatal("Database auto migration failed", "error", err)
	}
	theDB := databaseService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(theDB, log)
	userTokenRepo := repos.NewUserTokenRepo(theDB, log)
	teamRepo := repos.NewTeamRepo(theDB, log)
	submissionRepo := repos.NewSubmissionRepo(theDB, log)
	reviewRepo := repos.NewReviewRepo(theDB, log)
	commentRepo := repos.NewCommentRepo(theDB, log)
	announcementRepo := repos.NewAnnouncementRepo(theDB, log)
	gearRepo := repos.NewGearRepo(theDB, log)
	resourceRepo := repos.NewResourceRepo(theDB, log)
	applicationRepo := repos.NewApplicationRepo(theDB, log)

	// SSE hub; with REDIS_ADDR set, a redis bus fans broadcasts out across
	// instances, otherwise everything stays in-process.
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewHub(log)
	var msgBus bus.Bus
	if os.Getenv("REDIS_ADDR") != "" {
		msgBus, err = bus.NewRedisBus(log)
		if err != nil {
			log.Fatal("Redis bus init failed", "error", err)
		}
		if err := msgBus.StartForwarder(context.Background(), func(m sse.Message) {
			sseHub.Broadcast(m)
		}); err != nil {
			log.Fatal("Redis bus forwarder failed", "error", err)
		}
	}
	broadcaster := services.NewBroadcaster(log, sseHub, msgBus)

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Fatal("Could not init BucketService", "error", err)
	}
	authService := services.NewAuthService(theDB, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(theDB, log, userRepo)
	teamService := services.NewTeamService(theDB, log, teamRepo)
	queueService := services.NewQueueService(theDB, log, submissionRepo, sseHub, broadcaster)
	submissionService := services.NewSubmissionService(theDB, log, submissionRepo, reviewRepo, commentRepo, bucketService, queueService, broadcaster, slaHours, maxUploadBytes)
	commentService := services.NewCommentService(theDB, log, commentRepo, submissionRepo, broadcaster)
	announcementService := services.NewAnnouncementService(theDB, log, announcementRepo, broadcaster)
	gearService := services.NewGearService(theDB, log, gearRepo)
	resourceService := services.NewResourceService(theDB, log, resourceRepo)
	applicationService := services.NewApplicationService(theDB, log, applicationRepo, userRepo)
	realtimeService := services.NewRealtimeService(log, submissionRepo)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService)
	sseHandler := handlers.NewSSEHandler(log, sseHub, realtimeService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	queueHandler := handlers.NewQueueHandler(queueService)
	commentHandler := handlers.NewCommentHandler(commentService)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService)
	gearHandler := handlers.NewGearHandler(gearService)
	resourceHandler := handlers.NewResourceHandler(resourceService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:      authMiddleware,
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		TeamHandler:         teamHandler,
		SSEHandler:          sseHandler,
		SubmissionHandler:   submissionHandler,
		QueueHandler:        queueHandler,
		CommentHandler:      commentHandler,
		AnnouncementHandler: announcementHandler,
		GearHandler:         gearHandler,
		ResourceHandler:     resourceHandler,
		ApplicationHandler:  applicationHandler,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
