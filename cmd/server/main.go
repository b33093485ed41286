package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"system-builder-backend/internal/access"
	"system-builder-backend/internal/agents"
	"system-builder-backend/internal/config"
	"system-builder-backend/internal/database"
	"system-builder-backend/internal/handlers"
	"system-builder-backend/internal/llm"
	"system-builder-backend/internal/logging"
	"system-builder-backend/internal/middleware"
	"system-builder-backend/internal/services"
	"system-builder-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Migrations run before the store opens its pool.
	migrator, err := database.NewMigrator(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to initialize migrator", zap.Error(err))
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		logger.Fatal("migration failed", zap.Error(err))
	}
	migrator.Close()

	store, err := database.NewStore(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	llmClient, err := llm.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout, logger)
	if err != nil {
		logger.Fatal("failed to initialize model client", zap.Error(err))
	}

	// Optional Supabase integration: archive uploads + realtime events.
	var realtimeClient *supabase.RealtimeClient
	var storageClient *supabase.StorageClient
	if cfg.SupabaseConfigured() {
		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			logger.Warn("supabase unavailable, exports will be download-only", zap.Error(err))
		} else {
			realtimeClient = supabase.NewRealtimeClient(supabaseClient.Supabase)
			storageClient = supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseStorageBucket)
		}
	}

	accessCtl := access.NewController(store)

	extractor := agents.NewExtractor(llmClient, logger)
	refiner := agents.NewRefiner(extractor, cfg.MaxPromptLength)
	planner := agents.NewPlanner(extractor)
	generator := agents.NewSystemGenerator(llmClient, cfg.MaxFileBytes, logger)
	reviewer := agents.NewReviewer(extractor)
	refactorer := agents.NewRefactorer(llmClient, cfg.MaxFileBytes, logger)

	var events agents.EventPublisher
	if realtimeClient != nil {
		events = realtimeClient
	}
	pipeline := agents.NewPipeline(generator, reviewer, refactorer, accessCtl, store, events, logger)

	var uploader services.ArchiveUploader
	if storageClient != nil {
		uploader = storageClient
	}
	exporter := services.NewExporter(uploader, logger)

	authHandler := handlers.NewAuthHandler(store, cfg.JWTSecret, logger)
	projectsHandler := handlers.NewProjectsHandler(store, accessCtl, logger)
	collaboratorsHandler := handlers.NewCollaboratorsHandler(store, accessCtl, logger)
	generationHandler := handlers.NewGenerationHandler(refiner, planner, pipeline, accessCtl, logger)
	filesHandler := handlers.NewFilesHandler(store, accessCtl)
	exportHandler := handlers.NewExportHandler(store, accessCtl, exporter, logger)
	healthHandler := handlers.NewHealthHandler(store, cfg)

	router := gin.Default()
	router.Use(gin.Recovery())

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")

	// Registration and login are the only unauthenticated API routes.
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	authed.GET("/auth/me", authHandler.Me)
	authed.PUT("/auth/update-profile", authHandler.UpdateProfile)
	authed.PUT("/auth/change-password", authHandler.ChangePassword)

	authed.POST("/projects", projectsHandler.CreateProject)
	authed.GET("/projects", projectsHandler.ListProjects)
	authed.GET("/projects/:project_id", projectsHandler.GetProject)
	authed.PUT("/projects/:project_id", projectsHandler.UpdateProject)
	authed.DELETE("/projects/:project_id", projectsHandler.DeleteProject)
	authed.POST("/projects/:project_id/archive", projectsHandler.ArchiveProject)

	authed.GET("/projects/:project_id/collaborators", collaboratorsHandler.ListCollaborators)
	authed.POST("/projects/:project_id/collaborators", collaboratorsHandler.AddCollaborator)
	authed.DELETE("/projects/:project_id/collaborators/:user_id", collaboratorsHandler.RemoveCollaborator)

	authed.POST("/refine-prompt", generationHandler.RefinePrompt)
	authed.POST("/generate-plan", generationHandler.GeneratePlan)
	authed.POST("/generate-system", generationHandler.GenerateSystem)

	authed.GET("/projects/:project_id/files", filesHandler.ListFiles)
	// Wildcard so nested generated paths like static/css/site.css resolve.
	authed.GET("/projects/:project_id/files/*filename", filesHandler.GetFile)
	authed.GET("/projects/:project_id/export", exportHandler.ExportProject)

	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
