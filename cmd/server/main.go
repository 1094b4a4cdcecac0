package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/contentwell/contentwell/configs"
	"github.com/contentwell/contentwell/internal/api/handlers"
	"github.com/contentwell/contentwell/internal/api/middleware"
	job "github.com/contentwell/contentwell/internal/jobs"
	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/queue"
	"github.com/contentwell/contentwell/internal/repository"
	"github.com/contentwell/contentwell/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
	openai "github.com/sashabaranov/go-openai"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	asynqClient := asynq.NewClient(redisConn)
	defer asynqClient.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	contentRepo := repository.NewContentItemRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	publishHistoryRepo := repository.NewPublishHistoryRepository(db)
	settingsRepository := repository.NewSettingsRepository(db)
	apiKeyRepository := repository.NewApiKeyRepository(db)

	storageService, err := service.NewStorageService(*cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	openaiClient := openai.NewClient(cfg.OpenAI.APIKey)
	queueClient := queue.NewClient(asynqClient)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	connectService := service.NewConnectService(*cfg, credentialRepo)
	linkedinService := service.NewLinkedinService(*cfg, credentialRepo)
	twitterService := service.NewTwitterService(*cfg, credentialRepo)
	facebookService := service.NewFacebookService(*cfg, credentialRepo)
	instagramService := service.NewInstagramService(*cfg, credentialRepo)
	driveService := service.NewDriveService(*cfg, credentialRepo)
	campaignService := service.NewCampaignService(campaignRepo, contentRepo, queueClient)
	generationService := service.NewGenerationService(*cfg, openaiClient, storageService, campaignRepo, contentRepo, settingsRepository, queueClient)
	contentService := service.NewContentService(contentRepo)
	publishService := service.NewPublishService(contentRepo, credentialRepo, publishHistoryRepo, map[string]service.Publisher{
		models.PlatformLinkedin:  linkedinService,
		models.PlatformTwitter:   twitterService,
		models.PlatformFacebook:  facebookService,
		models.PlatformInstagram: instagramService,
		models.PlatformGDrive:    driveService,
	})
	smartleadService := service.NewSmartleadService(*cfg)
	leadsService := service.NewLeadsService(leadRepo, contentRepo, smartleadService)
	settingsService := service.NewSettingsService(settingsRepository)
	apiKeyService := service.NewApiKeyService(apiKeyRepository)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)
	app.Post("/logout", auth.Logout)

	platform := handlers.NewPlatformHandler(connectService, linkedinService, twitterService, facebookService, instagramService, driveService, *cfg)
	app.Get("/auth/:platform", platform.Connect)
	app.Get("/auth/:platform/callback", platform.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Post("/user/remove", user.RemoveUser)

	settings := handlers.NewSettingsHandler(settingsService)
	api.Get("/settings/info", settings.GetSettingsInfo)
	api.Post("/settings/update", settings.UpdateSettings)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	campaign := handlers.NewCampaignHandler(campaignService)
	api.Post("/campaigns", campaign.CreateCampaign)
	api.Get("/campaigns", campaign.ListCampaigns)
	api.Get("/campaigns/:id", campaign.GetCampaign)
	api.Delete("/campaigns/:id", campaign.RemoveCampaign)

	content := handlers.NewContentHandler(contentService, generationService)
	api.Get("/content/:id", content.GetContentItem)
	api.Put("/content/:id", content.UpdateContentItem)
	api.Post("/content/:id/approve", content.ApproveContentItem)
	api.Delete("/content/:id", content.RemoveContentItem)
	api.Post("/content/regenerate/text", content.RegenerateText)
	api.Post("/content/regenerate/image", content.RegenerateImage)

	publish := handlers.NewPublishHandler(publishService)
	api.Post("/publish", publish.PublishContentItem)
	api.Get("/publish/history", publish.PublishHistory)

	leads := handlers.NewLeadsHandler(leadsService)
	api.Post("/leads/import", leads.ImportLeads)
	api.Get("/leads/batches", leads.ListBatches)
	api.Get("/leads/batches/:batch_id", leads.ListBatch)
	api.Delete("/leads/batches/:batch_id", leads.RemoveBatch)
	api.Post("/leads/push", leads.PushLeads)

	// connected accounts api routes
	api.Get("/accounts", platform.ListConnectedAccounts)
	api.Get("/accounts/:platform/wait", platform.AwaitConnection)
	api.Post("/accounts/remove", platform.DisconnectAccount)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(credentialRepo, twitterService, facebookService, instagramService, driveService)

	// queue
	queueW := queue.NewQueue(generationService, publishService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeGenerateCampaign, queueW.HandleGenerateCampaignTask)
		mux.HandleFunc(queue.TaskTypePublishItem, queueW.HandlePublishItemTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
