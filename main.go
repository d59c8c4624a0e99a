package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fore-rewards-system/handlers"
	"fore-rewards-system/middleware"
	"fore-rewards-system/models"
	"fore-rewards-system/services"
	"fore-rewards-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB — this service is JSON-only
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Session-Token, X-Service-Token, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	// TranslateError turns driver duplicate-key failures into
	// gorm.ErrDuplicatedKey, which the services rely on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Wallet{},
		&models.Transaction{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Leaderboard{},
		&models.UserRanking{},
		&models.Reward{},
		&models.RewardRedemption{},
		&models.LessonCompletion{},
		&models.QuizPass{},
		&models.CourseCompletion{},
		&models.LearnerProfile{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := services.SeedInitialData(db); err != nil {
		log.Fatal("failed to seed initial catalogs:", err)
	}

	ledgerService := services.NewLedgerService(db)
	achievementService := services.NewAchievementService(db, ledgerService)
	leaderboardService := services.NewLeaderboardService(db, ledgerService)
	redemptionService := services.NewRedemptionService(db, ledgerService)
	activityService := services.NewActivityService(db, ledgerService, achievementService)
	dashboardService := services.NewDashboardService(db, ledgerService, achievementService, leaderboardService)

	// --- CONFIGURE Profile Sync Details ---
	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("REWARDS_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("REWARDS_SERVICE_TOKEN environment variable not set")
	}
	// --- END CONFIG ---

	syncWorker := workers.NewLearnerSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("Starting Learner Sync Worker...")
		syncWorker.Start(ctx)
	}()

	leaderboardService.StartRecomputeScheduler()

	// ✅ Setup routes — enforced Gateway auth + consistent /s/ prefix
	handlers.SetupWalletRoutes(app, ledgerService)
	handlers.SetupAchievementRoutes(app, achievementService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)
	handlers.SetupRewardRoutes(app, redemptionService)
	handlers.SetupActivityRoutes(app, activityService)
	handlers.SetupDashboardRoutes(app, dashboardService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Learner Sync Worker running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
