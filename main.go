package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"arena-score-system/handlers"
	"arena-score-system/middleware"
	"arena-score-system/models"
	"arena-score-system/services"
	"arena-score-system/workers"

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

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-ID, X-User-Roles, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Event{},
		&models.Fight{},
		&models.Prediction{},
		&models.UserProfile{},
		&models.UserAchievement{},
		&models.EventSettlement{},
		&models.Duel{},
		&models.League{},
		&models.LeagueMembership{},
		&models.LeagueEventResult{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	cfg := services.DefaultScoringConfig

	notifier := services.NewNotificationService(db)
	profiles := services.NewProfileService(db)
	achievements := services.NewAchievementService(db, cfg, notifier)
	scoring := services.NewScoringService(db, cfg, profiles, achievements)
	leaderboard := services.NewLeaderboardService(db, cfg, profiles, achievements, notifier)
	duels := services.NewDuelService(db, cfg, profiles, notifier)
	leagues := services.NewLeagueService(db, notifier)
	settlement := services.NewSettlementService(db, scoring, leaderboard, duels, leagues)
	predictions := services.NewPredictionService(db)
	events := services.NewEventService(db)

	// --- Results feed worker configuration ---
	resultsServiceURL := os.Getenv("RESULTS_SERVICE_URL")
	if resultsServiceURL == "" {
		log.Fatal("RESULTS_SERVICE_URL environment variable not set")
	}
	arenaServiceToken := os.Getenv("ARENA_SERVICE_TOKEN")
	if arenaServiceToken == "" {
		log.Fatal("ARENA_SERVICE_TOKEN environment variable not set")
	}

	resultWorker := workers.NewResultSyncWorker(db, resultsServiceURL, "/api/v1/public/results", arenaServiceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("Starting Fight Result Sync Worker...")
		resultWorker.Start(ctx)
	}()

	settlement.StartSettlementScheduler(1 * time.Minute)

	// ✅ Setup routes — enforced Gateway auth + consistent /s/ admin prefix
	// Public read routes first: the secured groups mount a catch-all
	// user-context middleware that must not shadow them.
	handlers.SetupEventRoutes(app, events)
	handlers.SetupArenaRoutes(app, leaderboard, leagues, duels, settlement)
	handlers.SetupPredictionRoutes(app, predictions)
	handlers.SetupProfileRoutes(app, profiles, notifier)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Fight Result Sync Worker running")
	log.Println("✅ Settlement cycle running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
