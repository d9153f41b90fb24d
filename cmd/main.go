package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"progression/internal/cache"
	"progression/internal/config"
	"progression/internal/database"
	"progression/internal/handlers"
	"progression/internal/middleware"
	"progression/internal/monitoring"
	"progression/internal/repository"
	"progression/internal/service"
)

// Version du service (à définir lors du build)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Initialisation du logger
	initLogger()

	logrus.WithFields(logrus.Fields{
		"service":    "progression",
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("🐉 Starting Progression Service...")

	// Chargement de la configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatal("Failed to load config: ", err)
	}

	// Connexion à la base de données
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	// Exécution des migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	// Cache Redis du leaderboard (optionnel : dégradation vers SQL)
	var lbCache cache.LeaderboardCacheInterface
	if cfg.Redis.Enabled {
		lbCache, err = cache.NewLeaderboardCache(cfg.Redis)
		if err != nil {
			logrus.WithError(err).Warn("Redis unavailable, leaderboard served from SQL only")
			lbCache = nil
		} else {
			defer lbCache.Close()
		}
	}

	// Initialisation des métriques Prometheus
	metrics := monitoring.NewMetrics()

	// Initialisation des repositories
	actorRepo := repository.NewActorRepository(db)
	bossRepo := repository.NewBossRepository(db)
	duelRepo := repository.NewDuelRepository(db)

	// Initialisation des services
	antiCheat := service.NewAntiCheatService(cfg)
	realtime := service.NewRealtimeService()
	progressionService := service.NewProgressionService(cfg, actorRepo, antiCheat)
	bossService := service.NewBossService(cfg, bossRepo, actorRepo, antiCheat, lbCache, realtime)
	duelService := service.NewDuelService(cfg, duelRepo, actorRepo, realtime)

	// Initialisation des handlers
	progressionHandler := handlers.NewProgressionHandler(progressionService, cfg)
	bossHandler := handlers.NewBossHandler(bossService, cfg)
	duelHandler := handlers.NewDuelHandler(duelService, cfg)
	healthHandler := handlers.NewHealthHandler(cfg, db, Version)
	wsHandler := handlers.NewWebSocketHandler(realtime, cfg)

	// Configuration du mode Gin
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Configuration des routes
	router := setupRoutes(progressionHandler, bossHandler, duelHandler, healthHandler, wsHandler, metrics, cfg)

	// Configuration du serveur HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Démarrage du serveur en arrière-plan
	go func() {
		logrus.WithFields(logrus.Fields{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
			"env":  cfg.Server.Environment,
		}).Info("🐉 Progression Service started successfully")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Gestion gracieuse de l'arrêt
	gracefulShutdown(server, realtime)
}

// setupRoutes configure toutes les routes du service Progression
func setupRoutes(
	progressionHandler *handlers.ProgressionHandler,
	bossHandler *handlers.BossHandler,
	duelHandler *handlers.DuelHandler,
	healthHandler *handlers.HealthHandler,
	wsHandler *handlers.WebSocketHandler,
	metrics *monitoring.Metrics,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Middleware globaux
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(metrics.Middleware())

	// Rate limiting global si configuré
	if cfg.RateLimit.RequestsPerMinute > 0 {
		router.Use(middleware.RateLimit(cfg.RateLimit))
	}

	// Routes de santé et monitoring (sans auth)
	router.GET(cfg.Monitoring.HealthPath, healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET(cfg.Monitoring.MetricsPath, gin.WrapH(metrics.Handler()))

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Routes protégées (authentification JWT requise)
		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			// Flux temps réel
			protected.GET("/ws", wsHandler.Handle)

			// Progression XP/level
			prog := protected.Group("/progression")
			{
				prog.GET("", progressionHandler.GetProgress)
				prog.POST("/xp", progressionHandler.GrantXP)
			}

			// Encounter boss coopératif
			boss := protected.Group("/boss")
			{
				boss.GET("", bossHandler.GetBoss)
				boss.POST("/attack", bossHandler.Attack)
				boss.GET("/leaderboard", bossHandler.Leaderboard)
			}

			// Duels PvP
			duels := protected.Group("/duels")
			{
				duels.POST("", duelHandler.Resolve)
				duels.GET("/stats", duelHandler.GetStats)
				duels.GET("/stats/:actorId", duelHandler.GetStatsByActor)
				duels.GET("/opponents", duelHandler.Opponents)
				duels.GET("/leaderboard", duelHandler.Leaderboard)
				duels.GET("/notifications", duelHandler.Notifications)
			}

			// Routes admin
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole("admin", "moderator"))
			{
				admin.POST("/actors/:actorId/reset", progressionHandler.ResetActor)
				admin.POST("/boss/respawn", bossHandler.ForceRespawn)
			}
		}
	}

	return router
}

// initLogger initialise le système de logging
func initLogger() {
	if os.Getenv("SERVER_ENVIRONMENT") == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// gracefulShutdown gère l'arrêt propre du service
func gracefulShutdown(server *http.Server, realtime service.RealtimeServiceInterface) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("🐉 Shutting down Progression Service...")

	// Fermer les connexions WebSocket avant le serveur HTTP
	realtime.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("Progression Service stopped")
}
