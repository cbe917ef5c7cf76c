package routes

import (
	"context"
	"net/http"

	"boxing-arena-api/internal/arena"
	"boxing-arena-api/internal/auth"
	"boxing-arena-api/internal/config"
	"boxing-arena-api/internal/handlers"
	"boxing-arena-api/internal/logger"
	"boxing-arena-api/internal/metrics"
	"boxing-arena-api/internal/middleware"
	"boxing-arena-api/internal/random"
	"boxing-arena-api/internal/realtime"
	"boxing-arena-api/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Arena names used in logs, metrics and bout events.
const (
	RingArena    = "ring"
	KitchenArena = "kitchen"
)

// Dependencies are the collaborators the router is built from.
type Dependencies struct {
	Config  *config.Config
	DB      *gorm.DB
	Random  random.Source
	Logger  logger.Logger
	Metrics *metrics.Metrics
	Hub     *realtime.Hub
}

// Server bundles the router with the arenas it drives.
type Server struct {
	Router  *gin.Engine
	Ring    *arena.Arena
	Kitchen *arena.Arena
	Hub     *realtime.Hub
	Metrics *metrics.Metrics
}

func SetupRoutes(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Hub == nil {
		deps.Hub = realtime.NewHub()
	}
	cfg, log, m, hub := deps.Config, deps.Logger, deps.Metrics, deps.Hub

	publish := func(ctx context.Context, res arena.BoutResult) {
		m.BoutFinished(res.Arena)
		if err := hub.PublishBout(res); err != nil {
			log.Warn(ctx, "failed to publish bout", logger.String("arena", res.Arena), logger.Error(err))
		}
	}

	boxers := repository.NewBoxerRepository(deps.DB)
	meals := repository.NewMealRepository(deps.DB)
	ring := arena.New(boxers.Combatants(), deps.Random, arena.Options{
		Name:         RingArena,
		TTL:          cfg.TTL(),
		Normalizer:   arena.Logistic,
		CacheMetrics: m.Cache(RingArena),
		Logger:       log,
		OnBout:       publish,
	})
	kitchen := arena.New(meals.Combatants(), deps.Random, arena.Options{
		Name:         KitchenArena,
		TTL:          cfg.TTL(),
		Normalizer:   arena.Linear,
		CacheMetrics: m.Cache(KitchenArena),
		Logger:       log,
		OnBout:       publish,
	})

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, auth.DefaultTokenTTL)
	authHandler := handlers.NewAuthHandler(tokens)
	boxerHandler := handlers.NewBoxerHandler(boxers, ring, m, log)
	mealHandler := handlers.NewMealHandler(meals, kitchen, m, log)
	wsHandler := handlers.NewWSHandler(hub, log)

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestObserver(log, m))

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Boxing arena API is running",
		})
	})
	ginRouter.GET("/metrics", gin.WrapH(m.Handler()))

	// Public routes
	api := ginRouter.Group("/api")
	{
		api.POST("/login", authHandler.Login)
	}

	// Protected routes
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(tokens))
	{
		protectedRoutes.GET("/ws", wsHandler.Subscribe)

		// Boxers and the ring
		protectedRoutes.POST("/add-boxer", boxerHandler.AddBoxer)
		protectedRoutes.DELETE("/delete-boxer/:id", boxerHandler.DeleteBoxer)
		protectedRoutes.GET("/get-boxer-by-id/:id", boxerHandler.GetBoxerByID)
		protectedRoutes.GET("/get-boxer-by-name/:name", boxerHandler.GetBoxerByName)
		protectedRoutes.POST("/enter-ring", boxerHandler.EnterRing)
		protectedRoutes.GET("/get-boxers", boxerHandler.GetBoxers)
		protectedRoutes.POST("/clear-boxers", boxerHandler.ClearBoxers)
		protectedRoutes.POST("/clear-cache", boxerHandler.ClearCache)
		protectedRoutes.GET("/fight", boxerHandler.Fight)
		protectedRoutes.GET("/leaderboard", boxerHandler.Leaderboard)

		// Meals and the kitchen
		protectedRoutes.POST("/create-meal", mealHandler.CreateMeal)
		protectedRoutes.DELETE("/delete-meal/:id", mealHandler.DeleteMeal)
		protectedRoutes.GET("/get-meal-by-id/:id", mealHandler.GetMealByID)
		protectedRoutes.GET("/get-meal-by-name/:name", mealHandler.GetMealByName)
		protectedRoutes.POST("/prep-combatant", mealHandler.PrepCombatant)
		protectedRoutes.GET("/get-combatants", mealHandler.GetCombatants)
		protectedRoutes.POST("/clear-combatants", mealHandler.ClearCombatants)
		protectedRoutes.GET("/battle", mealHandler.Battle)
		protectedRoutes.GET("/meal-leaderboard", mealHandler.Leaderboard)
	}

	return &Server{Router: ginRouter, Ring: ring, Kitchen: kitchen, Hub: hub, Metrics: m}
}
