package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/sahabattani/backend/internal/analysis"
	"github.com/sahabattani/backend/internal/auth"
	"github.com/sahabattani/backend/internal/disease"
	"github.com/sahabattani/backend/internal/forum"
	"github.com/sahabattani/backend/internal/middleware"
	"github.com/sahabattani/backend/internal/news"
	"github.com/sahabattani/backend/internal/prediction"
	"github.com/sahabattani/backend/internal/response"
	"github.com/sahabattani/backend/internal/user"
	"github.com/sahabattani/backend/internal/utils"
)

// rateLimit returns a per-IP limiter, or a pass-through when max is 0.
func rateLimit(max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Terlalu banyak percobaan, coba lagi nanti")
		},
	})
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	cfg := deps.Config

	users := user.NewRepository(deps.DB)
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	tokens := utils.NewTokenManager(cfg)
	guard := middleware.NewGuard(tokens, users)

	analyses := analysis.NewService(deps.DB, deps.Knowledge, deps.Storage, deps.Logger)
	authService := auth.NewService(users, hasher, tokens, analyses)

	authHandler := auth.NewHandler(authService)
	googleHandler := auth.NewGoogleHandler(cfg, authService)
	userHandler := user.NewHandler(users)
	analysisHandler := analysis.NewHandler(analyses)
	predictHandler := prediction.NewHandler(deps.Classifier, deps.Knowledge, deps.Storage, cfg.MaxUploadSize, deps.Logger)
	forumHandler := forum.NewHandler(forum.NewService(deps.DB))
	newsHandler := news.NewHandler(news.NewClient(cfg, deps.Redis, deps.Logger))
	diseaseHandler := disease.NewHandler(deps.Knowledge)

	app.Get("/health", func(c *fiber.Ctx) error {
		storageMode := "none"
		if deps.Storage != nil {
			storageMode = deps.Storage.Mode()
		}
		return response.Success(c, fiber.Map{
			"service":    "sahabat-tani-api",
			"storage":    storageMode,
			"classifier": cfg.ClassifierConfigured(),
			"newsCache":  deps.Redis != nil,
		}, "SahabatTani API is running")
	})

	api := app.Group("/api")

	// ==========================================
	// AUTH
	// ==========================================
	authGroup := api.Group("/auth")
	authGroup.Post("/register", rateLimit(cfg.AuthRateLimit, time.Minute), authHandler.Register)
	authGroup.Post("/login", rateLimit(cfg.LoginRateLimit, 15*time.Minute), authHandler.Login)
	authGroup.Post("/refresh-token", authHandler.RefreshToken)
	authGroup.Post("/logout", guard.JWTProtected(), authHandler.Logout)
	authGroup.Get("/profile", guard.JWTProtected(), authHandler.GetProfile)
	authGroup.Put("/profile", guard.JWTProtected(), authHandler.UpdateProfile)
	authGroup.Put("/change-password", guard.JWTProtected(), authHandler.ChangePassword)
	if googleHandler.Enabled() {
		authGroup.Get("/google/login", googleHandler.Login)
		authGroup.Get("/google/callback", googleHandler.Callback)
	}

	// ==========================================
	// PREDICTION
	// ==========================================
	api.Post("/predict", guard.OptionalAuth(), predictHandler.Predict)

	// ==========================================
	// ANALYSIS (detection history)
	// ==========================================
	analysisGroup := api.Group("/analysis")
	analysisGroup.Get("/public", guard.OptionalAuth(), analysisHandler.ListPublic)
	analysisGroup.Use(guard.JWTProtected())
	analysisGroup.Post("/", analysisHandler.Create)
	analysisGroup.Get("/", middleware.AdminOnly(), analysisHandler.ListAll)
	analysisGroup.Get("/stats", middleware.AdminOnly(), analysisHandler.Stats)
	analysisGroup.Get("/user/:userId", middleware.OwnerOrAdmin("userId"), analysisHandler.ListByUser)
	analysisGroup.Get("/:id", analysisHandler.Get)
	analysisGroup.Delete("/:id", analysisHandler.Delete)

	// ==========================================
	// FORUM
	// ==========================================
	posts := api.Group("/posts")
	posts.Get("/", guard.OptionalAuth(), forumHandler.List)
	posts.Get("/:id", forumHandler.Get)
	posts.Post("/", guard.JWTProtected(), forumHandler.Create)
	posts.Put("/:id", guard.JWTProtected(), forumHandler.Update)
	posts.Delete("/:id", guard.JWTProtected(), forumHandler.Delete)

	// ==========================================
	// NEWS
	// ==========================================
	api.Get("/news", newsHandler.Everything)
	api.Get("/news/sources", newsHandler.Sources)

	// ==========================================
	// DISEASE KNOWLEDGE BASE
	// ==========================================
	diseases := api.Group("/diseases")
	diseases.Get("/", diseaseHandler.List)
	diseases.Get("/resolve", diseaseHandler.Resolve)
	diseases.Get("/:key", diseaseHandler.Get)

	// ==========================================
	// USER MANAGEMENT (admin only)
	// ==========================================
	userGroup := api.Group("/users")
	userGroup.Use(guard.JWTProtected())
	userGroup.Use(middleware.AdminOnly())
	userGroup.Get("/", userHandler.List)
	userGroup.Get("/:id", userHandler.Get)
	userGroup.Put("/:id", userHandler.Update)
	userGroup.Delete("/:id", userHandler.Delete)
}
