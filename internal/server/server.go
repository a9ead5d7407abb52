package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/sahabattani/backend/internal/config"
	"github.com/sahabattani/backend/internal/disease"
	"github.com/sahabattani/backend/internal/middleware"
	"github.com/sahabattani/backend/internal/prediction"
	"github.com/sahabattani/backend/internal/response"
	"github.com/sahabattani/backend/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are built once in main and shared by every handler.
type Dependencies struct {
	Config     *config.Config
	DB         *gorm.DB
	Logger     *zap.Logger
	Storage    storage.Storage
	Classifier prediction.Classifier
	// Redis is optional. News responses are not cached without it.
	Redis     *redis.Client
	Knowledge *disease.KnowledgeBase
}

func New(deps Dependencies) *fiber.App {
	if deps.Knowledge == nil {
		deps.Knowledge = disease.Default()
	}
	if deps.Classifier == nil {
		deps.Classifier = prediction.NewCustomVisionClient(deps.Config)
	}

	app := fiber.New(fiber.Config{
		AppName:      "SahabatTani API",
		BodyLimit:    int(deps.Config.MaxUploadSize) + 1<<20,
		ErrorHandler: response.ErrorHandler(deps.Logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(deps.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: deps.Config.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	}))

	if local, ok := deps.Storage.(*storage.LocalStorage); ok {
		app.Static(storage.PublicPrefix, local.BaseDir(), fiber.Static{
			Compress:  true,
			ByteRange: true,
			Browse:    false,
			MaxAge:    3600,
		})
	}

	SetupRoutes(app, deps)

	return app
}
