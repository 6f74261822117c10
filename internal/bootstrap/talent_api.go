package bootstrap

import (
	"context"

	"talent_server/adapter/in/http"
	"talent_server/config"
	"talent_server/infra/middleware"
	"talent_server/pkg/logger"
	"talent_server/pkg/metrics"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
)

// multipart overhead allowed on top of the CV size limit
const bodyOverhead = 1 << 20

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := NewApp(cfg, deps)

	// Cross-instance realtime delivery
	ctx, cancel := context.WithCancel(context.Background())
	if deps.Fanout != nil {
		go deps.Fanout.Run(ctx)
	}

	return app, func() {
		cancel()
		cleanup()
	}, nil
}

// NewApp builds the fiber application on top of ready dependencies.
func NewApp(cfg *config.Config, deps *Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),

		ReadBufferSize:  16384,
		WriteBufferSize: 16384,

		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit: cfg.UploadMaxBytes + bodyOverhead,

		ServerHeader:       "",
		DisableDefaultDate: true,

		StreamRequestBody:            true,
		DisablePreParseMultipartForm: true,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.RequestLogger())
	app.Use(metrics.Middleware())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		// compression would buffer the event stream
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/v1/api/events"
		},
	}))
	app.Use(middleware.CORS(cfg.AllowedOrigins))

	// Unauthenticated
	http.NewHealthHandler(deps.DB, deps.Redis, deps.Mongo).Register(app)
	app.Get("/metrics", metrics.Handler())
	if deps.Files != nil {
		http.NewFilesHandler(deps.Files).Register(app.Group("/v1/api"))
	}

	api := app.Group("/v1/api")
	api.Use(deps.Auth.Middleware())
	api.Use(middleware.WriteLimiter(cfg.WriteRateLimit, cfg.WriteRateWindow))
	if deps.Audit != nil {
		api.Use(deps.Audit.Middleware())
	}

	api.Post("/auth/logout", deps.Auth.Logout())

	idGuard := middleware.ValidateUUID("id")
	http.NewConsultantHandler(deps.ConsultantService).Register(api, idGuard)
	http.NewNotificationHandler(deps.NotificationService).Register(api, idGuard)
	http.NewCommercialHandler(deps.ProfileRepo).Register(api)
	http.NewTagHandler(deps.TagService).Register(api)
	http.NewSSEHandler(deps.SSEHub, deps.Realtime, logger.Default().Zerolog()).Register(api)

	return app
}
