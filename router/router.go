package router

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"hikvision-integration/config/middleware"
	_ "hikvision-integration/docs"
	"hikvision-integration/handlers"
	"hikvision-integration/models"
	"hikvision-integration/repository"
)

// Deps is everything the HTTP routes need.
type Deps struct {
	Engine    handlers.EventProcessor
	Dedup     repository.Deduplicator
	Companies handlers.CompanyLookup
	Stores    handlers.StoreProvider
	Schedules handlers.ScheduleSaver
	Tokens    middleware.TokenValidator
	DataDir   string
	Logger    *slog.Logger
}

func SetupRoutes(app *fiber.App, deps Deps) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	hikvisionHandler := handlers.NewHikvisionHandler(deps.Engine, deps.Dedup, log)
	reportHandler := handlers.NewReportHandler(deps.Companies, deps.Stores)
	uploadHandler := handlers.NewUploadHandler(deps.Companies, deps.Stores, deps.Schedules, log)
	fileHandler := handlers.NewFileHandler(deps.DataDir, deps.Companies)

	// Health check & Docs
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(models.HealthResponse{
			Message: "HikVision integration API",
			Status:  "running",
			Docs:    "/docs/index.html",
		})
	})
	app.Get("/docs/*", swagger.HandlerDefault)

	// Camera webhook, unauthenticated: devices cannot send tokens
	app.Post("/handle-event", hikvisionHandler.HandleEvent)

	auth := middleware.AuthMiddleware(deps.Tokens)
	admin := middleware.AdminMiddleware()

	api := app.Group("/api", auth)
	api.Get("/events", reportHandler.GetEvents)
	api.Get("/users", reportHandler.GetEmployees)

	app.Post("/data-update", auth, admin, uploadHandler.UpdateSchedules)
	app.Post("/events-only-update", auth, admin, uploadHandler.ReplaceEvents)

	app.Get("/data/:company/:file", auth, fileHandler.GetDataFile)

	log.Info("routes registered",
		"webhook", "POST /handle-event",
		"reports", "GET /api/events, GET /api/users",
		"uploads", "POST /data-update, POST /events-only-update",
		"files", "GET /data/:company/:file",
		"docs", "/docs/index.html",
	)
}
