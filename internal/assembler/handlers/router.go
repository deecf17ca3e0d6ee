package handlers

import (
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Routes
// ============================================================

type Deps struct {
	Sessions *service.SessionManager
	Library  *service.Library
	DB       Pinger
}

// Register вешает все маршруты сервиса на app.
func Register(app *fiber.App, deps Deps) {
	health := NewHealthHandler(deps.DB)
	pieces := NewPieceHandler(deps.Library)
	sessions := NewSessionHandler(deps.Sessions, deps.Library)

	app.Get("/health/live", health.Live)
	app.Get("/health/ready", health.Ready)

	app.Get("/docs", SwaggerUI)
	app.Get("/docs/openapi.yaml", SwaggerSpec)

	app.Get("/pieces", pieces.List)
	app.Post("/pieces", pieces.Upload)
	app.Get("/pieces/:id", pieces.Get)
	app.Delete("/pieces/:id", pieces.Delete)

	app.Post("/sessions", sessions.Create)
	app.Get("/sessions/:id", sessions.Get)
	app.Delete("/sessions/:id", sessions.Delete)
	app.Put("/sessions/:id/pieces/:side", sessions.SetPiece)
	app.Delete("/sessions/:id/pieces/:side", sessions.ClearPiece)
	app.Post("/sessions/:id/clicks", sessions.Click)
	app.Delete("/sessions/:id/pairs", sessions.ClearPairs)
	app.Delete("/sessions/:id/pairs/:index", sessions.RemovePair)
	app.Get("/sessions/:id/scene", sessions.Scene)
	app.Put("/sessions/:id/viewport", sessions.Resize)
	app.Get("/sessions/:id/overlay.svg", sessions.Overlay)
	app.Get("/sessions/:id/preview.png", sessions.Preview)
}
