package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/pairing"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/repository"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/scene"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Error mapping
// ============================================================

var badRequest = []error{
	models.ErrInvalidPiece,
	models.ErrInvalidDimensions,
	models.ErrInvalidPair,
	pairing.ErrIndexOutOfRange,
	pairing.ErrOutsideContainer,
	pairing.ErrInvalidPoint,
	service.ErrInvalidUpload,
	service.ErrInvalidMarkup,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scene.ErrLoopStopped):
		return http.StatusGone
	case errors.Is(err, service.ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// fail отвечает JSON-ошибкой; 5xx дополнительно пишутся в лог.
func fail(c fiber.Ctx, tag string, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %s %s: %v", tag, c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
