package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Piece Handler
// ============================================================

type PieceHandler struct {
	library *service.Library
}

func NewPieceHandler(library *service.Library) *PieceHandler {
	return &PieceHandler{library: library}
}

// Upload сохраняет svg из multipart/form-data (поле file) в библиотеку.
func (h *PieceHandler) Upload(c fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		log.Printf("[PIECES] FormFile error: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "file required in multipart/form-data",
		})
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	piece, err := h.library.Upload(c.Context(), file.Filename, file.Header.Get(fiber.HeaderContentType), data)
	if err != nil {
		return fail(c, "PIECES", err)
	}
	return c.Status(http.StatusCreated).JSON(piece)
}

func (h *PieceHandler) List(c fiber.Ctx) error {
	pieces, err := h.library.List(c.Context())
	if err != nil {
		return fail(c, "PIECES", err)
	}
	return c.JSON(fiber.Map{"pieces": pieces})
}

// Get отдаёт исходную разметку выкройки.
func (h *PieceHandler) Get(c fiber.Ctx) error {
	piece, err := h.library.Get(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, "PIECES", err)
	}
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.SendString(piece.Markup)
}

func (h *PieceHandler) Delete(c fiber.Ctx) error {
	if err := h.library.Delete(c.Context(), c.Params("id")); err != nil {
		return fail(c, "PIECES", err)
	}
	return c.SendStatus(http.StatusNoContent)
}
