package handlers

import (
	"encoding/json"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/service"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Session Handler
// ============================================================

type SessionHandler struct {
	sessions *service.SessionManager
	library  *service.Library
}

func NewSessionHandler(sessions *service.SessionManager, library *service.Library) *SessionHandler {
	return &SessionHandler{sessions: sessions, library: library}
}

// Create открывает новую рабочую область.
func (h *SessionHandler) Create(c fiber.Ctx) error {
	var req createSessionRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
	}

	var container models.ContainerGeometry
	if req.Container != nil {
		container = models.ContainerGeometry{Width: req.Container.Width, Height: req.Container.Height}
		if err := container.Validate(); err != nil {
			return fail(c, "SESSION", err)
		}
	}

	w, err := h.sessions.Create(container)
	if err != nil {
		return fail(c, "SESSION", err)
	}
	snap, err := w.Snapshot(c.Context())
	if err != nil {
		return fail(c, "SESSION", err)
	}
	return c.Status(http.StatusCreated).JSON(mapSession(snap))
}

func (h *SessionHandler) Get(c fiber.Ctx) error {
	w, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return fail(c, "SESSION", err)
	}
	snap, err := w.Snapshot(c.Context())
	if err != nil {
		return fail(c, "SESSION", err)
	}
	return c.JSON(mapSession(snap))
}

func (h *SessionHandler) Delete(c fiber.Ctx) error {
	if err := h.sessions.Delete(c.Params("id")); err != nil {
		return fail(c, "SESSION", err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetPiece принимает svg в теле запроса либо {"pieceId"} из библиотеки.
func (h *SessionHandler) SetPiece(c fiber.Ctx) error {
	w, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return fail(c, "SESSION", err)
	}
	side, err := models.ParsePiece(c.Params("side"))
	if err != nil {
		return fail(c, "SESSION", err)
	}

	markup, err := h.readMarkup(c)
	if err != nil {
		return fail(c, "SESSION", err)
	}

	outline, err := w.SetPiece(c.Context(), side, markup)
	if err != nil {
		return fail(c, "SESSION", err)
	}
	return c.JSON(mapOutline(side, outline))
}

func (h *SessionHandler) ClearPiece(c fiber.Ctx) error {
	w, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return fail(c, "SESSION", err)
	}
	side, err := models.ParsePiece(c.Params("side"))
	if err != nil {
		return fail(c, "SESSION", err)
	}
	if err := w.ClearPiece(c.Context(), side); err != nil {
		return fail(c, "SESSION", err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Click регистрирует клик по детали.
func (h *SessionHandler) Click(c fiber.Ctx) error {
	w, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return fail(c, "SESSION", err)
	}

	var req clickRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if req.X == nil || req.Y == nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "x and y required"})
	}
	piece, err := models.ParsePiece(req.Piece)
	if err != nil {
		return fail(c, "SESSION", err)
	}

	pair, snap, err := w.Click(c.Context(), piece, *req.X, *req.Y)
	if err != nil {
		return fail(c, "SESSION", err)
	}
	return c.JSON(clickResponse{Pair: pair, Session: mapSession(snap)})
}

func (h *SessionHandler) RemovePair(c fiber.Ctx) error {
	w, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return fail(c, "SESSION", err)
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "index must be an integer"})
	}

	snap, err := w.RemovePair(c.Context(), index)
	if err != nil {
		return fail(c, "SESSION", err)
	}
	return c.JSON(mapSession(snap))
}

func (h *SessionHandler) ClearPairs(c fiber.Ctx) error {
	w, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return fail(c, "SESSION", err)
	}
	snap, err := w.ClearAll(c.Context())
	if err != nil {
		return fail(c, "SESSION", err)
	}
	return c.JSON(mapSession(snap))
}

// Scene отдаёт граф сцены для клиентского 3D-рендера.
func (h *SessionHandler) Scene(c fiber.Ctx) error {
	w, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return fail(c, "SESSION", err)
	}
	sc, vp, err := w.Scene(c.Context())
	if err != nil {
		return fail(c, "SESSION", err)
	}
	return c.JSON(mapScene(sc, vp))
}

func (h *SessionHandler) Resize(c fiber.Ctx) error {
	w, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return fail(c, "SESSION", err)
	}
	var req viewportRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if err := w.Resize(c.Context(), req.Width, req.Height); err != nil {
		return fail(c, "SESSION", err)
	}
	return c.JSON(sizePayload{Width: float64(req.Width), Height: float64(req.Height)})
}

// Overlay отдаёт 2D-вид кликов; ?highlight=i подсвечивает пару.
func (h *SessionHandler) Overlay(c fiber.Ctx) error {
	w, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return fail(c, "SESSION", err)
	}
	highlight := -1
	if raw := c.Query("highlight"); raw != "" {
		if highlight, err = strconv.Atoi(raw); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "highlight must be an integer"})
		}
	}

	svg, err := w.Overlay(c.Context(), highlight)
	if err != nil {
		return fail(c, "SESSION", err)
	}
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.SendString(svg)
}

func (h *SessionHandler) Preview(c fiber.Ctx) error {
	w, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return fail(c, "SESSION", err)
	}
	data, err := w.PreviewPNG(c.Context())
	if err != nil {
		return fail(c, "SESSION", err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(data)
}

func (h *SessionHandler) readMarkup(c fiber.Ctx) (string, error) {
	contentType := c.Get(fiber.HeaderContentType)
	if mediaType, _, _ := mime.ParseMediaType(contentType); mediaType == fiber.MIMEApplicationJSON {
		var req pieceRefRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil || req.PieceID == "" {
			return "", service.ErrInvalidUpload
		}
		stored, err := h.library.Get(c.Context(), req.PieceID)
		if err != nil {
			return "", err
		}
		log.Printf("[SESSION] %s: using library piece %s", c.Params("id"), stored.ID)
		return stored.Markup, nil
	}

	body := c.Body()
	if err := service.CheckUpload("", contentType, body); err != nil {
		return "", err
	}
	return string(body), nil
}
