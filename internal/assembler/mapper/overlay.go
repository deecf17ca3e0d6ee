package mapper

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
)

// ============================================================
// Overlay Renderer
// ============================================================

const (
	markerFill      = "rgba(59, 130, 246, 0.8)"
	lineStroke      = "rgba(59, 130, 246, 0.6)"
	highlightStroke = "rgba(239, 68, 68, 0.8)"
	missingStroke   = "#fca5a5"
)

// Overlay содержит всё нужное для 2D-вида кликов: обе детали рядом,
// задняя смещена вправо на ширину области.
type Overlay struct {
	Container   models.ContainerGeometry
	FrontMarkup string
	BackMarkup  string
	Pairs       []models.SewingPair
	Pending     *models.SewingPoint
	Highlight   int // индекс подсвеченной пары, -1 если нет
}

type OverlayRenderer struct{}

func NewOverlayRenderer() *OverlayRenderer {
	return &OverlayRenderer{}
}

// Render собирает SVG overlay с маркерами и линиями пар поверх разметки деталей.
func (r *OverlayRenderer) Render(o Overlay) (string, error) {
	if err := o.Container.Validate(); err != nil {
		return "", err
	}

	cw, ch := o.Container.Width, o.Container.Height
	width := cw * 2

	var elements []string
	elements = append(elements, r.renderPiece(models.PieceFront, o.FrontMarkup, 0, cw, ch)...)
	elements = append(elements, r.renderPiece(models.PieceBack, o.BackMarkup, cw, cw, ch)...)
	elements = append(elements, r.renderLines(o)...)
	elements = append(elements, r.renderMarkers(o)...)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(width), formatFloat(ch), formatFloat(width), formatFloat(ch)))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Pieces
// ============================================================

func (r *OverlayRenderer) renderPiece(side models.Piece, markup string, x, w, h float64) []string {
	var out []string
	label := pieceLabel(side)

	if strings.TrimSpace(markup) == "" {
		out = append(out,
			fmt.Sprintf(`<rect id="%s-missing" x="%s" y="0" width="%s" height="%s" fill="#f9fafb" stroke="%s" stroke-dasharray="4,4" />`,
				side, formatFloat(x), formatFloat(w), formatFloat(h), missingStroke),
			fmt.Sprintf(`<text x="%s" y="%s" text-anchor="middle" font-size="14" fill="#6b7280">%s piece not uploaded</text>`,
				formatFloat(x+w/2), formatFloat(h/2), label),
		)
	} else {
		data := base64.StdEncoding.EncodeToString([]byte(markup))
		out = append(out, fmt.Sprintf(`<image id="%s-piece" x="%s" y="0" width="%s" height="%s" preserveAspectRatio="none" href="data:image/svg+xml;base64,%s" />`,
			side, formatFloat(x), formatFloat(w), formatFloat(h), data))
	}

	labelX, anchor := x+8, "start"
	if side == models.PieceBack {
		labelX, anchor = x+w-8, "end"
	}
	out = append(out, fmt.Sprintf(`<text x="%s" y="20" text-anchor="%s" font-size="12" fill="#374151">%s Piece</text>`,
		formatFloat(labelX), anchor, label))
	return out
}

// ============================================================
// Pairs & markers
// ============================================================

func (r *OverlayRenderer) renderLines(o Overlay) []string {
	var out []string

	for i, pair := range o.Pairs {
		fx, fy := absolute(pair.Front, o.Container)
		bx, by := absolute(pair.Back, o.Container)

		if i != o.Highlight {
			out = append(out, fmt.Sprintf(`<line id="pair-%d" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="2" />`,
				i, formatFloat(fx), formatFloat(fy), formatFloat(bx), formatFloat(by), lineStroke))
			continue
		}

		mx, my := (fx+bx)/2, (fy+by)/2
		out = append(out,
			fmt.Sprintf(`<line id="pair-%d" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="3" stroke-dasharray="5,5" />`,
				i, formatFloat(fx), formatFloat(fy), formatFloat(bx), formatFloat(by), highlightStroke),
			fmt.Sprintf(`<circle id="pair-%d-remove" cx="%s" cy="%s" r="12" fill="white" stroke="%s" stroke-width="2" />`,
				i, formatFloat(mx), formatFloat(my), highlightStroke),
			fmt.Sprintf(`<path d="M %s L %s M %s L %s" stroke="%s" stroke-width="2" />`,
				formatPoint(mx-4, my-4), formatPoint(mx+4, my+4), formatPoint(mx+4, my-4), formatPoint(mx-4, my+4), highlightStroke),
		)
	}

	return out
}

func (r *OverlayRenderer) renderMarkers(o Overlay) []string {
	var out []string

	if o.Pending != nil {
		x, y := absolute(*o.Pending, o.Container)
		out = append(out, marker(fmt.Sprintf("pending-%d", o.Pending.ID), x, y, 6, markerFill))
	}

	for i, pair := range o.Pairs {
		size, fill := 6.0, markerFill
		if i == o.Highlight {
			size, fill = 8, highlightStroke
		}
		fx, fy := absolute(pair.Front, o.Container)
		bx, by := absolute(pair.Back, o.Container)
		out = append(out,
			marker(fmt.Sprintf("f-%d", i), fx, fy, size, fill),
			marker(fmt.Sprintf("b-%d", i), bx, by, size, fill),
		)
	}

	return out
}

func marker(id string, x, y, r float64, fill string) string {
	return fmt.Sprintf(`<circle id="%s" cx="%s" cy="%s" r="%s" fill="%s" stroke="white" stroke-width="2" />`,
		id, formatFloat(x), formatFloat(y), formatFloat(r), fill)
}

// absolute переводит клик в координаты общего overlay: задняя деталь
// сдвинута на ширину области.
func absolute(p models.SewingPoint, c models.ContainerGeometry) (float64, float64) {
	if p.Piece == models.PieceBack {
		return p.X + c.Width, p.Y
	}
	return p.X, p.Y
}

func pieceLabel(side models.Piece) string {
	if side == models.PieceBack {
		return "Back"
	}
	return "Front"
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatPoint(x, y float64) string {
	return formatFloat(x) + " " + formatFloat(y)
}
