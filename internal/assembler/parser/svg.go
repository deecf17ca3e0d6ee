package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
)

// ============================================================
// SVG Parser
// ============================================================

var ErrNoSVGRoot = errors.New("no <svg> root element")

const ellipseSegments = 64

// Элементы, содержимое которых не рисуется напрямую.
var skippedElements = map[string]bool{
	"defs":           true,
	"clipPath":       true,
	"mask":           true,
	"symbol":         true,
	"marker":         true,
	"pattern":        true,
	"linearGradient": true,
	"radialGradient": true,
	"style":          true,
	"title":          true,
	"desc":           true,
	"metadata":       true,
	"text":           true,
}

type frame struct {
	transform Affine
	skip      bool
}

// ParseSVG читает разметку выкройки и возвращает viewBox и замкнутые фигуры.
// fallback используется, если у корня нет ни viewBox, ни width/height.
func ParseSVG(r io.Reader, fallback models.ViewBox) (*models.Outline, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false

	var (
		outline models.Outline
		stack   []frame
		rooted  bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode svg: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			parent := frame{transform: Identity()}
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			attrs := attrMap(t.Attr)
			name := t.Name.Local

			f := frame{transform: parent.transform, skip: parent.skip || skippedElements[name]}
			if raw, ok := attrs["transform"]; ok {
				f.transform = parent.transform.Mul(ParseTransform(raw))
			}

			if name == "svg" && !rooted {
				rooted = true
				outline.ViewBox = parseViewBox(attrs, fallback)
			} else if rooted && !f.skip {
				contours := elementContours(name, attrs)
				if !f.transform.IsIdentity() {
					for _, c := range contours {
						for i := range c {
							c[i] = f.transform.Apply(c[i])
						}
					}
				}
				outline.Shapes = append(outline.Shapes, buildShapes(contours)...)
			}
			stack = append(stack, f)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !rooted {
		return nil, ErrNoSVGRoot
	}
	return &outline, nil
}

// ParseSVGString разбирает разметку из строки.
func ParseSVGString(markup string, fallback models.ViewBox) (*models.Outline, error) {
	return ParseSVG(strings.NewReader(markup), fallback)
}

func attrMap(attrs []xml.Attr) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Name.Local] = a.Value
	}
	return out
}

func parseViewBox(attrs map[string]string, fallback models.ViewBox) models.ViewBox {
	if raw, ok := attrs["viewBox"]; ok {
		nums := parseNumbers(raw)
		if len(nums) == 4 && nums[2] > 0 && nums[3] > 0 {
			return models.ViewBox{MinX: nums[0], MinY: nums[1], Width: nums[2], Height: nums[3]}
		}
	}

	w, okW := parseLength(attrs["width"])
	h, okH := parseLength(attrs["height"])
	if okW && okH && w > 0 && h > 0 {
		return models.ViewBox{Width: w, Height: h}
	}
	return fallback
}

// parseLength читает число с единицами ("210mm", "400px"); проценты не поддерживаются.
func parseLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	s = strings.TrimRight(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func attrFloat(attrs map[string]string, key string) float64 {
	v, _ := parseLength(attrs[key])
	return v
}

// ============================================================
// Element geometry
// ============================================================

func elementContours(name string, attrs map[string]string) [][]models.Point {
	switch name {
	case "path":
		subpaths, err := ParsePath(attrs["d"])
		if err != nil {
			return nil
		}
		return subpaths

	case "rect":
		x, y := attrFloat(attrs, "x"), attrFloat(attrs, "y")
		w, h := attrFloat(attrs, "width"), attrFloat(attrs, "height")
		if w <= 0 || h <= 0 {
			return nil
		}
		return [][]models.Point{{
			{X: x, Y: y},
			{X: x + w, Y: y},
			{X: x + w, Y: y + h},
			{X: x, Y: y + h},
		}}

	case "circle":
		r := attrFloat(attrs, "r")
		return ellipse(attrFloat(attrs, "cx"), attrFloat(attrs, "cy"), r, r)

	case "ellipse":
		return ellipse(attrFloat(attrs, "cx"), attrFloat(attrs, "cy"), attrFloat(attrs, "rx"), attrFloat(attrs, "ry"))

	case "polygon", "polyline":
		nums := parseNumbers(attrs["points"])
		var pts []models.Point
		for i := 0; i+1 < len(nums); i += 2 {
			pts = append(pts, models.Point{X: nums[i], Y: nums[i+1]})
		}
		if len(pts) < 3 {
			return nil
		}
		return [][]models.Point{pts}
	}
	return nil
}

func ellipse(cx, cy, rx, ry float64) [][]models.Point {
	if rx <= 0 || ry <= 0 {
		return nil
	}
	pts := make([]models.Point, ellipseSegments)
	for i := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / ellipseSegments)
		pts[i] = models.Point{X: cx + rx*cos, Y: cy + ry*sin}
	}
	return [][]models.Point{pts}
}
