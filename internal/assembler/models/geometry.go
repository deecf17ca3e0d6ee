package models

import "fmt"

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ContainerGeometry задаёт размер области клика одной детали в пикселях.
type ContainerGeometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (c ContainerGeometry) Validate() error {
	if !(c.Width > 0) || !(c.Height > 0) || !isFinite(c.Width) || !isFinite(c.Height) {
		return fmt.Errorf("%w: container %gx%g", ErrInvalidDimensions, c.Width, c.Height)
	}
	return nil
}

// Contains проверяет, что пиксель лежит внутри области.
func (c ContainerGeometry) Contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= c.Width && y <= c.Height
}

// ViewBox: авторская система координат SVG (svgW × svgH).
type ViewBox struct {
	MinX   float64 `json:"minX"`
	MinY   float64 `json:"minY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (v ViewBox) Validate() error {
	if !(v.Width > 0) || !(v.Height > 0) || !isFinite(v.Width) || !isFinite(v.Height) {
		return fmt.Errorf("%w: viewBox %gx%g", ErrInvalidDimensions, v.Width, v.Height)
	}
	return nil
}

// Center возвращает центр viewBox в координатах SVG.
func (v ViewBox) Center() Point {
	return Point{X: v.MinX + v.Width/2, Y: v.MinY + v.Height/2}
}

// ============================================================
// Parsed outlines
// ============================================================

// Shape: замкнутый контур с дырами, вершины без повтора первой точки.
type Shape struct {
	Outer []Point   `json:"outer"`
	Holes [][]Point `json:"holes,omitempty"`
}

type Outline struct {
	ViewBox ViewBox `json:"viewBox"`
	Shapes  []Shape `json:"shapes"`
}

// PatternPiece хранит исходную разметка детали и разобранную геометрию.
type PatternPiece struct {
	Side    Piece
	Markup  string
	Outline Outline
}
