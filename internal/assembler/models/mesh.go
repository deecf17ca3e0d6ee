package models

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Colors
// ============================================================

// Color хранит 24-битный RGB в формате 0xRRGGBB.
type Color uint32

// ParseColor понимает "#rrggbb" и "0xrrggbb".
func ParseColor(s string) (Color, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "#")
	raw = strings.TrimPrefix(strings.ToLower(raw), "0x")
	if len(raw) != 6 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(v), nil
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// NRGBA переводит цвет в image/color с заданной непрозрачностью.
func (c Color) NRGBA(opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return color.NRGBA{
		R: uint8(c >> 16),
		G: uint8(c >> 8),
		B: uint8(c),
		A: uint8(opacity*255 + 0.5),
	}
}

// ============================================================
// Meshes
// ============================================================

type Material struct {
	Color       Color
	Opacity     float64
	Transparent bool
	DoubleSided bool
}

// Mesh: индексированная треугольная сетка в мировых единицах.
type Mesh struct {
	Name      string
	Vertices  []r3.Vec
	Triangles [][3]int
	Material  Material
}

func (m *Mesh) Empty() bool {
	return m == nil || len(m.Triangles) == 0
}

// Bounds возвращает габариты сетки; ok=false для пустой.
func (m *Mesh) Bounds() (r3.Box, bool) {
	if m == nil || len(m.Vertices) == 0 {
		return r3.Box{}, false
	}
	box := r3.Box{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		box.Min.X = min(box.Min.X, v.X)
		box.Min.Y = min(box.Min.Y, v.Y)
		box.Min.Z = min(box.Min.Z, v.Z)
		box.Max.X = max(box.Max.X, v.X)
		box.Max.Y = max(box.Max.Y, v.Y)
		box.Max.Z = max(box.Max.Z, v.Z)
	}
	return box, true
}

// ============================================================
// Seam transform
// ============================================================

// Crease: тонкая полоса вдоль шва, чисто визуальная подсказка.
type Crease struct {
	Center      r3.Vec
	Direction   r3.Vec
	Length      float64
	Thickness   float64
	Orientation r3.Rotation
	Color       Color
}

// SeamTransform вычисляется заново при каждом изменении пар или деталей.
type SeamTransform struct {
	FrontSeam  r3.Vec
	BackSeam   r3.Vec
	Pivot      r3.Vec
	Axis       r3.Vec
	FoldAngle  float64
	Degenerate bool
	Crease     Crease
}
