package coords

import (
	"testing"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	container = models.ContainerGeometry{Width: 400, Height: 500}
	viewBox   = models.ViewBox{Width: 137.461, Height: 193.406}
)

func TestToWorldCenter(t *testing.T) {
	m := New(container, viewBox)
	got := m.ToWorld(models.SewingPoint{X: 200, Y: 250, Piece: models.PieceFront})
	assert.InDelta(t, 0, got.X, 1e-9)
	assert.InDelta(t, 0, got.Y, 1e-9)
	assert.Equal(t, 0.0, got.Z)
}

func TestToWorldCorners(t *testing.T) {
	m := New(container, viewBox)

	tests := []struct {
		name string
		x, y float64
		want r3.Vec
	}{
		{"top-left", 0, 0, r3.Vec{X: -viewBox.Width / 2, Y: viewBox.Height / 2}},
		{"bottom-right", 400, 500, r3.Vec{X: viewBox.Width / 2, Y: -viewBox.Height / 2}},
		{"top-right", 400, 0, r3.Vec{X: viewBox.Width / 2, Y: viewBox.Height / 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.ToWorldXY(tt.x, tt.y)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	m := New(container, viewBox)
	for _, p := range [][2]float64{{0, 0}, {13.5, 487.25}, {399.9, 0.1}, {200, 250}, {123, 321}} {
		x, y := m.ToPixel(m.ToWorldXY(p[0], p[1]))
		assert.InDelta(t, p[0], x, 1e-9)
		assert.InDelta(t, p[1], y, 1e-9)
	}
}

func TestDeterministic(t *testing.T) {
	m := New(container, viewBox)
	pt := models.SewingPoint{X: 77, Y: 91, Piece: models.PieceBack, ID: 1}
	other := pt
	other.ID = 99
	assert.Equal(t, m.ToWorld(pt), m.ToWorld(other))
}

func TestSVGToWorldMatchesPixelMapping(t *testing.T) {
	vb := models.ViewBox{MinX: 10, MinY: -5, Width: 100, Height: 200}
	m := New(container, vb)

	// Пиксель (100, 100) показывает точку SVG (MinX + 25, MinY + 40).
	fromPixel := m.ToWorldXY(100, 100)
	fromSVG := m.SVGToWorld(models.Point{X: 35, Y: 35})
	assert.InDelta(t, fromPixel.X, fromSVG.X, 1e-9)
	assert.InDelta(t, fromPixel.Y, fromSVG.Y, 1e-9)
}
