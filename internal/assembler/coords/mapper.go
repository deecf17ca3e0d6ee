package coords

import (
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"

	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Coordinate Mapper
// ============================================================

// Mapper переводит клики между тремя пространствами: пиксели области,
// единицы выкройки и центрированный 3D-мир. Нулевые размеры не проверяются,
// их отсекает валидация конфигурации.
type Mapper struct {
	Container models.ContainerGeometry
	ViewBox   models.ViewBox
}

func New(container models.ContainerGeometry, viewBox models.ViewBox) Mapper {
	return Mapper{Container: container, ViewBox: viewBox}
}

// ToUnits масштабирует пиксели в единицы viewBox.
func (m Mapper) ToUnits(x, y float64) models.Point {
	return models.Point{
		X: (x / m.Container.Width) * m.ViewBox.Width,
		Y: (y / m.Container.Height) * m.ViewBox.Height,
	}
}

// ToWorld центрирует точку вокруг середины viewBox; Y переворачивается,
// потому что в пикселях ось растёт вниз.
func (m Mapper) ToWorld(p models.SewingPoint) r3.Vec {
	return m.ToWorldXY(p.X, p.Y)
}

func (m Mapper) ToWorldXY(x, y float64) r3.Vec {
	raw := m.ToUnits(x, y)
	return r3.Vec{
		X: raw.X - m.ViewBox.Width/2,
		Y: -(raw.Y - m.ViewBox.Height/2),
		Z: 0,
	}
}

// ToPixel выполняет обратное преобразование, Z игнорируется.
func (m Mapper) ToPixel(v r3.Vec) (x, y float64) {
	rawX := v.X + m.ViewBox.Width/2
	rawY := -v.Y + m.ViewBox.Height/2
	return rawX / m.ViewBox.Width * m.Container.Width, rawY / m.ViewBox.Height * m.Container.Height
}

// SVGToWorld переводит точку в координатах SVG в тот же мир, что и ToWorld.
func (m Mapper) SVGToWorld(p models.Point) r3.Vec {
	c := m.ViewBox.Center()
	return r3.Vec{X: p.X - c.X, Y: -(p.Y - c.Y)}
}
