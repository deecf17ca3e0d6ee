package scene

import (
	"fmt"
	"time"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/extrude"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/seam"

	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Options
// ============================================================

const (
	DefaultFrameInterval = 100 * time.Millisecond
	DefaultMarkerRadius  = 2.0
	DefaultOpacity       = 0.65
	DefaultMaxViewport   = 4096
)

// Options собирает все параметры сборки и отрисовки одной сессии.
type Options struct {
	Container      models.ContainerGeometry
	DefaultViewBox models.ViewBox

	Depth           float64
	FoldAngle       float64
	CreaseThickness float64
	MarkerRadius    float64
	Opacity         float64

	FrontColor       models.Color
	BackColor        models.Color
	LineColor        models.Color
	FrontMarkerColor models.Color
	BackMarkerColor  models.Color
	CreaseColor      models.Color
	Background       models.Color

	Camera      Camera
	Ambient     Light
	Directional Light
	Viewport    Viewport
	MaxViewport int

	FrameInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		Container:      models.ContainerGeometry{Width: 400, Height: 500},
		DefaultViewBox: models.ViewBox{Width: 137.461, Height: 193.406},

		Depth:           extrude.DefaultDepth,
		CreaseThickness: seam.DefaultCreaseThickness,
		MarkerRadius:    DefaultMarkerRadius,
		Opacity:         DefaultOpacity,

		FrontColor:       0x4a90e2,
		BackColor:        0x50e3c2,
		LineColor:        0xff0000,
		FrontMarkerColor: 0x0000ff,
		BackMarkerColor:  0x00ff00,
		CreaseColor:      seam.DefaultCreaseColor,
		Background:       0xf0f0f0,

		Camera: Camera{FOV: 60, Near: 0.1, Far: 5000, Position: r3.Vec{Z: 600}},
		Ambient: Light{
			Kind:      LightAmbient,
			Color:     0xffffff,
			Intensity: 0.6,
		},
		Directional: Light{
			Kind:      LightDirectional,
			Color:     0xffffff,
			Intensity: 0.7,
			Position:  r3.Vec{X: 200, Y: 200, Z: 300},
		},
		Viewport:    Viewport{Width: 400, Height: 500},
		MaxViewport: DefaultMaxViewport,

		FrameInterval: DefaultFrameInterval,
	}
}

// Validate отсекает конфигурации, на которых отображение координат
// делит на ноль.
func (o Options) Validate() error {
	if err := o.Container.Validate(); err != nil {
		return err
	}
	if err := o.DefaultViewBox.Validate(); err != nil {
		return err
	}
	return o.checkViewport(o.Viewport.Width, o.Viewport.Height)
}

// checkViewport ограничивает размер кадра: буфер поверхности выделяется
// под весь вьюпорт.
func (o Options) checkViewport(width, height int) error {
	limit := o.MaxViewport
	if limit <= 0 {
		limit = DefaultMaxViewport
	}
	if width <= 0 || height <= 0 || width > limit || height > limit {
		return fmt.Errorf("%w: viewport %dx%d (limit %d)", models.ErrInvalidDimensions, width, height, limit)
	}
	return nil
}

func (o Options) material(color models.Color) models.Material {
	return models.Material{
		Color:       color,
		Opacity:     o.Opacity,
		Transparent: o.Opacity < 1,
		DoubleSided: true,
	}
}
