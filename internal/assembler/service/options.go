package service

import (
	"fmt"
	"math"
	"time"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/scene"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/common/config"
)

// OptionsFromConfig переносит настройки сборки и отрисовки в параметры сцены.
func OptionsFromConfig(cfg *config.Config) (scene.Options, error) {
	opts := scene.DefaultOptions()
	a, r := cfg.Assembly, cfg.Render

	opts.Container = models.ContainerGeometry{Width: a.ContainerWidth, Height: a.ContainerHeight}
	opts.DefaultViewBox = models.ViewBox{Width: a.ViewBoxWidth, Height: a.ViewBoxHeight}
	opts.Depth = a.Depth
	opts.FoldAngle = a.FoldAngleDeg * math.Pi / 180
	opts.CreaseThickness = a.CreaseThickness

	opts.Viewport = scene.Viewport{Width: r.ViewportWidth, Height: r.ViewportHeight}
	if r.MaxViewport > 0 {
		opts.MaxViewport = r.MaxViewport
	}
	opts.FrameInterval = time.Duration(r.FrameIntervalMS) * time.Millisecond
	opts.Opacity = r.Opacity
	if r.MarkerRadius > 0 {
		opts.MarkerRadius = r.MarkerRadius
	}

	colors := []struct {
		raw string
		dst *models.Color
	}{
		{r.Background, &opts.Background},
		{r.FrontColor, &opts.FrontColor},
		{r.BackColor, &opts.BackColor},
		{r.LineColor, &opts.LineColor},
		{r.FrontMarkerColor, &opts.FrontMarkerColor},
		{r.BackMarkerColor, &opts.BackMarkerColor},
		{r.CreaseColor, &opts.CreaseColor},
	}
	for _, c := range colors {
		if c.raw == "" {
			continue
		}
		parsed, err := models.ParseColor(c.raw)
		if err != nil {
			return scene.Options{}, fmt.Errorf("render: %w", err)
		}
		*c.dst = parsed
	}

	if err := opts.Validate(); err != nil {
		return scene.Options{}, err
	}
	return opts, nil
}
