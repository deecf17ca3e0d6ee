package service

import (
	"math"
	"testing"
	"time"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/scene"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromDefaultConfigMatchDefaults(t *testing.T) {
	cfg := config.Load()
	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, scene.DefaultOptions(), opts)
}

func TestOptionsFromConfigOverrides(t *testing.T) {
	cfg := config.Load()
	require.NoError(t, cfg.Decode([]byte(`
[assembly]
fold_angle_deg = 90
container_width = 300

[render]
frame_interval_ms = 40
back_color = "0x123456"
`)))

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, opts.FoldAngle, 1e-12)
	assert.Equal(t, 300.0, opts.Container.Width)
	assert.Equal(t, 40*time.Millisecond, opts.FrameInterval)
	assert.Equal(t, models.Color(0x123456), opts.BackColor)
}

func TestOptionsFromConfigRejectsBadColor(t *testing.T) {
	cfg := config.Load()
	cfg.Render.LineColor = "red"
	_, err := OptionsFromConfig(cfg)
	assert.Error(t, err)
}
