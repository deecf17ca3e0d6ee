package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("READ_TIMEOUT", "oops")
	t.Setenv("ASSEMBLER_DB_PATH", "")

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 10, cfg.ReadTimeout)
	assert.Equal(t, "data/db/pieces.db", cfg.DBPath)
	assert.Equal(t, DefaultAssembly(), cfg.Assembly)
	assert.Equal(t, DefaultRender(), cfg.Render)
	assert.NoError(t, cfg.Validate())
}

func TestDecodeOverlaysOnlyGivenKeys(t *testing.T) {
	cfg := Load()
	err := cfg.Decode([]byte(`
[assembly]
container_width = 800
fold_angle_deg = 45

[render]
front_color = "#112233"
`))
	require.NoError(t, err)

	assert.Equal(t, 800.0, cfg.Assembly.ContainerWidth)
	assert.Equal(t, 500.0, cfg.Assembly.ContainerHeight)
	assert.Equal(t, 45.0, cfg.Assembly.FoldAngleDeg)
	assert.Equal(t, "#112233", cfg.Render.FrontColor)
	assert.Equal(t, "#50e3c2", cfg.Render.BackColor)
}

func TestDecodeRejectsBadToml(t *testing.T) {
	cfg := Load()
	assert.Error(t, cfg.Decode([]byte("[assembly\ndepth = ")))
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Load()
	cfg.Assembly.ContainerWidth = 0
	cfg.Assembly.ViewBoxHeight = -1
	cfg.Render.Opacity = 2

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container must be positive")
	assert.Contains(t, err.Error(), "viewbox must be positive")
	assert.Contains(t, err.Error(), "opacity")
}

func TestLoadAllReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assembler.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render]\nviewport_width = 640\n"), 0o644))
	t.Setenv("ASSEMBLER_CONFIG", path)

	cfg, err := LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Render.ViewportWidth)

	t.Setenv("ASSEMBLER_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	_, err = LoadAll()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[assembly]\ncontainer_height = 0\n"), 0o644))
	t.Setenv("ASSEMBLER_CONFIG", path)
	_, err = LoadAll()
	assert.Error(t, err)
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " http://localhost:5173, ,https://atelier.example ")
	cfg := Load()
	assert.Equal(t, []string{"http://localhost:5173", "https://atelier.example"}, cfg.AllowOrigins)

	t.Setenv("CORS_ORIGINS", "")
	assert.Empty(t, Load().AllowOrigins)
}

func TestValidateCapsViewport(t *testing.T) {
	cfg := Load()
	cfg.Render.ViewportWidth = 1 << 20
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds max_viewport 4096")

	cfg = Load()
	cfg.Render.MaxViewport = 0
	assert.ErrorContains(t, cfg.Validate(), "max_viewport must be positive")
}

func TestLoadSessionLimits(t *testing.T) {
	t.Setenv("ASSEMBLER_MAX_SESSIONS", "")
	t.Setenv("ASSEMBLER_SESSION_TTL_MIN", "")
	cfg := Load()
	assert.Equal(t, 256, cfg.MaxSessions)
	assert.Equal(t, 30, cfg.SessionTTLMinutes)

	t.Setenv("ASSEMBLER_MAX_SESSIONS", "8")
	t.Setenv("ASSEMBLER_SESSION_TTL_MIN", "5")
	cfg = Load()
	assert.Equal(t, 8, cfg.MaxSessions)
	assert.Equal(t, 5, cfg.SessionTTLMinutes)

	cfg.MaxSessions = -1
	assert.ErrorContains(t, cfg.Validate(), "max sessions")
}
