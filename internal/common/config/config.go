package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int
	DBPath       string
	AssemblyFile string
	AllowOrigins []string

	// MaxSessions и SessionTTLMinutes ограничивают рабочие области в памяти;
	// 0 снимает ограничение.
	MaxSessions       int
	SessionTTLMinutes int

	Assembly AssemblySettings
	Render   RenderSettings
}

// AssemblySettings задаёт геометрию сборки: область клика, viewBox по умолчанию,
// толщина выдавливания и сгиб.
type AssemblySettings struct {
	ContainerWidth  float64 `toml:"container_width"`
	ContainerHeight float64 `toml:"container_height"`
	ViewBoxWidth    float64 `toml:"viewbox_width"`
	ViewBoxHeight   float64 `toml:"viewbox_height"`
	Depth           float64 `toml:"depth"`
	FoldAngleDeg    float64 `toml:"fold_angle_deg"`
	CreaseThickness float64 `toml:"crease_thickness"`
}

type RenderSettings struct {
	FrameIntervalMS  int     `toml:"frame_interval_ms"`
	ViewportWidth    int     `toml:"viewport_width"`
	ViewportHeight   int     `toml:"viewport_height"`
	MaxViewport      int     `toml:"max_viewport"`
	Opacity          float64 `toml:"opacity"`
	MarkerRadius     float64 `toml:"marker_radius"`
	Background       string  `toml:"background"`
	FrontColor       string  `toml:"front_color"`
	BackColor        string  `toml:"back_color"`
	LineColor        string  `toml:"line_color"`
	FrontMarkerColor string  `toml:"front_marker_color"`
	BackMarkerColor  string  `toml:"back_marker_color"`
	CreaseColor      string  `toml:"crease_color"`
}

func DefaultAssembly() AssemblySettings {
	return AssemblySettings{
		ContainerWidth:  400,
		ContainerHeight: 500,
		ViewBoxWidth:    137.461,
		ViewBoxHeight:   193.406,
		Depth:           2,
		CreaseThickness: 0.5,
	}
}

func DefaultRender() RenderSettings {
	return RenderSettings{
		FrameIntervalMS:  100,
		ViewportWidth:    400,
		ViewportHeight:   500,
		MaxViewport:      4096,
		Opacity:          0.65,
		MarkerRadius:     2,
		Background:       "#f0f0f0",
		FrontColor:       "#4a90e2",
		BackColor:        "#50e3c2",
		LineColor:        "#ff0000",
		FrontMarkerColor: "#0000ff",
		BackMarkerColor:  "#00ff00",
		CreaseColor:      "#333333",
	}
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
		DBPath:       getEnv("ASSEMBLER_DB_PATH", "data/db/pieces.db"),
		AssemblyFile: getEnv("ASSEMBLER_CONFIG", ""),
		AllowOrigins: getEnvAsList("CORS_ORIGINS"),

		MaxSessions:       getEnvAsInt("ASSEMBLER_MAX_SESSIONS", 256),
		SessionTTLMinutes: getEnvAsInt("ASSEMBLER_SESSION_TTL_MIN", 30),

		Assembly: DefaultAssembly(),
		Render:   DefaultRender(),
	}
}

// LoadAll читает окружение, накладывает TOML-файл из ASSEMBLER_CONFIG
// и проверяет результат.
func LoadAll() (*Config, error) {
	cfg := Load()
	if cfg.AssemblyFile != "" {
		if err := cfg.LoadFile(cfg.AssemblyFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile накладывает секции [assembly] и [render]; отсутствующие ключи
// сохраняют текущие значения.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return c.Decode(data)
}

func (c *Config) Decode(data []byte) error {
	file := struct {
		Assembly AssemblySettings `toml:"assembly"`
		Render   RenderSettings   `toml:"render"`
	}{c.Assembly, c.Render}

	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	c.Assembly, c.Render = file.Assembly, file.Render
	return nil
}

// Validate отсекает нулевые размеры: на них отображение координат делит на ноль.
func (c *Config) Validate() error {
	var errs []error
	a, r := c.Assembly, c.Render

	if c.MaxSessions < 0 || c.SessionTTLMinutes < 0 {
		errs = append(errs, fmt.Errorf("max sessions and session ttl must not be negative, got %d and %d", c.MaxSessions, c.SessionTTLMinutes))
	}

	if a.ContainerWidth <= 0 || a.ContainerHeight <= 0 {
		errs = append(errs, fmt.Errorf("assembly: container must be positive, got %gx%g", a.ContainerWidth, a.ContainerHeight))
	}
	if a.ViewBoxWidth <= 0 || a.ViewBoxHeight <= 0 {
		errs = append(errs, fmt.Errorf("assembly: viewbox must be positive, got %gx%g", a.ViewBoxWidth, a.ViewBoxHeight))
	}
	if a.Depth < 0 {
		errs = append(errs, fmt.Errorf("assembly: depth must not be negative, got %g", a.Depth))
	}
	if a.CreaseThickness < 0 {
		errs = append(errs, fmt.Errorf("assembly: crease_thickness must not be negative, got %g", a.CreaseThickness))
	}
	if r.ViewportWidth <= 0 || r.ViewportHeight <= 0 {
		errs = append(errs, fmt.Errorf("render: viewport must be positive, got %dx%d", r.ViewportWidth, r.ViewportHeight))
	}
	if r.MaxViewport <= 0 {
		errs = append(errs, fmt.Errorf("render: max_viewport must be positive, got %d", r.MaxViewport))
	} else if r.ViewportWidth > r.MaxViewport || r.ViewportHeight > r.MaxViewport {
		errs = append(errs, fmt.Errorf("render: viewport %dx%d exceeds max_viewport %d", r.ViewportWidth, r.ViewportHeight, r.MaxViewport))
	}
	if r.FrameIntervalMS <= 0 {
		errs = append(errs, fmt.Errorf("render: frame_interval_ms must be positive, got %d", r.FrameIntervalMS))
	}
	if r.Opacity < 0 || r.Opacity > 1 {
		errs = append(errs, fmt.Errorf("render: opacity must be within [0, 1], got %g", r.Opacity))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// getEnvAsList читает список через запятую; пустые элементы отбрасываются.
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
