package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
)

// ============================================================
// Transforms
// ============================================================

// Affine хранит матрицу 2x3 [A C E; B D F].
type Affine struct {
	A, B, C, D, E, F float64
}

func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// Mul возвращает t∘u: сначала u, потом t.
func (t Affine) Mul(u Affine) Affine {
	return Affine{
		A: t.A*u.A + t.C*u.B,
		B: t.B*u.A + t.D*u.B,
		C: t.A*u.C + t.C*u.D,
		D: t.B*u.C + t.D*u.D,
		E: t.A*u.E + t.C*u.F + t.E,
		F: t.B*u.E + t.D*u.F + t.F,
	}
}

func (t Affine) Apply(p models.Point) models.Point {
	return models.Point{
		X: t.A*p.X + t.C*p.Y + t.E,
		Y: t.B*p.X + t.D*p.Y + t.F,
	}
}

func (t Affine) IsIdentity() bool {
	return t == Identity()
}

var (
	transformRe = regexp.MustCompile(`([a-zA-Z]+)\s*\(([^)]*)\)`)
	numberRe    = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)
)

// ParseTransform разбирает атрибут transform; неизвестные функции пропускаются.
func ParseTransform(s string) Affine {
	result := Identity()
	for _, match := range transformRe.FindAllStringSubmatch(s, -1) {
		args := parseNumbers(match[2])
		var t Affine

		switch strings.ToLower(match[1]) {
		case "matrix":
			if len(args) < 6 {
				continue
			}
			t = Affine{A: args[0], B: args[1], C: args[2], D: args[3], E: args[4], F: args[5]}
		case "translate":
			if len(args) < 1 {
				continue
			}
			t = Identity()
			t.E = args[0]
			if len(args) > 1 {
				t.F = args[1]
			}
		case "scale":
			if len(args) < 1 {
				continue
			}
			sy := args[0]
			if len(args) > 1 {
				sy = args[1]
			}
			t = Affine{A: args[0], D: sy}
		case "rotate":
			if len(args) < 1 {
				continue
			}
			sin, cos := math.Sincos(args[0] * math.Pi / 180)
			t = Affine{A: cos, B: sin, C: -sin, D: cos}
			if len(args) >= 3 {
				cx, cy := args[1], args[2]
				t = Affine{A: 1, D: 1, E: cx, F: cy}.Mul(t).Mul(Affine{A: 1, D: 1, E: -cx, F: -cy})
			}
		case "skewx":
			if len(args) < 1 {
				continue
			}
			t = Affine{A: 1, C: math.Tan(args[0] * math.Pi / 180), D: 1}
		case "skewy":
			if len(args) < 1 {
				continue
			}
			t = Affine{A: 1, B: math.Tan(args[0] * math.Pi / 180), D: 1}
		default:
			continue
		}
		result = result.Mul(t)
	}
	return result
}

func parseNumbers(s string) []float64 {
	var out []float64
	for _, raw := range numberRe.FindAllString(s, -1) {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}
