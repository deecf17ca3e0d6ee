package mapper

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sort"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/scene"

	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Raster Surface
// ============================================================

var ErrSurfaceReleased = errors.New("surface released")

const (
	markerSegments = 16
	lineWidth      = 1.5
)

// RasterSurface рисует сцену программно: плоское затенение треугольников
// и сортировка по глубине без z-буфера.
type RasterSurface struct {
	ras      *vector.Rasterizer
	image    *image.RGBA
	released bool
}

func NewRasterSurface() *RasterSurface {
	return &RasterSurface{ras: &vector.Rasterizer{}}
}

// primitive: закрашиваемый многоугольник в пикселях с глубиной для сортировки.
type primitive struct {
	points []r3.Vec // X, Y в пикселях; Z хранит глубину
	depth  float64
	color  color.NRGBA
}

func (s *RasterSurface) Draw(sc *scene.Scene, vp scene.Viewport) error {
	if s.released {
		return ErrSurfaceReleased
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		return models.ErrInvalidDimensions
	}

	bounds := image.Rect(0, 0, vp.Width, vp.Height)
	if s.image == nil || s.image.Bounds() != bounds {
		s.image = image.NewRGBA(bounds)
	}
	draw.Draw(s.image, bounds, image.NewUniform(sc.Background.NRGBA(1)), image.Point{}, draw.Src)

	prims := collect(sc, vp)
	sort.SliceStable(prims, func(i, j int) bool { return prims[i].depth > prims[j].depth })

	for _, p := range prims {
		s.fill(p, bounds)
	}
	return nil
}

// Image возвращает последний кадр или nil, если ничего не нарисовано.
func (s *RasterSurface) Image() *image.RGBA {
	return s.image
}

// PNG кодирует последний кадр.
func (s *RasterSurface) PNG() ([]byte, error) {
	if s.released {
		return nil, ErrSurfaceReleased
	}
	if s.image == nil {
		return nil, errors.New("no frame drawn yet")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.image); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *RasterSurface) Release() error {
	if s.released {
		return ErrSurfaceReleased
	}
	s.released = true
	s.image = nil
	s.ras = nil
	return nil
}

func (s *RasterSurface) fill(p primitive, bounds image.Rectangle) {
	if len(p.points) < 3 {
		return
	}
	s.ras.Reset(bounds.Dx(), bounds.Dy())
	s.ras.DrawOp = draw.Over
	s.ras.MoveTo(float32(p.points[0].X), float32(p.points[0].Y))
	for _, pt := range p.points[1:] {
		s.ras.LineTo(float32(pt.X), float32(pt.Y))
	}
	s.ras.ClosePath()
	s.ras.Draw(s.image, bounds, image.NewUniform(p.color), image.Point{})
}

// ============================================================
// Scene traversal
// ============================================================

func collect(sc *scene.Scene, vp scene.Viewport) []primitive {
	var prims []primitive
	light := lighting(sc)

	sc.Walk(func(n *scene.Node, pos r3.Vec, rot r3.Rotation) {
		switch n.Kind {
		case scene.KindMesh:
			if n.Mesh.Empty() {
				return
			}
			world := make([]r3.Vec, len(n.Mesh.Vertices))
			for i, v := range n.Mesh.Vertices {
				world[i] = scene.WorldVertex(v, pos, rot)
			}
			prims = append(prims, triangles(sc.Camera, vp, world, n.Mesh.Triangles, n.Mesh.Material, light)...)

		case scene.KindCrease:
			world, tris := creaseBox(n.Crease, pos, rot)
			mat := models.Material{Color: n.Crease.Color, Opacity: 1}
			prims = append(prims, triangles(sc.Camera, vp, world, tris, mat, light)...)

		case scene.KindLine:
			if p, ok := segment(sc.Camera, vp, n.Line); ok {
				prims = append(prims, p)
			}

		case scene.KindMarker:
			if p, ok := disc(sc.Camera, vp, pos, n.Marker); ok {
				prims = append(prims, p)
			}
		}
	})
	return prims
}

type shading struct {
	ambient     float64
	directional float64
	dir         r3.Vec
}

func lighting(sc *scene.Scene) shading {
	var sh shading
	for _, l := range sc.Lights {
		switch l.Kind {
		case scene.LightAmbient:
			sh.ambient += l.Intensity
		case scene.LightDirectional:
			sh.directional = l.Intensity
			if r3.Norm(l.Position) > 0 {
				sh.dir = r3.Unit(l.Position)
			}
		}
	}
	return sh
}

func triangles(cam scene.Camera, vp scene.Viewport, world []r3.Vec, tris [][3]int, mat models.Material, sh shading) []primitive {
	out := make([]primitive, 0, len(tris))
	for _, t := range tris {
		a, b, c := world[t[0]], world[t[1]], world[t[2]]
		normal := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		if r3.Norm(normal) == 0 {
			continue
		}
		normal = r3.Unit(normal)

		facing := r3.Dot(normal, r3.Sub(cam.Position, a))
		if facing < 0 && !mat.DoubleSided {
			continue
		}

		diffuse := r3.Dot(normal, sh.dir)
		if mat.DoubleSided {
			diffuse = math.Abs(diffuse)
		}
		k := sh.ambient + sh.directional*math.Max(0, diffuse)

		var pts []r3.Vec
		var depth float64
		ok := true
		for _, v := range []r3.Vec{a, b, c} {
			x, y, d, visible := cam.Project(v, vp)
			if !visible {
				ok = false
				break
			}
			pts = append(pts, r3.Vec{X: x, Y: y, Z: d})
			depth += d / 3
		}
		if !ok {
			continue
		}

		opacity := 1.0
		if mat.Transparent {
			opacity = mat.Opacity
		}
		out = append(out, primitive{points: pts, depth: depth, color: shade(mat.Color, k, opacity)})
	}
	return out
}

func shade(c models.Color, k, opacity float64) color.NRGBA {
	base := c.NRGBA(opacity)
	scale := func(v uint8) uint8 {
		return uint8(math.Min(255, float64(v)*k))
	}
	return color.NRGBA{R: scale(base.R), G: scale(base.G), B: scale(base.B), A: base.A}
}

// creaseBox строит коробку t×t×length вдоль локальной оси Z.
func creaseBox(cr *models.Crease, pos r3.Vec, rot r3.Rotation) ([]r3.Vec, [][3]int) {
	h := cr.Thickness / 2
	l := math.Max(cr.Length, cr.Thickness) / 2
	local := []r3.Vec{
		{X: -h, Y: -h, Z: -l}, {X: h, Y: -h, Z: -l}, {X: h, Y: h, Z: -l}, {X: -h, Y: h, Z: -l},
		{X: -h, Y: -h, Z: l}, {X: h, Y: -h, Z: l}, {X: h, Y: h, Z: l}, {X: -h, Y: h, Z: l},
	}
	world := make([]r3.Vec, len(local))
	for i, v := range local {
		world[i] = scene.WorldVertex(v, pos, rot)
	}
	tris := [][3]int{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{1, 2, 6}, {1, 6, 5},
		{2, 3, 7}, {2, 7, 6},
		{3, 0, 4}, {3, 4, 7},
	}
	return world, tris
}

func segment(cam scene.Camera, vp scene.Viewport, line *scene.Line) (primitive, bool) {
	x0, y0, d0, ok0 := cam.Project(line.Start, vp)
	x1, y1, d1, ok1 := cam.Project(line.End, vp)
	if !ok0 || !ok1 {
		return primitive{}, false
	}
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return primitive{}, false
	}
	nx, ny := -dy/length*lineWidth/2, dx/length*lineWidth/2
	return primitive{
		points: []r3.Vec{
			{X: x0 + nx, Y: y0 + ny}, {X: x1 + nx, Y: y1 + ny},
			{X: x1 - nx, Y: y1 - ny}, {X: x0 - nx, Y: y0 - ny},
		},
		// Линии и маркеры всегда поверх граней в той же плоскости.
		depth: math.Min(d0, d1) - 1,
		color: line.Color.NRGBA(1),
	}, true
}

func disc(cam scene.Camera, vp scene.Viewport, center r3.Vec, m *scene.Marker) (primitive, bool) {
	x, y, d, ok := cam.Project(center, vp)
	if !ok {
		return primitive{}, false
	}
	f := 1 / math.Tan(cam.FOV*math.Pi/360)
	radius := m.Radius * f * float64(vp.Height) / 2 / d
	radius = math.Max(radius, 1)

	pts := make([]r3.Vec, markerSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / markerSegments
		pts[i] = r3.Vec{X: x + radius*math.Cos(a), Y: y + radius*math.Sin(a)}
	}
	return primitive{points: pts, depth: d - m.Radius - 1, color: m.Color.NRGBA(1)}, true
}
