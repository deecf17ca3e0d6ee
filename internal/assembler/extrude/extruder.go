package extrude

import (
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"

	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Shape Extruder
// ============================================================

const DefaultDepth = 2.0

// Extruder выдавливает плоскую выкройку в тело постоянной толщины без фаски.
type Extruder struct {
	Depth float64
}

func New(depth float64) *Extruder {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Extruder{Depth: depth}
}

// Extrude строит сетку: нижняя крышка z=0, верхняя z=Depth и боковые стенки.
// Геометрия сдвигается к центру viewBox и отражается по Y так же, как
// клики в coords.Mapper. Если фигур нет, возвращается пустая сетка.
func (e *Extruder) Extrude(outline models.Outline, name string, material models.Material) *models.Mesh {
	mesh := &models.Mesh{Name: name, Material: material}
	center := outline.ViewBox.Center()

	for _, shape := range outline.Shapes {
		points, caps := Triangulate(shape)
		if len(caps) == 0 {
			continue
		}

		base := len(mesh.Vertices)
		k := len(points)
		for _, z := range []float64{0, e.Depth} {
			for _, p := range points {
				mesh.Vertices = append(mesh.Vertices, r3.Vec{
					X: p.X - center.X,
					Y: -(p.Y - center.Y),
					Z: z,
				})
			}
		}

		// После отражения по Y обход в плоскости XY меняется на обратный,
		// поэтому нижняя крышка сохраняет порядок, а верхняя его разворачивает.
		for _, t := range caps {
			mesh.Triangles = append(mesh.Triangles,
				[3]int{base + t[0], base + t[1], base + t[2]},
				[3]int{base + k + t[0], base + k + t[2], base + k + t[1]},
			)
		}

		offset := 0
		for _, contour := range append([][]models.Point{shape.Outer}, shape.Holes...) {
			n := len(contour)
			if n < 3 {
				continue
			}
			for j := 0; j < n; j++ {
				p0 := base + offset + j
				q0 := base + offset + (j+1)%n
				p1, q1 := p0+k, q0+k
				mesh.Triangles = append(mesh.Triangles,
					[3]int{p0, q1, q0},
					[3]int{p0, p1, q1},
				)
			}
			offset += n
		}
	}

	return mesh
}
