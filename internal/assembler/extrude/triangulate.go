package extrude

import (
	"math"
	"sort"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
)

// ============================================================
// Ear clipping
// ============================================================

const epsilon = 1e-12

// Triangulate режет фигуру на треугольники. Внешний контур должен иметь
// положительную площадь, дыры отрицательную. Вершины возвращаются в порядке
// outer, holes[0], holes[1]...; треугольники ссылаются на них по индексу.
func Triangulate(shape models.Shape) ([]models.Point, [][3]int) {
	verts := append([]models.Point(nil), shape.Outer...)
	ring := make([]int, len(shape.Outer))
	for i := range ring {
		ring[i] = i
	}

	type hole struct {
		idx  []int
		maxX float64
	}
	holes := make([]hole, 0, len(shape.Holes))
	for _, h := range shape.Holes {
		if len(h) < 3 {
			continue
		}
		hl := hole{maxX: math.Inf(-1)}
		for _, p := range h {
			hl.idx = append(hl.idx, len(verts))
			verts = append(verts, p)
			hl.maxX = math.Max(hl.maxX, p.X)
		}
		holes = append(holes, hl)
	}
	sort.SliceStable(holes, func(i, j int) bool { return holes[i].maxX > holes[j].maxX })

	for i, h := range holes {
		var pending [][]int
		for _, rest := range holes[i+1:] {
			pending = append(pending, rest.idx)
		}
		ring = bridge(verts, ring, h.idx, pending)
	}

	return verts, clip(verts, ring)
}

// bridge вшивает дыру в кольцо через разрез от её самой правой вершины
// к ближайшей видимой вершине кольца.
func bridge(verts []models.Point, ring, hole []int, others [][]int) []int {
	m := 0
	for i, idx := range hole {
		if verts[idx].X > verts[hole[m]].X {
			m = i
		}
	}
	mp := verts[hole[m]]

	loops := append([][]int{ring, hole}, others...)
	best, bestDist := -1, math.Inf(1)
	for pos, idx := range ring {
		d := math.Hypot(verts[idx].X-mp.X, verts[idx].Y-mp.Y)
		if d >= bestDist {
			continue
		}
		if !visible(verts, mp, verts[idx], loops) {
			continue
		}
		best, bestDist = pos, d
	}
	if best < 0 {
		// Видимой вершины нет: берём ближайшую, результат может перекрываться.
		for pos, idx := range ring {
			if d := math.Hypot(verts[idx].X-mp.X, verts[idx].Y-mp.Y); d < bestDist {
				best, bestDist = pos, d
			}
		}
	}

	out := make([]int, 0, len(ring)+len(hole)+2)
	out = append(out, ring[:best+1]...)
	for i := 0; i <= len(hole); i++ {
		out = append(out, hole[(m+i)%len(hole)])
	}
	out = append(out, ring[best])
	out = append(out, ring[best+1:]...)
	return out
}

func visible(verts []models.Point, a, b models.Point, loops [][]int) bool {
	for _, loop := range loops {
		for i := range loop {
			p := verts[loop[i]]
			q := verts[loop[(i+1)%len(loop)]]
			if segmentsCross(a, b, p, q) {
				return false
			}
		}
	}
	return true
}

// segmentsCross ищет строгое пересечение отрезков без учёта общих концов.
func segmentsCross(a, b, p, q models.Point) bool {
	if samePt(a, p) || samePt(a, q) || samePt(b, p) || samePt(b, q) {
		return false
	}
	d1 := cross(p, q, a)
	d2 := cross(p, q, b)
	d3 := cross(a, b, p)
	d4 := cross(a, b, q)
	return ((d1 > epsilon && d2 < -epsilon) || (d1 < -epsilon && d2 > epsilon)) &&
		((d3 > epsilon && d4 < -epsilon) || (d3 < -epsilon && d4 > epsilon))
}

func clip(verts []models.Point, ring []int) [][3]int {
	var tris [][3]int
	ring = append([]int(nil), ring...)

	for len(ring) > 3 {
		n := len(ring)
		clipped := false

		for i := 0; i < n; i++ {
			a, b, c := ring[(i+n-1)%n], ring[i], ring[(i+1)%n]
			area := cross(verts[a], verts[b], verts[c])

			if math.Abs(area) <= epsilon {
				// Вырожденная вершина на прямой выбрасываем без треугольника.
				ring = append(ring[:i], ring[i+1:]...)
				clipped = true
				break
			}
			if area < 0 || !isEar(verts, ring, a, b, c) {
				continue
			}

			tris = append(tris, [3]int{a, b, c})
			ring = append(ring[:i], ring[i+1:]...)
			clipped = true
			break
		}

		if !clipped {
			// Самопересечения: режем первую выпуклую вершину, чтобы не зациклиться.
			forced := false
			for i := 0; i < n; i++ {
				a, b, c := ring[(i+n-1)%n], ring[i], ring[(i+1)%n]
				if cross(verts[a], verts[b], verts[c]) > 0 {
					tris = append(tris, [3]int{a, b, c})
					ring = append(ring[:i], ring[i+1:]...)
					forced = true
					break
				}
			}
			if !forced {
				return tris
			}
		}
	}

	if len(ring) == 3 && cross(verts[ring[0]], verts[ring[1]], verts[ring[2]]) > epsilon {
		tris = append(tris, [3]int{ring[0], ring[1], ring[2]})
	}
	return tris
}

func isEar(verts []models.Point, ring []int, a, b, c int) bool {
	pa, pb, pc := verts[a], verts[b], verts[c]
	for _, idx := range ring {
		if idx == a || idx == b || idx == c {
			continue
		}
		p := verts[idx]
		if samePt(p, pa) || samePt(p, pb) || samePt(p, pc) {
			continue
		}
		if inTriangle(p, pa, pb, pc) {
			return false
		}
	}
	return true
}

func inTriangle(p, a, b, c models.Point) bool {
	return cross(a, b, p) >= -epsilon && cross(b, c, p) >= -epsilon && cross(c, a, p) >= -epsilon
}

// cross возвращает удвоенную ориентированную площадь треугольника abc.
func cross(a, b, c models.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func samePt(a, b models.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}
