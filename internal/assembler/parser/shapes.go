package parser

import (
	"math"
	"sort"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
)

// ============================================================
// Contours → shapes
// ============================================================

const minArea = 1e-9

// buildShapes группирует контуры одного элемента в фигуры: контур на чётной
// глубине вложенности внешний, на нечётной это дыра ближайшего внешнего.
// Внешние контуры приводятся к положительной площади, дыры к отрицательной.
func buildShapes(contours [][]models.Point) []models.Shape {
	var valid [][]models.Point
	for _, c := range contours {
		c = cleanContour(c)
		if len(c) >= 3 && math.Abs(SignedArea(c)) > minArea {
			valid = append(valid, c)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return math.Abs(SignedArea(valid[i])) > math.Abs(SignedArea(valid[j]))
	})

	depth := make([]int, len(valid))
	parent := make([]int, len(valid))
	shapeOf := make([]int, len(valid))
	var shapes []models.Shape

	for i, c := range valid {
		parent[i] = -1
		for j := i - 1; j >= 0; j-- {
			if PointInPolygon(c[0], valid[j]) {
				parent[i] = j
				break
			}
		}
		if parent[i] >= 0 {
			depth[i] = depth[parent[i]] + 1
		}

		if depth[i]%2 == 0 {
			shapeOf[i] = len(shapes)
			shapes = append(shapes, models.Shape{Outer: orient(c, true)})
			continue
		}
		owner := shapeOf[parent[i]]
		shapeOf[i] = owner
		shapes[owner].Holes = append(shapes[owner].Holes, orient(c, false))
	}
	return shapes
}

// SignedArea считает площадь по формуле шнурования.
func SignedArea(c []models.Point) float64 {
	var sum float64
	for i := range c {
		a := c[i]
		b := c[(i+1)%len(c)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// PointInPolygon проверяет чётность пересечений луча.
func PointInPolygon(p models.Point, poly []models.Point) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

func orient(c []models.Point, positive bool) []models.Point {
	if (SignedArea(c) > 0) == positive {
		return c
	}
	out := make([]models.Point, len(c))
	for i, p := range c {
		out[len(c)-1-i] = p
	}
	return out
}

// cleanContour убирает подряд идущие дубликаты и замыкающую точку.
func cleanContour(c []models.Point) []models.Point {
	out := make([]models.Point, 0, len(c))
	for _, p := range c {
		if len(out) > 0 && samePoint(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && samePoint(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func samePoint(a, b models.Point) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}
