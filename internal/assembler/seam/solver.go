package seam

import (
	"math"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/coords"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"

	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Seam Transform Solver
// ============================================================

const (
	DefaultCreaseThickness = 0.5
	DefaultCreaseColor     = models.Color(0x333333)
	axisEpsilon            = 1e-9
)

// FallbackAxis используется, когда точки шва совпадают и ось не определена.
var FallbackAxis = r3.Vec{Z: 1}

type Solver struct {
	Front           coords.Mapper
	Back            coords.Mapper
	FoldAngle       float64
	CreaseThickness float64
	CreaseColor     models.Color
}

func NewSolver(front, back coords.Mapper) *Solver {
	return &Solver{
		Front:           front,
		Back:            back,
		CreaseThickness: DefaultCreaseThickness,
		CreaseColor:     DefaultCreaseColor,
	}
}

// Solve берёт только первую пару как опорную. Пустой список или битая
// первая пара дают nil, и вызывающий кладёт детали плоско без сгиба.
func (s *Solver) Solve(pairs []models.SewingPair) *models.SeamTransform {
	if len(pairs) == 0 {
		return nil
	}
	ref := pairs[0]
	if !ref.Valid() || !ref.Front.Finite() || !ref.Back.Finite() {
		return nil
	}

	front := s.Front.ToWorld(ref.Front)
	back := s.Back.ToWorld(ref.Back)
	if !finiteVec(front) || !finiteVec(back) {
		return nil
	}

	st := &models.SeamTransform{
		FrontSeam: front,
		BackSeam:  back,
		Pivot:     r3.Scale(0.5, r3.Add(front, back)),
		FoldAngle: s.FoldAngle,
	}

	delta := r3.Sub(back, front)
	length := r3.Norm(delta)
	if length <= axisEpsilon {
		st.Axis = FallbackAxis
		st.Degenerate = true
	} else {
		st.Axis = r3.Scale(1/length, delta)
	}

	st.Crease = models.Crease{
		Center:      st.Pivot,
		Length:      length,
		Thickness:   s.CreaseThickness,
		Color:       s.CreaseColor,
		Direction:   st.Axis,
		Orientation: r3.Rotation{Real: 1},
	}
	if facing := r3.Sub(back, st.Pivot); r3.Norm(facing) > axisEpsilon {
		st.Crease.Direction = r3.Unit(facing)
		st.Crease.Orientation = LookRotation(st.Crease.Direction)
	}
	return st
}

// Rotation возвращает поворот узла-шарнира на FoldAngle вокруг оси шва.
func Rotation(st *models.SeamTransform) r3.Rotation {
	if st == nil || st.FoldAngle == 0 || st.Degenerate {
		return r3.Rotation{Real: 1}
	}
	return r3.NewRotation(st.FoldAngle, st.Axis)
}

// LookRotation поворачивает локальную ось +Z на направление dir.
func LookRotation(dir r3.Vec) r3.Rotation {
	z := r3.Vec{Z: 1}
	d := r3.Unit(dir)
	cos := r3.Dot(z, d)

	switch {
	case cos > 1-axisEpsilon:
		return r3.Rotation{Real: 1}
	case cos < -1+axisEpsilon:
		return r3.NewRotation(math.Pi, r3.Vec{X: 1})
	}
	axis := r3.Cross(z, d)
	return r3.NewRotation(math.Acos(cos), axis)
}

func finiteVec(v r3.Vec) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
