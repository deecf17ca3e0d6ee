package seam

import (
	"math"
	"testing"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/coords"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	container = models.ContainerGeometry{Width: 400, Height: 500}
	viewBox   = models.ViewBox{Width: 137.461, Height: 193.406}
)

func newSolver() *Solver {
	m := coords.New(container, viewBox)
	return NewSolver(m, m)
}

func pair(fx, fy, bx, by float64) models.SewingPair {
	return models.SewingPair{
		Front: models.SewingPoint{X: fx, Y: fy, Piece: models.PieceFront},
		Back:  models.SewingPoint{X: bx, Y: by, Piece: models.PieceBack},
	}
}

func assertVec(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
	assert.InDelta(t, want.Z, got.Z, 1e-9)
}

func TestSolveEmpty(t *testing.T) {
	assert.Nil(t, newSolver().Solve(nil))
	assert.Nil(t, newSolver().Solve([]models.SewingPair{}))
}

func TestSolveCoincidentCenters(t *testing.T) {
	st := newSolver().Solve([]models.SewingPair{pair(200, 250, 200, 250)})
	require.NotNil(t, st)

	assertVec(t, r3.Vec{}, st.FrontSeam)
	assertVec(t, r3.Vec{}, st.BackSeam)
	assertVec(t, r3.Vec{}, st.Pivot)
	assert.Equal(t, 0.0, st.Crease.Length)
	assert.True(t, st.Degenerate)
	assert.Equal(t, FallbackAxis, st.Axis)
	assert.Equal(t, r3.Rotation{Real: 1}, st.Crease.Orientation)
	assert.Equal(t, DefaultCreaseThickness, st.Crease.Thickness)
	assert.Equal(t, DefaultCreaseColor, st.Crease.Color)
}

func TestSolveUsesFirstPairOnly(t *testing.T) {
	s := newSolver()
	first := pair(0, 0, 400, 500)
	st := s.Solve([]models.SewingPair{first, pair(100, 100, 300, 300)})
	require.NotNil(t, st)

	front := r3.Vec{X: -viewBox.Width / 2, Y: viewBox.Height / 2}
	back := r3.Vec{X: viewBox.Width / 2, Y: -viewBox.Height / 2}
	assertVec(t, front, st.FrontSeam)
	assertVec(t, back, st.BackSeam)
	assertVec(t, r3.Vec{}, st.Pivot)

	length := math.Hypot(viewBox.Width, viewBox.Height)
	assert.InDelta(t, length, st.Crease.Length, 1e-9)
	assert.False(t, st.Degenerate)
	assert.InDelta(t, 1, r3.Norm(st.Axis), 1e-12)
	assertVec(t, r3.Scale(1/length, r3.Sub(back, front)), st.Axis)
}

func TestSolveMalformedFirstPair(t *testing.T) {
	s := newSolver()
	assert.Nil(t, s.Solve([]models.SewingPair{pair(math.NaN(), 10, 20, 20)}))
	assert.Nil(t, s.Solve([]models.SewingPair{pair(10, 10, math.Inf(1), 20)}))

	swapped := pair(10, 10, 20, 20)
	swapped.Front.Piece = models.PieceBack
	assert.Nil(t, s.Solve([]models.SewingPair{swapped, pair(1, 1, 2, 2)}))
}

func TestSolveIgnoresIDs(t *testing.T) {
	s := newSolver()
	a := pair(120, 80, 260, 400)
	b := a
	b.Front.ID, b.Back.ID = 17, 42
	assert.Equal(t, s.Solve([]models.SewingPair{a}), s.Solve([]models.SewingPair{b}))
}

func TestCreaseFacesBackSeam(t *testing.T) {
	st := newSolver().Solve([]models.SewingPair{pair(100, 250, 300, 250)})
	require.NotNil(t, st)

	local := st.Crease.Orientation.Rotate(r3.Vec{Z: 1})
	assertVec(t, st.Crease.Direction, local)
	assert.Greater(t, st.Crease.Direction.X, 0.0)
	assertVec(t, st.Pivot, st.Crease.Center)
}

func TestRotation(t *testing.T) {
	identity := r3.Rotation{Real: 1}
	assert.Equal(t, identity, Rotation(nil))

	s := newSolver()
	st := s.Solve([]models.SewingPair{pair(100, 250, 300, 250)})
	require.NotNil(t, st)
	assert.Equal(t, identity, Rotation(st))

	s.FoldAngle = math.Pi / 2
	st = s.Solve([]models.SewingPair{pair(100, 250, 300, 250)})
	require.NotNil(t, st)
	// Ось шва совпадает с X: +Y уходит в +Z.
	assertVec(t, r3.Vec{Z: 1}, Rotation(st).Rotate(r3.Vec{Y: 1}))

	st = s.Solve([]models.SewingPair{pair(200, 250, 200, 250)})
	assert.Equal(t, identity, Rotation(st))
}

func TestLookRotation(t *testing.T) {
	for _, dir := range []r3.Vec{
		{Z: 1}, {Z: -1}, {X: 1}, {Y: -3}, {X: 1, Y: 1, Z: 1},
	} {
		got := LookRotation(dir).Rotate(r3.Vec{Z: 1})
		assertVec(t, r3.Unit(dir), got)
	}
}

func TestFit(t *testing.T) {
	s := newSolver()
	_, err := s.Fit([]models.SewingPair{pair(10, 10, 20, 20)})
	assert.ErrorIs(t, err, ErrNotEnoughPairs)

	// Задняя деталь сдвинута на 40 пикселей вправо.
	fit, err := s.Fit([]models.SewingPair{
		pair(100, 100, 140, 100),
		pair(200, 300, 240, 300),
		pair(50, 400, 90, 400),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, fit.Pairs)
	assert.InDelta(t, 0, fit.Rotation, 1e-9)
	assert.InDelta(t, -40.0/400*viewBox.Width, fit.Translation.X, 1e-9)
	assert.InDelta(t, 0, fit.Translation.Y, 1e-9)
	assert.InDelta(t, 0, fit.RMS, 1e-9)
	assert.InDelta(t, 0, fit.MaxResidual, 1e-9)
}

func TestFitSkipsMalformed(t *testing.T) {
	s := newSolver()
	_, err := s.Fit([]models.SewingPair{pair(10, 10, 20, 20), pair(math.NaN(), 0, 1, 1)})
	assert.ErrorIs(t, err, ErrNotEnoughPairs)
}
