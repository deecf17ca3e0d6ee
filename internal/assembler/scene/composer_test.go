package scene

import (
	"math"
	"testing"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/pairing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func rectOutline(w, h float64) models.Outline {
	return models.Outline{
		ViewBox: models.ViewBox{Width: w, Height: h},
		Shapes: []models.Shape{{Outer: []models.Point{
			{X: 10, Y: 10}, {X: w - 10, Y: 10}, {X: w - 10, Y: h - 10}, {X: 10, Y: h - 10},
		}}},
	}
}

func newAssembly(t *testing.T) (*Composer, *pairing.Recorder) {
	t.Helper()
	opts := DefaultOptions()
	c := NewComposer(opts)
	require.NoError(t, c.SetPiece(models.PieceFront, rectOutline(137.461, 193.406)))
	require.NoError(t, c.SetPiece(models.PieceBack, rectOutline(137.461, 193.406)))
	r := pairing.New(opts.Container)
	c.Attach(r)
	return c, r
}

func click(t *testing.T, r *pairing.Recorder, piece models.Piece, x, y float64) {
	t.Helper()
	_, err := r.Click(piece, x, y)
	require.NoError(t, err)
}

func markers(sc *Scene) []*Node {
	var out []*Node
	sc.Walk(func(n *Node, _ r3.Vec, _ r3.Rotation) {
		if n.Kind == KindMarker {
			out = append(out, n)
		}
	})
	return out
}

func TestNoPairsPlacesPiecesFlat(t *testing.T) {
	c, _ := newAssembly(t)
	sc := c.Scene()

	assert.Equal(t, StatusAwaitingPairs, sc.Status)
	assert.Nil(t, sc.Seam)
	assert.Nil(t, sc.Root.Find("seam-pivot"))
	assert.Nil(t, sc.Root.Find("crease"))

	for _, name := range []string{"front", "back"} {
		node := sc.Root.Find(name)
		require.NotNil(t, node, name)
		assert.Equal(t, r3.Vec{}, node.Position)
		assert.Equal(t, r3.Rotation{Real: 1}, node.Rotation)
	}
	assert.Empty(t, markers(sc))
	assert.Equal(t, models.Color(0xf0f0f0), sc.Background)
	assert.Len(t, sc.Lights, 2)
}

func TestSinglePairAssembles(t *testing.T) {
	c, r := newAssembly(t)
	click(t, r, models.PieceFront, 100, 250)
	click(t, r, models.PieceBack, 300, 250)

	sc := c.Scene()
	assert.Equal(t, StatusAssembled, sc.Status)
	assert.Equal(t, AdvisoryFewPairs, sc.Advisory)
	require.NotNil(t, sc.Seam)
	assert.Nil(t, sc.Fit)

	pivot := sc.Root.Find("seam-pivot")
	require.NotNil(t, pivot)
	assert.Equal(t, sc.Seam.Pivot, pivot.Position)
	require.Len(t, pivot.Children, 1)
	back := pivot.Children[0]
	assert.Equal(t, "back", back.Name)
	assert.Equal(t, r3.Scale(-1, sc.Seam.Pivot), back.Position)

	crease := sc.Root.Find("crease")
	require.NotNil(t, crease)
	assert.Equal(t, sc.Seam.Pivot, crease.Position)
	assert.InDelta(t, r3.Norm(r3.Sub(sc.Seam.BackSeam, sc.Seam.FrontSeam)), crease.Crease.Length, 1e-9)

	// Без сгиба задняя деталь в мире остаётся на месте.
	sc.Walk(func(n *Node, pos r3.Vec, rot r3.Rotation) {
		if n.Name == "back" {
			assert.InDelta(t, 0, r3.Norm(pos), 1e-9)
		}
	})
}

func TestRemoveMiddlePairKeepsOrder(t *testing.T) {
	c, r := newAssembly(t)
	click(t, r, models.PieceFront, 10, 10)
	click(t, r, models.PieceBack, 20, 20)
	click(t, r, models.PieceFront, 30, 30)
	click(t, r, models.PieceBack, 40, 40)
	click(t, r, models.PieceFront, 50, 50)
	click(t, r, models.PieceBack, 60, 60)
	require.NoError(t, r.RemovePair(1))

	sc := c.Scene()
	assert.Equal(t, 2, sc.Pairs)
	ms := markers(sc)
	require.Len(t, ms, 4)

	front := c.Mapper(models.PieceFront)
	back := c.Mapper(models.PieceBack)
	assert.Equal(t, front.ToWorldXY(10, 10), sc.Root.Find("pair-0-front").Position)
	assert.Equal(t, back.ToWorldXY(20, 20), sc.Root.Find("pair-0-back").Position)
	assert.Equal(t, front.ToWorldXY(50, 50), sc.Root.Find("pair-1-front").Position)
	assert.Equal(t, back.ToWorldXY(60, 60), sc.Root.Find("pair-1-back").Position)
	assert.Nil(t, sc.Root.Find("pair-2-front"))

	line := sc.Root.Find("pair-1-line")
	require.NotNil(t, line)
	assert.Equal(t, models.Color(0xff0000), line.Line.Color)
	require.NotNil(t, sc.Fit)
	assert.Equal(t, 2, sc.Fit.Pairs)
}

func TestClearAllRestoresInitialScene(t *testing.T) {
	c, r := newAssembly(t)
	initial := *c.Scene()

	click(t, r, models.PieceFront, 10, 10)
	click(t, r, models.PieceBack, 20, 20)
	click(t, r, models.PieceFront, 30, 30)
	r.ClearAll()

	after := *c.Scene()
	assert.NotEqual(t, initial.Generation, after.Generation)
	initial.Generation, after.Generation = 0, 0
	assert.Equal(t, initial, after)
}

func TestFoldRotatesBackPiece(t *testing.T) {
	opts := DefaultOptions()
	opts.FoldAngle = math.Pi / 2
	c := NewComposer(opts)
	require.NoError(t, c.SetPiece(models.PieceFront, rectOutline(100, 100)))
	require.NoError(t, c.SetPiece(models.PieceBack, rectOutline(100, 100)))
	c.SetPairs([]models.SewingPair{{
		Front: models.SewingPoint{X: 100, Y: 250, Piece: models.PieceFront},
		Back:  models.SewingPoint{X: 300, Y: 250, Piece: models.PieceBack},
	}})

	sc := c.Scene()
	require.NotNil(t, sc.Seam)

	// Ось шва идёт вдоль X через начало координат: точка (0, 10, 0) задней
	// детали уходит в (0, 0, 10).
	sc.Walk(func(n *Node, pos r3.Vec, rot r3.Rotation) {
		if n.Name != "back" {
			return
		}
		got := WorldVertex(r3.Vec{Y: 10}, pos, rot)
		assert.InDelta(t, 0, got.X, 1e-9)
		assert.InDelta(t, 0, got.Y, 1e-9)
		assert.InDelta(t, 10, got.Z, 1e-9)
	})
}

func TestMissingPieceIsFlatFallback(t *testing.T) {
	c := NewComposer(DefaultOptions())
	require.NoError(t, c.SetPiece(models.PieceFront, rectOutline(100, 100)))
	c.SetPairs([]models.SewingPair{{
		Front: models.SewingPoint{X: 1, Y: 1, Piece: models.PieceFront},
		Back:  models.SewingPoint{X: 2, Y: 2, Piece: models.PieceBack},
	}})

	sc := c.Scene()
	assert.Equal(t, StatusAwaitingPieces, sc.Status)
	assert.Nil(t, sc.Seam)
	assert.NotNil(t, sc.Root.Find("front"))
	assert.Nil(t, sc.Root.Find("back"))
	assert.Len(t, markers(sc), 2)

	c.ClearPiece(models.PieceFront)
	assert.False(t, c.HasPiece(models.PieceFront))
	assert.Nil(t, c.Scene().Root.Find("front"))
}

func TestRebuildIsLazy(t *testing.T) {
	c, r := newAssembly(t)
	c.Scene()
	base := c.Rebuilds()

	for i := 0; i < 10; i++ {
		click(t, r, models.PieceFront, float64(i), 1)
		click(t, r, models.PieceBack, float64(i), 2)
	}
	assert.True(t, c.Dirty())
	sc := c.Scene()
	assert.Same(t, sc, c.Scene())
	assert.Equal(t, base+1, c.Rebuilds())
	assert.Equal(t, 10, sc.Pairs)
}

func TestResizeKeepsGeometry(t *testing.T) {
	c, _ := newAssembly(t)
	sc := c.Scene()

	require.NoError(t, c.Resize(800, 600))
	assert.Equal(t, Viewport{Width: 800, Height: 600}, c.Viewport())
	assert.False(t, c.Dirty())
	assert.Same(t, sc, c.Scene())

	assert.ErrorIs(t, c.Resize(0, 10), models.ErrInvalidDimensions)
}

func TestResizeRejectsOversizedViewport(t *testing.T) {
	c, _ := newAssembly(t)

	assert.ErrorIs(t, c.Resize(1<<31-1, 1<<31-1), models.ErrInvalidDimensions)
	assert.ErrorIs(t, c.Resize(DefaultMaxViewport+1, 10), models.ErrInvalidDimensions)
	assert.Equal(t, DefaultOptions().Viewport, c.Viewport())

	require.NoError(t, c.Resize(DefaultMaxViewport, DefaultMaxViewport))

	opts := DefaultOptions()
	opts.Viewport = Viewport{Width: DefaultMaxViewport * 2, Height: 10}
	assert.ErrorIs(t, opts.Validate(), models.ErrInvalidDimensions)
}

func TestPendingClickDoesNotRebuild(t *testing.T) {
	c, r := newAssembly(t)
	sc := c.Scene()
	gen := c.Generation()

	click(t, r, models.PieceFront, 100, 250)
	click(t, r, models.PieceFront, 120, 250)
	assert.False(t, c.Dirty())
	assert.Equal(t, gen, c.Generation())
	assert.Same(t, sc, c.Scene())

	click(t, r, models.PieceBack, 300, 250)
	assert.True(t, c.Dirty())
	assert.Equal(t, StatusAssembled, c.Scene().Status)
}

func TestCloseDetachesRecorder(t *testing.T) {
	c, r := newAssembly(t)
	assert.Equal(t, 1, r.Subscribers())

	c.Close()
	c.Close()
	assert.True(t, c.Closed())
	assert.Equal(t, 0, r.Subscribers())

	click(t, r, models.PieceFront, 1, 1)
	click(t, r, models.PieceBack, 1, 1)
	assert.Equal(t, 0, c.Scene().Pairs)
}

func TestSetPieceRejectsBadInput(t *testing.T) {
	c := NewComposer(DefaultOptions())
	assert.ErrorIs(t, c.SetPiece("side", rectOutline(10, 10)), models.ErrInvalidPiece)
	assert.ErrorIs(t, c.SetPiece(models.PieceFront, models.Outline{}), models.ErrInvalidDimensions)
}

func TestCameraProjectsCenter(t *testing.T) {
	cam := DefaultOptions().Camera
	vp := Viewport{Width: 400, Height: 500}

	x, y, depth, ok := cam.Project(r3.Vec{}, vp)
	require.True(t, ok)
	assert.InDelta(t, 200, x, 1e-9)
	assert.InDelta(t, 250, y, 1e-9)
	assert.InDelta(t, 600, depth, 1e-9)

	x, y, _, ok = cam.Project(r3.Vec{X: 10, Y: 10}, vp)
	require.True(t, ok)
	assert.Greater(t, x, 200.0)
	assert.Less(t, y, 250.0)

	_, _, _, ok = cam.Project(r3.Vec{Z: 700}, vp)
	assert.False(t, ok)
}
