package mapper

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assembledScene(t *testing.T) *scene.Scene {
	t.Helper()
	outline := models.Outline{
		ViewBox: models.ViewBox{Width: 137.461, Height: 193.406},
		Shapes: []models.Shape{{Outer: []models.Point{
			{X: 20, Y: 20}, {X: 117, Y: 20}, {X: 117, Y: 173}, {X: 20, Y: 173},
		}}},
	}
	c := scene.NewComposer(scene.DefaultOptions())
	require.NoError(t, c.SetPiece(models.PieceFront, outline))
	require.NoError(t, c.SetPiece(models.PieceBack, outline))
	c.SetPairs([]models.SewingPair{{
		Front: models.SewingPoint{X: 100, Y: 250, Piece: models.PieceFront},
		Back:  models.SewingPoint{X: 300, Y: 250, Piece: models.PieceBack},
	}})
	return c.Scene()
}

func TestRasterDrawsFrame(t *testing.T) {
	sc := assembledScene(t)
	s := NewRasterSurface()
	vp := scene.Viewport{Width: 200, Height: 250}

	require.NoError(t, s.Draw(sc, vp))
	img := s.Image()
	require.NotNil(t, img)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 250, img.Bounds().Dy())

	// Угол кадра вне деталей остаётся фоном.
	corner := img.RGBAAt(0, 0)
	assert.Equal(t, uint8(0xf0), corner.R)
	assert.Equal(t, uint8(0xf0), corner.G)

	// Центр закрыт деталями и отличается от фона.
	center := img.RGBAAt(100, 125)
	assert.NotEqual(t, corner, center)

	data, err := s.PNG()
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestRasterResizesBuffer(t *testing.T) {
	sc := assembledScene(t)
	s := NewRasterSurface()
	require.NoError(t, s.Draw(sc, scene.Viewport{Width: 50, Height: 50}))
	require.NoError(t, s.Draw(sc, scene.Viewport{Width: 80, Height: 40}))
	assert.Equal(t, 80, s.Image().Bounds().Dx())

	assert.ErrorIs(t, s.Draw(sc, scene.Viewport{}), models.ErrInvalidDimensions)
}

func TestRasterRelease(t *testing.T) {
	s := NewRasterSurface()
	_, err := s.PNG()
	assert.Error(t, err)

	require.NoError(t, s.Release())
	assert.ErrorIs(t, s.Release(), ErrSurfaceReleased)
	assert.ErrorIs(t, s.Draw(assembledScene(t), scene.Viewport{Width: 1, Height: 1}), ErrSurfaceReleased)
	_, err = s.PNG()
	assert.ErrorIs(t, err, ErrSurfaceReleased)
}
