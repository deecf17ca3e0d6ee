package mapper

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var container = models.ContainerGeometry{Width: 400, Height: 500}

func overlayPairs() []models.SewingPair {
	return []models.SewingPair{
		{
			Front: models.SewingPoint{X: 10, Y: 20, Piece: models.PieceFront},
			Back:  models.SewingPoint{X: 30, Y: 40, Piece: models.PieceBack},
		},
		{
			Front: models.SewingPoint{X: 100, Y: 200, Piece: models.PieceFront},
			Back:  models.SewingPoint{X: 300, Y: 400, Piece: models.PieceBack},
		},
	}
}

func TestOverlayOffsetsBackPiece(t *testing.T) {
	out, err := NewOverlayRenderer().Render(Overlay{
		Container: container,
		Pairs:     overlayPairs(),
		Highlight: -1,
	})
	require.NoError(t, err)

	assert.Contains(t, out, `width="800" height="500" viewBox="0 0 800 500"`)
	assert.Contains(t, out, `<line id="pair-0" x1="10" y1="20" x2="430" y2="40"`)
	assert.Contains(t, out, `<circle id="b-1" cx="700" cy="400" r="6"`)
	assert.Contains(t, out, "Front piece not uploaded")
	assert.Contains(t, out, "Back piece not uploaded")
	assert.NotContains(t, out, "stroke-dasharray=\"5,5\"")
}

func TestOverlayHighlightAndPending(t *testing.T) {
	pending := models.SewingPoint{X: 5, Y: 6, Piece: models.PieceBack, ID: 77}
	out, err := NewOverlayRenderer().Render(Overlay{
		Container: container,
		Pairs:     overlayPairs(),
		Pending:   &pending,
		Highlight: 1,
	})
	require.NoError(t, err)

	assert.Contains(t, out, `<line id="pair-1" x1="100" y1="200" x2="700" y2="400" stroke="rgba(239, 68, 68, 0.8)" stroke-width="3" stroke-dasharray="5,5" />`)
	assert.Contains(t, out, `<circle id="pair-1-remove" cx="400" cy="300" r="12"`)
	assert.Contains(t, out, `<circle id="f-1" cx="100" cy="200" r="8" fill="rgba(239, 68, 68, 0.8)"`)
	assert.Contains(t, out, `<circle id="f-0" cx="10" cy="20" r="6" fill="rgba(59, 130, 246, 0.8)"`)
	assert.Contains(t, out, `<circle id="pending-77" cx="405" cy="6" r="6"`)
}

func TestOverlayEmbedsMarkup(t *testing.T) {
	front := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10"/></svg>`
	out, err := NewOverlayRenderer().Render(Overlay{
		Container:   container,
		FrontMarkup: front,
		Highlight:   -1,
	})
	require.NoError(t, err)

	encoded := base64.StdEncoding.EncodeToString([]byte(front))
	assert.Contains(t, out, `<image id="front-piece" x="0" y="0" width="400" height="500" preserveAspectRatio="none" href="data:image/svg+xml;base64,`+encoded+`" />`)
	assert.NotContains(t, out, "Front piece not uploaded")
	assert.Contains(t, out, "Back piece not uploaded")
	assert.True(t, strings.HasSuffix(out, "</svg>"))
}

func TestOverlayRejectsBadContainer(t *testing.T) {
	_, err := NewOverlayRenderer().Render(Overlay{Container: models.ContainerGeometry{Width: 0, Height: 10}})
	assert.ErrorIs(t, err, models.ErrInvalidDimensions)
}
