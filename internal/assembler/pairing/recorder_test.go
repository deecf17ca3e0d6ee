package pairing

import (
	"math"
	"testing"
	"time"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var container = models.ContainerGeometry{Width: 400, Height: 500}

func fixedClock() func() time.Time {
	ts := time.UnixMilli(1_700_000_000_000)
	return func() time.Time { return ts }
}

func newRecorder() *Recorder {
	return New(container, WithClock(fixedClock()))
}

func TestSamePieceTwiceNeverPairs(t *testing.T) {
	r := newRecorder()

	pair, err := r.Click(models.PieceFront, 10, 10)
	require.NoError(t, err)
	assert.Nil(t, pair)

	pair, err = r.Click(models.PieceFront, 20, 30)
	require.NoError(t, err)
	assert.Nil(t, pair)

	assert.Equal(t, 0, r.Len())
	p, ok := r.Pending()
	require.True(t, ok)
	assert.Equal(t, 20.0, p.X)
	assert.Equal(t, 30.0, p.Y)
	assert.Equal(t, StatePending, r.State())
}

func TestOppositePiecesPairInAnyOrder(t *testing.T) {
	for _, first := range []models.Piece{models.PieceFront, models.PieceBack} {
		t.Run(string(first), func(t *testing.T) {
			r := newRecorder()
			_, err := r.Click(first, 1, 2)
			require.NoError(t, err)
			pair, err := r.Click(first.Opposite(), 3, 4)
			require.NoError(t, err)
			require.NotNil(t, pair)

			assert.Equal(t, models.PieceFront, pair.Front.Piece)
			assert.Equal(t, models.PieceBack, pair.Back.Piece)
			assert.Equal(t, 1, r.Len())
			assert.Equal(t, StateIdle, r.State())

			if first == models.PieceFront {
				assert.Equal(t, 1.0, pair.Front.X)
			} else {
				assert.Equal(t, 1.0, pair.Back.X)
			}
		})
	}
}

func TestIDsAreUniqueAndMonotonic(t *testing.T) {
	r := newRecorder()
	_, _ = r.Click(models.PieceFront, 1, 1)
	pair, err := r.Click(models.PieceBack, 1, 1)
	require.NoError(t, err)
	assert.Less(t, pair.Front.ID, pair.Back.ID)
}

func TestRejectsBadClicks(t *testing.T) {
	r := newRecorder()

	_, err := r.Click("sleeve", 1, 1)
	assert.ErrorIs(t, err, models.ErrInvalidPiece)

	_, err = r.Click(models.PieceFront, math.NaN(), 1)
	assert.ErrorIs(t, err, ErrInvalidPoint)

	_, err = r.Click(models.PieceFront, 401, 1)
	assert.ErrorIs(t, err, ErrOutsideContainer)

	assert.Equal(t, StateIdle, r.State())
}

func makePairs(t *testing.T, r *Recorder, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := r.Click(models.PieceFront, float64(i), 0)
		require.NoError(t, err)
		_, err = r.Click(models.PieceBack, float64(i), 10)
		require.NoError(t, err)
	}
}

func TestRemovePairPreservesOrder(t *testing.T) {
	r := newRecorder()
	makePairs(t, r, 3)
	before := r.Pairs()

	require.NoError(t, r.RemovePair(1))

	after := r.Pairs()
	require.Len(t, after, 2)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[1])

	assert.ErrorIs(t, r.RemovePair(2), ErrIndexOutOfRange)
	assert.ErrorIs(t, r.RemovePair(-1), ErrIndexOutOfRange)
}

func TestRemoveKeepsPending(t *testing.T) {
	r := newRecorder()
	makePairs(t, r, 2)
	_, err := r.Click(models.PieceBack, 5, 5)
	require.NoError(t, err)

	require.NoError(t, r.RemovePair(0))
	_, ok := r.Pending()
	assert.True(t, ok)
}

func TestClearAll(t *testing.T) {
	r := newRecorder()
	makePairs(t, r, 2)
	_, _ = r.Click(models.PieceFront, 5, 5)

	r.ClearAll()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, StateIdle, r.State())
}

func TestPairsReturnsCopy(t *testing.T) {
	r := newRecorder()
	makePairs(t, r, 1)
	pairs := r.Pairs()
	pairs[0].Front.X = 999
	assert.NotEqual(t, 999.0, r.Pairs()[0].Front.X)
}

func TestHint(t *testing.T) {
	r := newRecorder()
	assert.Contains(t, r.Hint(), "corresponding points")
	_, _ = r.Click(models.PieceFront, 1, 1)
	assert.Equal(t, "Now click on the back piece to complete the sewing pair", r.Hint())
}

func TestSubscription(t *testing.T) {
	r := newRecorder()
	var events []Event
	sub := r.Subscribe(func(ev Event) { events = append(events, ev) })

	_, _ = r.Click(models.PieceFront, 1, 1)
	_, _ = r.Click(models.PieceBack, 1, 1)
	require.NoError(t, r.RemovePair(0))
	r.ClearAll()

	require.Len(t, events, 4)
	assert.Equal(t, EventPending, events[0].Kind)
	assert.NotNil(t, events[0].Pending)
	assert.Equal(t, EventPairAdded, events[1].Kind)
	assert.Len(t, events[1].Pairs, 1)
	assert.Equal(t, EventPairRemoved, events[2].Kind)
	assert.Equal(t, EventCleared, events[3].Kind)

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, r.Subscribers())
	_, _ = r.Click(models.PieceFront, 1, 1)
	assert.Len(t, events, 4)
}
