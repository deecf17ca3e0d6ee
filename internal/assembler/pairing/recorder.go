package pairing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
)

// ============================================================
// Pair Recorder
// ============================================================

var (
	ErrIndexOutOfRange  = errors.New("pair index out of range")
	ErrOutsideContainer = errors.New("click outside container")
	ErrInvalidPoint     = errors.New("invalid click coordinates")
)

type State int

const (
	StateIdle State = iota
	StatePending
)

func (s State) String() string {
	if s == StatePending {
		return "pending"
	}
	return "idle"
}

// Recorder превращает поток кликов в пары front/back.
// Тип не потокобезопасен: владелец обязан сериализовать вызовы.
type Recorder struct {
	container models.ContainerGeometry
	pairs     []models.SewingPair
	pending   *models.SewingPoint
	clock     func() time.Time
	lastID    int64
	subs      map[int]func(Event)
	nextSub   int
}

type Option func(*Recorder)

// WithClock подменяет источник времени для ID точек.
func WithClock(clock func() time.Time) Option {
	return func(r *Recorder) {
		r.clock = clock
	}
}

func New(container models.ContainerGeometry, opts ...Option) *Recorder {
	r := &Recorder{
		container: container,
		clock:     time.Now,
		subs:      make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Click обрабатывает клик по детали. Возвращает созданную пару, если клик
// завершил её, иначе nil.
func (r *Recorder) Click(piece models.Piece, x, y float64) (*models.SewingPair, error) {
	if !piece.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidPiece, piece)
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return nil, ErrInvalidPoint
	}
	if !r.container.Contains(x, y) {
		return nil, fmt.Errorf("%w: (%g, %g)", ErrOutsideContainer, x, y)
	}

	point := models.SewingPoint{X: x, Y: y, Piece: piece, ID: r.nextID()}

	if r.pending == nil || r.pending.Piece == piece {
		r.pending = &point
		r.notify(EventPending)
		return nil, nil
	}

	pair, err := models.NewSewingPair(*r.pending, point)
	if err != nil {
		return nil, err
	}
	r.pairs = append(r.pairs, pair)
	r.pending = nil
	r.notify(EventPairAdded)
	return &pair, nil
}

// RemovePair удаляет пару по индексу, остальные сдвигаются без перестановок.
// Ожидающая точка не затрагивается.
func (r *Recorder) RemovePair(index int) error {
	if index < 0 || index >= len(r.pairs) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(r.pairs))
	}
	next := make([]models.SewingPair, 0, len(r.pairs)-1)
	next = append(next, r.pairs[:index]...)
	next = append(next, r.pairs[index+1:]...)
	r.pairs = next
	r.notify(EventPairRemoved)
	return nil
}

// ClearAll очищает последовательность и возвращает автомат в Idle.
func (r *Recorder) ClearAll() {
	r.pairs = nil
	r.pending = nil
	r.notify(EventCleared)
}

// Pairs возвращает копию последовательности.
func (r *Recorder) Pairs() []models.SewingPair {
	out := make([]models.SewingPair, len(r.pairs))
	copy(out, r.pairs)
	return out
}

func (r *Recorder) Len() int {
	return len(r.pairs)
}

func (r *Recorder) Pending() (models.SewingPoint, bool) {
	if r.pending == nil {
		return models.SewingPoint{}, false
	}
	return *r.pending, true
}

func (r *Recorder) State() State {
	if r.pending != nil {
		return StatePending
	}
	return StateIdle
}

func (r *Recorder) Container() models.ContainerGeometry {
	return r.container
}

// Hint возвращает подсказку для 2D-вида.
func (r *Recorder) Hint() string {
	if r.pending == nil {
		return "Click on corresponding points in both pieces to create sewing pairs"
	}
	return fmt.Sprintf("Now click on the %s piece to complete the sewing pair", r.pending.Piece.Opposite())
}

// nextID выдаёт монотонный ID на основе миллисекунд.
func (r *Recorder) nextID() int64 {
	id := r.clock().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return id
}
