package models

import (
	"errors"
	"fmt"
	"math"
)

// ============================================================
// Errors
// ============================================================

var (
	ErrInvalidPiece      = errors.New("invalid piece")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrInvalidPair       = errors.New("invalid sewing pair")
)

// ============================================================
// Pieces
// ============================================================

type Piece string

const (
	PieceFront Piece = "front"
	PieceBack  Piece = "back"
)

// ParsePiece разбирает имя детали, допускаются только front и back.
func ParsePiece(s string) (Piece, error) {
	p := Piece(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPiece, s)
	}
	return p, nil
}

func (p Piece) Valid() bool {
	return p == PieceFront || p == PieceBack
}

// Opposite возвращает парную деталь.
func (p Piece) Opposite() Piece {
	if p == PieceFront {
		return PieceBack
	}
	return PieceFront
}

func (p Piece) String() string {
	return string(p)
}

// ============================================================
// Sewing points & pairs
// ============================================================

// SewingPoint хранит клик в пикселях относительно области своей детали.
// ID нужен только для ключей в UI и никогда не участвует в сравнении.
type SewingPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Piece Piece   `json:"piece"`
	ID    int64   `json:"id"`
}

// Finite сообщает, что обе координаты заданы.
func (p SewingPoint) Finite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// SameLocation сравнивает точки без учета ID.
func (p SewingPoint) SameLocation(o SewingPoint) bool {
	return p.Piece == o.Piece && p.X == o.X && p.Y == o.Y
}

type SewingPair struct {
	Front SewingPoint `json:"front"`
	Back  SewingPoint `json:"back"`
}

// NewSewingPair собирает пару из двух точек на разных деталях в любом порядке.
func NewSewingPair(a, b SewingPoint) (SewingPair, error) {
	if !a.Piece.Valid() || !b.Piece.Valid() {
		return SewingPair{}, fmt.Errorf("%w: unknown piece", ErrInvalidPair)
	}
	if a.Piece == b.Piece {
		return SewingPair{}, fmt.Errorf("%w: both points on %s", ErrInvalidPair, a.Piece)
	}
	if a.Piece == PieceFront {
		return SewingPair{Front: a, Back: b}, nil
	}
	return SewingPair{Front: b, Back: a}, nil
}

// Valid проверяет инвариант пары front/back.
func (p SewingPair) Valid() bool {
	return p.Front.Piece == PieceFront && p.Back.Piece == PieceBack
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
