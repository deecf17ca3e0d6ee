package models

// ============================================================
// Piece library
// ============================================================

// StoredPiece: загруженная выкройка в библиотеке.
type StoredPiece struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Markup    string  `json:"-"`
	ViewBoxW  float64 `json:"viewBoxWidth"`
	ViewBoxH  float64 `json:"viewBoxHeight"`
	Shapes    int     `json:"shapes"`
	CreatedAt string  `json:"created_at"`
}
