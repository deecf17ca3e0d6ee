package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"path/filepath"
	"strings"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/parser"

	"github.com/google/uuid"
)

// ============================================================
// Piece Library
// ============================================================

var (
	ErrInvalidUpload = errors.New("please upload a valid SVG file")
	ErrInvalidMarkup = errors.New("invalid svg markup")
)

// PieceStore: хранилище загруженных выкроек.
type PieceStore interface {
	Create(ctx context.Context, p *models.StoredPiece) error
	GetByID(ctx context.Context, id string) (*models.StoredPiece, error)
	List(ctx context.Context) ([]models.StoredPiece, error)
	Delete(ctx context.Context, id string) error
}

type Library struct {
	store    PieceStore
	fallback models.ViewBox
}

func NewLibrary(store PieceStore, fallback models.ViewBox) *Library {
	return &Library{store: store, fallback: fallback}
}

// Upload проверяет файл так же, как загрузчик в браузере: svg по имени или
// типу, в теле есть <svg, разметка разбирается.
func (l *Library) Upload(ctx context.Context, filename, contentType string, data []byte) (*models.StoredPiece, error) {
	outline, err := ValidateUpload(filename, contentType, data, l.fallback)
	if err != nil {
		return nil, err
	}

	p := &models.StoredPiece{
		ID:       uuid.NewString(),
		Name:     filepath.Base(filename),
		Markup:   string(data),
		ViewBoxW: outline.ViewBox.Width,
		ViewBoxH: outline.ViewBox.Height,
		Shapes:   len(outline.Shapes),
	}
	if err := l.store.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("[PIECES] stored %s (%s, %d shapes)", p.ID, p.Name, p.Shapes)
	return p, nil
}

func (l *Library) Get(ctx context.Context, id string) (*models.StoredPiece, error) {
	return l.store.GetByID(ctx, id)
}

func (l *Library) List(ctx context.Context) ([]models.StoredPiece, error) {
	return l.store.List(ctx)
}

func (l *Library) Delete(ctx context.Context, id string) error {
	return l.store.Delete(ctx, id)
}

// ValidateUpload возвращает разобранный контур для корректного svg.
func ValidateUpload(filename, contentType string, data []byte, fallback models.ViewBox) (*models.Outline, error) {
	if err := CheckUpload(filename, contentType, data); err != nil {
		return nil, err
	}
	outline, err := parser.ParseSVGString(string(data), fallback)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMarkup, err)
	}
	return outline, nil
}

// CheckUpload делает быструю проверку без разбора разметки.
func CheckUpload(filename, contentType string, data []byte) error {
	if !isSVGFile(filename, contentType) {
		return ErrInvalidUpload
	}
	if !strings.Contains(string(data), "<svg") {
		return fmt.Errorf("%w: no <svg> element", ErrInvalidUpload)
	}
	return nil
}

func isSVGFile(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".svg") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "image/svg+xml"
}
