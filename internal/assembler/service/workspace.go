package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/mapper"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/pairing"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/parser"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/scene"
)

// ============================================================
// Workspace
// ============================================================

// Workspace: одна сессия сборки. Recorder, Composer и поверхность живут
// в горутине цикла; снаружи к ним обращаются только через loop.Do.
type Workspace struct {
	ID        string
	CreatedAt time.Time

	recorder *pairing.Recorder
	composer *scene.Composer
	surface  *mapper.RasterSurface
	overlay  *mapper.OverlayRenderer
	loop     *scene.Loop
	cancel   context.CancelFunc
	markup   map[models.Piece]string
}

// Snapshot: состояние сессии для ответа клиенту.
type Snapshot struct {
	ID        string
	Container models.ContainerGeometry
	Pairs     []models.SewingPair
	Pending   *models.SewingPoint
	State     pairing.State
	Hint      string
	Advisory  string
	Status    scene.Status
	Front     bool
	Back      bool
}

func newWorkspace(id string, opts scene.Options) *Workspace {
	composer := scene.NewComposer(opts)
	recorder := pairing.New(opts.Container)
	composer.Attach(recorder)

	surface := mapper.NewRasterSurface()
	ctx, cancel := context.WithCancel(context.Background())

	w := &Workspace{
		ID:        id,
		CreatedAt: time.Now(),
		recorder:  recorder,
		composer:  composer,
		surface:   surface,
		overlay:   mapper.NewOverlayRenderer(),
		loop:      scene.NewLoop(composer, surface, opts.FrameInterval),
		cancel:    cancel,
		markup:    make(map[models.Piece]string),
	}

	go func() {
		if err := w.loop.Run(ctx); err != nil {
			log.Printf("[SESSION] %s loop: %v", id, err)
		}
	}()
	return w
}

// SetPiece разбирает разметку вне цикла и подставляет деталь в сцену.
func (w *Workspace) SetPiece(ctx context.Context, side models.Piece, markup string) (*models.Outline, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidPiece, side)
	}
	outline, err := parser.ParseSVGString(markup, w.composer.Options().DefaultViewBox)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMarkup, err)
	}

	err = w.loop.Do(ctx, func(c *scene.Composer) error {
		if err := c.SetPiece(side, *outline); err != nil {
			return err
		}
		w.markup[side] = markup
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[SESSION] %s: %s piece set, %d shapes", w.ID, side, len(outline.Shapes))
	return outline, nil
}

// ClearPiece убирает деталь из сцены.
func (w *Workspace) ClearPiece(ctx context.Context, side models.Piece) error {
	if !side.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidPiece, side)
	}
	return w.loop.Do(ctx, func(c *scene.Composer) error {
		c.ClearPiece(side)
		delete(w.markup, side)
		return nil
	})
}

// Click передаёт клик автомату пар. Возвращает созданную пару или nil.
func (w *Workspace) Click(ctx context.Context, piece models.Piece, x, y float64) (*models.SewingPair, Snapshot, error) {
	var pair *models.SewingPair
	var snap Snapshot
	err := w.loop.Do(ctx, func(c *scene.Composer) error {
		var err error
		pair, err = w.recorder.Click(piece, x, y)
		if err != nil {
			return err
		}
		snap = w.snapshot(c)
		return nil
	})
	return pair, snap, err
}

func (w *Workspace) RemovePair(ctx context.Context, index int) (Snapshot, error) {
	var snap Snapshot
	err := w.loop.Do(ctx, func(c *scene.Composer) error {
		if err := w.recorder.RemovePair(index); err != nil {
			return err
		}
		snap = w.snapshot(c)
		return nil
	})
	return snap, err
}

func (w *Workspace) ClearAll(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := w.loop.Do(ctx, func(c *scene.Composer) error {
		w.recorder.ClearAll()
		snap = w.snapshot(c)
		return nil
	})
	return snap, err
}

func (w *Workspace) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := w.loop.Do(ctx, func(c *scene.Composer) error {
		snap = w.snapshot(c)
		return nil
	})
	return snap, err
}

// Scene возвращает актуальную сцену. Сцена неизменяема после сборки,
// поэтому её можно читать вне цикла.
func (w *Workspace) Scene(ctx context.Context) (*scene.Scene, scene.Viewport, error) {
	var sc *scene.Scene
	var vp scene.Viewport
	err := w.loop.Do(ctx, func(c *scene.Composer) error {
		sc = c.Scene()
		vp = c.Viewport()
		return nil
	})
	return sc, vp, err
}

func (w *Workspace) Resize(ctx context.Context, width, height int) error {
	return w.loop.Do(ctx, func(c *scene.Composer) error {
		return c.Resize(width, height)
	})
}

// Overlay рисует 2D-вид кликов; highlight < 0 отключает подсветку.
func (w *Workspace) Overlay(ctx context.Context, highlight int) (string, error) {
	var in mapper.Overlay
	err := w.loop.Do(ctx, func(*scene.Composer) error {
		in = mapper.Overlay{
			Container:   w.recorder.Container(),
			FrontMarkup: w.markup[models.PieceFront],
			BackMarkup:  w.markup[models.PieceBack],
			Pairs:       w.recorder.Pairs(),
			Highlight:   highlight,
		}
		if p, ok := w.recorder.Pending(); ok {
			in.Pending = &p
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return w.overlay.Render(in)
}

// PreviewPNG дорисовывает кадр, если он устарел, и кодирует его.
func (w *Workspace) PreviewPNG(ctx context.Context) ([]byte, error) {
	if err := w.loop.Flush(ctx); err != nil {
		return nil, err
	}
	var data []byte
	err := w.loop.Do(ctx, func(*scene.Composer) error {
		var err error
		data, err = w.surface.PNG()
		return err
	})
	return data, err
}

// Close останавливает цикл и ждёт освобождения поверхности.
func (w *Workspace) Close() {
	w.cancel()
	<-w.loop.Done()
}

func (w *Workspace) snapshot(c *scene.Composer) Snapshot {
	snap := Snapshot{
		ID:        w.ID,
		Container: w.recorder.Container(),
		Pairs:     w.recorder.Pairs(),
		State:     w.recorder.State(),
		Hint:      w.recorder.Hint(),
		Front:     c.HasPiece(models.PieceFront),
		Back:      c.HasPiece(models.PieceBack),
	}
	if p, ok := w.recorder.Pending(); ok {
		snap.Pending = &p
	}
	sc := c.Scene()
	snap.Status = sc.Status
	snap.Advisory = sc.Advisory
	return snap
}
