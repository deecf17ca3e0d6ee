package scene

import (
	"fmt"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/coords"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/extrude"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/pairing"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/seam"

	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Scene Composer
// ============================================================

const AdvisoryFewPairs = "Define at least 2 sewing pairs for better 3D visualization"

type piece struct {
	outline models.Outline
	mesh    *models.Mesh
}

// Composer собирает сцену из двух деталей и списка пар. Пересборка ленивая:
// изменения только помечают сцену грязной, Scene() собирает её один раз.
// Как и Recorder, тип не потокобезопасен.
type Composer struct {
	opts     Options
	extruder *extrude.Extruder

	front *piece
	back  *piece
	pairs []models.SewingPair

	sub      *pairing.Subscription
	viewport Viewport

	dirty      bool
	scene      *Scene
	generation uint64
	rebuilds   int
	closed     bool
}

func NewComposer(opts Options) *Composer {
	return &Composer{
		opts:     opts,
		extruder: extrude.New(opts.Depth),
		viewport: opts.Viewport,
		dirty:    true,
	}
}

func (c *Composer) Options() Options {
	return c.opts
}

// SetPiece разбирается с геометрией сразу: выдавливание дорогое, а детали
// меняются редко.
func (c *Composer) SetPiece(side models.Piece, outline models.Outline) error {
	if !side.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidPiece, side)
	}
	if err := outline.ViewBox.Validate(); err != nil {
		return err
	}

	color := c.opts.FrontColor
	if side == models.PieceBack {
		color = c.opts.BackColor
	}
	p := &piece{
		outline: outline,
		mesh:    c.extruder.Extrude(outline, side.String(), c.opts.material(color)),
	}
	if side == models.PieceFront {
		c.front = p
	} else {
		c.back = p
	}
	c.invalidate()
	return nil
}

func (c *Composer) ClearPiece(side models.Piece) {
	switch side {
	case models.PieceFront:
		c.front = nil
	case models.PieceBack:
		c.back = nil
	default:
		return
	}
	c.invalidate()
}

// HasPiece сообщает, загружена ли деталь.
func (c *Composer) HasPiece(side models.Piece) bool {
	if side == models.PieceFront {
		return c.front != nil
	}
	return c.back != nil
}

func (c *Composer) SetPairs(pairs []models.SewingPair) {
	c.pairs = append([]models.SewingPair(nil), pairs...)
	c.invalidate()
}

// Attach подписывает композер на изменения пар. Предыдущая подписка снимается.
func (c *Composer) Attach(r *pairing.Recorder) {
	if c.sub != nil {
		c.sub.Close()
	}
	c.sub = r.Subscribe(func(ev pairing.Event) {
		// Ожидающая точка не меняет список пар, сцену не трогаем.
		if ev.Kind == pairing.EventPending {
			return
		}
		c.SetPairs(ev.Pairs)
	})
	c.SetPairs(r.Pairs())
}

// Resize меняет только вьюпорт, геометрия не пересобирается.
// Размеры больше MaxViewport отклоняются.
func (c *Composer) Resize(width, height int) error {
	if err := c.opts.checkViewport(width, height); err != nil {
		return err
	}
	c.viewport = Viewport{Width: width, Height: height}
	return nil
}

func (c *Composer) Viewport() Viewport {
	return c.viewport
}

func (c *Composer) Dirty() bool {
	return c.dirty
}

func (c *Composer) Generation() uint64 {
	return c.generation
}

// Rebuilds возвращает число фактических пересборок, для проверки коалесинга.
func (c *Composer) Rebuilds() int {
	return c.rebuilds
}

// Mapper возвращает отображение координат для детали. Если деталь не
// загружена, используется viewBox по умолчанию.
func (c *Composer) Mapper(side models.Piece) coords.Mapper {
	vb := c.opts.DefaultViewBox
	p := c.front
	if side == models.PieceBack {
		p = c.back
	}
	if p != nil {
		vb = p.outline.ViewBox
	}
	return coords.New(c.opts.Container, vb)
}

// Outline возвращает разобранный контур детали.
func (c *Composer) Outline(side models.Piece) (models.Outline, bool) {
	p := c.front
	if side == models.PieceBack {
		p = c.back
	}
	if p == nil {
		return models.Outline{}, false
	}
	return p.outline, true
}

// Scene возвращает актуальную сцену, пересобирая её только при изменениях.
func (c *Composer) Scene() *Scene {
	if c.dirty || c.scene == nil {
		c.scene = c.build()
		c.dirty = false
		c.rebuilds++
	}
	return c.scene
}

// Close снимает подписку на пары. Повторный вызов безопасен.
func (c *Composer) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.sub.Close()
	c.sub = nil
}

func (c *Composer) Closed() bool {
	return c.closed
}

func (c *Composer) invalidate() {
	c.dirty = true
	c.generation++
}

// ============================================================
// Build
// ============================================================

func (c *Composer) solver() *seam.Solver {
	s := seam.NewSolver(c.Mapper(models.PieceFront), c.Mapper(models.PieceBack))
	s.FoldAngle = c.opts.FoldAngle
	s.CreaseThickness = c.opts.CreaseThickness
	s.CreaseColor = c.opts.CreaseColor
	return s
}

func (c *Composer) build() *Scene {
	sc := &Scene{
		Generation: c.generation,
		Background: c.opts.Background,
		Camera:     c.opts.Camera,
		Lights:     []Light{c.opts.Ambient, c.opts.Directional},
		Root:       newNode("assembly", KindGroup),
		Pairs:      len(c.pairs),
	}

	switch {
	case c.front == nil || c.back == nil:
		sc.Status = StatusAwaitingPieces
	case len(c.pairs) == 0:
		sc.Status = StatusAwaitingPairs
	default:
		sc.Status = StatusAssembled
	}
	if len(c.pairs) == 1 {
		sc.Advisory = AdvisoryFewPairs
	}

	solver := c.solver()
	if sc.Status == StatusAssembled {
		sc.Seam = solver.Solve(c.pairs)
		if fit, err := solver.Fit(c.pairs); err == nil {
			sc.Fit = fit
		}
	}

	if c.front != nil {
		node := newNode("front", KindMesh)
		node.Mesh = c.front.mesh
		sc.Root.add(node)
	}

	if c.back != nil {
		node := newNode("back", KindMesh)
		node.Mesh = c.back.mesh
		if sc.Seam != nil {
			pivot := newNode("seam-pivot", KindGroup)
			pivot.Position = sc.Seam.Pivot
			pivot.Rotation = seam.Rotation(sc.Seam)
			node.Position = r3.Scale(-1, sc.Seam.Pivot)
			pivot.add(node)
			sc.Root.add(pivot)
		} else {
			sc.Root.add(node)
		}
	}

	if sc.Seam != nil {
		crease := newNode("crease", KindCrease)
		cr := sc.Seam.Crease
		crease.Crease = &cr
		crease.Position = cr.Center
		crease.Rotation = cr.Orientation
		sc.Root.add(crease)
	}

	front, back := solver.Front, solver.Back
	for i, p := range c.pairs {
		if !p.Front.Finite() || !p.Back.Finite() {
			continue
		}
		fp := front.ToWorld(p.Front)
		bp := back.ToWorld(p.Back)

		line := newNode(fmt.Sprintf("pair-%d-line", i), KindLine)
		line.Line = &Line{Start: fp, End: bp, Color: c.opts.LineColor}

		fm := newNode(fmt.Sprintf("pair-%d-front", i), KindMarker)
		fm.Position = fp
		fm.Marker = &Marker{Radius: c.opts.MarkerRadius, Color: c.opts.FrontMarkerColor, Pair: i, Piece: models.PieceFront}

		bm := newNode(fmt.Sprintf("pair-%d-back", i), KindMarker)
		bm.Position = bp
		bm.Marker = &Marker{Radius: c.opts.MarkerRadius, Color: c.opts.BackMarkerColor, Pair: i, Piece: models.PieceBack}

		sc.Root.add(line, fm, bm)
	}

	return sc
}
