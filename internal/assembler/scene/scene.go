package scene

import (
	"math"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/seam"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Scene graph
// ============================================================

type NodeKind string

const (
	KindGroup  NodeKind = "group"
	KindMesh   NodeKind = "mesh"
	KindLine   NodeKind = "line"
	KindMarker NodeKind = "marker"
	KindCrease NodeKind = "crease"
)

type Status string

const (
	StatusAwaitingPieces Status = "awaiting-pieces"
	StatusAwaitingPairs  Status = "awaiting-pairs"
	StatusAssembled      Status = "assembled"
)

// Line: отрезок между парными точками в мировых координатах.
type Line struct {
	Start r3.Vec
	End   r3.Vec
	Color models.Color
}

type Marker struct {
	Radius float64
	Color  models.Color
	Pair   int
	Piece  models.Piece
}

// Node: узел графа сцены. Position и Rotation заданы относительно родителя.
type Node struct {
	Name     string
	Kind     NodeKind
	Position r3.Vec
	Rotation r3.Rotation
	Mesh     *models.Mesh
	Line     *Line
	Marker   *Marker
	Crease   *models.Crease
	Children []*Node
}

func newNode(name string, kind NodeKind) *Node {
	return &Node{Name: name, Kind: kind, Rotation: r3.Rotation{Real: 1}}
}

func (n *Node) add(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Find ищет узел по имени в глубину.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// ============================================================
// Camera, lights, viewport
// ============================================================

type Viewport struct {
	Width  int
	Height int
}

func (v Viewport) Aspect() float64 {
	if v.Height <= 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

// Camera: перспективная камера, смотрит вдоль -Z.
type Camera struct {
	FOV      float64 // градусы по вертикали
	Near     float64
	Far      float64
	Position r3.Vec
}

// Project переводит мировую точку в пиксели вьюпорта. depth растёт от камеры;
// ok=false, если точка вне диапазона near/far.
func (c Camera) Project(p r3.Vec, vp Viewport) (x, y, depth float64, ok bool) {
	rel := r3.Sub(p, c.Position)
	depth = -rel.Z
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}
	f := 1 / math.Tan(c.FOV*math.Pi/360)
	ndcX := rel.X * f / (depth * vp.Aspect())
	ndcY := rel.Y * f / depth
	x = (ndcX + 1) / 2 * float64(vp.Width)
	y = (1 - ndcY) / 2 * float64(vp.Height)
	return x, y, depth, true
}

type LightKind string

const (
	LightAmbient     LightKind = "ambient"
	LightDirectional LightKind = "directional"
)

type Light struct {
	Kind      LightKind
	Color     models.Color
	Intensity float64
	Position  r3.Vec
}

// ============================================================
// Scene
// ============================================================

// Scene: снимок сборки для одного кадра. После выдачи не изменяется.
type Scene struct {
	Generation uint64
	Status     Status
	Background models.Color
	Camera     Camera
	Lights     []Light
	Root       *Node
	Seam       *models.SeamTransform
	Fit        *seam.Fit
	Pairs      int
	Advisory   string
}

// Walk обходит граф и передаёт мировое положение и поворот каждого узла.
func (s *Scene) Walk(fn func(n *Node, pos r3.Vec, rot r3.Rotation)) {
	if s == nil || s.Root == nil {
		return
	}
	walk(s.Root, r3.Vec{}, r3.Rotation{Real: 1}, fn)
}

func walk(n *Node, parentPos r3.Vec, parentRot r3.Rotation, fn func(*Node, r3.Vec, r3.Rotation)) {
	pos := r3.Add(parentPos, parentRot.Rotate(n.Position))
	rot := compose(parentRot, n.Rotation)
	fn(n, pos, rot)
	for _, c := range n.Children {
		walk(c, pos, rot, fn)
	}
}

// compose возвращает поворот a∘b: сначала b, затем a.
func compose(a, b r3.Rotation) r3.Rotation {
	if a == (r3.Rotation{Real: 1}) {
		return b
	}
	if b == (r3.Rotation{Real: 1}) {
		return a
	}
	return r3.Rotation(quat.Mul(quat.Number(a), quat.Number(b)))
}

// WorldVertex переводит локальную вершину в мир по результату Walk.
func WorldVertex(v, pos r3.Vec, rot r3.Rotation) r3.Vec {
	return r3.Add(pos, rot.Rotate(v))
}
