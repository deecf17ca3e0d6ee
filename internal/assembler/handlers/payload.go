package handlers

import (
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/scene"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/seam"
	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/service"

	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Requests
// ============================================================

type createSessionRequest struct {
	Container *sizePayload `json:"container"`
}

type clickRequest struct {
	Piece string   `json:"piece"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

type pieceRefRequest struct {
	PieceID string `json:"pieceId"`
}

type viewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ============================================================
// Responses
// ============================================================

type sizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type piecesPayload struct {
	Front bool `json:"front"`
	Back  bool `json:"back"`
}

type sessionPayload struct {
	ID        string              `json:"id"`
	Container sizePayload         `json:"container"`
	Pairs     []models.SewingPair `json:"pairs"`
	Pending   *models.SewingPoint `json:"pending"`
	State     string              `json:"state"`
	Hint      string              `json:"hint"`
	Advisory  string              `json:"advisory,omitempty"`
	Status    string              `json:"status"`
	Pieces    piecesPayload       `json:"pieces"`
}

type clickResponse struct {
	Pair    *models.SewingPair `json:"pair"`
	Session sessionPayload     `json:"session"`
}

type outlinePayload struct {
	Side    string         `json:"side"`
	ViewBox models.ViewBox `json:"viewBox"`
	Shapes  int            `json:"shapes"`
}

type vec [3]float64

// quatPayload хранит поворот как (x, y, z, w).
type quatPayload [4]float64

type cameraPayload struct {
	FOV      float64 `json:"fov"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
	Position vec     `json:"position"`
	Aspect   float64 `json:"aspect"`
}

type lightPayload struct {
	Kind      string  `json:"kind"`
	Color     string  `json:"color"`
	Intensity float64 `json:"intensity"`
	Position  vec     `json:"position"`
}

type meshPayload struct {
	Color       string   `json:"color"`
	Opacity     float64  `json:"opacity"`
	Transparent bool     `json:"transparent"`
	DoubleSided bool     `json:"doubleSided"`
	Vertices    []vec    `json:"vertices"`
	Triangles   [][3]int `json:"triangles"`
}

type linePayload struct {
	Start vec    `json:"start"`
	End   vec    `json:"end"`
	Color string `json:"color"`
}

type markerPayload struct {
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
	Pair   int     `json:"pair"`
	Piece  string  `json:"piece"`
}

type creasePayload struct {
	Center      vec         `json:"center"`
	Direction   vec         `json:"direction"`
	Length      float64     `json:"length"`
	Thickness   float64     `json:"thickness"`
	Orientation quatPayload `json:"orientation"`
	Color       string      `json:"color"`
}

type nodePayload struct {
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Position vec            `json:"position"`
	Rotation quatPayload    `json:"rotation"`
	Mesh     *meshPayload   `json:"mesh,omitempty"`
	Line     *linePayload   `json:"line,omitempty"`
	Marker   *markerPayload `json:"marker,omitempty"`
	Crease   *creasePayload `json:"crease,omitempty"`
	Children []nodePayload  `json:"children,omitempty"`
}

type seamPayload struct {
	FrontSeam  vec           `json:"frontSeam"`
	BackSeam   vec           `json:"backSeam"`
	Pivot      vec           `json:"pivot"`
	Axis       vec           `json:"axis"`
	FoldAngle  float64       `json:"foldAngle"`
	Degenerate bool          `json:"degenerate"`
	Crease     creasePayload `json:"crease"`
}

type fitPayload struct {
	Pairs       int     `json:"pairs"`
	Rotation    float64 `json:"rotation"`
	Translation vec     `json:"translation"`
	RMS         float64 `json:"rms"`
	MaxResidual float64 `json:"maxResidual"`
}

type scenePayload struct {
	Generation uint64         `json:"generation"`
	Status     string         `json:"status"`
	Advisory   string         `json:"advisory,omitempty"`
	Pairs      int            `json:"pairs"`
	Background string         `json:"background"`
	Viewport   sizePayload    `json:"viewport"`
	Camera     cameraPayload  `json:"camera"`
	Lights     []lightPayload `json:"lights"`
	Root       nodePayload    `json:"root"`
	Seam       *seamPayload   `json:"seam"`
	Fit        *fitPayload    `json:"fit"`
}

// ============================================================
// Mapping
// ============================================================

func mapSession(s service.Snapshot) sessionPayload {
	pairs := s.Pairs
	if pairs == nil {
		pairs = []models.SewingPair{}
	}
	return sessionPayload{
		ID:        s.ID,
		Container: sizePayload{Width: s.Container.Width, Height: s.Container.Height},
		Pairs:     pairs,
		Pending:   s.Pending,
		State:     s.State.String(),
		Hint:      s.Hint,
		Advisory:  s.Advisory,
		Status:    string(s.Status),
		Pieces:    piecesPayload{Front: s.Front, Back: s.Back},
	}
}

func mapScene(sc *scene.Scene, vp scene.Viewport) scenePayload {
	out := scenePayload{
		Generation: sc.Generation,
		Status:     string(sc.Status),
		Advisory:   sc.Advisory,
		Pairs:      sc.Pairs,
		Background: sc.Background.Hex(),
		Viewport:   sizePayload{Width: float64(vp.Width), Height: float64(vp.Height)},
		Camera: cameraPayload{
			FOV:      sc.Camera.FOV,
			Near:     sc.Camera.Near,
			Far:      sc.Camera.Far,
			Position: toVec(sc.Camera.Position),
			Aspect:   vp.Aspect(),
		},
		Lights: make([]lightPayload, 0, len(sc.Lights)),
		Root:   mapNode(sc.Root),
	}
	for _, l := range sc.Lights {
		out.Lights = append(out.Lights, lightPayload{
			Kind:      string(l.Kind),
			Color:     l.Color.Hex(),
			Intensity: l.Intensity,
			Position:  toVec(l.Position),
		})
	}
	if sc.Seam != nil {
		out.Seam = &seamPayload{
			FrontSeam:  toVec(sc.Seam.FrontSeam),
			BackSeam:   toVec(sc.Seam.BackSeam),
			Pivot:      toVec(sc.Seam.Pivot),
			Axis:       toVec(sc.Seam.Axis),
			FoldAngle:  sc.Seam.FoldAngle,
			Degenerate: sc.Seam.Degenerate,
			Crease:     mapCrease(sc.Seam.Crease),
		}
	}
	if sc.Fit != nil {
		out.Fit = mapFit(sc.Fit)
	}
	return out
}

func mapNode(n *scene.Node) nodePayload {
	if n == nil {
		return nodePayload{}
	}
	out := nodePayload{
		Name:     n.Name,
		Kind:     string(n.Kind),
		Position: toVec(n.Position),
		Rotation: toQuat(n.Rotation),
	}
	if n.Mesh != nil {
		out.Mesh = mapMesh(n.Mesh)
	}
	if n.Line != nil {
		out.Line = &linePayload{Start: toVec(n.Line.Start), End: toVec(n.Line.End), Color: n.Line.Color.Hex()}
	}
	if n.Marker != nil {
		out.Marker = &markerPayload{
			Radius: n.Marker.Radius,
			Color:  n.Marker.Color.Hex(),
			Pair:   n.Marker.Pair,
			Piece:  n.Marker.Piece.String(),
		}
	}
	if n.Crease != nil {
		cr := mapCrease(*n.Crease)
		out.Crease = &cr
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, mapNode(c))
	}
	return out
}

func mapMesh(m *models.Mesh) *meshPayload {
	out := &meshPayload{
		Color:       m.Material.Color.Hex(),
		Opacity:     m.Material.Opacity,
		Transparent: m.Material.Transparent,
		DoubleSided: m.Material.DoubleSided,
		Vertices:    make([]vec, len(m.Vertices)),
		Triangles:   m.Triangles,
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = toVec(v)
	}
	if out.Triangles == nil {
		out.Triangles = [][3]int{}
	}
	return out
}

func mapCrease(c models.Crease) creasePayload {
	return creasePayload{
		Center:      toVec(c.Center),
		Direction:   toVec(c.Direction),
		Length:      c.Length,
		Thickness:   c.Thickness,
		Orientation: toQuat(c.Orientation),
		Color:       c.Color.Hex(),
	}
}

func mapFit(f *seam.Fit) *fitPayload {
	return &fitPayload{
		Pairs:       f.Pairs,
		Rotation:    f.Rotation,
		Translation: toVec(f.Translation),
		RMS:         f.RMS,
		MaxResidual: f.MaxResidual,
	}
}

func mapOutline(side models.Piece, o *models.Outline) outlinePayload {
	return outlinePayload{Side: side.String(), ViewBox: o.ViewBox, Shapes: len(o.Shapes)}
}

func toVec(v r3.Vec) vec {
	return vec{v.X, v.Y, v.Z}
}

func toQuat(r r3.Rotation) quatPayload {
	return quatPayload{r.Imag, r.Jmag, r.Kmag, r.Real}
}
