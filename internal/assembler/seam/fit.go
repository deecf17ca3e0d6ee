package seam

import (
	"errors"
	"math"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ============================================================
// Least-squares seam fit
// ============================================================

var ErrNotEnoughPairs = errors.New("need at least 2 sewing pairs")

// Fit описывает жёсткое 2D-совмещение точек задней детали с точками передней по всем
// парам. Только справка: на размещение деталей не влияет.
type Fit struct {
	Pairs       int
	Rotation    float64 // радианы, против часовой стрелки в мировой плоскости XY
	Translation r3.Vec
	RMS         float64
	MaxResidual float64
}

// Fit считает поворот и сдвиг методом Кабша (SVD ковариационной матрицы).
func (s *Solver) Fit(pairs []models.SewingPair) (*Fit, error) {
	var front, back []r3.Vec
	for _, p := range pairs {
		if !p.Valid() || !p.Front.Finite() || !p.Back.Finite() {
			continue
		}
		front = append(front, s.Front.ToWorld(p.Front))
		back = append(back, s.Back.ToWorld(p.Back))
	}
	if len(front) < 2 {
		return nil, ErrNotEnoughPairs
	}

	cf := centroid(front)
	cb := centroid(back)

	cov := mat.NewDense(2, 2, nil)
	for i := range front {
		b := r3.Sub(back[i], cb)
		f := r3.Sub(front[i], cf)
		cov.Set(0, 0, cov.At(0, 0)+b.X*f.X)
		cov.Set(0, 1, cov.At(0, 1)+b.X*f.Y)
		cov.Set(1, 0, cov.At(1, 0)+b.Y*f.X)
		cov.Set(1, 1, cov.At(1, 1)+b.Y*f.Y)
	}

	var svd mat.SVD
	if !svd.Factorize(cov, mat.SVDFull) {
		return nil, errors.New("svd factorization failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var rot mat.Dense
	rot.Mul(&v, u.T())
	if mat.Det(&rot) < 0 {
		v.Set(0, 1, -v.At(0, 1))
		v.Set(1, 1, -v.At(1, 1))
		rot.Mul(&v, u.T())
	}

	apply := func(p r3.Vec) r3.Vec {
		return r3.Vec{
			X: rot.At(0, 0)*p.X + rot.At(0, 1)*p.Y,
			Y: rot.At(1, 0)*p.X + rot.At(1, 1)*p.Y,
		}
	}

	fit := &Fit{
		Pairs:       len(front),
		Rotation:    math.Atan2(rot.At(1, 0), rot.At(0, 0)),
		Translation: r3.Sub(cf, apply(cb)),
	}

	var sum float64
	for i := range front {
		moved := r3.Add(apply(back[i]), fit.Translation)
		d := r3.Norm(r3.Sub(moved, front[i]))
		sum += d * d
		fit.MaxResidual = math.Max(fit.MaxResidual, d)
	}
	fit.RMS = math.Sqrt(sum / float64(len(front)))
	return fit, nil
}

func centroid(pts []r3.Vec) r3.Vec {
	var c r3.Vec
	for _, p := range pts {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(pts)), c)
}
