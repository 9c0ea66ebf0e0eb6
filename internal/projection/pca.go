// Package projection reduces embeddings to two dimensions.
//
// The transform is a principal component projection. Fitting involves no
// randomness, so repeated fits on the same ordered input give the same
// transform. Each axis is oriented so that its largest loading is positive,
// which removes the sign ambiguity of the decomposition.
package projection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/core/ports/driven"
)

// Ensure PCA implements the interface.
var _ driven.Projector = (*PCA)(nil)

// Axes is the number of output dimensions.
const Axes = 2

// MinSamples is the smallest input a transform can be fitted on.
const MinSamples = 2

// varianceEpsilon is the variance below which an axis is treated as empty.
const varianceEpsilon = 1e-12

// PCA fits principal component transforms.
type PCA struct{}

// New creates a PCA projector.
func New() *PCA {
	return &PCA{}
}

// Fit computes a transform from embeddings.
// Axes without variance (identical inputs, one-dimensional input) are zero.
func (p *PCA) Fit(embeddings [][]float32) (*domain.Transform, error) {
	n := len(embeddings)
	if n < MinSamples {
		return nil, fmt.Errorf("%w: need at least %d embeddings, got %d",
			domain.ErrProjectionFailure, MinSamples, n)
	}

	x, err := toDense(embeddings, 0)
	if err != nil {
		return nil, err
	}
	_, d := x.Dims()

	mean := make([]float64, d)
	for j := 0; j < d; j++ {
		mean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, fmt.Errorf("%w: decomposition did not converge", domain.ErrProjectionFailure)
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)
	_, k := vecs.Dims()

	components := make([][]float64, Axes)
	for c := 0; c < Axes; c++ {
		if c >= k || c >= len(vars) || vars[c] <= varianceEpsilon {
			components[c] = make([]float64, d)
			continue
		}
		components[c] = orient(mat.Col(nil, c, &vecs))
	}

	return &domain.Transform{
		Mean:       mean,
		Components: components,
		Samples:    n,
	}, nil
}

// Project maps each embedding through t, preserving order.
func (p *PCA) Project(t *domain.Transform, embeddings [][]float32) ([][2]float64, error) {
	if t == nil || len(t.Components) != Axes {
		return nil, fmt.Errorf("%w: invalid transform", domain.ErrProjectionFailure)
	}
	if len(embeddings) == 0 {
		return [][2]float64{}, nil
	}

	d := t.Dimensions()
	x, err := toDense(embeddings, d)
	if err != nil {
		return nil, err
	}

	n, _ := x.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			x.Set(i, j, x.At(i, j)-t.Mean[j])
		}
	}

	w := mat.NewDense(d, Axes, nil)
	for c := 0; c < Axes; c++ {
		w.SetCol(c, t.Components[c])
	}

	var out mat.Dense
	out.Mul(x, w)

	points := make([][2]float64, n)
	for i := range points {
		points[i] = [2]float64{out.At(i, 0), out.At(i, 1)}
		if !finite(points[i][0]) || !finite(points[i][1]) {
			return nil, fmt.Errorf("%w: non-finite coordinate at %d", domain.ErrProjectionFailure, i)
		}
	}
	return points, nil
}

// toDense copies embeddings into a matrix. A dims of 0 takes the width of
// the first row; every row must match it.
func toDense(embeddings [][]float32, dims int) (*mat.Dense, error) {
	if dims == 0 {
		dims = len(embeddings[0])
	}
	if dims == 0 {
		return nil, fmt.Errorf("%w: empty embedding", domain.ErrProjectionFailure)
	}

	data := make([]float64, 0, len(embeddings)*dims)
	for i, e := range embeddings {
		if len(e) != dims {
			return nil, fmt.Errorf("%w: embedding %d has %d dimensions, expected %d",
				domain.ErrProjectionFailure, i, len(e), dims)
		}
		for _, v := range e {
			f := float64(v)
			if !finite(f) {
				return nil, fmt.Errorf("%w: embedding %d has a non-finite value", domain.ErrProjectionFailure, i)
			}
			data = append(data, f)
		}
	}
	return mat.NewDense(len(embeddings), dims, data), nil
}

// orient flips v so its largest-magnitude entry is positive.
func orient(v []float64) []float64 {
	idx := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[idx]) {
			idx = i
		}
	}
	if v[idx] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
	return v
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
