// Package gbm trains small gradient-boosted regression tree ensembles and
// reports gain-based feature importance. The feature sets it serves are tiny
// (single-digit features, tens of rows), so the trainer favors clarity over
// the cache tricks a general-purpose library would need.
package gbm

import (
	"fmt"
	"math"
	"sort"
)

// Params controls ensemble shape. Zero values are replaced by the defaults.
type Params struct {
	Trees          int
	MaxDepth       int
	LearningRate   float64
	MinSamplesLeaf int
}

// DefaultParams returns the production configuration: 100 trees of depth 3
// with learning rate 0.1.
func DefaultParams() Params {
	return Params{Trees: 100, MaxDepth: 3, LearningRate: 0.1, MinSamplesLeaf: 1}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Trees <= 0 {
		p.Trees = d.Trees
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = d.MaxDepth
	}
	if p.LearningRate <= 0 {
		p.LearningRate = d.LearningRate
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = d.MinSamplesLeaf
	}
	return p
}

// Model is a trained ensemble.
type Model struct {
	base      float64
	rate      float64
	trees     []*node
	nFeatures int
	gains     []float64
}

type node struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *node
	right     *node
}

// Train fits an ensemble to X (rows of feature vectors) predicting y.
// Squared-error loss; each tree fits the residual of the running prediction.
func Train(X [][]float64, y []float64, p Params) (*Model, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("gbm: empty training set")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("gbm: %d feature rows but %d targets", len(X), len(y))
	}
	nFeatures := len(X[0])
	if nFeatures == 0 {
		return nil, fmt.Errorf("gbm: zero-width feature rows")
	}
	for i, row := range X {
		if len(row) != nFeatures {
			return nil, fmt.Errorf("gbm: row %d has %d features, want %d", i, len(row), nFeatures)
		}
	}
	p = p.withDefaults()

	m := &Model{
		base:      mean(y),
		rate:      p.LearningRate,
		nFeatures: nFeatures,
		gains:     make([]float64, nFeatures),
	}

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = m.base
	}
	residual := make([]float64, len(y))
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}

	for t := 0; t < p.Trees; t++ {
		for i := range y {
			residual[i] = y[i] - pred[i]
		}
		tree := m.grow(X, residual, idx, 0, p)
		m.trees = append(m.trees, tree)
		for i := range pred {
			pred[i] += m.rate * tree.predict(X[i])
		}
	}
	return m, nil
}

// Predict scores one feature vector.
func (m *Model) Predict(x []float64) float64 {
	out := m.base
	for _, tree := range m.trees {
		out += m.rate * tree.predict(x)
	}
	return out
}

// Importances returns per-feature split gain normalized to percentages
// summing to 100. A model that never split returns all zeros.
func (m *Model) Importances() []float64 {
	out := make([]float64, m.nFeatures)
	total := 0.0
	for _, g := range m.gains {
		total += g
	}
	if total <= 0 {
		return out
	}
	for i, g := range m.gains {
		out[i] = g / total * 100
	}
	return out
}

func (n *node) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// grow builds one regression tree over the rows in idx, recording split gains
// into the model.
func (m *Model) grow(X [][]float64, r []float64, idx []int, depth int, p Params) *node {
	if depth >= p.MaxDepth || len(idx) < 2*p.MinSamplesLeaf {
		return &node{leaf: true, value: meanAt(r, idx)}
	}

	feature, threshold, gain, ok := bestSplit(X, r, idx, p.MinSamplesLeaf)
	if !ok {
		return &node{leaf: true, value: meanAt(r, idx)}
	}
	m.gains[feature] += gain

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      m.grow(X, r, left, depth+1, p),
		right:     m.grow(X, r, right, depth+1, p),
	}
}

// bestSplit scans every feature for the threshold with the largest
// sum-of-squared-error reduction. Returns ok=false when no split reduces
// error, which turns the node into a leaf.
func bestSplit(X [][]float64, r []float64, idx []int, minLeaf int) (feature int, threshold, gain float64, ok bool) {
	parentSSE := sseAt(r, idx)
	order := make([]int, len(idx))

	for f := 0; f < len(X[idx[0]]); f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		// Running sums over the sorted order let each candidate split be
		// evaluated in constant time.
		total, totalSq := 0.0, 0.0
		for _, i := range order {
			total += r[i]
			totalSq += r[i] * r[i]
		}
		leftSum, leftSq := 0.0, 0.0
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			leftSum += r[i]
			leftSq += r[i] * r[i]

			nl := pos + 1
			nr := len(order) - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			// Identical values cannot be separated by a threshold.
			if X[order[pos]][f] == X[order[pos+1]][f] {
				continue
			}
			leftSSE := leftSq - leftSum*leftSum/float64(nl)
			rightSum := total - leftSum
			rightSSE := (totalSq - leftSq) - rightSum*rightSum/float64(nr)
			g := parentSSE - leftSSE - rightSSE
			if g > gain+1e-12 {
				gain = g
				feature = f
				threshold = (X[order[pos]][f] + X[order[pos+1]][f]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, gain, ok
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func meanAt(v []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += v[i]
	}
	return sum / float64(len(idx))
}

func sseAt(v []float64, idx []int) float64 {
	m := meanAt(v, idx)
	sum := 0.0
	for _, i := range idx {
		d := v[i] - m
		sum += d * d
	}
	if math.IsNaN(sum) {
		return 0
	}
	return sum
}
