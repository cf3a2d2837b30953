package optimization

import (
	"fmt"
	"math"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/returns"
	"github.com/aristath/portfolio-advisor/pkg/formulas"
)

// HRPOptimizer performs Hierarchical Risk Parity allocation.
type HRPOptimizer struct{}

// NewHRPOptimizer creates a new HRP optimizer.
func NewHRPOptimizer() *HRPOptimizer {
	return &HRPOptimizer{}
}

type hrpClusterNode struct {
	left    *hrpClusterNode
	right   *hrpClusterNode
	leaves  []int
	minLeaf int
}

func hrpStrategy(in Inputs) (Weights, *StrategyFailure, error) {
	cov := returns.SampleCovariance(in.Returns)
	w, err := NewHRPOptimizer().Optimize(cov, in.Returns.Symbols)
	if err != nil {
		return nil, failure(domain.StrategyHRP, "%v", err), nil
	}
	return w, nil, nil
}

// Optimize runs HRP on a covariance matrix:
//  1. correlation from covariance
//  2. distance d_ij = sqrt((1 - ρ_ij) / 2)
//  3. single-linkage clustering with a deterministic tie-break
//  4. quasi-diagonal leaf order
//  5. recursive bisection, splitting weight inversely to cluster variance
func (hrp *HRPOptimizer) Optimize(covMatrix [][]float64, symbols []string) (Weights, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols provided")
	}
	if len(symbols) == 1 {
		return Weights{symbols[0]: 1.0}, nil
	}
	if len(covMatrix) != len(symbols) {
		return nil, fmt.Errorf("covariance matrix size %d does not match symbols %d", len(covMatrix), len(symbols))
	}

	corr, err := formulas.CorrelationMatrixFromCovariance(covMatrix)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate correlation matrix from covariance: %w", err)
	}
	dist := formulas.CorrelationToDistance(corr)

	root := hrp.buildDendrogram(dist)
	order := hrp.quasiDiagonalOrder(root)
	if len(order) != len(symbols) {
		return nil, fmt.Errorf("invalid HRP order length %d", len(order))
	}

	raw := make([]float64, len(symbols))
	for i := range raw {
		raw[i] = 1.0
	}
	hrp.bisect(raw, covMatrix, order)

	sum := 0.0
	for _, w := range raw {
		sum += w
	}
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("invalid HRP weight sum: %v", sum)
	}

	out := make(Weights, len(symbols))
	for i, s := range symbols {
		out[s] = raw[i] / sum
	}
	return out, nil
}

// Order returns the quasi-diagonal ordering of symbols for a covariance matrix.
func (hrp *HRPOptimizer) Order(covMatrix [][]float64, symbols []string) ([]string, error) {
	corr, err := formulas.CorrelationMatrixFromCovariance(covMatrix)
	if err != nil {
		return nil, err
	}
	idx := hrp.quasiDiagonalOrder(hrp.buildDendrogram(formulas.CorrelationToDistance(corr)))
	out := make([]string, len(idx))
	for i, k := range idx {
		out[i] = symbols[k]
	}
	return out, nil
}

func (hrp *HRPOptimizer) buildDendrogram(dist [][]float64) *hrpClusterNode {
	n := len(dist)
	clusters := make([]*hrpClusterNode, n)
	for i := 0; i < n; i++ {
		clusters[i] = &hrpClusterNode{leaves: []int{i}, minLeaf: i}
	}

	for len(clusters) > 1 {
		bestI, bestJ := 0, 1
		bestD := hrp.singleLinkage(dist, clusters[0], clusters[1])

		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				d := hrp.singleLinkage(dist, clusters[i], clusters[j])
				if d < bestD || (d == bestD && hrp.pairLess(clusters[i], clusters[j], clusters[bestI], clusters[bestJ])) {
					bestD, bestI, bestJ = d, i, j
				}
			}
		}

		left, right := clusters[bestI], clusters[bestJ]
		if right.minLeaf < left.minLeaf {
			left, right = right, left
		}
		leaves := make([]int, 0, len(left.leaves)+len(right.leaves))
		leaves = append(leaves, left.leaves...)
		leaves = append(leaves, right.leaves...)
		merged := &hrpClusterNode{left: left, right: right, leaves: leaves, minLeaf: left.minLeaf}

		next := make([]*hrpClusterNode, 0, len(clusters)-1)
		for k, c := range clusters {
			if k != bestI && k != bestJ {
				next = append(next, c)
			}
		}
		clusters = append(next, merged)
	}

	return clusters[0]
}

// pairLess orders candidate merges by their pair of smallest leaves.
func (hrp *HRPOptimizer) pairLess(a1, b1, a2, b2 *hrpClusterNode) bool {
	x1, y1 := a1.minLeaf, b1.minLeaf
	if y1 < x1 {
		x1, y1 = y1, x1
	}
	x2, y2 := a2.minLeaf, b2.minLeaf
	if y2 < x2 {
		x2, y2 = y2, x2
	}
	if x1 != x2 {
		return x1 < x2
	}
	return y1 < y2
}

func (hrp *HRPOptimizer) singleLinkage(dist [][]float64, a, b *hrpClusterNode) float64 {
	best := math.Inf(1)
	for _, i := range a.leaves {
		for _, j := range b.leaves {
			if dist[i][j] < best {
				best = dist[i][j]
			}
		}
	}
	return best
}

func (hrp *HRPOptimizer) quasiDiagonalOrder(node *hrpClusterNode) []int {
	if node == nil {
		return nil
	}
	if node.left == nil && node.right == nil {
		return []int{node.leaves[0]}
	}
	out := hrp.quasiDiagonalOrder(node.left)
	return append(out, hrp.quasiDiagonalOrder(node.right)...)
}

func (hrp *HRPOptimizer) bisect(weights []float64, cov [][]float64, order []int) {
	if len(order) <= 1 {
		return
	}
	split := len(order) / 2
	left, right := order[:split], order[split:]

	vLeft := hrp.clusterVariance(cov, left)
	vRight := hrp.clusterVariance(cov, right)

	alpha := 0.5
	if vLeft+vRight > 0 {
		alpha = 1.0 - vLeft/(vLeft+vRight)
	}
	alpha = math.Max(0.0, math.Min(1.0, alpha))

	for _, idx := range left {
		weights[idx] *= alpha
	}
	for _, idx := range right {
		weights[idx] *= 1.0 - alpha
	}

	hrp.bisect(weights, cov, left)
	hrp.bisect(weights, cov, right)
}

// clusterVariance is the variance of the cluster's inverse-variance portfolio.
func (hrp *HRPOptimizer) clusterVariance(cov [][]float64, idxs []int) float64 {
	if len(idxs) == 0 {
		return 0.0
	}
	if len(idxs) == 1 {
		return math.Max(cov[idxs[0]][idxs[0]], 0.0)
	}

	variances := make([]float64, len(idxs))
	for k, i := range idxs {
		variances[k] = cov[i][i]
	}
	ivp := formulas.InverseVarianceWeights(variances)

	variance := 0.0
	for a, i := range idxs {
		for b, j := range idxs {
			variance += ivp[a] * cov[i][j] * ivp[b]
		}
	}
	return math.Max(variance, 0.0)
}
