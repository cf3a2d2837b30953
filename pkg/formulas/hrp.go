package formulas

import (
	"fmt"
	"math"
)

// CorrelationMatrixFromCovariance calculates the correlation matrix from a covariance matrix.
//
// Formula: corr(i,j) = cov(i,j) / sqrt(cov(i,i) * cov(j,j))
func CorrelationMatrixFromCovariance(cov [][]float64) ([][]float64, error) {
	n := len(cov)
	if n == 0 {
		return nil, fmt.Errorf("empty covariance matrix")
	}
	for i := 0; i < n; i++ {
		if len(cov[i]) != n {
			return nil, fmt.Errorf("covariance matrix is not square")
		}
	}

	sd := make([]float64, n)
	for i := 0; i < n; i++ {
		v := cov[i][i]
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid variance on diagonal at %d: %v", i, v)
		}
		sd[i] = math.Sqrt(v)
	}

	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		corr[i][i] = 1.0
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			val := cov[i][j] / (sd[i] * sd[j])
			val = math.Max(-1.0, math.Min(1.0, val))
			corr[i][j] = val
			corr[j][i] = val
		}
	}

	return corr, nil
}

// CorrelationToDistance converts a correlation matrix to the distance matrix
// d_ij = sqrt((1 - ρ_ij) / 2) used for hierarchical clustering.
func CorrelationToDistance(corr [][]float64) [][]float64 {
	n := len(corr)
	dist := make([][]float64, n)
	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			c := math.Max(-1.0, math.Min(1.0, corr[i][j]))
			dist[i][j] = math.Sqrt(math.Max(0, (1.0-c)/2.0))
		}
	}
	return dist
}

// InverseVolatilityWeights returns weights proportional to 1/sqrt(variance).
func InverseVolatilityWeights(variances []float64) ([]float64, error) {
	if len(variances) == 0 {
		return nil, fmt.Errorf("no variances provided")
	}

	weights := make([]float64, len(variances))
	sum := 0.0
	for i, v := range variances {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid variance at %d: %v", i, v)
		}
		weights[i] = 1.0 / math.Sqrt(v)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights, nil
}

// InverseVarianceWeights returns weights proportional to 1/variance, flooring
// variances at 1e-12.
func InverseVarianceWeights(variances []float64) []float64 {
	const eps = 1e-12
	weights := make([]float64, len(variances))
	sum := 0.0
	for i, v := range variances {
		if v < eps || math.IsNaN(v) {
			v = eps
		}
		weights[i] = 1.0 / v
		sum += weights[i]
	}
	if sum > 0 {
		for i := range weights {
			weights[i] /= sum
		}
	}
	return weights
}
