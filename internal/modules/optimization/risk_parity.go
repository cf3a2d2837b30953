package optimization

import (
	"fmt"
	"math"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/returns"
	"github.com/aristath/portfolio-advisor/pkg/formulas"
)

// DefaultRiskParityIterations is the fixed iteration budget of the solver.
const DefaultRiskParityIterations = 100

// RiskParityResult carries the weights and the final spread of risk
// contributions, max_i |RC_i / (σ/n) - 1|.
type RiskParityResult struct {
	Weights  Weights
	Residual float64
}

func riskParityStrategy(in Inputs) (Weights, *StrategyFailure, error) {
	cov := returns.SampleCovariance(in.Returns)
	res, err := RiskParity(cov, in.Returns.Symbols, in.RiskParityIter)
	if err != nil {
		return nil, failure(domain.StrategyRiskParity, "%v", err), nil
	}
	return res.Weights, nil, nil
}

// RiskParity equalizes each asset's contribution to portfolio volatility.
// It starts from inverse-volatility weights and runs a fixed number of
// multiplicative updates w_i *= (σ/n) / RC_i, renormalizing after each.
func RiskParity(covMatrix [][]float64, symbols []string, iterations int) (RiskParityResult, error) {
	n := len(symbols)
	if n == 0 {
		return RiskParityResult{}, fmt.Errorf("no symbols provided")
	}
	if len(covMatrix) != n {
		return RiskParityResult{}, fmt.Errorf("covariance matrix size %d does not match symbols %d", len(covMatrix), n)
	}
	if iterations <= 0 {
		iterations = DefaultRiskParityIterations
	}

	variances := make([]float64, n)
	for i := range variances {
		variances[i] = covMatrix[i][i]
	}
	w, err := formulas.InverseVolatilityWeights(variances)
	if err != nil {
		return RiskParityResult{}, fmt.Errorf("failed to build inverse-volatility start: %w", err)
	}

	for it := 0; it < iterations; it++ {
		vol, rc := riskContributions(covMatrix, w)
		if vol <= 0 || math.IsNaN(vol) {
			return RiskParityResult{}, fmt.Errorf("portfolio volatility is %v at iteration %d", vol, it)
		}
		target := vol / float64(n)
		sum := 0.0
		for i := range w {
			if rc[i] <= 0 {
				return RiskParityResult{}, fmt.Errorf("non-positive risk contribution for %s", symbols[i])
			}
			w[i] *= target / rc[i]
			sum += w[i]
		}
		for i := range w {
			w[i] /= sum
		}
	}

	vol, rc := riskContributions(covMatrix, w)
	target := vol / float64(n)
	residual := 0.0
	for i := range rc {
		residual = math.Max(residual, math.Abs(rc[i]/target-1))
	}

	out := make(Weights, n)
	for i, s := range symbols {
		out[s] = w[i]
	}
	return RiskParityResult{Weights: out, Residual: residual}, nil
}

func riskContributions(cov [][]float64, w []float64) (float64, []float64) {
	n := len(w)
	sw := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sw[i] += cov[i][j] * w[j]
		}
	}
	vol := math.Sqrt(math.Max(dot(w, sw), 0))
	rc := make([]float64, n)
	if vol == 0 {
		return 0, rc
	}
	for i := range rc {
		rc[i] = w[i] * sw[i] / vol
	}
	return vol, rc
}
