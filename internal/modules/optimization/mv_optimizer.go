package optimization

import (
	"fmt"
	"math"
	"sort"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/returns"
	"gonum.org/v1/gonum/mat"
)

// MVOptimizer solves long-only mean-variance problems with a per-asset cap.
//
// Both objectives are minimized directly in weight space by projected
// gradient descent onto {w : sum(w) = 1, 0 <= w_i <= cap}, so every iterate
// is feasible and bound coordinates can leave the bound again.
type MVOptimizer struct {
	settings pgSettings
}

// NewMVOptimizer creates a new mean-variance optimizer.
func NewMVOptimizer() *MVOptimizer {
	return &MVOptimizer{settings: defaultPGSettings()}
}

func minVolatilityStrategy(in Inputs) (Weights, *StrategyFailure, error) {
	cov, _ := returns.LedoitWolf(in.Returns)
	w, err := NewMVOptimizer().MinVolatility(cov, in.Returns.Symbols, in.MaxWeight)
	if err != nil {
		return nil, failure(domain.StrategyMinVolatility, "%v", err), nil
	}
	return w, nil, nil
}

func maxSharpeStrategy(in Inputs) (Weights, *StrategyFailure, error) {
	mu := returns.AnnualizedMean(in.Returns)
	cov, _ := returns.LedoitWolf(in.Returns)
	w, err := NewMVOptimizer().MaxSharpe(mu, cov, in.Returns.Symbols, in.MaxWeight, in.RiskFreeRate)
	if err != nil {
		return nil, failure(domain.StrategyMaxSharpe, "%v", err), nil
	}
	return w, nil, nil
}

// MinVolatility minimizes w'Σw.
func (mvo *MVOptimizer) MinVolatility(covMatrix [][]float64, symbols []string, maxWeight float64) (Weights, error) {
	sigma, err := mvo.checkInputs(covMatrix, symbols, maxWeight)
	if err != nil {
		return nil, err
	}
	n := len(symbols)

	f := func(w []float64) float64 {
		return quadForm(sigma, w)
	}
	grad := func(g, w []float64) {
		sw := mulVec(sigma, w)
		for i := range g {
			g[i] = 2 * sw[i]
		}
	}

	settings := mvo.settings
	// The gradient is Lipschitz with constant 2*λmax <= 2*trace(Σ).
	if tr := mat.Trace(sigma); tr > 0 {
		settings.InitialStep = 1 / (2 * tr)
	}

	return mvo.solve(f, grad, equalStart(n), symbols, maxWeight, settings)
}

// MaxSharpe maximizes (μ'w - r_f) / sqrt(w'Σw).
//
// On the region where μ'w > r_f the Sharpe ratio is pseudo-concave, so a
// stationary point reached by monotone descent from a start inside that
// region is the global optimum.
func (mvo *MVOptimizer) MaxSharpe(
	expectedReturns []float64,
	covMatrix [][]float64,
	symbols []string,
	maxWeight float64,
	riskFreeRate float64,
) (Weights, error) {
	sigma, err := mvo.checkInputs(covMatrix, symbols, maxWeight)
	if err != nil {
		return nil, err
	}
	n := len(symbols)
	if len(expectedReturns) != n {
		return nil, fmt.Errorf("expected returns size %d doesn't match symbols count %d", len(expectedReturns), n)
	}
	for i, m := range expectedReturns {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return nil, fmt.Errorf("expected return for %s is not finite", symbols[i])
		}
	}

	start := equalStart(n)
	if dot(expectedReturns, start) <= riskFreeRate {
		start = maxReturnPortfolio(expectedReturns, maxWeight)
	}
	if dot(expectedReturns, start) <= riskFreeRate {
		return nil, fmt.Errorf("no portfolio within the weight cap has an expected return above the risk-free rate %.4f", riskFreeRate)
	}

	const minVol = 1e-12

	f := func(w []float64) float64 {
		vol := math.Sqrt(math.Max(quadForm(sigma, w), 0))
		if vol < minVol {
			vol = minVol
		}
		return -(dot(expectedReturns, w) - riskFreeRate) / vol
	}
	grad := func(g, w []float64) {
		sw := mulVec(sigma, w)
		vol := math.Sqrt(math.Max(dot(w, sw), 0))
		if vol < minVol {
			vol = minVol
		}
		excess := dot(expectedReturns, w) - riskFreeRate
		for i := range g {
			g[i] = -(expectedReturns[i]/vol - excess*sw[i]/(vol*vol*vol))
		}
	}

	return mvo.solve(f, grad, start, symbols, maxWeight, mvo.settings)
}

func (mvo *MVOptimizer) checkInputs(covMatrix [][]float64, symbols []string, maxWeight float64) (*mat.SymDense, error) {
	n := len(symbols)
	if n == 0 {
		return nil, fmt.Errorf("no symbols provided")
	}
	if len(covMatrix) != n {
		return nil, fmt.Errorf("covariance matrix size %d doesn't match symbols count %d", len(covMatrix), n)
	}
	for i := range covMatrix {
		if len(covMatrix[i]) != n {
			return nil, fmt.Errorf("covariance matrix row %d has size %d, expected %d", i, len(covMatrix[i]), n)
		}
	}
	if maxWeight <= 0 || float64(n)*maxWeight < 1-1e-9 {
		return nil, fmt.Errorf("infeasible weight cap %.4f for %d assets", maxWeight, n)
	}

	sigma := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := covMatrix[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("covariance matrix has non-finite entry at (%d,%d)", i, j)
			}
			sigma.SetSym(i, j, v)
		}
	}
	return sigma, nil
}

func (mvo *MVOptimizer) solve(
	f func([]float64) float64,
	grad func(g, w []float64),
	start []float64,
	symbols []string,
	maxWeight float64,
	settings pgSettings,
) (Weights, error) {
	res := minimizeOnCappedSimplex(f, grad, start, maxWeight, settings)
	if math.IsNaN(res.F) || math.IsInf(res.F, 0) {
		return nil, fmt.Errorf("optimization produced a non-finite objective after %d iterations", res.Iterations)
	}

	weights := make(Weights, len(symbols))
	for i, s := range symbols {
		w := res.W[i]
		if math.IsNaN(w) {
			return nil, fmt.Errorf("optimization produced a non-finite weight for %s", s)
		}
		weights[s] = math.Max(0, w)
	}
	return weights, nil
}

func equalStart(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}
	return w
}

// maxReturnPortfolio fills the highest expected returns up to the cap, which
// maximizes μ'w over the capped simplex.
func maxReturnPortfolio(expectedReturns []float64, maxWeight float64) []float64 {
	n := len(expectedReturns)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return expectedReturns[order[a]] > expectedReturns[order[b]]
	})

	w := make([]float64, n)
	remaining := 1.0
	for _, i := range order {
		if remaining <= 0 {
			break
		}
		w[i] = math.Min(maxWeight, remaining)
		remaining -= w[i]
	}
	return w
}

func mulVec(sigma *mat.SymDense, w []float64) []float64 {
	var out mat.VecDense
	out.MulVec(sigma, mat.NewVecDense(len(w), w))
	return out.RawVector().Data
}

func quadForm(sigma *mat.SymDense, w []float64) float64 {
	v := mat.NewVecDense(len(w), w)
	return mat.Inner(v, sigma, v)
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
