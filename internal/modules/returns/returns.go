// Package returns converts price tables into the return and covariance
// estimates consumed by the optimizer and the backtest simulator.
package returns

import (
	"math"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/pkg/formulas"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultMinObservations is the number of price points an asset needs before
// its statistics are trusted.
const DefaultMinObservations = 60

// Matrix holds daily simple returns. Columns[j] is the series for Symbols[j]
// and every column has len(Dates) entries.
type Matrix struct {
	Dates   []time.Time
	Symbols []string
	Columns [][]float64
}

// Rows returns the number of observations
func (m Matrix) Rows() int {
	return len(m.Dates)
}

// Dense returns the matrix as an observations x assets gonum matrix
func (m Matrix) Dense() *mat.Dense {
	n, p := len(m.Dates), len(m.Symbols)
	if n == 0 || p == 0 {
		return nil
	}
	d := mat.NewDense(n, p, nil)
	for j, col := range m.Columns {
		for i, v := range col {
			d.Set(i, j, v)
		}
	}
	return d
}

// FilterMinObservations keeps the symbols with at least min non-missing prices.
// Symbol order is preserved.
func FilterMinObservations(prices domain.PriceMatrix, min int) domain.PriceMatrix {
	keep := make([]string, 0, len(prices.Symbols))
	for _, s := range prices.Symbols {
		if prices.Count(s) >= min {
			keep = append(keep, s)
		}
	}
	return prices.Select(keep)
}

// Clean forward-fills gaps in every column and then drops each row that still
// holds a missing value (dates before a symbol's first price).
func Clean(prices domain.PriceMatrix) domain.PriceMatrix {
	filled := make(map[string][]float64, len(prices.Symbols))
	for _, s := range prices.Symbols {
		src := prices.Columns[s]
		col := make([]float64, len(src))
		last := math.NaN()
		for i, v := range src {
			if !math.IsNaN(v) {
				last = v
			}
			col[i] = last
		}
		filled[s] = col
	}

	out := domain.PriceMatrix{
		Symbols: append([]string(nil), prices.Symbols...),
		Columns: make(map[string][]float64, len(prices.Symbols)),
	}
	for i, d := range prices.Dates {
		complete := true
		for _, s := range prices.Symbols {
			if math.IsNaN(filled[s][i]) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		out.Dates = append(out.Dates, d)
		for _, s := range prices.Symbols {
			out.Columns[s] = append(out.Columns[s], filled[s][i])
		}
	}
	return out
}

// DailyReturns computes row-over-row percentage change. The first row has no
// prior value and is dropped. Input must already be cleaned.
func DailyReturns(prices domain.PriceMatrix) Matrix {
	out := Matrix{Symbols: append([]string(nil), prices.Symbols...)}
	if prices.Len() < 2 {
		out.Columns = make([][]float64, len(prices.Symbols))
		return out
	}
	out.Dates = append([]time.Time(nil), prices.Dates[1:]...)
	out.Columns = make([][]float64, len(prices.Symbols))
	for j, s := range prices.Symbols {
		out.Columns[j] = formulas.CalculateReturns(prices.Columns[s])
	}
	return out
}

// AnnualizedMean returns mean daily return x 252 per symbol
func AnnualizedMean(r Matrix) []float64 {
	mu := make([]float64, len(r.Columns))
	for j, col := range r.Columns {
		mu[j] = formulas.Mean(col) * formulas.TradingDaysPerYear
	}
	return mu
}

// SampleCovariance returns the daily sample covariance (N-1 denominator)
func SampleCovariance(r Matrix) [][]float64 {
	d := r.Dense()
	p := len(r.Symbols)
	if d == nil || r.Rows() < 2 {
		return zeros(p)
	}
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, d, nil)
	return symToSlices(&cov)
}

// AnnualizedCovariance returns the sample covariance x 252
func AnnualizedCovariance(r Matrix) [][]float64 {
	cov := SampleCovariance(r)
	scale(cov, formulas.TradingDaysPerYear)
	return cov
}

// LedoitWolf returns the annualized Ledoit-Wolf shrunk covariance together
// with the shrinkage intensity. The target is the scaled identity mu*I where
// mu is the average sample variance.
func LedoitWolf(r Matrix) ([][]float64, float64) {
	n, p := r.Rows(), len(r.Symbols)
	if n == 0 || p == 0 {
		return zeros(p), 0
	}

	x := r.Dense()
	for j := 0; j < p; j++ {
		m := formulas.Mean(r.Columns[j])
		for i := 0; i < n; i++ {
			x.Set(i, j, x.At(i, j)-m)
		}
	}

	x2 := mat.NewDense(n, p, nil)
	x2.Apply(func(_, _ int, v float64) float64 { return v * v }, x)

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var x2tx2 mat.Dense
	x2tx2.Mul(x2.T(), x2)

	fn, fp := float64(n), float64(p)

	trace := 0.0
	for j := 0; j < p; j++ {
		trace += xtx.At(j, j) / fn
	}
	mu := trace / fp

	delta := 0.0
	beta := 0.0
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			v := xtx.At(i, j)
			delta += v * v
			beta += x2tx2.At(i, j)
		}
	}
	delta /= fn * fn
	beta = (beta/fn - delta) / (fp * fn)
	delta = (delta - 2*mu*trace + fp*mu*mu) / fp
	beta = math.Min(beta, delta)

	shrinkage := 0.0
	if p > 1 && beta > 0 && delta > 0 {
		shrinkage = math.Min(beta/delta, 1)
	}

	cov := make([][]float64, p)
	for i := 0; i < p; i++ {
		cov[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			v := (1 - shrinkage) * xtx.At(i, j) / fn
			if i == j {
				v += shrinkage * mu
			}
			cov[i][j] = v * formulas.TradingDaysPerYear
		}
	}
	return cov, shrinkage
}

func zeros(p int) [][]float64 {
	out := make([][]float64, p)
	for i := range out {
		out[i] = make([]float64, p)
	}
	return out
}

func scale(m [][]float64, f float64) {
	for i := range m {
		for j := range m[i] {
			m[i][j] *= f
		}
	}
}

func symToSlices(s *mat.SymDense) [][]float64 {
	p := s.SymmetricDim()
	out := make([][]float64, p)
	for i := 0; i < p; i++ {
		out[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			out[i][j] = s.At(i, j)
		}
	}
	return out
}
