package optimization

import "math"

const projectionIterations = 100

// projectCappedSimplex returns the Euclidean projection of x onto
// {w : sum(w) = 1, 0 <= w_i <= upper}, which is w_i = clip(x_i - tau, 0, upper)
// with tau chosen so that sum(w) = 1. Requires len(x)*upper >= 1.
func projectCappedSimplex(x []float64, upper float64) []float64 {
	n := len(x)
	lo, hi := x[0], x[0]
	for _, v := range x {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	// sum is n*upper at lo-upper and 0 at hi.
	lo -= upper

	sumAt := func(tau float64) float64 {
		s := 0.0
		for _, v := range x {
			s += math.Max(0, math.Min(upper, v-tau))
		}
		return s
	}

	for k := 0; k < projectionIterations; k++ {
		mid := 0.5 * (lo + hi)
		if sumAt(mid) > 1 {
			lo = mid
		} else {
			hi = mid
		}
	}
	tau := 0.5 * (lo + hi)

	w := make([]float64, n)
	total := 0.0
	for i, v := range x {
		w[i] = math.Max(0, math.Min(upper, v-tau))
		total += w[i]
	}
	// Remove the residual bisection error.
	if total > 0 {
		for i := range w {
			w[i] = math.Min(upper, w[i]/total)
		}
	}
	return w
}

// pgSettings bounds a projected gradient run.
type pgSettings struct {
	MaxIterations int
	Tolerance     float64
	InitialStep   float64
}

func defaultPGSettings() pgSettings {
	return pgSettings{
		MaxIterations: 20000,
		Tolerance:     1e-10,
		InitialStep:   1.0,
	}
}

type pgResult struct {
	W          []float64
	F          float64
	Iterations int
	Converged  bool
}

// minimizeOnCappedSimplex runs monotone accelerated projected gradient descent
// (w <- P(y - eta*grad f(y))) over the capped simplex. The step is found by
// backtracking on the quadratic upper bound at y, and momentum is reset
// whenever a step fails to lower f, so f(w) never increases across
// iterations. start must be feasible.
func minimizeOnCappedSimplex(
	f func(w []float64) float64,
	grad func(g, w []float64),
	start []float64,
	upper float64,
	settings pgSettings,
) pgResult {
	n := len(start)
	x := append([]float64(nil), start...)
	fx := f(x)
	y := append([]float64(nil), x...)
	g := make([]float64, n)
	trial := make([]float64, n)
	t := 1.0
	eta := settings.InitialStep
	const minStep = 1e-20

	res := pgResult{}
	for k := 0; k < settings.MaxIterations; k++ {
		res.Iterations = k + 1
		restarted := sameVector(x, y)

		fy := f(y)
		grad(g, y)

		var z []float64
		var fz float64
		for {
			for i := range trial {
				trial[i] = y[i] - eta*g[i]
			}
			z = projectCappedSimplex(trial, upper)
			fz = f(z)

			lin, sq := 0.0, 0.0
			for i := range z {
				d := z[i] - y[i]
				lin += g[i] * d
				sq += d * d
			}
			if fz <= fy+lin+sq/(2*eta) || eta < minStep {
				break
			}
			eta /= 2
		}

		if !(fz < fx) {
			if restarted {
				// A plain gradient step from x made no progress: x is stationary.
				res.Converged = true
				break
			}
			copy(y, x)
			t = 1
			continue
		}

		step := 0.0
		for i := range z {
			step = math.Max(step, math.Abs(z[i]-x[i]))
		}

		tNext := (1 + math.Sqrt(1+4*t*t)) / 2
		beta := (t - 1) / tNext
		for i := range y {
			y[i] = z[i] + beta*(z[i]-x[i])
		}
		copy(x, z)
		fx = fz
		t = tNext
		eta *= 1.5

		if step < settings.Tolerance {
			res.Converged = true
			break
		}
	}

	res.W = x
	res.F = fx
	return res
}

func sameVector(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
