package backtest

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
)

type series struct {
	dates  []time.Time
	values []float64
}

// memoryPrices builds date-union matrices from per-symbol series
type memoryPrices struct {
	data map[string]series
}

func (m *memoryPrices) PriceMatrix(ctx context.Context, symbols []string, start, end time.Time) (domain.PriceMatrix, error) {
	byDate := map[time.Time]map[string]float64{}
	var present []string
	for _, s := range symbols {
		ser, ok := m.data[s]
		if !ok {
			continue
		}
		found := false
		for i, d := range ser.dates {
			if (!start.IsZero() && d.Before(start)) || (!end.IsZero() && d.After(end)) {
				continue
			}
			if byDate[d] == nil {
				byDate[d] = map[string]float64{}
			}
			byDate[d][s] = ser.values[i]
			found = true
		}
		if found {
			present = append(present, s)
		}
	}

	out := domain.PriceMatrix{Symbols: present, Columns: map[string][]float64{}}
	for d := range byDate {
		out.Dates = append(out.Dates, d)
	}
	sort.Slice(out.Dates, func(i, j int) bool { return out.Dates[i].Before(out.Dates[j]) })
	for _, s := range present {
		col := make([]float64, len(out.Dates))
		for i, d := range out.Dates {
			v, ok := byDate[d][s]
			if !ok {
				v = math.NaN()
			}
			col[i] = v
		}
		out.Columns[s] = col
	}
	return out, nil
}

func dailyDates(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func growing(n int, start, rate float64) []float64 {
	out := make([]float64, n)
	v := start
	for i := range out {
		out[i] = v
		v *= 1 + rate
	}
	return out
}

func matrixOf(dates []time.Time, cols map[string][]float64, symbols ...string) domain.PriceMatrix {
	return domain.PriceMatrix{Dates: dates, Symbols: symbols, Columns: cols}
}
