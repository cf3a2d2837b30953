package backtest

import (
	"fmt"

	"github.com/aristath/portfolio-advisor/pkg/formulas"
	"github.com/vicanso/go-charts/v2"
)

// ChartMovingAveragePeriod is the window of the trend overlay, in sampled points.
const ChartMovingAveragePeriod = 20

// RenderChart draws the sampled portfolio value with a moving-average overlay
// and returns PNG bytes.
func RenderChart(res *Result) ([]byte, error) {
	if res == nil || len(res.TimeSeries) < 2 {
		return nil, fmt.Errorf("not enough points to chart")
	}

	labels := make([]string, len(res.TimeSeries))
	values := make([]float64, len(res.TimeSeries))
	for i, p := range res.TimeSeries {
		labels[i] = p.Date
		values[i] = p.Value
	}
	trend := formulas.MovingAverage(values, ChartMovingAveragePeriod)

	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	padding := (maxVal - minVal) * 0.05
	if padding == 0 {
		padding = maxVal * 0.05
	}
	yMin := minVal - padding
	yMax := maxVal + padding

	splitNum := 6
	if len(labels) <= 30 {
		splitNum = len(labels) / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	title := fmt.Sprintf("Backtest %s - %s", res.Period.Start, res.Period.End)
	subtitle := fmt.Sprintf("Return: %.2f%% | CAGR: %.2f%% | MaxDD: %.2f%%",
		res.Metrics.TotalReturn*100, res.Metrics.CAGR*100, res.Metrics.MaxDrawdown*100)

	p, err := charts.LineRender(
		[][]float64{values, trend},
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: []string{"Portfolio", fmt.Sprintf("SMA %d", ChartMovingAveragePeriod)},
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
