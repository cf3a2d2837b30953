package backtest

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderChart(t *testing.T) {
	svc := newTestService(map[string]series{"AAA": trailing(300, 100, 0.0005)})
	res, err := svc.Run(context.Background(), Request{
		Allocations: []TargetWeight{{Symbol: "AAA", Weight: 1}},
	})
	require.NoError(t, err)

	png, err := RenderChart(res)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestRenderChart_TooFewPoints(t *testing.T) {
	_, err := RenderChart(&Result{TimeSeries: []TimeSeriesPoint{{Date: "2024-01-01", Value: 1}}})
	assert.Error(t, err)

	_, err = RenderChart(nil)
	assert.Error(t, err)
}
