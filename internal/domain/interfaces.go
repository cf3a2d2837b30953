package domain

import (
	"context"
	"time"
)

// AssetFilter restricts a catalog query. Empty slices do not filter.
type AssetFilter struct {
	Markets    []Market
	AssetTypes []AssetType
}

// AssetCatalog provides the active investment universe
type AssetCatalog interface {
	// Query returns active assets matching the filter, ordered by symbol
	Query(ctx context.Context, filter AssetFilter) ([]Asset, error)

	// GetBySymbol returns the asset or ErrNotFound
	GetBySymbol(ctx context.Context, symbol string) (*Asset, error)
}

// PriceMatrixProvider builds price tables from stored price history
type PriceMatrixProvider interface {
	// PriceMatrix returns one column per requested symbol that has stored prices
	// between start and end inclusive. A zero start or end leaves that side open.
	PriceMatrix(ctx context.Context, symbols []string, start, end time.Time) (PriceMatrix, error)
}

// IndicatorProvider exposes the latest economic indicator readings
type IndicatorProvider interface {
	// Latest returns the most recent observation, or nil when never ingested
	Latest(ctx context.Context, indicatorType IndicatorType) (*Indicator, error)
}
