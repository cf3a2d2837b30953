package universe

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/rs/zerolog"
)

var requiredCSVColumns = []string{"symbol", "date", "close"}

// PriceWriter persists daily prices for one asset
type PriceWriter interface {
	UpsertPrices(ctx context.Context, assetID int64, points []domain.PricePoint) (int, error)
}

// ImportResult summarizes a CSV price import
type ImportResult struct {
	UnknownSymbols []string `json:"unknown_symbols"`
	Rows           int      `json:"rows"`
	Imported       int      `json:"imported"`
	Skipped        int      `json:"skipped"`
}

// PriceImporter loads daily prices from CSV with the header
// symbol,date,open,high,low,close,adj_close,volume. Only symbol, date and
// close are required; empty cells are stored as NULL.
type PriceImporter struct {
	catalog   domain.AssetCatalog
	writer    PriceWriter
	validator *PriceValidator
	log       zerolog.Logger
}

// NewPriceImporter creates a new CSV importer
func NewPriceImporter(catalog domain.AssetCatalog, writer PriceWriter, log zerolog.Logger) *PriceImporter {
	return &PriceImporter{
		catalog:   catalog,
		writer:    writer,
		validator: NewPriceValidator(log),
		log:       log.With().Str("component", "price_importer").Logger(),
	}
}

// Import reads all rows, drops those failing validation, and upserts the rest
// per symbol. Rows for symbols missing from the catalog are skipped.
func (imp *PriceImporter) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredCSVColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", c)
		}
	}

	result := &ImportResult{UnknownSymbols: []string{}}
	bySymbol := make(map[string][]domain.PricePoint)
	var order []string

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}
		result.Rows++

		symbol, point, err := parsePriceRecord(record, cols)
		if err != nil {
			imp.log.Warn().Int("line", line).Err(err).Msg("Skipping malformed price row")
			result.Skipped++
			continue
		}
		if _, ok := bySymbol[symbol]; !ok {
			order = append(order, symbol)
		}
		bySymbol[symbol] = append(bySymbol[symbol], point)
	}

	for _, symbol := range order {
		points := bySymbol[symbol]

		asset, err := imp.catalog.GetBySymbol(ctx, symbol)
		if errors.Is(err, domain.ErrNotFound) {
			result.UnknownSymbols = append(result.UnknownSymbols, symbol)
			result.Skipped += len(points)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s: %w", symbol, err)
		}

		valid := imp.validate(symbol, points)
		result.Skipped += len(points) - len(valid)

		n, err := imp.writer.UpsertPrices(ctx, asset.ID, valid)
		if err != nil {
			return nil, fmt.Errorf("failed to store prices for %s: %w", symbol, err)
		}
		result.Imported += n
	}

	imp.log.Info().
		Int("rows", result.Rows).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("Price import finished")
	return result, nil
}

// validate sorts by date and drops points failing validation against the
// last accepted close
func (imp *PriceImporter) validate(symbol string, points []domain.PricePoint) []domain.PricePoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	out := make([]domain.PricePoint, 0, len(points))
	prev := 0.0
	for _, p := range points {
		if ok, reason := imp.validator.ValidatePrice(p, prev); !ok {
			imp.log.Warn().
				Str("symbol", symbol).
				Str("date", p.Date.Format(dateLayout)).
				Str("reason", reason).
				Msg("Rejected price")
			continue
		}
		out = append(out, p)
		prev = p.Close
	}
	return out
}

func parsePriceRecord(record []string, cols map[string]int) (string, domain.PricePoint, error) {
	var p domain.PricePoint
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	symbol := cell("symbol")
	if symbol == "" {
		return "", p, fmt.Errorf("empty symbol")
	}

	date, err := time.Parse(dateLayout, cell("date"))
	if err != nil {
		return "", p, fmt.Errorf("invalid date: %w", err)
	}
	p.Date = date

	if p.Close, err = strconv.ParseFloat(cell("close"), 64); err != nil {
		return "", p, fmt.Errorf("invalid close: %w", err)
	}

	for name, dst := range map[string]**float64{"open": &p.Open, "high": &p.High, "low": &p.Low, "adj_close": &p.AdjClose} {
		v := cell(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", p, fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = &f
	}

	if v := cell("volume"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return "", p, fmt.Errorf("invalid volume: %w", err)
		}
		p.Volume = &n
	}

	return symbol, p, nil
}
