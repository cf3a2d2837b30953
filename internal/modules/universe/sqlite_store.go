package universe

import (
	"database/sql"

	"github.com/rs/zerolog"
)

// SQLiteStore combines the SQLite repositories into a Store
type SQLiteStore struct {
	*AssetRepository
	*PriceRepository
	*IndicatorRepository
}

// NewSQLiteStore creates a Store backed by db
func NewSQLiteStore(db *sql.DB, log zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{
		AssetRepository:     NewAssetRepository(db, log),
		PriceRepository:     NewPriceRepository(db, log),
		IndicatorRepository: NewIndicatorRepository(db, log),
	}
}

var _ Store = (*SQLiteStore)(nil)
