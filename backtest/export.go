package backtest

import (
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// ExportTrades writes the round trips to a parquet file
func ExportTrades(path string, trades []Trade) error {
	if err := parquet.WriteFile(path, trades); err != nil {
		return fmt.Errorf("export trades to %s: %w", path, err)
	}
	return nil
}

// ReadTrades loads trades written by ExportTrades
func ReadTrades(path string) ([]Trade, error) {
	trades, err := parquet.ReadFile[Trade](path)
	if err != nil {
		return nil, fmt.Errorf("read trades from %s: %w", path, err)
	}
	return trades, nil
}
