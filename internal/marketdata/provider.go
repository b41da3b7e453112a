// Package marketdata provides access to option chains, price history,
// and spot quotes.
package marketdata

import (
	"context"

	"fno-signals/internal/models"
)

// Provider supplies the market data the signal pipeline consumes.
// Implementations must be safe for concurrent use.
type Provider interface {
	// GetOptionChain returns the current-expiry option chain snapshot
	// for the underlying.
	GetOptionChain(ctx context.Context, symbol string) (*models.OptionChain, error)

	// GetPriceHistory returns intraday candles for the underlying over
	// the lookback window, oldest first.
	GetPriceHistory(ctx context.Context, symbol string, days int) ([]models.Candle, error)

	// GetSpotPrice returns the last traded price of the underlying.
	GetSpotPrice(ctx context.Context, symbol string) (float64, error)
}
