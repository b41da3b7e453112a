package analysis

import (
	"context"
	"testing"
	"time"

	apperrors "fno-signals/internal/errors"
	"fno-signals/internal/models"
)

func candleRamp(n int, start, step float64) []models.Candle {
	base := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	price := start
	for i := range candles {
		candles[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * 5 * time.Minute),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1000,
		}
		price += step
	}
	return candles
}

func TestAnalyzeShortHistoryFailsClosed(t *testing.T) {
	analyzer := NewTechnicalAnalyzer(2)

	_, err := analyzer.Analyze(context.Background(), "NIFTY", candleRamp(10, 100, 0.5))
	if !apperrors.Is(err, apperrors.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}

	var dataErr *apperrors.DataError
	if !apperrors.As(err, &dataErr) {
		t.Fatalf("expected DataError, got %T", err)
	}
	if dataErr.Symbol != "NIFTY" {
		t.Errorf("symbol = %s, want NIFTY", dataErr.Symbol)
	}
}

func TestAnalyzeProducesCompleteSnapshot(t *testing.T) {
	analyzer := NewTechnicalAnalyzer(2)

	snap, err := analyzer.Analyze(context.Background(), "NIFTY", candleRamp(60, 100, 0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Symbol != "NIFTY" {
		t.Errorf("symbol = %s, want NIFTY", snap.Symbol)
	}
	if snap.Trend != models.TrendBullish {
		t.Errorf("trend = %s, want bullish for a steady ramp", snap.Trend)
	}
	if snap.Strength < 0 || snap.Strength > 100 {
		t.Errorf("strength = %d, out of range", snap.Strength)
	}
	if snap.Pattern == "" || snap.Volatility == "" {
		t.Error("snapshot must classify pattern and volatility")
	}
	if snap.Indicators.SMA50 <= 0 || snap.Indicators.EMA20 <= 0 {
		t.Error("indicator battery left averages unset")
	}
}
