// Package analysis composes the indicator battery, chart pattern
// classifier, and scoring into a single technical snapshot per symbol.
package analysis

import (
	"context"

	"fno-signals/internal/analysis/indicators"
	"fno-signals/internal/analysis/patterns"
	"fno-signals/internal/analysis/scoring"
	apperrors "fno-signals/internal/errors"
	"fno-signals/internal/models"
)

// TechnicalAnalyzer turns a price history into a TechnicalSnapshot.
type TechnicalAnalyzer struct {
	battery    *indicators.Battery
	classifier *patterns.Classifier
}

// NewTechnicalAnalyzer builds an analyzer with the given worker count
// for the indicator battery.
func NewTechnicalAnalyzer(workers int) *TechnicalAnalyzer {
	return &TechnicalAnalyzer{
		battery:    indicators.NewBattery(workers),
		classifier: patterns.NewClassifier(),
	}
}

// Analyze computes the full snapshot for one symbol. It fails closed
// with an insufficient-data error when the history is too short for
// the slowest lookback.
func (a *TechnicalAnalyzer) Analyze(ctx context.Context, symbol string, candles []models.Candle) (*models.TechnicalSnapshot, error) {
	set, err := a.battery.Compute(ctx, candles)
	if err != nil {
		return nil, &apperrors.DataError{
			DataType: "price_history",
			Symbol:   symbol,
			Message:  "indicator computation failed",
			Err:      err,
		}
	}

	snap := &models.TechnicalSnapshot{
		Symbol:     symbol,
		Indicators: *set,
		Pattern:    a.classifier.Classify(candles),
		Trend:      scoring.TrendOf(set),
		Strength:   scoring.Strength(set),
		Volatility: scoring.Volatility(candles),
	}
	return snap, nil
}
