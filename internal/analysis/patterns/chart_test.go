package patterns

import (
	"testing"
	"time"

	"fno-signals/internal/models"
)

// mkCandles builds a history from parallel high/low/close slices,
// padded to the classifier's minimum with flat bars in a mid range.
func mkCandles(highs, lows, closes []float64) []models.Candle {
	base := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	var candles []models.Candle

	for len(candles)+len(highs) < 20 {
		candles = append(candles, models.Candle{
			Timestamp: base.Add(time.Duration(len(candles)) * 5 * time.Minute),
			Open:      500, High: 505, Low: 495, Close: 500, Volume: 1000,
		})
	}
	for i := range highs {
		candles = append(candles, models.Candle{
			Timestamp: base.Add(time.Duration(len(candles)) * 5 * time.Minute),
			Open:      closes[i], High: highs[i], Low: lows[i], Close: closes[i], Volume: 1000,
		})
	}
	return candles
}

func TestClassifyInsufficientData(t *testing.T) {
	c := NewClassifier()
	candles := mkCandles(nil, nil, nil)[:19]
	if got := c.Classify(candles); got != models.PatternInsufficientData {
		t.Errorf("expected %s, got %s", models.PatternInsufficientData, got)
	}
}

func TestClassifyAscendingTriangle(t *testing.T) {
	// Rising lows under a flat ceiling: highs pinned near 510, lows
	// stepping up from 490.
	highs := []float64{510, 510, 509, 510, 510, 509, 510, 510, 509, 510}
	lows := []float64{490, 492, 493, 495, 496, 498, 499, 500, 501, 502}
	closes := []float64{500, 501, 501, 502, 502, 503, 503, 504, 504, 505}

	c := NewClassifier()
	if got := c.Classify(mkCandles(highs, lows, closes)); got != models.PatternAscendingTriangle {
		t.Errorf("expected %s, got %s", models.PatternAscendingTriangle, got)
	}
}

func TestClassifyDescendingTriangle(t *testing.T) {
	highs := []float64{510, 508, 507, 505, 504, 502, 501, 500, 499, 498}
	lows := []float64{490, 490, 491, 490, 491, 490, 491, 490, 491, 490}
	closes := []float64{495, 494, 494, 493, 493, 492, 492, 491, 491, 491}

	c := NewClassifier()
	if got := c.Classify(mkCandles(highs, lows, closes)); got != models.PatternDescendingTriangle {
		t.Errorf("expected %s, got %s", models.PatternDescendingTriangle, got)
	}
}

func TestClassifyUpwardBreakout(t *testing.T) {
	// Choppy window whose final close presses the window high. The low
	// of the second bar undercuts the first so the triangle rules
	// cannot claim it first.
	highs := []float64{505, 512, 508, 515, 510, 518, 512, 520, 516, 524}
	lows := []float64{495, 490, 498, 500, 496, 505, 500, 508, 504, 515}
	closes := []float64{500, 495, 505, 510, 500, 515, 505, 518, 510, 523}

	c := NewClassifier()
	if got := c.Classify(mkCandles(highs, lows, closes)); got != models.PatternUpwardBreakout {
		t.Errorf("expected %s, got %s", models.PatternUpwardBreakout, got)
	}
}

func TestClassifyDownwardBreakout(t *testing.T) {
	highs := []float64{515, 520, 512, 510, 514, 506, 510, 502, 506, 495}
	lows := []float64{505, 500, 498, 495, 499, 492, 495, 490, 492, 486}
	closes := []float64{510, 505, 505, 500, 505, 495, 500, 492, 495, 487}

	c := NewClassifier()
	if got := c.Classify(mkCandles(highs, lows, closes)); got != models.PatternDownwardBreakout {
		t.Errorf("expected %s, got %s", models.PatternDownwardBreakout, got)
	}
}

func TestClassifyConsolidation(t *testing.T) {
	// Mid-range drift: no triangle geometry, close far from both
	// extremes.
	highs := []float64{520, 512, 515, 511, 514, 512, 515, 511, 513, 512}
	lows := []float64{480, 488, 485, 489, 486, 488, 485, 489, 487, 488}
	closes := []float64{500, 501, 499, 500, 501, 499, 500, 501, 499, 500}

	c := NewClassifier()
	if got := c.Classify(mkCandles(highs, lows, closes)); got != models.PatternConsolidation {
		t.Errorf("expected %s, got %s", models.PatternConsolidation, got)
	}
}
