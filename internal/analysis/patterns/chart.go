// Package patterns provides heuristic chart pattern classification.
package patterns

import (
	"math"

	"fno-signals/internal/models"
)

// Classifier labels recent price action with a single chart pattern.
// Classification is order-sensitive: conditions are evaluated in a
// fixed priority and the first match wins.
type Classifier struct {
	minBars    int // bars required before classification is attempted
	windowBars int // bars of the trailing window the heuristics read
}

// NewClassifier creates a classifier with the standard windows.
func NewClassifier() *Classifier {
	return &Classifier{
		minBars:    20,
		windowBars: 10,
	}
}

// Classify labels the trailing window of the given candles.
// Histories below the minimum return PatternInsufficientData.
func (c *Classifier) Classify(candles []models.Candle) models.PatternLabel {
	if len(candles) < c.minBars {
		return models.PatternInsufficientData
	}

	window := candles[len(candles)-c.windowBars:]
	highs := make([]float64, len(window))
	lows := make([]float64, len(window))
	for i, b := range window {
		highs[i] = b.High
		lows[i] = b.Low
	}
	latestClose := window[len(window)-1].Close

	switch {
	case ascendingTriangle(highs, lows):
		return models.PatternAscendingTriangle
	case descendingTriangle(highs, lows):
		return models.PatternDescendingTriangle
	case latestClose >= highestOf(highs)*0.98:
		return models.PatternUpwardBreakout
	case latestClose <= lowestOf(lows)*1.02:
		return models.PatternDownwardBreakout
	default:
		return models.PatternConsolidation
	}
}

// ascendingTriangle: rising support, flat resistance. No low after the
// window's first bar undercuts that first low, and the highs are
// tighter than the lows.
func ascendingTriangle(highs, lows []float64) bool {
	for _, l := range lows[1:] {
		if l < lows[0] {
			return false
		}
	}
	return stdDev(highs) < stdDev(lows)
}

// descendingTriangle: falling resistance, flat support. Mirror of
// ascendingTriangle on the highs.
func descendingTriangle(highs, lows []float64) bool {
	for _, h := range highs[1:] {
		if h > highs[0] {
			return false
		}
	}
	return stdDev(lows) < stdDev(highs)
}

func highestOf(values []float64) float64 {
	h := values[0]
	for _, v := range values[1:] {
		if v > h {
			h = v
		}
	}
	return h
}

func lowestOf(values []float64) float64 {
	l := values[0]
	for _, v := range values[1:] {
		if v < l {
			l = v
		}
	}
	return l
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var m float64
	for _, v := range values {
		m += v
	}
	m /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - m
		variance += d * d
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}
