package indicators

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "fno-signals/internal/errors"
	"fno-signals/internal/models"
)

// candleGen generates valid candle data with realistic OHLCV values.
func candleGen() gopter.Gen {
	return gen.Struct(reflect.TypeOf(models.Candle{}), map[string]gopter.Gen{
		"Timestamp": gen.TimeRange(time.Now().Add(-365*24*time.Hour), time.Hour),
		"Open":      gen.Float64Range(100.0, 1000.0),
		"High":      gen.Float64Range(100.0, 1000.0),
		"Low":       gen.Float64Range(100.0, 1000.0),
		"Close":     gen.Float64Range(100.0, 1000.0),
		"Volume":    gen.Int64Range(1000, 10000000),
	}).Map(fixCandle)
}

func fixCandle(c models.Candle) models.Candle {
	if c.Open <= 0 {
		c.Open = 100.0
	}
	if c.High <= 0 {
		c.High = 100.0
	}
	if c.Low <= 0 {
		c.Low = 100.0
	}
	if c.Close <= 0 {
		c.Close = 100.0
	}
	c.High = math.Max(c.High, math.Max(c.Open, c.Close))
	c.Low = math.Min(c.Low, math.Min(c.Open, c.Close))
	if c.Low > c.High {
		c.Low, c.High = c.High, c.Low
	}
	if c.High <= c.Low {
		c.High = c.Low + 1.0
	}
	return c
}

// candleSliceGen generates a time-ordered slice of valid candles.
func candleSliceGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, candleGen()).Map(func(candles []models.Candle) []models.Candle {
		for len(candles) < minLen {
			candles = append(candles, candles[len(candles)-1])
		}
		base := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
		for i := range candles {
			candles[i] = fixCandle(candles[i])
			candles[i].Timestamp = base.Add(time.Duration(i) * 5 * time.Minute)
		}
		return candles
	})
}

// For any valid candle data, oscillator outputs stay within their
// mathematical bounds.
func TestOscillatorBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("RSI is within [0, 100]", prop.ForAll(
		func(candles []models.Candle) bool {
			rsi := NewRSI(RSIPeriod)
			values, err := rsi.Calculate(candles)
			if err != nil {
				return true
			}
			for _, v := range values {
				if v < 0 || v > 100 || math.IsNaN(v) {
					t.Logf("RSI out of bounds: %f", v)
					return false
				}
			}
			return true
		},
		candleSliceGen(MinBars, 120),
	))

	properties.Property("Stochastic %K and %D are within [0, 100]", prop.ForAll(
		func(candles []models.Candle) bool {
			stoch := NewStochastic(StochKPeriod, StochDPeriod, StochSmooth)
			values, err := stoch.Calculate(candles)
			if err != nil {
				return true
			}
			for _, series := range values {
				for _, v := range series {
					if v < 0 || v > 100 || math.IsNaN(v) {
						t.Logf("Stochastic out of bounds: %f", v)
						return false
					}
				}
			}
			return true
		},
		candleSliceGen(MinBars, 120),
	))

	properties.TestingRun(t)
}

// Bollinger band ordering holds for any input: lower <= middle <= upper.
func TestBollingerBandOrdering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("bands are ordered", prop.ForAll(
		func(candles []models.Candle) bool {
			bb := NewBollingerBands(BollingerPeriod, BollingerStdDev)
			values, err := bb.Calculate(candles)
			if err != nil {
				return true
			}
			upper, middle, lower := values["upper"], values["middle"], values["lower"]
			for i := range middle {
				if lower[i] > middle[i]+1e-9 || middle[i] > upper[i]+1e-9 {
					t.Logf("band ordering violated at %d: %f %f %f", i, lower[i], middle[i], upper[i])
					return false
				}
			}
			return true
		},
		candleSliceGen(MinBars, 120),
	))

	properties.TestingRun(t)
}

// The battery fails closed on short histories and fills every field on
// long ones.
func TestBatteryCompute(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("short history reports insufficient data", prop.ForAll(
		func(candles []models.Candle) bool {
			short := candles[:MinBars-1]
			battery := NewBattery(4)
			_, err := battery.Compute(context.Background(), short)
			return apperrors.Is(err, ErrInsufficientData)
		},
		candleSliceGen(MinBars, MinBars),
	))

	properties.Property("full history produces a complete set", prop.ForAll(
		func(candles []models.Candle) bool {
			battery := NewBattery(4)
			set, err := battery.Compute(context.Background(), candles)
			if err != nil {
				t.Logf("unexpected error: %v", err)
				return false
			}
			if set.Close != candles[len(candles)-1].Close {
				return false
			}
			if set.RSI < 0 || set.RSI > 100 {
				return false
			}
			return set.SMA50 > 0 && set.EMA20 > 0 && set.VWAP > 0 && set.BBUpper >= set.BBLower
		},
		candleSliceGen(80, 120),
	))

	properties.TestingRun(t)
}

func TestSessionVWAPResetsAtDayBoundary(t *testing.T) {
	day1 := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 3, 9, 15, 0, 0, time.UTC)

	candles := []models.Candle{
		{Timestamp: day1, High: 100, Low: 100, Close: 100, Volume: 10},
		{Timestamp: day1.Add(5 * time.Minute), High: 110, Low: 110, Close: 110, Volume: 10},
		{Timestamp: day2, High: 200, Low: 200, Close: 200, Volume: 10},
	}

	vwap := NewSessionVWAP()
	values, err := vwap.Calculate(candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(values))
	}
	if values[1] != 105 {
		t.Errorf("expected intra-session VWAP 105, got %f", values[1])
	}
	// New session: the cumulative sums restart.
	if values[2] != 200 {
		t.Errorf("expected VWAP to reset to 200 on new session, got %f", values[2])
	}
}
