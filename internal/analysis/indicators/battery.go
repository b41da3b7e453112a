// Package indicators provides technical indicator calculations for the
// signal engine's fixed battery.
package indicators

import (
	"context"
	"sync"

	"fno-signals/internal/models"
)

// Indicator defines the interface for single-value technical indicators.
type Indicator interface {
	Name() string
	Calculate(candles []models.Candle) ([]float64, error)
	Period() int
}

// MultiValueIndicator defines the interface for indicators that return multiple values.
type MultiValueIndicator interface {
	Name() string
	Calculate(candles []models.Candle) (map[string][]float64, error)
	Period() int
}

// Standard lookback windows for the battery.
const (
	RSIPeriod        = 14
	FastAvgPeriod    = 20
	SlowAvgPeriod    = 50
	BollingerPeriod  = 5
	BollingerStdDev  = 2.0
	ADXPeriod        = 14
	StochKPeriod     = 14
	StochDPeriod     = 3
	StochSmooth      = 3
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
)

// MinBars is the minimum history length the battery accepts: the
// slowest lookback in the set.
const MinBars = SlowAvgPeriod

// Battery computes the engine's fixed indicator set over one candle
// history. Indicators run concurrently; the result is the latest value
// of each series.
type Battery struct {
	workers int
}

// NewBattery creates a battery with the given worker count.
func NewBattery(workers int) *Battery {
	if workers <= 0 {
		workers = 4
	}
	return &Battery{workers: workers}
}

// Compute calculates the full battery. Histories shorter than MinBars
// fail with ErrInsufficientData; no partially filled set is produced.
func (b *Battery) Compute(ctx context.Context, candles []models.Candle) (*models.IndicatorSet, error) {
	if len(candles) < MinBars {
		return nil, ErrInsufficientData
	}

	singles := []Indicator{
		NewRSI(RSIPeriod),
		NewEMA(FastAvgPeriod),
		NewSMA(SlowAvgPeriod),
		NewSessionVWAP(),
	}
	multis := []MultiValueIndicator{
		NewMACD(MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod),
		NewBollingerBands(BollingerPeriod, BollingerStdDev),
		NewADX(ADXPeriod),
		NewStochastic(StochKPeriod, StochDPeriod, StochSmooth),
	}

	singleResults := make(map[string][]float64)
	multiResults := make(map[string]map[string][]float64)
	var firstErr error
	var mu sync.Mutex
	var wg sync.WaitGroup

	singleWork := make(chan Indicator, len(singles))
	multiWork := make(chan MultiValueIndicator, len(multis))

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ind := range singleWork {
				select {
				case <-ctx.Done():
					return
				default:
				}
				values, err := ind.Calculate(candles)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					singleResults[ind.Name()] = values
				}
				mu.Unlock()
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ind := range multiWork {
				select {
				case <-ctx.Done():
					return
				default:
				}
				values, err := ind.Calculate(candles)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					multiResults[ind.Name()] = values
				}
				mu.Unlock()
			}
		}()
	}

	for _, ind := range singles {
		singleWork <- ind
	}
	close(singleWork)
	for _, ind := range multis {
		multiWork <- ind
	}
	close(multiWork)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return assembleSet(candles, singleResults, multiResults), nil
}

func assembleSet(candles []models.Candle, singles map[string][]float64, multis map[string]map[string][]float64) *models.IndicatorSet {
	last := func(values []float64) float64 {
		if len(values) == 0 {
			return 0
		}
		return values[len(values)-1]
	}

	rsi := NewRSI(RSIPeriod).Name()
	ema := NewEMA(FastAvgPeriod).Name()
	sma := NewSMA(SlowAvgPeriod).Name()
	vwap := NewSessionVWAP().Name()
	macd := NewMACD(MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod).Name()
	bb := NewBollingerBands(BollingerPeriod, BollingerStdDev).Name()
	adx := NewADX(ADXPeriod).Name()
	stoch := NewStochastic(StochKPeriod, StochDPeriod, StochSmooth).Name()

	latest := candles[len(candles)-1]

	return &models.IndicatorSet{
		RSI:        last(singles[rsi]),
		EMA20:      last(singles[ema]),
		SMA50:      last(singles[sma]),
		VWAP:       last(singles[vwap]),
		MACD:       last(multis[macd]["macd"]),
		MACDSignal: last(multis[macd]["signal"]),
		MACDHist:   last(multis[macd]["histogram"]),
		BBUpper:    last(multis[bb]["upper"]),
		BBMiddle:   last(multis[bb]["middle"]),
		BBLower:    last(multis[bb]["lower"]),
		ADX:        last(multis[adx]["adx"]),
		StochK:     last(multis[stoch]["percent_k"]),
		StochD:     last(multis[stoch]["percent_d"]),
		Close:      latest.Close,
		Volume:     latest.Volume,
	}
}
