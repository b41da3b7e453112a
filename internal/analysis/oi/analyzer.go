// Package oi analyzes option chain open interest for sentiment and
// key levels.
package oi

import (
	"math"

	apperrors "fno-signals/internal/errors"
	"fno-signals/internal/models"
)

// Sentiment thresholds on the put-call ratio.
const (
	pcrBullish = 1.3
	pcrBearish = 0.7

	// |PCR-1| beyond this qualifies the reading as Strong.
	strongDeviation = 0.3
)

// Analyzer computes an OIAnalysis from one chain snapshot. It is
// stateless and safe for concurrent use.
type Analyzer struct{}

// NewAnalyzer builds an OI analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze reads total OI per side, the put-call ratio, ATM and max-OI
// strikes, and the derived sentiment. A chain missing either side
// entirely fails closed with an insufficient-data error.
func (a *Analyzer) Analyze(chain *models.OptionChain) (*models.OIAnalysis, error) {
	calls := chain.Calls()
	puts := chain.Puts()
	if len(calls) == 0 || len(puts) == 0 {
		return nil, apperrors.NewDataError("option_chain", chain.Symbol,
			"chain missing one or both sides", apperrors.ErrInsufficientData)
	}

	var totalCallOI, totalPutOI int64
	for _, c := range calls {
		totalCallOI += c.OI
	}
	for _, p := range puts {
		totalPutOI += p.OI
	}

	// A dead call side with live contracts reads as maximally bearish,
	// so PCR stays 0 rather than blowing up.
	var pcr float64
	if totalCallOI > 0 {
		pcr = float64(totalPutOI) / float64(totalCallOI)
	}

	analysis := &models.OIAnalysis{
		TotalCallOI:     totalCallOI,
		TotalPutOI:      totalPutOI,
		PutCallRatio:    pcr,
		ATMStrike:       atmStrike(chain),
		MaxCallOIStrike: maxOIStrike(calls),
		MaxPutOIStrike:  maxOIStrike(puts),
		Sentiment:       sentimentFor(pcr),
		Strength:        strengthFor(pcr),
	}
	analysis.SupportLevel = analysis.MaxPutOIStrike
	analysis.ResistanceLevel = analysis.MaxCallOIStrike
	return analysis, nil
}

func sentimentFor(pcr float64) models.Sentiment {
	switch {
	case pcr > pcrBullish:
		return models.SentimentBullish
	case pcr < pcrBearish:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

func strengthFor(pcr float64) models.OIStrength {
	if math.Abs(pcr-1) > strongDeviation {
		return models.OIStrengthStrong
	}
	return models.OIStrengthModerate
}

// atmStrike finds the strike nearest the spot price across both sides.
// Equidistant strikes resolve to the lower one.
func atmStrike(chain *models.OptionChain) float64 {
	best := chain.Contracts[0].Strike
	bestDist := math.Abs(best - chain.SpotPrice)
	for _, c := range chain.Contracts[1:] {
		d := math.Abs(c.Strike - chain.SpotPrice)
		if d < bestDist || (d == bestDist && c.Strike < best) {
			best = c.Strike
			bestDist = d
		}
	}
	return best
}

// maxOIStrike finds the strike carrying the most open interest on one
// side. Ties break to higher volume, then to the lower strike.
func maxOIStrike(side []models.OptionContract) float64 {
	best := side[0]
	for _, c := range side[1:] {
		switch {
		case c.OI > best.OI:
			best = c
		case c.OI == best.OI && c.Volume > best.Volume:
			best = c
		case c.OI == best.OI && c.Volume == best.Volume && c.Strike < best.Strike:
			best = c
		}
	}
	return best.Strike
}
