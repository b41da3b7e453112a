package models

import (
	"fmt"
	"time"
)

// SignalType represents the directional call of a signal.
type SignalType string

const (
	SignalBuyCE SignalType = "BUY_CE"
	SignalBuyPE SignalType = "BUY_PE"
)

// ContractType returns the option contract type the signal trades.
func (s SignalType) ContractType() ContractType {
	if s == SignalBuyPE {
		return ContractPut
	}
	return ContractCall
}

// ConfidenceLevel buckets a confidence percentage into a tier.
type ConfidenceLevel string

const (
	ConfidenceLow      ConfidenceLevel = "LOW"
	ConfidenceMedium   ConfidenceLevel = "MEDIUM"
	ConfidenceHigh     ConfidenceLevel = "HIGH"
	ConfidenceVeryHigh ConfidenceLevel = "VERY_HIGH"
)

// ConfidenceLevelFor maps a confidence percentage to its tier.
func ConfidenceLevelFor(confidence int) ConfidenceLevel {
	switch {
	case confidence >= 90:
		return ConfidenceVeryHigh
	case confidence >= 80:
		return ConfidenceHigh
	case confidence >= 70:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Signal is the engine's output unit: one risk-bounded trade
// recommendation. Immutable once created; ownership passes to the
// delivery channel.
type Signal struct {
	ID            string
	Instrument    string
	TradingSymbol string
	OptionType    ContractType
	Strike        float64
	Expiry        time.Time
	SignalType    SignalType

	EntryPrice  float64
	TargetPrice float64
	StopLoss    float64
	RiskReward  float64
	Quantity    int

	Confidence      int
	ConfidenceLevel ConfidenceLevel
	Reasoning       string

	// Provenance: the analyses this signal was synthesized from.
	OI        OIAnalysis
	Technical TechnicalSnapshot

	CreatedAt time.Time
}

// NewSignalID builds a signal identifier from instrument and time.
func NewSignalID(instrument string, t time.Time) string {
	return fmt.Sprintf("%s_%d", instrument, t.Unix())
}
