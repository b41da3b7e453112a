package signal

import (
	apperrors "fno-signals/internal/errors"
	"fno-signals/internal/models"
)

// Position sizing bounds in lots.
const (
	minQuantity = 1
	maxQuantity = 10
)

// RiskParams are the exit levels and sizing for one contract.
type RiskParams struct {
	EntryPrice  float64
	TargetPrice float64
	StopLoss    float64
	RiskReward  float64
	Quantity    int
}

// RiskCalculator derives targets, stops, and position size from the
// entry premium and the confidence of the call.
type RiskCalculator struct {
	minRiskReward   float64
	maxRiskPerTrade float64
}

// NewRiskCalculator builds a calculator enforcing the given floor on
// reward-to-risk and the per-trade risk budget.
func NewRiskCalculator(minRiskReward, maxRiskPerTrade float64) *RiskCalculator {
	return &RiskCalculator{
		minRiskReward:   minRiskReward,
		maxRiskPerTrade: maxRiskPerTrade,
	}
}

// Compute prices the exits for a long-premium position. Higher
// confidence stretches the target and tightens the stop. A strong ADX
// reading widens both to absorb volatility. Setups whose reward-risk
// falls under the floor are rejected with a RiskError.
func (r *RiskCalculator) Compute(entry float64, confidence int, adx float64) (*RiskParams, error) {
	if entry <= 0 {
		return nil, apperrors.NewRiskError("entry_price", entry, 0, "entry premium must be positive")
	}

	var targetPct, stopPct float64
	switch {
	case confidence >= 90:
		targetPct, stopPct = 0.25, 0.10
	case confidence >= 80:
		targetPct, stopPct = 0.20, 0.12
	default:
		targetPct, stopPct = 0.15, 0.15
	}

	if adx > 30 {
		targetPct *= 1.2
		stopPct *= 1.1
	}

	target := entry * (1 + targetPct)
	stop := entry * (1 - stopPct)

	reward := target - entry
	risk := entry - stop

	var rr float64
	if risk > 0 {
		rr = reward / risk
	}
	if rr < r.minRiskReward {
		return nil, apperrors.NewRiskError("risk_reward", rr, r.minRiskReward,
			"reward-to-risk below floor")
	}

	return &RiskParams{
		EntryPrice:  entry,
		TargetPrice: target,
		StopLoss:    stop,
		RiskReward:  rr,
		Quantity:    r.quantity(risk),
	}, nil
}

// quantity sizes the position so the worst-case loss stays inside the
// per-trade budget, clamped to the lot bounds.
func (r *RiskCalculator) quantity(riskPerUnit float64) int {
	if riskPerUnit <= 0 {
		return minQuantity
	}
	q := int(r.maxRiskPerTrade / riskPerUnit)
	if q < minQuantity {
		return minQuantity
	}
	if q > maxQuantity {
		return maxQuantity
	}
	return q
}

// Apply copies the computed risk parameters onto a signal.
func (p *RiskParams) Apply(sig *models.Signal) {
	sig.EntryPrice = p.EntryPrice
	sig.TargetPrice = p.TargetPrice
	sig.StopLoss = p.StopLoss
	sig.RiskReward = p.RiskReward
	sig.Quantity = p.Quantity
}
