package cli

import (
	"fmt"

	"fno-signals/internal/models"
	"fno-signals/pkg/utils"
)

// SignalTypeTag colors a directional call.
func (o *Output) SignalTypeTag(t models.SignalType) string {
	if t == models.SignalBuyCE {
		return o.Green(string(t))
	}
	return o.Red(string(t))
}

// SentimentTag colors an OI sentiment.
func (o *Output) SentimentTag(s models.Sentiment) string {
	switch s {
	case models.SentimentBullish:
		return o.Green(string(s))
	case models.SentimentBearish:
		return o.Red(string(s))
	default:
		return o.Yellow(string(s))
	}
}

// TrendTag colors a trend label.
func (o *Output) TrendTag(t models.Trend) string {
	switch t {
	case models.TrendBullish:
		return o.Green(string(t))
	case models.TrendBearish:
		return o.Red(string(t))
	default:
		return o.Yellow(string(t))
	}
}

// ConfidenceTag colors a confidence percentage by tier.
func (o *Output) ConfidenceTag(confidence int) string {
	text := fmt.Sprintf("%d%% (%s)", confidence, models.ConfidenceLevelFor(confidence))
	if confidence >= 80 {
		return o.Green(text)
	}
	return o.Yellow(text)
}

// PrintSignal renders one signal as a block.
func (o *Output) PrintSignal(sig *models.Signal) {
	o.Bold("🔔 %s %s", sig.SignalType, sig.TradingSymbol)
	o.Printf("  Strike:      %.0f %s (expiry %s)\n", sig.Strike, sig.OptionType, sig.Expiry.Format("02 Jan 2006"))
	o.Printf("  Entry:       %s\n", utils.FormatIndianCurrency(sig.EntryPrice))
	o.Printf("  Target:      %s\n", utils.FormatIndianCurrency(sig.TargetPrice))
	o.Printf("  Stop loss:   %s\n", utils.FormatIndianCurrency(sig.StopLoss))
	o.Printf("  Risk:Reward: 1:%.1f\n", sig.RiskReward)
	o.Printf("  Quantity:    %d lots\n", sig.Quantity)
	o.Printf("  Confidence:  %s\n", o.ConfidenceTag(sig.Confidence))
	if sig.Reasoning != "" {
		o.Dim("  %s", sig.Reasoning)
	}
	o.Println()
}

// PrintOIAnalysis renders one OI analysis.
func (o *Output) PrintOIAnalysis(oi *models.OIAnalysis) {
	o.Printf("  PCR:        %.2f (%s %s)\n", oi.PutCallRatio, oi.Strength, o.SentimentTag(oi.Sentiment))
	o.Printf("  Call OI:    %s\n", utils.FormatQuantity(oi.TotalCallOI))
	o.Printf("  Put OI:     %s\n", utils.FormatQuantity(oi.TotalPutOI))
	o.Printf("  ATM strike: %.0f\n", oi.ATMStrike)
	o.Printf("  Support:    %.0f (max put OI)\n", oi.SupportLevel)
	o.Printf("  Resistance: %.0f (max call OI)\n", oi.ResistanceLevel)
}
