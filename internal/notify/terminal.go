package notify

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"fno-signals/internal/models"
)

// TerminalChannel prints signals to stdout for an operator watching
// the scan.
type TerminalChannel struct{}

// NewTerminalChannel builds a terminal channel.
func NewTerminalChannel() *TerminalChannel {
	return &TerminalChannel{}
}

func (t *TerminalChannel) Name() string { return "terminal" }

// Send renders the signal as a colored block.
func (t *TerminalChannel) Send(ctx context.Context, sig *models.Signal) error {
	header := color.New(color.FgRed, color.Bold)
	if sig.SignalType == models.SignalBuyCE {
		header = color.New(color.FgGreen, color.Bold)
	}

	header.Printf("\n🔔 %s %s\n", sig.SignalType, sig.TradingSymbol)
	fmt.Printf("   Strike %.0f %s, expiry %s\n", sig.Strike, sig.OptionType, sig.Expiry.Format("02 Jan 2006"))
	fmt.Printf("   Entry ₹%.2f  Target ₹%.2f  SL ₹%.2f  (R:R %.1f)\n",
		sig.EntryPrice, sig.TargetPrice, sig.StopLoss, sig.RiskReward)
	fmt.Printf("   Qty %d lots\n", sig.Quantity)

	switch sig.ConfidenceLevel {
	case models.ConfidenceVeryHigh, models.ConfidenceHigh:
		color.Green("   Confidence %d%% (%s)", sig.Confidence, sig.ConfidenceLevel)
	default:
		color.Yellow("   Confidence %d%% (%s)", sig.Confidence, sig.ConfidenceLevel)
	}
	if sig.Reasoning != "" {
		fmt.Printf("   %s\n", sig.Reasoning)
	}
	return nil
}
