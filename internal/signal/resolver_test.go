package signal

import (
	"testing"

	apperrors "fno-signals/internal/errors"
	"fno-signals/internal/models"
)

func snapshot(trend models.Trend, strength int, set models.IndicatorSet) *models.TechnicalSnapshot {
	return &models.TechnicalSnapshot{
		Symbol:     "NIFTY",
		Indicators: set,
		Trend:      trend,
		Strength:   strength,
	}
}

func oiWith(sentiment models.Sentiment) *models.OIAnalysis {
	return &models.OIAnalysis{Sentiment: sentiment}
}

func TestResolveConfluence(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name     string
		oi       *models.OIAnalysis
		tech     *models.TechnicalSnapshot
		wantType models.SignalType
		wantConf int
	}{
		{
			name:     "bullish confluence",
			oi:       oiWith(models.SentimentBullish),
			tech:     snapshot(models.TrendBullish, 50, models.IndicatorSet{RSI: 55, MACD: 2, MACDSignal: 1}),
			wantType: models.SignalBuyCE,
			wantConf: 95, // 85 + 50/5 = 95, at the cap
		},
		{
			name:     "bearish confluence",
			oi:       oiWith(models.SentimentBearish),
			tech:     snapshot(models.TrendBearish, 40, models.IndicatorSet{RSI: 45, MACD: 1, MACDSignal: 2}),
			wantType: models.SignalBuyPE,
			wantConf: 93,
		},
		{
			name:     "confidence is capped at 95",
			oi:       oiWith(models.SentimentBullish),
			tech:     snapshot(models.TrendBullish, 100, models.IndicatorSet{RSI: 55, MACD: 2, MACDSignal: 1}),
			wantType: models.SignalBuyCE,
			wantConf: 95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.oi, tt.tech)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Basis != BasisConfluence {
				t.Errorf("basis = %s, want %s", got.Basis, BasisConfluence)
			}
			if got.Type != tt.wantType {
				t.Errorf("type = %s, want %s", got.Type, tt.wantType)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("confidence = %d, want %d", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestResolveConfluenceGuards(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name string
		oi   *models.OIAnalysis
		tech *models.TechnicalSnapshot
	}{
		{
			name: "sentiment and trend disagree",
			oi:   oiWith(models.SentimentBullish),
			tech: snapshot(models.TrendBearish, 50, models.IndicatorSet{RSI: 55, MACD: 2, MACDSignal: 1}),
		},
		{
			name: "neutral sentiment never fires confluence",
			oi:   oiWith(models.SentimentNeutral),
			tech: snapshot(models.TrendBullish, 50, models.IndicatorSet{RSI: 55, MACD: 2, MACDSignal: 1}),
		},
		{
			name: "bullish setup with exhausted momentum",
			oi:   oiWith(models.SentimentBullish),
			tech: snapshot(models.TrendBullish, 50, models.IndicatorSet{RSI: 75, MACD: 2, MACDSignal: 1}),
		},
		{
			name: "bullish setup with MACD against",
			oi:   oiWith(models.SentimentBullish),
			tech: snapshot(models.TrendBullish, 50, models.IndicatorSet{RSI: 55, MACD: 1, MACDSignal: 2}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.oi, tt.tech)
			if !apperrors.Is(err, apperrors.ErrNoOpportunity) {
				t.Errorf("expected no opportunity, got %v", err)
			}
		})
	}
}

func TestResolveMeanReversion(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name     string
		tech     *models.TechnicalSnapshot
		wantType models.SignalType
		wantConf int
	}{
		{
			name:     "overbought against a non-bullish trend fades down",
			tech:     snapshot(models.TrendSideways, 40, models.IndicatorSet{RSI: 85}),
			wantType: models.SignalBuyPE,
			wantConf: 80, // 75 + 40/8
		},
		{
			name:     "oversold against a non-bearish trend fades up",
			tech:     snapshot(models.TrendSideways, 80, models.IndicatorSet{RSI: 15}),
			wantType: models.SignalBuyCE,
			wantConf: 85, // 75 + 80/8 = 85, at the cap
		},
		{
			name:     "confidence is capped at 85",
			tech:     snapshot(models.TrendBearish, 100, models.IndicatorSet{RSI: 90}),
			wantType: models.SignalBuyPE,
			wantConf: 85,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(oiWith(models.SentimentNeutral), tt.tech)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Basis != BasisMeanReversion {
				t.Errorf("basis = %s, want %s", got.Basis, BasisMeanReversion)
			}
			if got.Type != tt.wantType {
				t.Errorf("type = %s, want %s", got.Type, tt.wantType)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("confidence = %d, want %d", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestResolveTrendBackedExtremeDoesNotFade(t *testing.T) {
	r := NewResolver()

	// Overbought inside a confirmed uptrend is momentum, not a fade.
	_, err := r.Resolve(oiWith(models.SentimentNeutral),
		snapshot(models.TrendBullish, 50, models.IndicatorSet{RSI: 85}))
	if !apperrors.Is(err, apperrors.ErrNoOpportunity) {
		t.Errorf("expected no opportunity, got %v", err)
	}
}
