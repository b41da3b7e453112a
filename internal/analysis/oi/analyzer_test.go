package oi

import (
	"testing"
	"time"

	apperrors "fno-signals/internal/errors"
	"fno-signals/internal/models"
)

func chainOf(spot float64, contracts ...models.OptionContract) *models.OptionChain {
	return &models.OptionChain{
		Symbol:    "NIFTY",
		SpotPrice: spot,
		Expiry:    time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
		Timestamp: time.Now(),
		Contracts: contracts,
	}
}

func call(strike float64, oi, volume int64) models.OptionContract {
	return models.OptionContract{Strike: strike, Type: models.ContractCall, OI: oi, Volume: volume}
}

func put(strike float64, oi, volume int64) models.OptionContract {
	return models.OptionContract{Strike: strike, Type: models.ContractPut, OI: oi, Volume: volume}
}

func TestAnalyzeMissingSideFailsClosed(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name  string
		chain *models.OptionChain
	}{
		{"no contracts", chainOf(19800)},
		{"calls only", chainOf(19800, call(19800, 100, 10), call(19900, 200, 20))},
		{"puts only", chainOf(19800, put(19800, 100, 10), put(19700, 200, 20))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Analyze(tt.chain)
			if !apperrors.Is(err, apperrors.ErrInsufficientData) {
				t.Errorf("expected insufficient data, got %v", err)
			}
		})
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name         string
		callOI       int64
		putOI        int64
		wantPCR      float64
		wantSent     models.Sentiment
		wantStrength models.OIStrength
	}{
		{"heavy put writing is bullish and strong", 100, 150, 1.5, models.SentimentBullish, models.OIStrengthStrong},
		{"heavy call writing is bearish and strong", 200, 100, 0.5, models.SentimentBearish, models.OIStrengthStrong},
		{"balanced writing is neutral and moderate", 100, 110, 1.1, models.SentimentNeutral, models.OIStrengthModerate},
		{"just inside bullish threshold stays neutral", 100, 130, 1.3, models.SentimentNeutral, models.OIStrengthModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := chainOf(19800, call(19900, tt.callOI, 10), put(19700, tt.putOI, 10))
			got, err := a.Analyze(chain)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.PutCallRatio != tt.wantPCR {
				t.Errorf("PCR = %f, want %f", got.PutCallRatio, tt.wantPCR)
			}
			if got.Sentiment != tt.wantSent {
				t.Errorf("sentiment = %s, want %s", got.Sentiment, tt.wantSent)
			}
			if got.Strength != tt.wantStrength {
				t.Errorf("strength = %s, want %s", got.Strength, tt.wantStrength)
			}
		})
	}
}

func TestAnalyzeZeroCallOI(t *testing.T) {
	// A dead call side with contracts present reads maximally bearish.
	a := NewAnalyzer()
	chain := chainOf(19800, call(19900, 0, 0), put(19700, 500, 10))

	got, err := a.Analyze(chain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PutCallRatio != 0 {
		t.Errorf("PCR = %f, want 0", got.PutCallRatio)
	}
	if got.Sentiment != models.SentimentBearish {
		t.Errorf("sentiment = %s, want %s", got.Sentiment, models.SentimentBearish)
	}
}

func TestATMStrikeNearestWithLowerTieBreak(t *testing.T) {
	a := NewAnalyzer()

	chain := chainOf(19850,
		call(19800, 100, 10), call(19900, 100, 10),
		put(19800, 100, 10), put(19900, 100, 10),
	)
	got, err := a.Analyze(chain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 19800 and 19900 are equidistant from 19850; the lower wins.
	if got.ATMStrike != 19800 {
		t.Errorf("ATM strike = %f, want 19800", got.ATMStrike)
	}

	chain = chainOf(19860,
		call(19800, 100, 10), call(19900, 100, 10),
		put(19800, 100, 10), put(19900, 100, 10),
	)
	got, err = a.Analyze(chain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ATMStrike != 19900 {
		t.Errorf("ATM strike = %f, want 19900", got.ATMStrike)
	}

	chain = chainOf(19850,
		call(19800, 100, 10), call(19850, 100, 10), call(19900, 100, 10),
		put(19800, 100, 10), put(19850, 100, 10), put(19900, 100, 10),
	)
	got, err = a.Analyze(chain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// An exact match beats any tie-break.
	if got.ATMStrike != 19850 {
		t.Errorf("ATM strike = %f, want 19850", got.ATMStrike)
	}
}

func TestMaxOIStrikesAndLevels(t *testing.T) {
	a := NewAnalyzer()
	chain := chainOf(19800,
		call(19900, 500, 10), call(20000, 500, 20), call(20100, 300, 50),
		put(19700, 400, 5), put(19600, 400, 5), put(19500, 100, 50),
	)

	got, err := a.Analyze(chain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Call side: OI ties at 500, higher volume wins.
	if got.MaxCallOIStrike != 20000 {
		t.Errorf("max call OI strike = %f, want 20000", got.MaxCallOIStrike)
	}
	// Put side: OI and volume tie, lower strike wins.
	if got.MaxPutOIStrike != 19600 {
		t.Errorf("max put OI strike = %f, want 19600", got.MaxPutOIStrike)
	}
	if got.ResistanceLevel != got.MaxCallOIStrike {
		t.Errorf("resistance %f should equal max call OI strike %f", got.ResistanceLevel, got.MaxCallOIStrike)
	}
	if got.SupportLevel != got.MaxPutOIStrike {
		t.Errorf("support %f should equal max put OI strike %f", got.SupportLevel, got.MaxPutOIStrike)
	}
}
