package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fno-signals/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "signals.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSignal(id, instrument string, signalType models.SignalType, createdAt time.Time) *models.Signal {
	return &models.Signal{
		ID:              id,
		Instrument:      instrument,
		TradingSymbol:   instrument + "24JAN20000CE",
		OptionType:      signalType.ContractType(),
		Strike:          20000,
		Expiry:          time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
		SignalType:      signalType,
		EntryPrice:      150,
		TargetPrice:     187.5,
		StopLoss:        135,
		RiskReward:      2.5,
		Quantity:        3,
		Confidence:      92,
		ConfidenceLevel: models.ConfidenceLevelFor(92),
		Reasoning:       "PCR 1.50 (Strong Bullish OI sentiment)",
		OI: models.OIAnalysis{
			PutCallRatio: 1.5,
			Sentiment:    models.SentimentBullish,
			Strength:     models.OIStrengthStrong,
		},
		Technical: models.TechnicalSnapshot{
			Symbol:   instrument,
			Trend:    models.TrendBullish,
			Strength: 55,
		},
		CreatedAt: createdAt,
	}
}

func TestSaveAndListSignals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i, sig := range []*models.Signal{
		sampleSignal("NIFTY_1", "NIFTY", models.SignalBuyCE, base),
		sampleSignal("BANKNIFTY_1", "BANKNIFTY", models.SignalBuyPE, base.Add(time.Hour)),
		sampleSignal("NIFTY_2", "NIFTY", models.SignalBuyCE, base.Add(2*time.Hour)),
	} {
		if err := store.SaveSignal(ctx, sig); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	all, err := store.ListSignals(ctx, SignalFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d signals, want 3", len(all))
	}
	if all[0].ID != "NIFTY_2" {
		t.Errorf("first signal = %s, want newest first", all[0].ID)
	}

	nifty, err := store.ListSignals(ctx, SignalFilter{Instrument: "NIFTY"})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(nifty) != 2 {
		t.Errorf("got %d NIFTY signals, want 2", len(nifty))
	}

	limited, err := store.ListSignals(ctx, SignalFilter{Limit: 1})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d signals with limit 1, want 1", len(limited))
	}
}

func TestListSignalsRestoresProvenance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sig := sampleSignal("NIFTY_1", "NIFTY", models.SignalBuyCE, time.Now().UTC())
	if err := store.SaveSignal(ctx, sig); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.ListSignals(ctx, SignalFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d signals, want 1", len(got))
	}

	if got[0].OI.PutCallRatio != 1.5 {
		t.Errorf("PCR = %v, want 1.5", got[0].OI.PutCallRatio)
	}
	if got[0].OI.Sentiment != models.SentimentBullish {
		t.Errorf("sentiment = %s, want bullish", got[0].OI.Sentiment)
	}
	if got[0].Technical.Trend != models.TrendBullish {
		t.Errorf("trend = %s, want bullish", got[0].Technical.Trend)
	}
	if got[0].ConfidenceLevel != models.ConfidenceVeryHigh {
		t.Errorf("confidence level = %s, want very high", got[0].ConfidenceLevel)
	}
}

func TestCountSince(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{base, base.Add(time.Hour), base.Add(25 * time.Hour)} {
		sig := sampleSignal(models.NewSignalID("NIFTY", at), "NIFTY", models.SignalBuyCE, at)
		if err := store.SaveSignal(ctx, sig); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	n, err := store.CountSince(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	n, err = store.CountSince(ctx, base)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}
