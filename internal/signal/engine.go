package signal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fno-signals/internal/analysis"
	"fno-signals/internal/analysis/oi"
	"fno-signals/internal/config"
	apperrors "fno-signals/internal/errors"
	"fno-signals/internal/logging"
	"fno-signals/internal/marketdata"
	"fno-signals/internal/metrics"
	"fno-signals/internal/models"
)

// Pipeline stage names used in logs and rejection records.
const (
	StageFetchChain   = "fetch_chain"
	StageAnalyzeOI    = "analyze_oi"
	StageFetchHistory = "fetch_history"
	StageAnalyzeTech  = "analyze_technical"
	StageResolve      = "resolve_direction"
	StageSelectStrike = "select_strike"
	StageComputeRisk  = "compute_risk"
	StageQuota        = "quota"
	StageEmit         = "emit"
)

// Journal persists emitted signals and answers quota queries.
type Journal interface {
	SaveSignal(ctx context.Context, sig *models.Signal) error
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// Notifier delivers an emitted signal to its channels.
type Notifier interface {
	Notify(ctx context.Context, sig *models.Signal) error
}

// Engine runs the full synthesis pipeline for one instrument at a
// time and fans the scan out across the universe.
type Engine struct {
	cfg      config.EngineConfig
	provider marketdata.Provider

	oiAnalyzer *oi.Analyzer
	technical  *analysis.TechnicalAnalyzer
	resolver   *Resolver
	strikes    *StrikeSelector
	risk       *RiskCalculator

	counter  *DailyCounter
	journal  Journal
	notifier Notifier
	recorder *metrics.Recorder

	logger zerolog.Logger
}

// EngineOption configures optional engine collaborators.
type EngineOption func(*Engine)

// WithJournal attaches a signal journal.
func WithJournal(j Journal) EngineOption {
	return func(e *Engine) { e.journal = j }
}

// WithNotifier attaches a delivery channel.
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r *metrics.Recorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine wires the pipeline. The journal, notifier, and recorder
// are optional; the core pipeline runs without them.
func NewEngine(cfg config.EngineConfig, provider marketdata.Provider, logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:        cfg,
		provider:   provider,
		oiAnalyzer: oi.NewAnalyzer(),
		technical:  analysis.NewTechnicalAnalyzer(4),
		resolver:   NewResolver(),
		strikes:    NewStrikeSelector(),
		risk:       NewRiskCalculator(cfg.MinRiskReward, cfg.MaxRiskPerTrade),
		counter:    NewDailyCounter(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RestoreQuota seeds the daily counter from the journal so a restart
// mid-session does not reopen the quota.
func (e *Engine) RestoreQuota(ctx context.Context) error {
	if e.journal == nil {
		return nil
	}
	midnight := startOfDay(time.Now())
	n, err := e.journal.CountSince(ctx, midnight)
	if err != nil {
		return apperrors.Wrap(err, "restoring daily quota")
	}
	e.counter.Seed(n)
	if e.recorder != nil {
		e.recorder.QuotaUsed(n)
	}
	e.logger.Info().Int64("count", n).Msg("Daily quota restored from journal")
	return nil
}

// ResetDailyCounters zeroes the quota at the day boundary.
func (e *Engine) ResetDailyCounters() {
	e.counter.Reset()
	if e.recorder != nil {
		e.recorder.QuotaUsed(0)
	}
	e.logger.Info().Msg("Daily signal counter reset")
}

// QuotaUsed reports how many signals count against today's quota.
func (e *Engine) QuotaUsed() int64 {
	return e.counter.Count()
}

// Evaluate runs the pipeline for one instrument. It returns the
// emitted signal, or a sentinel error naming why no signal was
// produced.
func (e *Engine) Evaluate(ctx context.Context, instrument string) (*models.Signal, error) {
	log := logging.WithSymbol(e.logger, instrument)

	chain, err := e.provider.GetOptionChain(ctx, instrument)
	if err != nil {
		return nil, e.reject(log, instrument, StageFetchChain, metrics.OutcomeUpstream,
			apperrors.Wrap(err, "fetching option chain"))
	}

	oiResult, err := e.oiAnalyzer.Analyze(chain)
	if err != nil {
		return nil, e.reject(log, instrument, StageAnalyzeOI, metrics.OutcomeInsufficientData, err)
	}

	candles, err := e.provider.GetPriceHistory(ctx, instrument, e.cfg.HistoryDays)
	if err != nil {
		return nil, e.reject(log, instrument, StageFetchHistory, metrics.OutcomeUpstream,
			apperrors.Wrap(err, "fetching price history"))
	}

	tech, err := e.technical.Analyze(ctx, instrument, candles)
	if err != nil {
		return nil, e.reject(log, instrument, StageAnalyzeTech, metrics.OutcomeInsufficientData, err)
	}

	resolution, err := e.resolver.Resolve(oiResult, tech)
	if err != nil {
		return nil, e.reject(log, instrument, StageResolve, metrics.OutcomeNoOpportunity, err)
	}

	if resolution.Confidence < e.cfg.MinConfidence {
		return nil, e.reject(log, instrument, StageResolve, metrics.OutcomeLowConfidence,
			fmt.Errorf("confidence %d below floor %d: %w",
				resolution.Confidence, e.cfg.MinConfidence, apperrors.ErrNoOpportunity))
	}

	contract, err := e.strikes.Select(chain, resolution.Type)
	if err != nil {
		return nil, e.reject(log, instrument, StageSelectStrike, metrics.OutcomeInsufficientData, err)
	}

	riskParams, err := e.risk.Compute(contract.LTP, resolution.Confidence, tech.Indicators.ADX)
	if err != nil {
		return nil, e.reject(log, instrument, StageComputeRisk, metrics.OutcomeRiskRejected, err)
	}

	if !e.counter.TryAcquire(e.cfg.MaxDailySignals) {
		return nil, e.reject(log, instrument, StageQuota, metrics.OutcomeQuotaBlocked,
			apperrors.ErrQuotaExhausted)
	}

	now := time.Now()
	sig := &models.Signal{
		ID:              models.NewSignalID(instrument, now),
		Instrument:      instrument,
		TradingSymbol:   contract.TradingSymbol,
		OptionType:      contract.Type,
		Strike:          contract.Strike,
		Expiry:          contract.Expiry,
		SignalType:      resolution.Type,
		Confidence:      resolution.Confidence,
		ConfidenceLevel: models.ConfidenceLevelFor(resolution.Confidence),
		OI:              *oiResult,
		Technical:       *tech,
		CreatedAt:       now,
	}
	riskParams.Apply(sig)
	sig.Reasoning = buildReasoning(resolution, oiResult, tech)

	if err := e.emit(ctx, sig); err != nil {
		e.counter.Release()
		return nil, e.reject(log, instrument, StageEmit, metrics.OutcomeUpstream, err)
	}

	if e.recorder != nil {
		e.recorder.Evaluation(instrument, metrics.OutcomeEmitted)
		e.recorder.Signal(instrument, string(sig.SignalType))
		e.recorder.QuotaUsed(e.counter.Count())
	}
	logging.LogSignal(log, sig.ID, instrument, string(sig.SignalType), sig.Confidence, sig.RiskReward)
	return sig, nil
}

// Scan evaluates the whole universe concurrently and returns the
// signals that passed every gate.
func (e *Engine) Scan(ctx context.Context, instruments []string) []*models.Signal {
	start := time.Now()

	var (
		mu      sync.Mutex
		signals []*models.Signal
		wg      sync.WaitGroup
	)
	for _, instrument := range instruments {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sig, err := e.Evaluate(ctx, symbol)
			if err != nil {
				return
			}
			mu.Lock()
			signals = append(signals, sig)
			mu.Unlock()
		}(instrument)
	}
	wg.Wait()

	elapsed := time.Since(start)
	if e.recorder != nil {
		e.recorder.ScanDuration(elapsed)
	}
	logging.LogScan(e.logger, len(instruments), len(signals), elapsed)
	return signals
}

// emit journals then delivers the signal. Journaling failure aborts
// the emit so the quota stays consistent with persisted state.
func (e *Engine) emit(ctx context.Context, sig *models.Signal) error {
	if e.journal != nil {
		if err := e.journal.SaveSignal(ctx, sig); err != nil {
			return apperrors.Wrap(err, "journaling signal")
		}
	}
	if e.notifier != nil {
		if err := e.notifier.Notify(ctx, sig); err != nil {
			// Delivery failure does not unwind an already-journaled
			// signal.
			e.logger.Error().Err(err).Str("signal_id", sig.ID).Msg("Signal delivery failed")
		}
	}
	return nil
}

func (e *Engine) reject(log zerolog.Logger, instrument, stage, outcome string, err error) error {
	if e.recorder != nil {
		e.recorder.Evaluation(instrument, outcome)
	}
	logging.LogReject(log, instrument, stage, err.Error())
	return err
}

// buildReasoning summarizes why the signal fired, in the order the
// pipeline established the facts.
func buildReasoning(res *Resolution, oiResult *models.OIAnalysis, tech *models.TechnicalSnapshot) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("PCR %.2f (%s %s OI sentiment)",
		oiResult.PutCallRatio, oiResult.Strength, oiResult.Sentiment))
	parts = append(parts, fmt.Sprintf("trend %s with strength %d/100", tech.Trend, tech.Strength))
	parts = append(parts, fmt.Sprintf("RSI %.1f", tech.Indicators.RSI))
	if tech.Pattern != models.PatternInsufficientData {
		parts = append(parts, fmt.Sprintf("pattern %s", tech.Pattern))
	}
	parts = append(parts, fmt.Sprintf("support %.0f / resistance %.0f",
		oiResult.SupportLevel, oiResult.ResistanceLevel))

	switch res.Basis {
	case BasisMeanReversion:
		parts = append(parts, "mean-reversion setup against an exhausted move")
	default:
		parts = append(parts, "OI and price trend in confluence")
	}
	return strings.Join(parts, "; ")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
