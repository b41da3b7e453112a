package marketdata

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	apperrors "fno-signals/internal/errors"
	"fno-signals/internal/models"
	"fno-signals/pkg/utils"
)

// Index underlyings quote under their full NSE names.
var spotAliases = map[string]string{
	"NIFTY":      "NIFTY 50",
	"BANKNIFTY":  "NIFTY BANK",
	"FINNIFTY":   "NIFTY FIN SERVICE",
	"MIDCPNIFTY": "NIFTY MID SELECT",
}

// KiteProvider implements Provider on the Kite Connect API.
type KiteProvider struct {
	client    *kiteconnect.Client
	timeframe string

	mu          sync.RWMutex
	nfo         []models.Instrument
	nseTokens   map[string]uint32
	refreshedAt time.Time
}

// NewKiteProvider builds a provider with an already-issued access
// token. Session management is the operator's concern.
func NewKiteProvider(apiKey, accessToken, timeframe string) *KiteProvider {
	client := kiteconnect.New(apiKey)
	client.SetAccessToken(accessToken)
	return &KiteProvider{
		client:    client,
		timeframe: timeframe,
		nseTokens: make(map[string]uint32),
	}
}

// GetSpotPrice fetches the last traded price of the underlying.
func (k *KiteProvider) GetSpotPrice(ctx context.Context, symbol string) (float64, error) {
	key := "NSE:" + spotSymbol(symbol)
	quotes, err := k.client.GetLTP(key)
	if err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrUpstreamUnavailable, "quoting %s: %v", key, err)
	}
	q, ok := quotes[key]
	if !ok {
		return 0, apperrors.Wrapf(apperrors.ErrSymbolNotFound, "no quote for %s", key)
	}
	return q.LastPrice, nil
}

// GetPriceHistory fetches intraday candles over the lookback window,
// oldest first.
func (k *KiteProvider) GetPriceHistory(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	token, err := k.spotToken(ctx, symbol)
	if err != nil {
		return nil, err
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)
	data, err := k.client.GetHistoricalData(int(token), k.timeframe, from, to, false, false)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUpstreamUnavailable, "history for %s: %v", symbol, err)
	}

	candles := make([]models.Candle, len(data))
	for i, d := range data {
		candles[i] = models.Candle{
			Timestamp: d.Date.Time,
			Open:      d.Open,
			High:      d.High,
			Low:       d.Low,
			Close:     d.Close,
			Volume:    int64(d.Volume),
		}
	}
	return candles, nil
}

// GetOptionChain assembles the nearest-expiry chain for the
// underlying: strikes and types from the instrument dump, premiums and
// open interest from a batched quote call.
func (k *KiteProvider) GetOptionChain(ctx context.Context, symbol string) (*models.OptionChain, error) {
	spot, err := k.GetSpotPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	contracts, expiry, err := k.nearestExpiryContracts(ctx, symbol)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(contracts))
	for i, inst := range contracts {
		keys[i] = "NFO:" + inst.Symbol
	}
	quotes, err := k.client.GetQuote(keys...)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUpstreamUnavailable, "quoting chain for %s: %v", symbol, err)
	}

	chain := &models.OptionChain{
		Symbol:    symbol,
		SpotPrice: spot,
		Expiry:    expiry,
		Timestamp: time.Now(),
	}
	for i, inst := range contracts {
		q, ok := quotes[keys[i]]
		if !ok {
			continue
		}
		chain.Contracts = append(chain.Contracts, models.OptionContract{
			TradingSymbol: inst.Symbol,
			Underlying:    symbol,
			Strike:        inst.Strike,
			Type:          models.ContractType(inst.InstrType),
			Expiry:        inst.Expiry,
			LTP:           q.LastPrice,
			OI:            int64(q.OI),
			Volume:        int64(q.Volume),
		})
	}
	if len(chain.Contracts) == 0 {
		return nil, apperrors.NewDataError("option_chain", symbol,
			"no quotable contracts for nearest expiry", apperrors.ErrUpstreamUnavailable)
	}
	return chain, nil
}

// nearestExpiryContracts filters the cached NFO dump to the
// underlying's options with the closest expiry on or after today.
func (k *KiteProvider) nearestExpiryContracts(ctx context.Context, symbol string) ([]models.Instrument, time.Time, error) {
	if err := k.ensureInstruments(ctx); err != nil {
		return nil, time.Time{}, err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	today := time.Now().Truncate(24 * time.Hour)
	var expiries []time.Time
	seen := make(map[time.Time]bool)
	for _, inst := range k.nfo {
		if inst.Name != symbol || (inst.InstrType != "CE" && inst.InstrType != "PE") {
			continue
		}
		if inst.Expiry.Before(today) || seen[inst.Expiry] {
			continue
		}
		seen[inst.Expiry] = true
		expiries = append(expiries, inst.Expiry)
	}
	if len(expiries) == 0 {
		return nil, time.Time{}, apperrors.Wrapf(apperrors.ErrSymbolNotFound,
			"no option expiries for %s", symbol)
	}
	sort.Slice(expiries, func(i, j int) bool { return expiries[i].Before(expiries[j]) })
	nearest := expiries[0]

	var contracts []models.Instrument
	for _, inst := range k.nfo {
		if inst.Name == symbol && inst.Expiry.Equal(nearest) &&
			(inst.InstrType == "CE" || inst.InstrType == "PE") {
			contracts = append(contracts, inst)
		}
	}
	return contracts, nearest, nil
}

func (k *KiteProvider) spotToken(ctx context.Context, symbol string) (uint32, error) {
	if err := k.ensureInstruments(ctx); err != nil {
		return 0, err
	}

	k.mu.RLock()
	token, ok := k.nseTokens[spotSymbol(symbol)]
	k.mu.RUnlock()
	if !ok {
		return 0, apperrors.Wrapf(apperrors.ErrSymbolNotFound, "no NSE token for %s", symbol)
	}
	return token, nil
}

// ensureInstruments refreshes the instrument dumps once per session
// day. Kite publishes a fresh dump each morning.
func (k *KiteProvider) ensureInstruments(ctx context.Context) error {
	k.mu.RLock()
	fresh := !k.refreshedAt.IsZero() && sameDay(k.refreshedAt, time.Now())
	k.mu.RUnlock()
	if fresh {
		return nil
	}

	retryCfg := utils.DefaultRetryConfig()
	nfo, err := utils.RetryWithResult(ctx, retryCfg, func() (kiteconnect.Instruments, error) {
		return k.client.GetInstrumentsByExchange("NFO")
	})
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrUpstreamUnavailable, "fetching NFO instruments: %v", err)
	}
	nse, err := utils.RetryWithResult(ctx, retryCfg, func() (kiteconnect.Instruments, error) {
		return k.client.GetInstrumentsByExchange("NSE")
	})
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrUpstreamUnavailable, "fetching NSE instruments: %v", err)
	}

	mapped := make([]models.Instrument, len(nfo))
	for i, inst := range nfo {
		mapped[i] = models.Instrument{
			Token:     uint32(inst.InstrumentToken),
			Symbol:    inst.Tradingsymbol,
			Name:      inst.Name,
			Exchange:  models.NFO,
			Segment:   inst.Segment,
			LotSize:   int(inst.LotSize),
			TickSize:  inst.TickSize,
			Expiry:    inst.Expiry.Time,
			Strike:    inst.StrikePrice,
			InstrType: inst.InstrumentType,
		}
	}
	tokens := make(map[string]uint32, len(nse))
	for _, inst := range nse {
		tokens[inst.Tradingsymbol] = uint32(inst.InstrumentToken)
	}

	k.mu.Lock()
	k.nfo = mapped
	k.nseTokens = tokens
	k.refreshedAt = time.Now()
	k.mu.Unlock()
	return nil
}

func spotSymbol(symbol string) string {
	if alias, ok := spotAliases[symbol]; ok {
		return alias
	}
	return symbol
}

func sameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

var _ Provider = (*KiteProvider)(nil)

// String identifies the provider in logs.
func (k *KiteProvider) String() string {
	return fmt.Sprintf("kite(%s)", k.timeframe)
}
