package signal

import (
	"math"
	"sort"

	apperrors "fno-signals/internal/errors"
	"fno-signals/internal/models"
)

// otmCandidates is how many out-of-the-money strikes compete on
// liquidity.
const otmCandidates = 3

// StrikeSelector picks the contract a signal should trade.
type StrikeSelector struct{}

// NewStrikeSelector builds a strike selector.
func NewStrikeSelector() *StrikeSelector {
	return &StrikeSelector{}
}

// Select picks the most liquid of the nearest out-of-the-money strikes
// matching the signal direction. When no strike sits out of the money,
// the nearest strikes by absolute distance compete instead. A chain
// with no contracts of the needed type fails closed.
func (s *StrikeSelector) Select(chain *models.OptionChain, signalType models.SignalType) (*models.OptionContract, error) {
	contractType := signalType.ContractType()

	var side []models.OptionContract
	if contractType == models.ContractCall {
		side = chain.Calls()
	} else {
		side = chain.Puts()
	}
	if len(side) == 0 {
		return nil, apperrors.NewDataError("option_chain", chain.Symbol,
			"no contracts of required type", apperrors.ErrInsufficientData)
	}

	candidates := otmNearest(side, chain.SpotPrice, contractType)
	if len(candidates) == 0 {
		candidates = nearestByDistance(side, chain.SpotPrice)
	}

	best := mostLiquid(candidates)
	return &best, nil
}

// otmNearest filters one side to out-of-the-money strikes and keeps
// the few closest to spot. Calls are OTM at or above spot, puts at or
// below.
func otmNearest(side []models.OptionContract, spot float64, t models.ContractType) []models.OptionContract {
	var otm []models.OptionContract
	for _, c := range side {
		if t == models.ContractCall && c.Strike >= spot {
			otm = append(otm, c)
		}
		if t == models.ContractPut && c.Strike <= spot {
			otm = append(otm, c)
		}
	}

	if t == models.ContractCall {
		sort.Slice(otm, func(i, j int) bool { return otm[i].Strike < otm[j].Strike })
	} else {
		sort.Slice(otm, func(i, j int) bool { return otm[i].Strike > otm[j].Strike })
	}

	if len(otm) > otmCandidates {
		otm = otm[:otmCandidates]
	}
	return otm
}

func nearestByDistance(side []models.OptionContract, spot float64) []models.OptionContract {
	sorted := make([]models.OptionContract, len(side))
	copy(sorted, side)
	sort.Slice(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Strike-spot) < math.Abs(sorted[j].Strike-spot)
	})
	if len(sorted) > otmCandidates {
		sorted = sorted[:otmCandidates]
	}
	return sorted
}

// mostLiquid ranks candidates by OI times volume. A contract with no
// traded volume competes on its raw open interest.
func mostLiquid(candidates []models.OptionContract) models.OptionContract {
	best := candidates[0]
	bestScore := liquidityScore(best)
	for _, c := range candidates[1:] {
		if score := liquidityScore(c); score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}

func liquidityScore(c models.OptionContract) int64 {
	if c.Volume > 0 {
		return c.OI * c.Volume
	}
	return c.OI
}
