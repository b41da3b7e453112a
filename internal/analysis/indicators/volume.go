package indicators

import (
	"time"

	"fno-signals/internal/models"
)

// SessionVWAP calculates Volume Weighted Average Price anchored to the
// trading session: the cumulative sums reset whenever the bar timestamp
// crosses a calendar-day boundary.
type SessionVWAP struct{}

// NewSessionVWAP creates a new session-anchored VWAP indicator.
func NewSessionVWAP() *SessionVWAP {
	return &SessionVWAP{}
}

func (v *SessionVWAP) Name() string {
	return "VWAP"
}

func (v *SessionVWAP) Period() int {
	return 1
}

func (v *SessionVWAP) Calculate(candles []models.Candle) ([]float64, error) {
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	result := make([]float64, n)

	var cumulativeTPV float64 // Cumulative Typical Price * Volume
	var cumulativeVol float64

	for i := 0; i < n; i++ {
		if i > 0 && !sameSession(candles[i-1].Timestamp, candles[i].Timestamp) {
			cumulativeTPV = 0
			cumulativeVol = 0
		}

		tp := typicalPrice(candles[i])
		cumulativeTPV += tp * float64(candles[i].Volume)
		cumulativeVol += float64(candles[i].Volume)

		if cumulativeVol != 0 {
			result[i] = cumulativeTPV / cumulativeVol
		}
	}

	return result, nil
}

func sameSession(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
