// Package notify delivers emitted signals to their configured
// channels.
package notify

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"fno-signals/internal/models"
)

// Channel delivers one signal to one destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, sig *models.Signal) error
}

// Manager fans a signal out to every enabled channel. Channel failures
// are logged and aggregated, not fatal: a dead Telegram bot must not
// silence the terminal.
type Manager struct {
	channels []Channel
	logger   zerolog.Logger
}

// NewManager builds a manager over the given channels.
func NewManager(logger zerolog.Logger, channels ...Channel) *Manager {
	return &Manager{channels: channels, logger: logger}
}

// Notify delivers the signal to every channel. The returned error
// lists the channels that failed, if any.
func (m *Manager) Notify(ctx context.Context, sig *models.Signal) error {
	var failed []string
	for _, ch := range m.channels {
		if err := ch.Send(ctx, sig); err != nil {
			m.logger.Error().Err(err).
				Str("channel", ch.Name()).
				Str("signal_id", sig.ID).
				Msg("Delivery failed")
			failed = append(failed, ch.Name())
		}
	}
	if len(failed) > 0 {
		return &DeliveryError{Channels: failed}
	}
	return nil
}

// DeliveryError reports which channels failed to deliver.
type DeliveryError struct {
	Channels []string
}

func (e *DeliveryError) Error() string {
	return "delivery failed on: " + strings.Join(e.Channels, ", ")
}
