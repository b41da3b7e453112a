package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fno-signals/internal/models"
)

const telegramAPI = "https://api.telegram.org/bot%s/sendMessage"

// TelegramChannel delivers signals through the Telegram bot API.
type TelegramChannel struct {
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegramChannel builds a Telegram channel.
func NewTelegramChannel(botToken, chatID string) *TelegramChannel {
	return &TelegramChannel{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramChannel) Name() string { return "telegram" }

// Send posts the signal as a formatted message.
func (t *TelegramChannel) Send(ctx context.Context, sig *models.Signal) error {
	text := fmt.Sprintf(
		"🔔 *%s %s*\n"+
			"Strike: %.0f %s, expiry %s\n"+
			"Entry: ₹%.2f | Target: ₹%.2f | SL: ₹%.2f\n"+
			"R:R %.1f | Qty %d lots | Confidence %d%% (%s)\n"+
			"_%s_",
		sig.SignalType, sig.TradingSymbol,
		sig.Strike, sig.OptionType, sig.Expiry.Format("02 Jan"),
		sig.EntryPrice, sig.TargetPrice, sig.StopLoss,
		sig.RiskReward, sig.Quantity, sig.Confidence, sig.ConfidenceLevel,
		sig.Reasoning,
	)

	payload, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("marshaling telegram payload: %w", err)
	}

	url := fmt.Sprintf(telegramAPI, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned %d", resp.StatusCode)
	}
	return nil
}
