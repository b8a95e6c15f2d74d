// Package notifier holds the delivery adapters for out-of-band channels.
// The log notifier is the development default; production deployments plug
// in real SMS/email/web-push gateways behind the same interface.
package notifier

import (
	"context"
	"log/slog"

	"authcore/internal/service"
)

var _ service.Notifier = (*LogNotifier)(nil)

// LogNotifier writes deliveries to the structured log instead of sending
// them. Codes are never logged, only their length.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) SendCode(ctx context.Context, identifier, countryCode, code string) error {
	slog.Info("otp code dispatched",
		"identifier_len", len(identifier),
		"country_code", countryCode,
		"code_len", len(code),
	)
	return nil
}

func (n *LogNotifier) SendPush(ctx context.Context, userID string, payload service.PushPayload) error {
	slog.Info("push notification dispatched",
		"user_id", userID,
		"request_id", payload.RequestID,
		"purpose", payload.Purpose,
	)
	return nil
}
