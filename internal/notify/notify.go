// Package notify sends SMS alerts through Twilio. When no credentials
// are configured the notifier is a no-op; delivery failures are logged
// and swallowed so notification trouble can never stall a poll cycle.
package notify

import (
	"context"

	"dfwatch/internal/contracts"
	"dfwatch/internal/domain/consts"
	"dfwatch/internal/logging"
	"dfwatch/internal/models"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMS delivers notifications as text messages.
type SMS struct {
	cfg    *models.NotifyConfig
	client *twilio.RestClient
}

// New returns an SMS notifier. A nil config disables delivery entirely.
func New(cfg *models.NotifyConfig) *SMS {
	s := &SMS{cfg: cfg}
	if cfg != nil {
		s.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		s.client.Client.SetTimeout(consts.NotifyTimeout)
	}
	return s
}

// Enabled reports whether notifications are configured.
func (s *SMS) Enabled() bool {
	return s.cfg != nil
}

// Notify sends msg as an SMS. Errors are logged, never returned.
func (s *SMS) Notify(_ context.Context, kind contracts.NotifyKind, msg string) {
	if !s.Enabled() {
		logging.D(2, "notifications disabled, dropping %s message", kindName(kind))
		return
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(s.cfg.To)
	params.SetFrom(s.cfg.From)
	params.SetBody(msg)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		logging.E("failed to send %s notification: %v", kindName(kind), err)
		return
	}
	logging.D(1, "sent %s notification to %s", kindName(kind), s.cfg.To)
}

func kindName(kind contracts.NotifyKind) string {
	switch kind {
	case contracts.NotifyNewVideo:
		return "new-video"
	case contracts.NotifyReauthRequired:
		return "reauth-required"
	default:
		return "unknown"
	}
}
