package feedback

import (
	"errors"
	"fmt"
	"strings"

	"candor-backend/internal/config"
	"candor-backend/internal/email"
	"candor-backend/internal/utils"

	"github.com/labstack/echo/v4"
)

// BatchResult carries one human-readable line per input address, split by
// outcome. Input order is preserved within each list. Both slices are always
// non-nil so the JSON response renders [] instead of null.
type BatchResult struct {
	Success []string `json:"success"`
	Error   []string `json:"error"`
}

// Inviter issues invite tokens in batches and mails out redemption links.
// A nil notifier is tolerated: tokens are still issued, delivery is reported
// as failed per address.
type Inviter struct {
	registry        InviteRegistry
	notifier        email.Notifier
	baseURL         string
	blockDisposable bool
	logger          echo.Logger
}

func NewInviter(registry InviteRegistry, notifier email.Notifier, cfg *config.Config, logger echo.Logger) *Inviter {
	return &Inviter{
		registry:        registry,
		notifier:        notifier,
		baseURL:         strings.TrimSuffix(cfg.Invites.BaseURL, "/"),
		blockDisposable: cfg.Invites.BlockDisposable,
		logger:          logger,
	}
}

// InviteAll processes each address independently; one bad entry never aborts
// the rest. Issued tokens are committed before any mail is sent, so a
// delivery failure leaves a valid token behind and only the report differs.
func (inv *Inviter) InviteAll(emails []string) BatchResult {
	result := BatchResult{Success: []string{}, Error: []string{}}

	for _, addr := range emails {
		if strings.TrimSpace(addr) == "" {
			result.Error = append(result.Error, "Invalid empty email entry.")
			continue
		}

		// Opt-in gate; address syntax is deliberately not checked here,
		// only at redemption time.
		if inv.blockDisposable && utils.IsDisposableEmail(addr) {
			result.Error = append(result.Error,
				fmt.Sprintf("Email '%s' rejected: temporary email addresses are not allowed.", addr))
			continue
		}

		tokenID, err := inv.registry.Issue(addr)
		if err != nil {
			if errors.Is(err, ErrDuplicateInvite) {
				result.Error = append(result.Error, fmt.Sprintf("Email '%s' already invited!", addr))
			} else {
				if inv.logger != nil {
					inv.logger.Errorf("Failed to issue invite for %s: %v", addr, err)
				}
				result.Error = append(result.Error, fmt.Sprintf("Error inviting %s: internal error", addr))
			}
			continue
		}

		if err := inv.notify(addr, tokenID); err != nil {
			// The token stays valid; only delivery failed.
			result.Error = append(result.Error, fmt.Sprintf("Error sending invite to %s: %v", addr, err))
			continue
		}

		result.Success = append(result.Success, fmt.Sprintf("Invite sent successfully to %s", addr))
	}

	return result
}

func (inv *Inviter) notify(addr, tokenID string) error {
	if inv.notifier == nil {
		return errors.New("mail transport not configured")
	}
	feedbackURL := fmt.Sprintf("%s/feedback-form?token=%s", inv.baseURL, tokenID)
	return inv.notifier.SendFeedbackInvitation(addr, feedbackURL)
}
