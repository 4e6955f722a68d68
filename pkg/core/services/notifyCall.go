package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seatcall/seatcall/internal/config"
	"github.com/seatcall/seatcall/pkg/clients/gmailclient"
	"github.com/seatcall/seatcall/pkg/db"
)

// EmailSender defines the email operations needed to notify candidates
type EmailSender interface {
	SendEmail(to, subject, body string) error
}

// NotifyResult reports which called candidates were emailed
type NotifyResult struct {
	Sent int
	// NoEmail lists external ids of called candidates without an address
	NoEmail []string
	// Failed maps external ids to the send error
	Failed map[string]error
	// Deadline is the enrolment deadline announced, zero when no schedule is configured
	Deadline time.Time
}

// NotifyCall emails every candidate selected in the round. A failed send is recorded and
// the remaining candidates are still notified.
func NotifyCall(
	ctx context.Context,
	store db.SessionStore,
	mailer EmailSender,
	cfg *config.Config,
	logger *zap.Logger,
	round int,
	now time.Time,
) (*NotifyResult, error) {
	logger.Debug("Starting notifyCall", zap.Int("round", round))

	// Step 1: Fetch the call list
	candidates, err := ViewRound(ctx, store, cfg, logger, round, false)
	if err != nil {
		return nil, err
	}

	// Step 2: Work out the enrolment deadline from the call schedule
	deadline, ok, err := cfg.NextCallDate(now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next call date: %w", err)
	}
	if !ok {
		deadline = time.Time{}
	}

	// Step 3: Send
	result := &NotifyResult{Failed: make(map[string]error), Deadline: deadline}
	for _, c := range candidates {
		if c.Email == "" {
			result.NoEmail = append(result.NoEmail, c.ExternalID)
			continue
		}

		subject, body := gmailclient.CallNotice(c, deadline)
		if err := mailer.SendEmail(c.Email, subject, body); err != nil {
			logger.Warn("Failed to send call notice",
				zap.String("external_id", c.ExternalID),
				zap.Error(err))
			result.Failed[c.ExternalID] = err
			continue
		}
		result.Sent++
	}

	logger.Info("Call notices sent",
		zap.Int("round", round),
		zap.Int("sent", result.Sent),
		zap.Int("no_email", len(result.NoEmail)),
		zap.Int("failed", len(result.Failed)))

	return result, nil
}
