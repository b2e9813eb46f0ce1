// Package broadcast delivers one admin-authored message to the whole user
// base, isolating per-recipient failures so a blocked bot never aborts the
// rest of the run.
package broadcast

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"meowpremium-bot/internal/common/logger"
	"meowpremium-bot/internal/common/metrics"
	"meowpremium-bot/internal/platform/telegram"
)

// Sender is the slice of the chat transport the engine needs.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup interface{}) (*telegram.Message, error)
}

// Result is the delivery tally for one run.
type Result struct {
	Total     int
	Succeeded int
	Failed    int
}

// ProgressFunc receives a running tally every reportEvery sends.
type ProgressFunc func(done, total, failed int)

type Service struct {
	sender      Sender
	limiter     *rate.Limiter
	reportEvery int
	log         zerolog.Logger
}

// NewService builds an engine pacing sends at sendsPerSecond to respect the
// outbound rate limit.
func NewService(sender Sender, sendsPerSecond float64) *Service {
	if sendsPerSecond <= 0 {
		sendsPerSecond = 20
	}
	return &Service{
		sender:      sender,
		limiter:     rate.NewLimiter(rate.Limit(sendsPerSecond), 1),
		reportEvery: 25,
		log:         logger.With("broadcast"),
	}
}

// Execute sends content to every recipient sequentially. Each failed send is
// counted and logged, never propagated; all recipients are attempted
// regardless of where failures occur. Individual failures are not retried
// within a run.
func (s *Service) Execute(ctx context.Context, recipients []int64, content string, progress ProgressFunc) Result {
	result := Result{Total: len(recipients)}

	for i, id := range recipients {
		if err := s.limiter.Wait(ctx); err != nil {
			// Context cancelled mid-run; everything not attempted counts
			// as failed so the tally still adds up.
			result.Failed = result.Total - result.Succeeded
			return result
		}

		if _, err := s.sender.SendMessage(ctx, id, content, nil); err != nil {
			result.Failed++
			metrics.BroadcastSendsTotal.WithLabelValues("failed").Inc()
			if telegram.IsUnreachableRecipient(err) {
				s.log.Debug().Int64("user_id", id).Msg("Recipient unreachable")
			} else {
				s.log.Warn().Err(err).Int64("user_id", id).Msg("Send failed")
			}
		} else {
			result.Succeeded++
			metrics.BroadcastSendsTotal.WithLabelValues("ok").Inc()
		}

		if progress != nil && (i+1)%s.reportEvery == 0 && i+1 < result.Total {
			progress(i+1, result.Total, result.Failed)
		}
	}

	return result
}
