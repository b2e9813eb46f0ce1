package bot

import (
	"context"
	"fmt"

	"meowpremium-bot/internal/common/logger"
	"meowpremium-bot/internal/platform/telegram"
	cfgsvc "meowpremium-bot/internal/service/config"
)

// broadcastText collects the draft (AwaitContent → AwaitConfirmation).
func (b *Bot) broadcastText(ctx context.Context, userID int64, msg *telegram.Message, s *BroadcastSession) {
	if !b.admin.IsAdmin(ctx, userID) {
		b.sessions.Clear(userID)
		_, _ = b.tg.SendMessage(ctx, userID, "⛔ *Access Denied*\nAdmin only command.", mainKeyboard(false))
		return
	}

	switch s.State {
	case BroadcastAwaitContent:
		if msg.Text == "" {
			_, _ = b.tg.SendMessage(ctx, userID, "❌ Broadcasts are text-only. Send the message text:", nil)
			return
		}
		s.Draft = msg.Text
		s.State = BroadcastAwaitConfirmation
		b.sessions.Set(userID, s)
		_, _ = b.tg.SendMessage(ctx, userID,
			fmt.Sprintf("👾 *Preview*\n\n%s\n\nSend this to everyone?", s.Draft),
			broadcastConfirmKeyboard())

	case BroadcastAwaitConfirmation:
		_, _ = b.tg.SendMessage(ctx, userID, "☝️ Use the buttons above, or press "+labelCancel+".", nil)
	}
}

// broadcastConfirmed executes the fan-out inside this handler invocation.
// The run is long-lived; the engine paces sends and isolates per-recipient
// failures, and the admin gets a running tally.
func (b *Bot) broadcastConfirmed(ctx context.Context, userID int64, confirm bool) error {
	s, ok := b.sessions.Get(userID).(*BroadcastSession)
	if !ok || s.State != BroadcastAwaitConfirmation {
		return nil
	}
	if !b.admin.IsAdmin(ctx, userID) {
		b.sessions.Clear(userID)
		return nil
	}

	b.sessions.Clear(userID)
	if !confirm {
		_, _ = b.tg.SendMessage(ctx, userID, "❌ Broadcast cancelled.", mainKeyboard(true))
		return nil
	}

	values := b.settings.Get(ctx, false)
	recipients, err := b.ledger.RecipientIDs(ctx, cfgsvc.BroadcastIncludeBanned(values), b.admin.ResolveAdminID(values))
	if err != nil {
		return err
	}

	_, _ = b.tg.SendMessage(ctx, userID,
		fmt.Sprintf("👾 Broadcasting to %d users…", len(recipients)), nil)

	result := b.broadcast.Execute(ctx, recipients, s.Draft, func(done, total, failed int) {
		_, _ = b.tg.SendMessage(ctx, userID,
			fmt.Sprintf("📡 Progress: %d/%d sent, %d failed", done, total, failed), nil)
	})

	logger.Info().
		Int("total", result.Total).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("Broadcast finished")

	_, _ = b.tg.SendMessage(ctx, userID, fmt.Sprintf(
		"✅ *Broadcast complete*\n\n👥 Total: %d\n✅ Delivered: %d\n❌ Failed: %d",
		result.Total, result.Succeeded, result.Failed,
	), mainKeyboard(true))
	return nil
}
