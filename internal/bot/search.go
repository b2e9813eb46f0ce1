package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meowpremium-bot/internal/platform/telegram"
	"meowpremium-bot/internal/service/ledger"
)

// searchText resolves a user identifier and replies with the profile card.
// An unresolvable query re-prompts rather than ending the flow.
func (b *Bot) searchText(ctx context.Context, userID int64, msg *telegram.Message) {
	if !b.admin.IsAdmin(ctx, userID) {
		b.sessions.Clear(userID)
		_, _ = b.tg.SendMessage(ctx, userID, "⛔ *Access Denied*\nAdmin only command.", mainKeyboard(false))
		return
	}

	query := strings.TrimSpace(msg.Text)
	targetID, err := b.ledger.Resolve(ctx, query)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			_, _ = b.tg.SendMessage(ctx, userID,
				fmt.Sprintf("❌ No user matching `%s`. Send another ID or @username:", query), nil)
		} else {
			_, _ = b.tg.SendMessage(ctx, userID, "😿 Lookup failed, try again:", nil)
		}
		return
	}

	if err := b.userCard(ctx, userID, targetID); err != nil {
		_, _ = b.tg.SendMessage(ctx, userID, "😿 Could not load the profile, try again:", nil)
		return
	}

	b.sessions.Clear(userID)
	_, _ = b.tg.SendMessage(ctx, userID, "Done. Back to the menu.", mainKeyboard(true))
}
