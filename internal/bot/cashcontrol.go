package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"meowpremium-bot/internal/platform/telegram"
	"meowpremium-bot/internal/service/ledger"
)

// cashControlText drives the admin cash-control conversation. Input that
// fails to parse or resolve re-prompts the same state with an error.
func (b *Bot) cashControlText(ctx context.Context, userID int64, msg *telegram.Message, s *CashControlSession) {
	if !b.admin.IsAdmin(ctx, userID) {
		b.sessions.Clear(userID)
		_, _ = b.tg.SendMessage(ctx, userID, "⛔ *Access Denied*\nAdmin only command.", mainKeyboard(false))
		return
	}

	input := strings.TrimSpace(msg.Text)

	switch s.State {
	case CashControlAwaitTarget:
		targetID, err := b.ledger.Resolve(ctx, input)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				_, _ = b.tg.SendMessage(ctx, userID,
					fmt.Sprintf("❌ User `%s` not found in database. Try again:", input), nil)
			} else {
				_, _ = b.tg.SendMessage(ctx, userID, "😿 Lookup failed, try again:", nil)
			}
			return
		}

		s.TargetID = targetID
		s.State = CashControlAwaitDelta
		b.sessions.Set(userID, s)
		_, _ = b.tg.SendMessage(ctx, userID,
			"💵 Enter amount to add / deduct:\nExample: `+5000` or `-2000`", cancelKeyboard())

	case CashControlAwaitDelta:
		delta, err := strconv.ParseInt(strings.ReplaceAll(input, " ", ""), 10, 64)
		if err != nil || delta == 0 {
			_, _ = b.tg.SendMessage(ctx, userID, "❌ Invalid amount format. Use `+5000` or `-2000`", nil)
			return
		}

		newBalance, err := b.ledger.Adjust(ctx, s.TargetID, delta)
		if err != nil {
			switch {
			case errors.Is(err, ledger.ErrBalanceRejected):
				_, _ = b.tg.SendMessage(ctx, userID,
					"❌ That deduction would make the balance negative. Enter a smaller amount:", nil)
			case errors.Is(err, ledger.ErrNotFound):
				s.State = CashControlAwaitTarget
				b.sessions.Set(userID, s)
				_, _ = b.tg.SendMessage(ctx, userID, "❌ User disappeared. Enter User ID or @username:", nil)
			default:
				_, _ = b.tg.SendMessage(ctx, userID, fmt.Sprintf("❌ Error updating balance: %v", err), nil)
			}
			return
		}

		b.sessions.Clear(userID)
		_, _ = b.tg.SendMessage(ctx, userID, fmt.Sprintf(
			"✅ *Cash Updated Successfully*\n\n"+
				"🆔 ID: `%d`\n💰 Change: `%+d` Coins\n"+
				"💎 Old Balance: `%d` Coins\n💎 New Balance: `%d` Coins",
			s.TargetID, delta, newBalance-delta, newBalance,
		), mainKeyboard(true))
	}
}
