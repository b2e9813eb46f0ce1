package bot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"meowpremium-bot/internal/common/logger"
	"meowpremium-bot/internal/platform/telegram"
	cfgsvc "meowpremium-bot/internal/service/config"
)

// startTopUp enters the top-up flow at SelectPackage, overwriting any
// in-progress flow.
func (b *Bot) startTopUp(ctx context.Context, userID int64) {
	if ok, reason := b.gateUser(ctx, userID); !ok {
		_, _ = b.tg.SendMessage(ctx, userID, reason, nil)
		return
	}

	amounts := cfgsvc.TopUpAmounts(b.settings.Get(ctx, false))
	if len(amounts) == 0 {
		_, _ = b.tg.SendMessage(ctx, userID, "💳 Top-up packages are not configured yet. Please check back later.", nil)
		return
	}

	b.sessions.Set(userID, &TopUpSession{State: TopUpSelectPackage})
	_, _ = b.tg.SendMessage(ctx, userID, "💳 *Top Up*\n\nChoose a package:", packagesKeyboard(amounts))
	_, _ = b.tg.SendMessage(ctx, userID, "Or press "+labelCancel+" to abort.", cancelKeyboard())
}

// topUpPackageChosen moves SelectPackage → ChoosePaymentMethod.
func (b *Bot) topUpPackageChosen(ctx context.Context, userID int64, amount int64) error {
	s, ok := b.sessions.Get(userID).(*TopUpSession)
	if !ok || s.State != TopUpSelectPackage {
		// Stale button from an abandoned conversation.
		return nil
	}

	s.PackageAmount = amount
	s.State = TopUpChoosePaymentMethod
	b.sessions.Set(userID, s)

	values := b.settings.Get(ctx, false)
	info := cfgsvc.PaymentInfo(values)
	if info == "" {
		info = "Contact support for payment details."
	}

	text := fmt.Sprintf(
		"💳 *Package:* `%d`\n\n🏦 *Payment instructions*\n%s\n\nTransfer the amount, then press the button below.",
		amount, info,
	)
	_, err := b.tg.SendMessage(ctx, userID, text, confirmTopUpKeyboard(amount))
	return err
}

// topUpPaymentConfirmed moves ChoosePaymentMethod → AwaitReceipt. Entry into
// AwaitReceipt is gated on maintenance and ban state.
func (b *Bot) topUpPaymentConfirmed(ctx context.Context, userID int64, amount int64) error {
	s, ok := b.sessions.Get(userID).(*TopUpSession)
	if !ok || s.State != TopUpChoosePaymentMethod || s.PackageAmount != amount {
		return nil
	}

	if ok, reason := b.gateUser(ctx, userID); !ok {
		b.sessions.Clear(userID)
		_, _ = b.tg.SendMessage(ctx, userID, reason, mainKeyboard(false))
		return nil
	}

	s.State = TopUpAwaitReceipt
	b.sessions.Set(userID, s)
	_, err := b.tg.SendMessage(ctx, userID,
		"🧾 Now send a *photo of your transfer receipt*.\n\nPress "+labelCancel+" to abort.",
		cancelKeyboard())
	return err
}

// topUpText handles a plain text message while the top-up flow is active.
// Only AwaitReceipt expects input, and that input must be a photo.
func (b *Bot) topUpText(ctx context.Context, userID int64, msg *telegram.Message, s *TopUpSession) {
	switch s.State {
	case TopUpSelectPackage, TopUpChoosePaymentMethod:
		_, _ = b.tg.SendMessage(ctx, userID, "☝️ Use the buttons above, or press "+labelCancel+".", nil)
	case TopUpAwaitReceipt:
		_, _ = b.tg.SendMessage(ctx, userID, "🧾 Please send the receipt as a *photo*, or press "+labelCancel+".", nil)
	}
}

// topUpReceipt finalizes the flow: the maintenance and ban gates are
// re-checked here because they may have flipped since entry, then the proof
// goes to the admin and the session ends.
func (b *Bot) topUpReceipt(ctx context.Context, from *telegram.User, msg *telegram.Message, s *TopUpSession) {
	userID := from.ID

	if ok, reason := b.gateUser(ctx, userID); !ok {
		b.sessions.Clear(userID)
		_, _ = b.tg.SendMessage(ctx, userID, reason, mainKeyboard(false))
		return
	}

	detected := detectAmount(msg.Caption)
	if detected == 0 {
		detected = s.PackageAmount
	}

	if err := b.receipts.Submit(ctx, from, msg, detected); err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Msg("Receipt submission failed")
		_, _ = b.tg.SendMessage(ctx, userID, "😿 Could not submit your receipt, please try again.", nil)
		return
	}

	b.sessions.Clear(userID)
	_, _ = b.tg.SendMessage(ctx, userID,
		"✅ *Receipt received!*\n\nYou will be notified once it is reviewed.",
		mainKeyboard(b.admin.IsAdmin(ctx, userID)))
}

var amountPattern = regexp.MustCompile(`\d{3,}`)

// detectAmount pulls a plausible transfer amount out of a receipt caption.
func detectAmount(caption string) int64 {
	match := amountPattern.FindString(caption)
	if match == "" {
		return 0
	}
	n, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
