package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"meowpremium-bot/internal/common/logger"
	"meowpremium-bot/internal/common/metrics"
	"meowpremium-bot/internal/domain/order"
	"meowpremium-bot/internal/platform/telegram"
	cfgsvc "meowpremium-bot/internal/service/config"
	"meowpremium-bot/internal/service/ledger"
	"meowpremium-bot/internal/service/pricing"
)

var (
	phonePattern    = regexp.MustCompile(`^\+?\d{6,15}$`)
	usernamePattern = regexp.MustCompile(`^@?[A-Za-z0-9_]{5,32}$`)
)

// showProducts lists the configured products as inline buttons.
func (b *Bot) showProducts(ctx context.Context, userID int64) {
	keys := cfgsvc.Products(b.settings.Get(ctx, false))
	if len(keys) == 0 {
		_, _ = b.tg.SendMessage(ctx, userID, "🛍 No products are configured yet. Please check back later.", nil)
		return
	}
	_, _ = b.tg.SendMessage(ctx, userID, "🛍 *Products*\n\nPick one:", productsKeyboard(keys))
}

// productChosen enters the purchase flow at ProductChosen and immediately
// presents the resolved coin price (→ SelectPrice).
func (b *Bot) productChosen(ctx context.Context, userID int64, key string) error {
	if ok, reason := b.gateUser(ctx, userID); !ok {
		_, _ = b.tg.SendMessage(ctx, userID, reason, nil)
		return nil
	}

	values := b.settings.Get(ctx, false)
	price, found := cfgsvc.ProductPrice(values, key)
	if !found {
		_, _ = b.tg.SendMessage(ctx, userID, "😿 That product is no longer available.", nil)
		return nil
	}

	coinPrice := pricing.CoinPrice(price, cfgsvc.CoinsPerUnit(values))
	b.sessions.Set(userID, &PurchaseSession{
		State:       PurchaseSelectPrice,
		ProductKey:  key,
		PriceAmount: price,
		CoinPrice:   coinPrice,
	})

	text := fmt.Sprintf(
		"🛍 *%s*\n\n💵 Price: `%d`\n💎 Coin price: `%d` Coins\n\nConfirm to continue.",
		key, price, coinPrice,
	)
	if _, err := b.tg.SendMessage(ctx, userID, text, confirmPriceKeyboard(key)); err != nil {
		return err
	}
	_, _ = b.tg.SendMessage(ctx, userID, "Press "+labelCancel+" to abort.", cancelKeyboard())
	return nil
}

// priceConfirmed moves SelectPrice → AwaitPhone.
func (b *Bot) priceConfirmed(ctx context.Context, userID int64, key string) error {
	s, ok := b.sessions.Get(userID).(*PurchaseSession)
	if !ok || s.State != PurchaseSelectPrice || s.ProductKey != key {
		return nil
	}

	s.State = PurchaseAwaitPhone
	b.sessions.Set(userID, s)
	_, err := b.tg.SendMessage(ctx, userID, "📱 Enter the *phone number* for this order:", cancelKeyboard())
	return err
}

// purchaseText advances the text-input states. A validation failure
// re-prompts the same state, never advances or resets.
func (b *Bot) purchaseText(ctx context.Context, from *telegram.User, msg *telegram.Message, s *PurchaseSession) {
	userID := from.ID
	input := strings.TrimSpace(msg.Text)

	switch s.State {
	case PurchaseProductChosen, PurchaseSelectPrice:
		_, _ = b.tg.SendMessage(ctx, userID, "☝️ Use the buttons above, or press "+labelCancel+".", nil)

	case PurchaseAwaitPhone:
		if !phonePattern.MatchString(input) {
			_, _ = b.tg.SendMessage(ctx, userID, "❌ That does not look like a phone number. Example: `+959123456789`", nil)
			return
		}
		s.Phone = input
		s.State = PurchaseAwaitUsername
		b.sessions.Set(userID, s)
		_, _ = b.tg.SendMessage(ctx, userID, "👤 Enter the *target username* (e.g. `@username`):", cancelKeyboard())

	case PurchaseAwaitUsername:
		if !usernamePattern.MatchString(input) {
			_, _ = b.tg.SendMessage(ctx, userID, "❌ Invalid username. Use 5-32 letters, digits or underscores.", nil)
			return
		}
		s.TargetUsername = "@" + strings.TrimPrefix(input, "@")
		b.finalizePurchase(ctx, from, s)
	}
}

// finalizePurchase is the debit step. The gates are re-checked, the debit is
// one atomic store operation against the current balance, and ORDER_PLACED is
// only recorded after the debit is confirmed.
func (b *Bot) finalizePurchase(ctx context.Context, from *telegram.User, s *PurchaseSession) {
	userID := from.ID

	if ok, reason := b.gateUser(ctx, userID); !ok {
		b.sessions.Clear(userID)
		_, _ = b.tg.SendMessage(ctx, userID, reason, mainKeyboard(false))
		return
	}

	newBalance, err := b.ledger.Debit(ctx, userID, s.CoinPrice)
	switch {
	case errors.Is(err, ledger.ErrBalanceRejected):
		b.appendPurchaseAudit(ctx, userID, s, order.StatusInsufficientFunds, "")
		b.sessions.Clear(userID)
		_, _ = b.tg.SendMessage(ctx, userID,
			fmt.Sprintf("💸 *Not enough coins.*\n\nThis order costs `%d` Coins. Top up and try again!", s.CoinPrice),
			mainKeyboard(b.admin.IsAdmin(ctx, userID)))
		return
	case err != nil:
		// No partial commit: the order is not recorded as placed.
		logger.Error().Err(err).Int64("user_id", userID).Msg("Debit failed")
		_, _ = b.tg.SendMessage(ctx, userID, "😿 Payment failed, nothing was charged. Please try again.", nil)
		return
	}

	b.ledger.RecordPurchase(ctx, userID, s.PriceAmount)
	b.appendPurchaseAudit(ctx, userID, s, order.StatusPlaced, "")
	b.sessions.Clear(userID)

	_, _ = b.tg.SendMessage(ctx, userID,
		fmt.Sprintf(
			"✅ *Order placed!*\n\n🛍 Product: `%s`\n💎 Paid: `%d` Coins\n💎 Balance: `%d` Coins\n\nDelivery usually takes a few hours.",
			s.ProductKey, s.CoinPrice, newBalance,
		),
		mainKeyboard(b.admin.IsAdmin(ctx, userID)))

	b.reportToAdmin(ctx, fmt.Sprintf(
		"🛒 *New order*\n\n👤 %s (`%d`)\n🛍 `%s`\n📱 `%s`\n🎯 `%s`\n💎 `%d` Coins",
		from.DisplayName(), userID, s.ProductKey, s.Phone, s.TargetUsername, s.CoinPrice,
	))
}

func (b *Bot) appendPurchaseAudit(ctx context.Context, userID int64, s *PurchaseSession, status order.Status, processedBy string) {
	rec := &order.Order{
		ID:             uuid.NewString(),
		UserID:         userID,
		ProductKey:     s.ProductKey,
		PriceAmount:    s.PriceAmount,
		CoinAmount:     s.CoinPrice,
		Phone:          s.Phone,
		TargetUsername: s.TargetUsername,
		Status:         status,
		ProcessedBy:    processedBy,
		CreatedAt:      time.Now(),
	}
	if err := b.orders.Append(ctx, rec); err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Str("status", string(status)).Msg("Audit append failed")
		return
	}
	metrics.OrdersTotal.WithLabelValues(string(status)).Inc()
}
