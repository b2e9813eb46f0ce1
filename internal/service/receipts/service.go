// Package receipts implements the admin-facing approval protocol that turns a
// submitted payment proof into a ledger credit, at most once per control
// message.
package receipts

import (
	"context"
	"fmt"
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

// Terminal markers written into the control message after an admin action.
// Their presence in the message is the sole idempotency record: it stops a
// double click on the same message, not a race across two independent control
// messages for the same proof.
const (
	approvedMarker = "✅ Approved by"
	deniedMarker   = "⛔ Denied by"
)

// Transport is the slice of the chat client the workflow needs.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup interface{}) (*telegram.Message, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *telegram.InlineKeyboardMarkup) error
	ForwardMessage(ctx context.Context, chatID, fromChatID, messageID int64) (*telegram.Message, error)
}

type Service struct {
	ledger *ledger.Service
	orders order.Repository
	cfg    *cfgsvc.Cache
	admin  *cfgsvc.AdminResolver
	tg     Transport
}

func NewService(lg *ledger.Service, orders order.Repository, cfg *cfgsvc.Cache, admin *cfgsvc.AdminResolver, tg Transport) *Service {
	return &Service{ledger: lg, orders: orders, cfg: cfg, admin: admin, tg: tg}
}

// Submit forwards the raw proof to the admin and posts the control message
// with one quick-approve button per candidate amount plus a Deny action.
// detectedAmount, when positive, is prepended to the configured amounts.
func (s *Service) Submit(ctx context.Context, from *telegram.User, proof *telegram.Message, detectedAmount int64) error {
	values := s.cfg.Get(ctx, false)
	adminID := s.admin.ResolveAdminID(values)
	nonce := time.Now().Unix()

	if _, err := s.tg.ForwardMessage(ctx, adminID, proof.Chat.ID, proof.MessageID); err != nil {
		return err
	}

	amounts := TopUpCandidates(values, detectedAmount)
	text := fmt.Sprintf(
		"🧾 *Receipt submitted*\n\n👤 %s\n🆔 `%d`\n🕐 `%d`\n\nPick the amount to approve:",
		from.DisplayName(), from.ID, nonce,
	)

	_, err := s.tg.SendMessage(ctx, adminID, text, controlKeyboard(from.ID, nonce, amounts))
	return err
}

// TopUpCandidates merges the detected amount with the configured ones,
// detected first, duplicates dropped.
func TopUpCandidates(values map[string]string, detectedAmount int64) []int64 {
	configured := cfgsvc.TopUpAmounts(values)
	if detectedAmount <= 0 {
		return configured
	}
	amounts := []int64{detectedAmount}
	for _, a := range configured {
		if a != detectedAmount {
			amounts = append(amounts, a)
		}
	}
	return amounts
}

func controlKeyboard(userID, nonce int64, amounts []int64) *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	for _, amount := range amounts {
		ctl := Control{UserID: userID, Nonce: nonce, Amount: amount}
		rows = append(rows, telegram.InlineRow(telegram.InlineKeyboardButton{
			Text:         fmt.Sprintf("✅ %d", amount),
			CallbackData: ctl.Encode(),
		}))
	}
	deny := Control{UserID: userID, Nonce: nonce, Deny: true}
	rows = append(rows, telegram.InlineRow(telegram.InlineKeyboardButton{
		Text:         "⛔ Deny",
		CallbackData: deny.Encode(),
	}))
	return telegram.InlineKeyboard(rows...)
}

// isTerminal reports whether the control message already records an outcome.
func isTerminal(msg *telegram.Message) bool {
	if msg == nil {
		return false
	}
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	return strings.Contains(text, approvedMarker) || strings.Contains(text, deniedMarker)
}

// HandleAction applies one admin click on a control message. It is the single
// entry point for both Approve and Deny.
func (s *Service) HandleAction(ctx context.Context, q *telegram.CallbackQuery, ctl Control) (string, error) {
	actor := q.From
	if actor == nil || !s.admin.IsAdmin(ctx, actor.ID) {
		return "⛔ Access denied.", nil
	}

	if isTerminal(q.Message) {
		// Second click on the same message: ledger no-op, no audit record.
		return "Already processed.", nil
	}

	if ctl.Deny {
		return s.deny(ctx, q, ctl)
	}
	return s.approve(ctx, q, ctl)
}

func (s *Service) approve(ctx context.Context, q *telegram.CallbackQuery, ctl Control) (string, error) {
	values := s.cfg.Get(ctx, false)
	coins := pricing.CreditForAmount(ctl.Amount, cfgsvc.CoinsPerCurrencyUnit(values))

	// The balance read here is whatever the ledger holds now; interleaved
	// activity by the same user since submission is accepted.
	newBalance, err := s.ledger.Credit(ctx, ctl.UserID, coins)
	if err != nil {
		return "", err
	}

	actor := q.From.DisplayName()
	s.appendAudit(ctx, ctl, order.StatusApprovedReceipt, coins, actor)
	s.markTerminal(ctx, q, fmt.Sprintf("%s %s (+%d coins)", approvedMarker, actor, coins))

	userMsg := fmt.Sprintf(
		"✅ *Top-up approved!*\n\n💰 Credited: `%d` Coins\n💎 New balance: `%d` Coins",
		coins, newBalance,
	)
	if _, err := s.tg.SendMessage(ctx, ctl.UserID, userMsg, nil); err != nil {
		logger.Warn().Err(err).Int64("user_id", ctl.UserID).Msg("Approval notification failed")
	}

	logger.Info().
		Int64("user_id", ctl.UserID).
		Int64("nonce", ctl.Nonce).
		Int64("amount", ctl.Amount).
		Int64("coins", coins).
		Msg("Receipt approved")
	return fmt.Sprintf("Approved: +%d coins", coins), nil
}

func (s *Service) deny(ctx context.Context, q *telegram.CallbackQuery, ctl Control) (string, error) {
	actor := q.From.DisplayName()
	s.appendAudit(ctx, ctl, order.StatusDeniedReceipt, 0, actor)
	s.markTerminal(ctx, q, fmt.Sprintf("%s %s", deniedMarker, actor))

	userMsg := "❌ *Top-up denied.*\n\nYour receipt could not be verified. Contact support if you believe this is a mistake."
	if _, err := s.tg.SendMessage(ctx, ctl.UserID, userMsg, nil); err != nil {
		logger.Warn().Err(err).Int64("user_id", ctl.UserID).Msg("Denial notification failed")
	}

	logger.Info().
		Int64("user_id", ctl.UserID).
		Int64("nonce", ctl.Nonce).
		Msg("Receipt denied")
	return "Denied.", nil
}

func (s *Service) appendAudit(ctx context.Context, ctl Control, status order.Status, coins int64, actor string) {
	rec := &order.Order{
		ID:          uuid.NewString(),
		UserID:      ctl.UserID,
		ProductKey:  "topup",
		PriceAmount: ctl.Amount,
		CoinAmount:  coins,
		Status:      status,
		ProcessedBy: fmt.Sprintf("%s nonce=%d", actor, ctl.Nonce),
		CreatedAt:   time.Now(),
	}
	if err := s.orders.Append(ctx, rec); err != nil {
		logger.Error().Err(err).Int64("user_id", ctl.UserID).Msg("Audit append failed")
		return
	}
	metrics.OrdersTotal.WithLabelValues(string(status)).Inc()
}

// markTerminal rewrites the control message in place with the outcome line
// and strips the keyboard. This edit is what makes a repeat click a no-op.
func (s *Service) markTerminal(ctx context.Context, q *telegram.CallbackQuery, outcome string) {
	if q.Message == nil {
		return
	}
	text := q.Message.Text
	if text == "" {
		text = q.Message.Caption
	}
	newText := text + "\n\n" + outcome
	if err := s.tg.EditMessageText(ctx, q.Message.Chat.ID, q.Message.MessageID, newText, nil); err != nil {
		logger.Warn().Err(err).Msg("Control message edit failed")
	}
}
