// Package bot is the conversation orchestrator: one finite state machine per
// user driving the top-up, purchase, cash-control, search, and broadcast
// flows over the chat transport.
package bot

import (
	"context"
	"fmt"
	"strings"

	"meowpremium-bot/internal/common/logger"
	"meowpremium-bot/internal/common/metrics"
	"meowpremium-bot/internal/domain/order"
	"meowpremium-bot/internal/platform/telegram"
	"meowpremium-bot/internal/service/broadcast"
	cfgsvc "meowpremium-bot/internal/service/config"
	"meowpremium-bot/internal/service/ledger"
	"meowpremium-bot/internal/service/receipts"
)

// Transport is the full slice of the chat client the orchestrator uses.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup interface{}) (*telegram.Message, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, markup interface{}) (*telegram.Message, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *telegram.InlineKeyboardMarkup) error
	ForwardMessage(ctx context.Context, chatID, fromChatID, messageID int64) (*telegram.Message, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Bot is the application context: every dependency is constructed once at
// startup and injected here, never reached ambiently.
type Bot struct {
	settings  *cfgsvc.Cache
	admin     *cfgsvc.AdminResolver
	ledger    *ledger.Service
	orders    order.Repository
	receipts  *receipts.Service
	broadcast *broadcast.Service
	tg        Transport
	sessions  *Sessions
}

func New(
	settings *cfgsvc.Cache,
	admin *cfgsvc.AdminResolver,
	lg *ledger.Service,
	orders order.Repository,
	rc *receipts.Service,
	bc *broadcast.Service,
	tg Transport,
) *Bot {
	return &Bot{
		settings:  settings,
		admin:     admin,
		ledger:    lg,
		orders:    orders,
		receipts:  rc,
		broadcast: bc,
		tg:        tg,
		sessions:  NewSessions(),
	}
}

// HandleUpdate processes one inbound update. Panics and unexpected errors are
// contained here: the admin gets a diagnostic, the user a generic apology,
// and the process keeps running.
func (b *Bot) HandleUpdate(ctx context.Context, upd telegram.Update) {
	var chatID int64
	switch {
	case upd.Message != nil:
		chatID = upd.Message.Chat.ID
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		chatID = upd.CallbackQuery.Message.Chat.ID
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerPanicsTotal.Inc()
			logger.Error().Interface("panic", r).Int64("chat_id", chatID).Msg("Recovered panic in update handler")
			b.reportToAdmin(ctx, fmt.Sprintf("🚨 Handler panic: %v", r))
			if chatID != 0 {
				_, _ = b.tg.SendMessage(ctx, chatID, "😿 Something went wrong. Please try again.", nil)
			}
		}
	}()

	switch {
	case upd.CallbackQuery != nil:
		metrics.UpdatesTotal.WithLabelValues("callback").Inc()
		b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.HasPhoto():
		metrics.UpdatesTotal.WithLabelValues("photo").Inc()
		b.handlePhoto(ctx, upd.Message)
	case upd.Message != nil:
		metrics.UpdatesTotal.WithLabelValues("message").Inc()
		b.handleMessage(ctx, upd.Message)
	default:
		metrics.UpdatesTotal.WithLabelValues("other").Inc()
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	from := msg.From
	if from == nil || from.IsBot {
		return
	}
	userID := from.ID
	text := strings.TrimSpace(msg.Text)

	// First contact creates the ledger row; existing rows are not renamed
	// here, activity refreshes the profile separately.
	if err := b.ledger.RegisterIfAbsent(ctx, userID, from.Username, from.DisplayName()); err != nil {
		logger.Warn().Err(err).Int64("user_id", userID).Msg("Registration failed")
	}
	b.ledger.Touch(ctx, userID, from.Username, from.DisplayName())

	// The reserved Cancel input always wins, from every non-idle state of
	// every flow.
	if text == labelCancel {
		b.cancel(ctx, userID)
		return
	}

	if text == "/start" {
		b.sessions.Clear(userID)
		b.sendWelcome(ctx, userID)
		return
	}

	// An active flow consumes the input before any menu matching, so a
	// menu label typed mid-flow is treated as flow input. Re-entry that
	// overwrites the session still happens through /start and the inline
	// buttons; the reply keyboard is replaced by the Cancel keyboard while
	// a flow is active, so its labels are not reachable anyway.
	if session := b.sessions.Get(userID); session != nil {
		b.dispatchFlowText(ctx, from, msg, session)
		return
	}

	switch text {
	case labelBalance:
		b.showBalance(ctx, userID)
	case labelTopUp:
		b.startTopUp(ctx, userID)
	case labelProducts:
		b.showProducts(ctx, userID)
	case labelHelp:
		b.sendHelp(ctx, userID)
	case labelAdmin, "/admin":
		b.showAdminDashboard(ctx, userID)
	default:
		_, _ = b.tg.SendMessage(ctx, userID, "🐱 Use the menu below to get started.", mainKeyboard(b.admin.IsAdmin(ctx, userID)))
	}
}

func (b *Bot) dispatchFlowText(ctx context.Context, from *telegram.User, msg *telegram.Message, session Session) {
	switch s := session.(type) {
	case *TopUpSession:
		b.topUpText(ctx, from.ID, msg, s)
	case *PurchaseSession:
		b.purchaseText(ctx, from, msg, s)
	case *CashControlSession:
		b.cashControlText(ctx, from.ID, msg, s)
	case *SearchSession:
		b.searchText(ctx, from.ID, msg)
	case *BroadcastSession:
		b.broadcastText(ctx, from.ID, msg, s)
	default:
		// Unknown session type is a bug; drop it rather than trap the user.
		b.sessions.Clear(from.ID)
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *telegram.Message) {
	from := msg.From
	if from == nil || from.IsBot {
		return
	}

	if s, ok := b.sessions.Get(from.ID).(*TopUpSession); ok && s.State == TopUpAwaitReceipt {
		b.topUpReceipt(ctx, from, msg, s)
		return
	}

	_, _ = b.tg.SendMessage(ctx, from.ID, "🧾 To submit a receipt, start a top-up first.", mainKeyboard(b.admin.IsAdmin(ctx, from.ID)))
}

func (b *Bot) handleCallback(ctx context.Context, q *telegram.CallbackQuery) {
	if q.From == nil {
		return
	}
	userID := q.From.ID

	action := ParseAction(q.Data)
	var toast string
	var err error

	switch a := action.(type) {
	case SelectPackageAction:
		err = b.topUpPackageChosen(ctx, userID, a.Amount)
	case ConfirmTopUpAction:
		err = b.topUpPaymentConfirmed(ctx, userID, a.Amount)
	case SelectProductAction:
		err = b.productChosen(ctx, userID, a.Key)
	case ConfirmPriceAction:
		err = b.priceConfirmed(ctx, userID, a.Key)
	case ReceiptControlAction:
		toast, err = b.receipts.HandleAction(ctx, q, a.Control)
	case AdminPanelAction:
		toast, err = b.adminPanel(ctx, userID, a.Panel)
	case BroadcastConfirmAction:
		err = b.broadcastConfirmed(ctx, userID, a.Confirm)
	case BanAction:
		toast, err = b.applyBan(ctx, userID, a)
	case UnknownAction:
		logger.Debug().Str("data", a.Data).Msg("Ignoring unknown callback action")
	}

	if err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Str("data", q.Data).Msg("Callback handling failed")
		b.reportToAdmin(ctx, fmt.Sprintf("🚨 Callback error for `%d`: %v", userID, err))
		toast = "Something went wrong."
	}
	if ackErr := b.tg.AnswerCallback(ctx, q.ID, toast); ackErr != nil {
		logger.Debug().Err(ackErr).Msg("Callback ack failed")
	}
}

// cancel unconditionally returns the user to Idle and discards session fields.
func (b *Bot) cancel(ctx context.Context, userID int64) {
	b.sessions.Clear(userID)
	_, _ = b.tg.SendMessage(ctx, userID, "❌ Cancelled.", mainKeyboard(b.admin.IsAdmin(ctx, userID)))
}

func (b *Bot) sendWelcome(ctx context.Context, userID int64) {
	_, _ = b.tg.SendMessage(ctx, userID,
		"😺 *Welcome to MeowPremium!*\n\nTop up your coin balance and spend it on premium products. Use the menu below.",
		mainKeyboard(b.admin.IsAdmin(ctx, userID)))
}

func (b *Bot) sendHelp(ctx context.Context, userID int64) {
	_, _ = b.tg.SendMessage(ctx, userID,
		"ℹ️ *How it works*\n\n"+
			"1. Top up coins with a bank transfer and send the receipt.\n"+
			"2. Wait for approval — coins land on your balance.\n"+
			"3. Pick a product and pay with coins.\n\n"+
			"Press "+labelCancel+" at any step to abort.",
		mainKeyboard(b.admin.IsAdmin(ctx, userID)))
}

func (b *Bot) showBalance(ctx context.Context, userID int64) {
	u, err := b.ledger.Find(ctx, userID)
	if err != nil {
		_, _ = b.tg.SendMessage(ctx, userID, "😿 Could not read your balance, try again.", nil)
		return
	}
	_, _ = b.tg.SendMessage(ctx, userID,
		fmt.Sprintf("💎 *Your balance:* `%d` Coins\n🛒 Total purchased: `%d`", u.CoinBalance, u.TotalPurchase),
		mainKeyboard(b.admin.IsAdmin(ctx, userID)))
}

// reportToAdmin sends a diagnostic to the resolved administrator; failures
// here are only logged.
func (b *Bot) reportToAdmin(ctx context.Context, text string) {
	adminID := b.admin.AdminID(ctx)
	if adminID == 0 {
		return
	}
	if _, err := b.tg.SendMessage(ctx, adminID, text, nil); err != nil {
		logger.Warn().Err(err).Msg("Admin diagnostic delivery failed")
	}
}

// gateUser re-checks the maintenance flag and the banned flag. Both are
// checked again at finalize steps, not only at flow entry, because either may
// flip mid-conversation.
func (b *Bot) gateUser(ctx context.Context, userID int64) (ok bool, reason string) {
	if cfgsvc.MaintenanceMode(b.settings.Get(ctx, false)) {
		return false, "🛠 Selling is paused for maintenance. Please try again later."
	}
	u, err := b.ledger.Find(ctx, userID)
	if err != nil {
		return false, "😿 Could not verify your account, try again."
	}
	if u.Banned {
		return false, "⛔ Your account is restricted. Contact support."
	}
	return true, ""
}
