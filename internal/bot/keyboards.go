package bot

import (
	"fmt"

	"meowpremium-bot/internal/platform/telegram"
)

// Reply-keyboard labels. These double as the message-routing vocabulary for
// users outside any flow.
const (
	labelBalance  = "💎 Balance"
	labelTopUp    = "💳 Top Up"
	labelProducts = "🛍 Products"
	labelHelp     = "ℹ️ Help"
	labelAdmin    = "⚙️ Admin"
	labelCancel   = "⬅️ Cancel"
)

func mainKeyboard(isAdmin bool) *telegram.ReplyKeyboardMarkup {
	rows := [][]string{
		{labelBalance, labelTopUp},
		{labelProducts, labelHelp},
	}
	if isAdmin {
		rows = append(rows, []string{labelAdmin})
	}
	return telegram.ReplyKeyboard(rows...)
}

func cancelKeyboard() *telegram.ReplyKeyboardMarkup {
	return telegram.ReplyKeyboard([]string{labelCancel})
}

func adminDashboardKeyboard() *telegram.InlineKeyboardMarkup {
	return telegram.InlineKeyboard(
		telegram.InlineRow(
			telegram.InlineKeyboardButton{Text: "👾 Broadcast", CallbackData: encodeAdminPanel("broadcast")},
			telegram.InlineKeyboardButton{Text: "📊 Statistics", CallbackData: encodeAdminPanel("stats")},
		),
		telegram.InlineRow(
			telegram.InlineKeyboardButton{Text: "💰 Cash Control", CallbackData: encodeAdminPanel("cash")},
			telegram.InlineKeyboardButton{Text: "👤 User Search", CallbackData: encodeAdminPanel("search")},
		),
		telegram.InlineRow(
			telegram.InlineKeyboardButton{Text: "🔄 Refresh Config", CallbackData: encodeAdminPanel("refresh")},
		),
	)
}

func packagesKeyboard(amounts []int64) *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	for _, amount := range amounts {
		rows = append(rows, telegram.InlineRow(telegram.InlineKeyboardButton{
			Text:         fmt.Sprintf("💳 %d", amount),
			CallbackData: encodeSelectPackage(amount),
		}))
	}
	return telegram.InlineKeyboard(rows...)
}

func productsKeyboard(keys []string) *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	for _, key := range keys {
		rows = append(rows, telegram.InlineRow(telegram.InlineKeyboardButton{
			Text:         "🛍 " + key,
			CallbackData: encodeSelectProduct(key),
		}))
	}
	return telegram.InlineKeyboard(rows...)
}

func confirmPriceKeyboard(key string) *telegram.InlineKeyboardMarkup {
	return telegram.InlineKeyboard(telegram.InlineRow(
		telegram.InlineKeyboardButton{Text: "✅ Buy", CallbackData: encodeConfirmPrice(key)},
	))
}

func confirmTopUpKeyboard(amount int64) *telegram.InlineKeyboardMarkup {
	return telegram.InlineKeyboard(telegram.InlineRow(
		telegram.InlineKeyboardButton{Text: "✅ I've paid", CallbackData: encodeConfirmTopUp(amount)},
	))
}

func broadcastConfirmKeyboard() *telegram.InlineKeyboardMarkup {
	return telegram.InlineKeyboard(telegram.InlineRow(
		telegram.InlineKeyboardButton{Text: "✅ Send", CallbackData: encodeBroadcastConfirm(true)},
		telegram.InlineKeyboardButton{Text: "❌ Cancel", CallbackData: encodeBroadcastConfirm(false)},
	))
}

func banKeyboard(userID int64, currentlyBanned bool) *telegram.InlineKeyboardMarkup {
	label := "🚫 Ban"
	if currentlyBanned {
		label = "♻️ Unban"
	}
	return telegram.InlineKeyboard(telegram.InlineRow(
		telegram.InlineKeyboardButton{Text: label, CallbackData: encodeBan(userID, !currentlyBanned)},
	))
}
