package bot

import (
	"fmt"
	"strconv"
	"strings"

	"meowpremium-bot/internal/service/receipts"
)

// Action is the closed set of callback-button actions. Callback data is
// parsed into a variant exactly once, at the transport boundary; handlers
// switch over the variants instead of matching string prefixes.
type Action interface {
	isAction()
}

type SelectPackageAction struct{ Amount int64 }

type ConfirmTopUpAction struct{ Amount int64 }

type SelectProductAction struct{ Key string }

type ConfirmPriceAction struct{ Key string }

type ReceiptControlAction struct{ Control receipts.Control }

type AdminPanelAction struct {
	// Panel is one of "broadcast", "stats", "cash", "search", "refresh".
	Panel string
}

type BroadcastConfirmAction struct{ Confirm bool }

type BanAction struct {
	UserID int64
	Banned bool
}

type UnknownAction struct{ Data string }

func (SelectPackageAction) isAction()    {}
func (ConfirmTopUpAction) isAction()     {}
func (SelectProductAction) isAction()    {}
func (ConfirmPriceAction) isAction()     {}
func (ReceiptControlAction) isAction()   {}
func (AdminPanelAction) isAction()       {}
func (BroadcastConfirmAction) isAction() {}
func (BanAction) isAction()              {}
func (UnknownAction) isAction()          {}

// Encoders keep the wire strings next to the parser so the two cannot drift.

func encodeSelectPackage(amount int64) string { return fmt.Sprintf("pkg:%d", amount) }
func encodeConfirmTopUp(amount int64) string  { return fmt.Sprintf("pay:%d", amount) }
func encodeSelectProduct(key string) string   { return "buy:" + key }
func encodeConfirmPrice(key string) string    { return "price:" + key }
func encodeAdminPanel(panel string) string    { return "admin:" + panel }
func encodeBroadcastConfirm(ok bool) string {
	if ok {
		return "bcast:yes"
	}
	return "bcast:no"
}
func encodeBan(userID int64, banned bool) string {
	return fmt.Sprintf("ban:%d:%t", userID, banned)
}

// ParseAction converts raw callback data into an Action. Anything that does
// not decode becomes UnknownAction; it is acknowledged and ignored rather
// than guessed at.
func ParseAction(data string) Action {
	if receipts.IsControlData(data) {
		ctl, err := receipts.DecodeControl(data)
		if err != nil {
			return UnknownAction{Data: data}
		}
		return ReceiptControlAction{Control: ctl}
	}

	verb, arg, ok := strings.Cut(data, ":")
	if !ok {
		return UnknownAction{Data: data}
	}

	switch verb {
	case "pkg":
		if amount, err := strconv.ParseInt(arg, 10, 64); err == nil && amount > 0 {
			return SelectPackageAction{Amount: amount}
		}
	case "pay":
		if amount, err := strconv.ParseInt(arg, 10, 64); err == nil && amount > 0 {
			return ConfirmTopUpAction{Amount: amount}
		}
	case "buy":
		if arg != "" {
			return SelectProductAction{Key: arg}
		}
	case "price":
		if arg != "" {
			return ConfirmPriceAction{Key: arg}
		}
	case "admin":
		switch arg {
		case "broadcast", "stats", "cash", "search", "refresh":
			return AdminPanelAction{Panel: arg}
		}
	case "bcast":
		switch arg {
		case "yes":
			return BroadcastConfirmAction{Confirm: true}
		case "no":
			return BroadcastConfirmAction{Confirm: false}
		}
	case "ban":
		idRaw, flagRaw, ok := strings.Cut(arg, ":")
		if !ok {
			break
		}
		id, err := strconv.ParseInt(idRaw, 10, 64)
		if err != nil || id <= 0 {
			break
		}
		banned, err := strconv.ParseBool(flagRaw)
		if err != nil {
			break
		}
		return BanAction{UserID: id, Banned: banned}
	}

	return UnknownAction{Data: data}
}
