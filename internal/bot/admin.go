package bot

import (
	"context"
	"fmt"
)

// showAdminDashboard is admin-only; everyone else gets a denial.
func (b *Bot) showAdminDashboard(ctx context.Context, userID int64) {
	if !b.admin.IsAdmin(ctx, userID) {
		_, _ = b.tg.SendMessage(ctx, userID, "⛔ *Access Denied*\nAdmin only command.", mainKeyboard(false))
		return
	}

	_, _ = b.tg.SendMessage(ctx, userID,
		"⚙️ *ADMIN DASHBOARD*\n\n🟢 Bot Status : Online\n🟢 Selling    : Open\n\nSelect an action below 👇",
		adminDashboardKeyboard())
}

// adminPanel routes one dashboard button press. Every branch re-checks the
// admin gate because the resolved identity may change between dashboard
// render and click.
func (b *Bot) adminPanel(ctx context.Context, userID int64, panel string) (string, error) {
	if !b.admin.IsAdmin(ctx, userID) {
		return "⛔ Access denied.", nil
	}

	switch panel {
	case "broadcast":
		b.sessions.Set(userID, &BroadcastSession{State: BroadcastAwaitContent})
		_, err := b.tg.SendMessage(ctx, userID,
			"👾 *Broadcast Mode*\n\nSend the message you want to broadcast to all users.", cancelKeyboard())
		return "", err

	case "cash":
		b.sessions.Set(userID, &CashControlSession{State: CashControlAwaitTarget})
		_, err := b.tg.SendMessage(ctx, userID,
			"💰 *CASH CONTROL*\n\nEnter User ID or @username:", cancelKeyboard())
		return "", err

	case "search":
		b.sessions.Set(userID, &SearchSession{})
		_, err := b.tg.SendMessage(ctx, userID,
			"👤 *User Search*\n\nSend User ID or @username.", cancelKeyboard())
		return "", err

	case "refresh":
		b.settings.Get(ctx, true)
		_, err := b.tg.SendMessage(ctx, userID,
			"🔄 *Configuration Updated*\n\nSettings refreshed successfully.", nil)
		return "Refreshed.", err

	case "stats":
		return "", b.sendStatistics(ctx, userID)
	}

	return "", nil
}

func (b *Bot) sendStatistics(ctx context.Context, userID int64) error {
	totalUsers, err := b.ledger.CountUsers(ctx)
	if err != nil {
		return err
	}
	stats, err := b.orders.Stats(ctx)
	if err != nil {
		return err
	}

	_, err = b.tg.SendMessage(ctx, userID, fmt.Sprintf(
		"📊 *Bot Statistics*\n\n👥 Users      : %d\n📦 Orders    : %d\n💰 Revenue   : %d",
		totalUsers, stats.TotalOrders, stats.TotalRevenue,
	), nil)
	return err
}

// applyBan flips the banned flag from a user-card button.
func (b *Bot) applyBan(ctx context.Context, actorID int64, a BanAction) (string, error) {
	if !b.admin.IsAdmin(ctx, actorID) {
		return "⛔ Access denied.", nil
	}

	if err := b.ledger.SetBanned(ctx, a.UserID, a.Banned); err != nil {
		return "", err
	}

	verb := "unbanned"
	if a.Banned {
		verb = "banned"
	}
	_, _ = b.tg.SendMessage(ctx, actorID, fmt.Sprintf("✅ User `%d` %s.", a.UserID, verb), nil)
	return "Done.", nil
}

// userCard renders the stored profile for search and cash-control targets.
func (b *Bot) userCard(ctx context.Context, adminID, targetID int64) error {
	u, err := b.ledger.Find(ctx, targetID)
	if err != nil {
		return err
	}

	banText := "No"
	if u.Banned {
		banText = "Yes"
	}
	name := u.Username
	if name == "" {
		name = u.DisplayName
	}
	if name == "" {
		name = fmt.Sprintf("ID:%d", u.ID)
	}

	text := fmt.Sprintf(
		"👤 *User Profile*\n\n"+
			"👤 User: `%s`\n🆔 ID: `%d`\n💎 Balance: `%d` Coins\n"+
			"🛒 Total purchase: `%d`\n🚫 Banned: %s\n"+
			"📅 Registered: %s\n🕐 Last active: %s",
		name, u.ID, u.CoinBalance, u.TotalPurchase, banText,
		u.RegisteredAt.Format("2006-01-02"), u.LastActiveAt.Format("2006-01-02 15:04"),
	)
	_, err = b.tg.SendMessage(ctx, adminID, text, banKeyboard(u.ID, u.Banned))
	return err
}
