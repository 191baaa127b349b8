package app

import (
	"errors"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/kariosv/collinsbot/core/logger"
	"github.com/kariosv/collinsbot/core/telegram/format"
	tghelpers "github.com/kariosv/collinsbot/core/telegram/helpers"
	"github.com/kariosv/collinsbot/internal/moderation"
)

// handleAdminLogin starts the passphrase dialog; the answer is consumed by
// the FSM in handleAdminPassword.
func (a *App) handleAdminLogin(c tele.Context) error {
	a.trackCommand(c)
	if chat := c.Chat(); chat == nil || chat.Type != tele.ChatPrivate {
		return tghelpers.SendText(c, "🔐 Use /admin in a private chat.")
	}
	a.fsm.SetState(c.Sender().ID, stateAwaitPassword)
	return tghelpers.SendText(c, "Enter admin password 🔐")
}

func (a *App) handleAdminPassword(c tele.Context) error {
	sender := c.Sender()
	a.fsm.ClearState(sender.ID)

	ok, err := a.mod.Unlock(sender.Username, c.Text())
	if err != nil {
		return err
	}
	if !ok {
		return tghelpers.SendText(c, "❌ Wrong password")
	}
	return tghelpers.SendText(c, "✅ Admin unlocked")
}

func (a *App) handleBan(c tele.Context) error {
	a.trackCommand(c)
	target := payloadOf(c)
	if target == "" {
		return tghelpers.SendText(c, "Usage: /ban @username")
	}

	_, err := a.mod.Ban(target)
	if errors.Is(err, moderation.ErrAdminImmune) {
		return tghelpers.SendText(c, "❌ You can't ban an admin!")
	}
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf("🔨 @%s banned", trimMention(target)))
}

func (a *App) handleUnban(c tele.Context) error {
	a.trackCommand(c)
	target := payloadOf(c)
	if target == "" {
		return tghelpers.SendText(c, "Usage: /unban @username")
	}

	removed, err := a.mod.Unban(target)
	if err != nil {
		return err
	}
	if !removed {
		return tghelpers.SendText(c, fmt.Sprintf("⚠ @%s is not banned", trimMention(target)))
	}
	return tghelpers.SendText(c, fmt.Sprintf("✅ @%s unbanned", trimMention(target)))
}

func (a *App) handleBroadcast(c tele.Context) error {
	a.trackCommand(c)
	raw := payloadOf(c)
	if raw == "" {
		return tghelpers.SendText(c, "Usage: /broadcast <message>")
	}
	escaped, err := format.EscapeMarkdown(raw, format.MarkdownV2, "")
	if err != nil {
		return err
	}

	chats, err := a.chats.All()
	if err != nil {
		return err
	}
	bot := a.bot.Load()
	if bot == nil {
		return fmt.Errorf("app: bot not started")
	}

	ctx := tghelpers.WithHandler(c, "broadcast")
	sent := 0
	for _, chatID := range chats {
		_, err := bot.Send(tele.ChatID(chatID), "📢 *Broadcast*\n\n"+escaped,
			&tele.SendOptions{ParseMode: tele.ModeMarkdownV2})
		if err != nil {
			logger.Warn(ctx, "tg", "broadcast.send.fail",
				slog.Int64("chat_id", chatID),
				slog.String("err", err.Error()),
			)
			continue
		}
		sent++
	}
	return tghelpers.SendText(c, fmt.Sprintf("✅ Broadcast sent to %d chats", sent))
}

func (a *App) handleStats(c tele.Context) error {
	a.trackCommand(c)
	users, err := a.memory.Count()
	if err != nil {
		return err
	}
	banned, err := a.mod.BannedUsers()
	if err != nil {
		return err
	}
	admins, err := a.mod.Admins()
	if err != nil {
		return err
	}
	pending, err := a.reminders.Pending()
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf(
		"👥 Total users: %d\n🚫 Banned users: %d\n🛠 Admins: %d\n⏰ Pending reminders: %d",
		users, len(banned), len(admins), pending,
	))
}

func (a *App) handleWipe(c tele.Context) error {
	a.trackCommand(c)
	target := payloadOf(c)
	if target == "" {
		return tghelpers.SendText(c, "Usage: /wipe @username")
	}

	uid, found, err := a.eco.FindByUsername(target)
	if err != nil {
		return err
	}
	wiped := false
	if found {
		memWiped, err := a.memory.Wipe(uid)
		if err != nil {
			return err
		}
		xpWiped, err := a.xp.Wipe(uid)
		if err != nil {
			return err
		}
		wiped = memWiped || xpWiped
	}
	if !wiped {
		return tghelpers.SendText(c, fmt.Sprintf("⚠ User @%s has no memory stored", trimMention(target)))
	}
	return tghelpers.SendText(c, fmt.Sprintf("🗑 Memory wiped for @%s", trimMention(target)))
}

func trimMention(username string) string {
	if len(username) > 0 && username[0] == '@' {
		return username[1:]
	}
	return username
}
