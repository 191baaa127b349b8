package app

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/kariosv/collinsbot/core/telegram/helpers"
	"github.com/kariosv/collinsbot/core/telegram/keyboard"
)

func (a *App) handleProfile(c tele.Context) error {
	a.trackCommand(c)
	sender := c.Sender()
	uid := userKey(sender)

	profile, _, err := a.xp.Profile(uid)
	if err != nil {
		return err
	}
	acc, err := a.eco.Account(uid)
	if err != nil {
		return err
	}

	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "🛒 Shop", Unique: "open_shop"},
		{Text: "🎯 Refer", Unique: "open_refer"},
	})
	return tghelpers.SendText(c, fmt.Sprintf(
		"👤 %s\n⭐ Level: %d\n⚡ XP: %d\n💰 Coins: %d",
		displayName(sender), profile.Level(), profile.XP, acc.Coins,
	), &tele.SendOptions{ReplyMarkup: markup})
}

func (a *App) handleLeaderboard(c tele.Context) error {
	a.trackCommand(c)
	top, err := a.xp.Leaderboard(10)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		return tghelpers.SendText(c, "No users yet 😅")
	}

	var b strings.Builder
	b.WriteString("🏆 LEADERBOARD\n\n")
	for i, entry := range top {
		name := "User " + entry.UserID
		if entry.Username != "" {
			name = "@" + entry.Username
		}
		fmt.Fprintf(&b, "%d. %s — %d XP\n", i+1, name, entry.XP)
	}
	return tghelpers.SendText(c, b.String())
}
