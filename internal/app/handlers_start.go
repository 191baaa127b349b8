package app

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/kariosv/collinsbot/core/logger"
	tghelpers "github.com/kariosv/collinsbot/core/telegram/helpers"
	"github.com/kariosv/collinsbot/internal/economy"
)

func (a *App) referralLink(userID string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", a.botUsername, userID)
}

// handleStart onboards the user: daily bonus, chat registration for
// broadcasts, and the referral deep link carried in the /start payload.
func (a *App) handleStart(c tele.Context) error {
	sender := c.Sender()
	uid := userKey(sender)
	ctx := tghelpers.WithHandler(c, "start")

	a.trackCommand(c)
	_ = a.memory.Remember(uid, c.Text())
	if err := a.eco.Touch(uid, sender.Username); err != nil {
		logger.Warn(ctx, "eco", "eco.touch.fail", slog.String("err", err.Error()))
	}
	if chat := c.Chat(); chat != nil {
		if err := a.chats.Add(chat.ID); err != nil {
			logger.Warn(ctx, "tg", "chats.register.fail", slog.String("err", err.Error()))
		}
	}

	if granted, _, err := a.eco.GrantDailyBonus(uid); err != nil {
		logger.Warn(ctx, "eco", "eco.daily.fail", slog.String("err", err.Error()))
	} else if granted {
		_ = tghelpers.SendText(c, "🔥 Daily login! +5 coins")
	}

	if msg := c.Message(); msg != nil {
		if referrer := strings.TrimSpace(msg.Payload); referrer != "" {
			a.creditReferral(c, referrer, uid)
		}
	}

	return tghelpers.SendText(c, fmt.Sprintf(
		"Hi %s 👋\n"+
			"Collins AI active.\n"+
			"Type /help to see commands.\n"+
			"OR\n"+
			"Use /refinfo to learn about the referral system!",
		sender.FirstName,
	))
}

// creditReferral applies the deep-link referral and notifies both sides.
// Duplicate and self referrals come back uncredited and stay silent.
func (a *App) creditReferral(c tele.Context, referrerID, newUserID string) {
	ctx := tghelpers.BuildContext(c)
	res, err := a.eco.CreditReferral(referrerID, newUserID)
	if err != nil {
		logger.Warn(ctx, "eco", "eco.referral.fail", slog.String("err", err.Error()))
		return
	}
	if !res.Credited {
		return
	}

	logger.Info(ctx, "eco", "eco.referral",
		slog.String("user_id", newUserID),
		slog.Int("referrals", res.Total),
		slog.Uint64("coins", res.Balance),
	)
	_ = tghelpers.SendText(c, "🎉 You were referred by a friend!")

	bot := a.bot.Load()
	referrerChat, err := strconv.ParseInt(referrerID, 10, 64)
	if bot == nil || err != nil {
		return
	}
	_, _ = bot.Send(tele.ChatID(referrerChat), fmt.Sprintf(
		"🎉 New referral joined!\n+%d coins earned\nTotal coins: %d",
		economy.ReferralReward, res.Balance,
	))
	for _, tier := range res.Unlocked {
		_, _ = bot.Send(tele.ChatID(referrerChat), fmt.Sprintf(
			"🎉 TIER UNLOCKED!\n%d referrals reached!\n+%d coins\nBadge unlocked: %s",
			tier.Referrals, tier.Coins, tier.Badge,
		))
	}
}

// handleNewMembers welcomes users added to a group chat.
func (a *App) handleNewMembers(c tele.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	joined := msg.UsersJoined
	if len(joined) == 0 && msg.UserJoined != nil {
		joined = []tele.User{*msg.UserJoined}
	}
	for i := range joined {
		name := displayName(&joined[i])
		_ = tghelpers.SendText(c, fmt.Sprintf("🎉 Welcome %s! Enjoy Collins AI ✨", name))
	}
	return nil
}
