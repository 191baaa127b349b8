package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/kariosv/collinsbot/core/telegram/helpers"
	"github.com/kariosv/collinsbot/core/telegram/keyboard"
)

// checkChannelMembership asks Telegram whether the user joined the
// verification channel. It is only called for users not yet verified.
func (a *App) checkChannelMembership(ctx context.Context, userID string) (bool, error) {
	bot := a.bot.Load()
	if bot == nil {
		return false, fmt.Errorf("app: bot not started")
	}
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("app: bad user id %q: %w", userID, err)
	}

	channel := a.cfg.Verify.Channel
	var chat *tele.Chat
	if strings.HasPrefix(channel, "@") {
		chat, err = bot.ChatByUsername(channel)
	} else {
		var chatID int64
		chatID, err = strconv.ParseInt(channel, 10, 64)
		if err == nil {
			chat, err = bot.ChatByID(chatID)
		}
	}
	if err != nil {
		return false, fmt.Errorf("app: resolve channel %q: %w", channel, err)
	}

	member, err := bot.ChatMemberOf(chat, &tele.User{ID: id})
	if err != nil {
		return false, err
	}
	switch member.Role {
	case tele.Member, tele.Administrator, tele.Creator:
		return true, nil
	}
	return false, nil
}

// verificationRequired reports whether the sender still has to verify.
// With no channel configured the gate is disabled.
func (a *App) verificationRequired(c tele.Context) (bool, error) {
	if a.cfg.Verify.Channel == "" {
		return false, nil
	}
	verified, err := a.mod.IsVerified(userKey(c.Sender()))
	if err != nil {
		return false, err
	}
	return !verified, nil
}

func (a *App) sendVerifyPrompt(c tele.Context) error {
	markup := &tele.ReplyMarkup{}
	follow := markup.URL("📢 Follow Channel", "https://t.me/"+strings.TrimPrefix(a.cfg.Verify.Channel, "@"))
	verify := markup.Data("✅ Verify", "verify_join")
	markup.Inline(markup.Row(follow, verify))
	return tghelpers.SendMD(c,
		"🚫 *Access Locked!*\nJoin the channel first and verify to unlock commands!", markup)
}

func (a *App) cbVerifyJoin(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "verify_join")
	ok, err := a.mod.Verify(ctx, userKey(c.Sender()), a.checkChannelMembership)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "⚠️ Verification failed. Try again.", ShowAlert: true})
	}
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "❌ You haven't joined the channel yet!", ShowAlert: true})
	}
	return tghelpers.EditOrSendMD(c,
		"✅ *Verification successful!*\n\nUse /help again to access commands 😎🔥")
}

func (a *App) handleHelp(c tele.Context) error {
	locked, err := a.verificationRequired(c)
	if err != nil {
		return err
	}
	if locked {
		return a.sendVerifyPrompt(c)
	}

	a.trackCommand(c)
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "😂 Joke", Unique: "help_fun"},
			{Text: "✂️ RPS", Unique: "help_fun_rps"},
		},
		[]keyboard.InlineBtn{
			{Text: "📝 Summarize", Unique: "help_ai_summarize"},
		},
		[]keyboard.InlineBtn{
			{Text: "👤 Profile", Unique: "help_profile"},
			{Text: "🏆 Leaderboard", Unique: "help_leaderboard"},
			{Text: "🎯 Referral System", Unique: "help_referral"},
		},
		[]keyboard.InlineBtn{
			{Text: "⏰ Remind", Unique: "help_remind"},
		},
		[]keyboard.InlineBtn{
			{Text: "🎴 Anime System", Unique: "help_anime"},
		},
		[]keyboard.InlineBtn{
			{Text: "ℹ About", Unique: "help_about"},
			{Text: "🛠 Support", Unique: "help_support"},
		},
	)
	return tghelpers.SendMD(c,
		"🌐 *COLLINS AI COMMANDS*\n\nClick a button to see usage for a category!", markup)
}

// helpTextCallback builds a callback handler that sends a static usage text.
func (a *App) helpTextCallback(text string) tele.HandlerFunc {
	return func(c tele.Context) error {
		a.trackCommand(c)
		return tghelpers.SendMD(c, text)
	}
}

func (a *App) cbHelpProfile(c tele.Context) error {
	a.trackCommand(c)
	sender := c.Sender()
	profile, _, err := a.xp.Profile(userKey(sender))
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf(
		"👤 %s\n⭐ Level: %d\n⚡ XP: %d\n💬 Messages: %d\n⌨ Commands: %d",
		displayName(sender), profile.Level(), profile.XP, profile.Messages, profile.Commands,
	))
}

func (a *App) cbHelpReferral(c tele.Context) error {
	a.trackCommand(c)
	uid := userKey(c.Sender())
	acc, err := a.eco.Account(uid)
	if err != nil {
		return err
	}
	link := a.referralLink(uid)

	markup := &tele.ReplyMarkup{}
	share := markup.URL("📤 My Referral Link", "https://t.me/share/url?url="+link)
	stats := markup.Data("📊 My Referral Stats", "ref_stats")
	top := markup.Data("🏅 Top Referrers", "ref_leaderboard")
	markup.Inline(markup.Row(share), markup.Row(stats), markup.Row(top))

	return tghelpers.SendMD(c, fmt.Sprintf(
		"🎯 *Referral System*\n\n"+
			"Share your link, earn coins, and track your progress!\n\n"+
			"Your link: %s\nCoins: %d\nReferrals: %d\n\n%s",
		link, acc.Coins, len(acc.Referrals), economyTiersHint(),
	), markup)
}
