package app

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/kariosv/collinsbot/core/telegram/helpers"
	"github.com/kariosv/collinsbot/internal/economy"
)

func (a *App) handleRefInfo(c tele.Context) error {
	a.trackCommand(c)
	return tghelpers.SendMD(c,
		"🎯 *Referral System Guide*\n\n"+
			"1️⃣ Share your referral link using /refer\n"+
			"2️⃣ Each friend who starts the bot with your link = 1 Referral\n"+
			"3️⃣ Each referral = 5 coins\n"+
			"4️⃣ Track your referrals & coins anytime: /referrals\n"+
			"5️⃣ Convert coins to cash or VIP features: /convert\n"+
			"6️⃣ See the top referrers: /refleaderboard\n\n"+
			"💡 T&C: 100 coins = Access to VIP features or #100\n"+
			"Keep sharing and watch your coins grow! 😎")
}

func (a *App) referMarkup(uid string) *tele.ReplyMarkup {
	link := a.referralLink(uid)
	markup := &tele.ReplyMarkup{}
	share := markup.URL("📤 Share Link", "https://t.me/share/url?url="+link)
	stats := markup.Data("📊 My Stats", "ref_stats")
	markup.Inline(markup.Row(share, stats))
	return markup
}

func (a *App) handleRefer(c tele.Context) error {
	a.trackCommand(c)
	uid := userKey(c.Sender())
	return tghelpers.SendText(c, fmt.Sprintf(
		"🎯 Your Referral Link\n%s\n\nEarn 5 coins per invite 😎", a.referralLink(uid),
	), &tele.SendOptions{ReplyMarkup: a.referMarkup(uid)})
}

func (a *App) handleReferrals(c tele.Context) error {
	a.trackCommand(c)
	acc, err := a.eco.Account(userKey(c.Sender()))
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, fmt.Sprintf(
		"👥 *Total Referrals:* %d\n💰 *Coins:* %d\n\nKeep sharing your link with /refer to earn more!",
		len(acc.Referrals), acc.Coins,
	))
}

func (a *App) handleConvert(c tele.Context) error {
	a.trackCommand(c)
	balance, eligible, err := a.eco.ConvertEligible(userKey(c.Sender()))
	if err != nil {
		return err
	}
	if !eligible {
		return tghelpers.SendMD(c,
			"❌ You need at least 100 coins to convert.\nKeep inviting friends using /refer! 😎")
	}
	return tghelpers.SendMD(c, fmt.Sprintf(
		"🎉 You have %d coins!\n"+
			"DM @Just_Collins101 to convert to cash or VIP access.\n"+
			"T&C: 100 coins = #100 / VIP unlock", balance,
	))
}

func (a *App) renderRefLeaderboard() (string, error) {
	top, err := a.eco.TopReferrers(10)
	if err != nil {
		return "", err
	}
	if len(top) == 0 {
		return "No referrals yet 😅 Start sharing your link!", nil
	}
	var b strings.Builder
	b.WriteString("🏅 *TOP REFERRERS* 🏅\n\n")
	for i, row := range top {
		name := "User " + row.UserID
		if row.Username != "" {
			name = "@" + row.Username
		}
		fmt.Fprintf(&b, "%d. %s — %d coins — %d refs\n", i+1, name, row.Coins, row.Referrals)
	}
	return b.String(), nil
}

func (a *App) handleRefLeaderboard(c tele.Context) error {
	a.trackCommand(c)
	text, err := a.renderRefLeaderboard()
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, text)
}

func (a *App) cbRefStats(c tele.Context) error {
	acc, err := a.eco.Account(userKey(c.Sender()))
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, fmt.Sprintf(
		"📊 *Your Stats*\n\n👥 Referrals: %d\n💰 Coins: %d",
		len(acc.Referrals), acc.Coins,
	))
}

func (a *App) cbRefLeaderboard(c tele.Context) error {
	text, err := a.renderRefLeaderboard()
	if err != nil {
		return err
	}
	return tghelpers.SendMD(c, text)
}

func (a *App) cbOpenRefer(c tele.Context) error {
	return a.handleRefer(c)
}

func (a *App) cbOpenShop(c tele.Context) error {
	return tghelpers.SendText(c, "🛒 Shop coming soon! Stay tuned 😎")
}

// economyTiersHint summarises the tier table for the referral help screen.
func economyTiersHint() string {
	var b strings.Builder
	for _, tier := range economy.Tiers {
		fmt.Fprintf(&b, "%s %d referrals → +%d coins\n", tier.Badge, tier.Referrals, tier.Coins)
	}
	return b.String()
}
