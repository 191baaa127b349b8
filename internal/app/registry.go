package app

import (
	tg "github.com/kariosv/collinsbot/core/telegram"
	"github.com/kariosv/collinsbot/core/telegram/commands"
)

func (a *App) registerCommands(reg *tg.Registry) {
	// Onboarding and referral economy.
	reg.RegisterCommand("/start", commands.Command{Handler: a.handleStart, Description: "Start the bot"})
	reg.RegisterCommand("/refinfo", commands.Command{Handler: a.handleRefInfo, Description: "How the referral system works"})
	reg.RegisterCommand("/refer", commands.Command{Handler: a.handleRefer, Description: "Get your referral link"})
	reg.RegisterCommand("/referrals", commands.Command{Handler: a.handleReferrals, Description: "Your referrals and coins"})
	reg.RegisterCommand("/convert", commands.Command{Handler: a.handleConvert, Description: "Convert coins to rewards"})
	reg.RegisterCommand("/refleaderboard", commands.Command{Handler: a.handleRefLeaderboard, Description: "Top referrers"})

	// Profile and progression.
	reg.RegisterCommand("/help", commands.Command{Handler: a.handleHelp, Description: "Show all commands"})
	reg.RegisterCommand("/profile", commands.Command{Handler: a.handleProfile, Description: "Your level, XP and coins"})
	reg.RegisterCommand("/leaderboard", commands.Command{Handler: a.handleLeaderboard, Description: "Top users by XP"})

	// Fun and AI.
	reg.RegisterCommand("/joke", commands.Command{Handler: a.handleJoke, Description: "Tell a joke"})
	reg.RegisterCommand("/rps", commands.Command{Handler: a.handleRPS, Description: "Rock, paper, scissors"})
	reg.RegisterCommand("/summarize", commands.Command{Handler: a.handleSummarize, Description: "Summarize a text"})
	reg.RegisterCommand("/remind", commands.Command{Handler: a.handleRemind, Description: "Set a reminder"})

	// Anime squad game.
	reg.RegisterCommand("/anime", commands.Command{Handler: a.handleAnimeGuide, Description: "Anime squad guide"})
	reg.RegisterCommand("/search", commands.Command{Handler: a.handleSearch, Description: "Search a verse for a character"})
	reg.RegisterCommand("/character", commands.Command{Handler: a.handleCharacter, Description: "View your squad"})
	reg.RegisterCommand("/train", commands.Command{Handler: a.handleTrain, Description: "Train your squad"})
	reg.RegisterCommand("/remove", commands.Command{Handler: a.handleRemove, Description: "Remove a squad member"})
	reg.RegisterCommand("/squad_leaderboard", commands.Command{Handler: a.handleSquadLeaderboard, Description: "Strongest squads"})

	// Info.
	reg.RegisterCommand("/about", commands.Command{Handler: a.handleAbout, Description: "About this bot"})
	reg.RegisterCommand("/support", commands.Command{Handler: a.handleSupport, Description: "Support and contact"})

	// Admin.
	reg.RegisterCommand("/admin", commands.Command{Handler: a.handleAdminLogin, Description: "Unlock admin access", Hidden: true})
	reg.RegisterCommand("/ban", commands.Command{Handler: a.handleBan, Description: "Ban a user", AdminOnly: true})
	reg.RegisterCommand("/unban", commands.Command{Handler: a.handleUnban, Description: "Unban a user", AdminOnly: true})
	reg.RegisterCommand("/broadcast", commands.Command{Handler: a.handleBroadcast, Description: "Broadcast a message", AdminOnly: true})
	reg.RegisterCommand("/stats", commands.Command{Handler: a.handleStats, Description: "Bot statistics", AdminOnly: true})
	reg.RegisterCommand("/wipe", commands.Command{Handler: a.handleWipe, Description: "Wipe a user's chat memory", AdminOnly: true})
	reg.RegisterCommand("/uptime", commands.Command{Handler: a.handleUptime, Description: "Bot uptime", AdminOnly: true})
}

func (a *App) registerCallbacks(reg *tg.Registry) {
	_ = reg.RegisterCallback("verify_join", a.cbVerifyJoin)

	_ = reg.RegisterCallback("ref_stats", a.cbRefStats)
	_ = reg.RegisterCallback("ref_leaderboard", a.cbRefLeaderboard)
	_ = reg.RegisterCallback("open_refer", a.cbOpenRefer)
	_ = reg.RegisterCallback("open_shop", a.cbOpenShop)

	_ = reg.RegisterCallback("help_fun", a.helpTextCallback("😂 Joke: /joke\n✂️ RPS: /rps <rock|paper|scissors>"))
	_ = reg.RegisterCallback("help_fun_rps", a.helpTextCallback("Usage: /rps <rock|paper|scissors>"))
	_ = reg.RegisterCallback("help_ai_summarize", a.helpTextCallback("Usage: /summarize, then send the text"))
	_ = reg.RegisterCallback("help_remind", a.helpTextCallback("Set a reminder using /remind <minutes> <text>"))
	_ = reg.RegisterCallback("help_anime", a.helpTextCallback("🎴 *Anime Characters System*\n"+
		"• /search <verse> → Search & recruit a character\n"+
		"• /character → View your squad\n"+
		"• /train → Train your squad (+2 levels)\n"+
		"• /remove → Remove a character\n"+
		"Max 5 characters per user. Cooldowns apply."))
	_ = reg.RegisterCallback("help_profile", a.cbHelpProfile)
	_ = reg.RegisterCallback("help_leaderboard", a.handleLeaderboard)
	_ = reg.RegisterCallback("help_referral", a.cbHelpReferral)
	_ = reg.RegisterCallback("help_about", a.handleAbout)
	_ = reg.RegisterCallback("help_support", a.handleSupport)
}
