package app

import (
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/kariosv/collinsbot/core/telegram/helpers"
)

func (a *App) handleAbout(c tele.Context) error {
	a.trackCommand(c)
	return tghelpers.SendMD(c,
		"✨ *ABOUT COLLINS AI* ✨\n\n"+
			"👑 Name: Collins AI\n"+
			"👨‍💻 Creator: Ifeanyichukwu Collins Chibueze\n"+
			"🔥 Alias: Karios Vantari\n\n"+
			"💡 Features:\n"+
			"• Chat & AI responses\n"+
			"• Fun games 🎮\n"+
			"• XP system & leaderboard 🏆\n"+
			"• Reminders ⏰\n"+
			"• Admin tools & broadcast 📢\n\n"+
			"🌐 Portfolio: https://karios-portfolio.onrender.com\n"+
			"💙 Made with passion and late-night coding")
}

func (a *App) handleSupport(c tele.Context) error {
	a.trackCommand(c)
	return tghelpers.SendText(c,
		"🌟 COLLINS AI – SUPPORT CENTER\n\n"+
			"💬 Need help? Got issues? Suggestions? Wanna vibe? 😎🔥\n\n"+
			"📧 Email: ifeanyichukwucollins008@gmail.com\n\n"+
			"💬 Telegram: @Just_Collins101\n\n"+
			"📲 WhatsApp: https://wa.me/2348089368681\n\n"+
			"📺 Channel: https://t.me/Collins_AI_101\n\n"+
			"🎮 Daily AI chats 😆😂🎉\n"+
			"⚡ Jokes, fun, games 🎮🎯\n"+
			"⏰ Reminders & tips 💡💥\n"+
			"💎 Powered by Karios Vantari + Groq AI 💙💫")
}

func (a *App) handleJoke(c tele.Context) error {
	a.trackCommand(c)
	ctx := tghelpers.WithHandler(c, "joke")
	history, err := a.memory.Recall(userKey(c.Sender()))
	if err != nil {
		return err
	}
	answer, err := a.assistant.Ask(ctx, "Tell a funny short joke", history)
	if err != nil {
		return tghelpers.SendText(c, "Network error 😕")
	}
	return tghelpers.SendText(c, answer)
}

var rpsOptions = []string{"rock", "paper", "scissors"}

func rpsBeats(a, b string) bool {
	return (a == "rock" && b == "scissors") ||
		(a == "scissors" && b == "paper") ||
		(a == "paper" && b == "rock")
}

func (a *App) handleRPS(c tele.Context) error {
	a.trackCommand(c)
	choice := strings.ToLower(strings.TrimSpace(payloadOf(c)))
	valid := false
	for _, opt := range rpsOptions {
		if choice == opt {
			valid = true
			break
		}
	}
	if !valid {
		return tghelpers.SendText(c, "Usage: /rps <rock|paper|scissors>")
	}

	botChoice := rpsOptions[a.roll(len(rpsOptions))]
	result := "Tie 🙆"
	switch {
	case rpsBeats(choice, botChoice):
		result = "You win 🎉"
	case rpsBeats(botChoice, choice):
		result = "You lose 😭"
	}
	return tghelpers.SendText(c, fmt.Sprintf("You: %s\nMe: %s\n%s", choice, botChoice, result))
}

func (a *App) handleUptime(c tele.Context) error {
	a.trackCommand(c)
	up := time.Since(a.startedAt)
	seconds := int(up.Seconds())
	return tghelpers.SendMD(c, fmt.Sprintf(
		"⏳ *BOT UPTIME*\n\n🗓 %d days\n⏰ %d hours\n⌛ %d minutes\n⚡ %d seconds",
		seconds/86400, (seconds%86400)/3600, (seconds%3600)/60, seconds%60,
	))
}

// payloadOf returns the command arguments, whether the update arrived as a
// parsed command or as plain text routed through the registry.
func payloadOf(c tele.Context) string {
	if msg := c.Message(); msg != nil && msg.Payload != "" {
		return msg.Payload
	}
	text := c.Text()
	if i := strings.IndexByte(text, ' '); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return ""
}
