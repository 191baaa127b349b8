package app

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/kariosv/collinsbot/core/logger"
	tghelpers "github.com/kariosv/collinsbot/core/telegram/helpers"
	"github.com/kariosv/collinsbot/internal/ai"
	"github.com/kariosv/collinsbot/internal/economy"
	"github.com/kariosv/collinsbot/internal/moderation"
)

// handleText is the fallback for plain text that matched no FSM state and no
// registered command.
func (a *App) handleText(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || c.Sender() == nil {
		return nil
	}
	switch chat.Type {
	case tele.ChatGroup, tele.ChatSuperGroup:
		return a.moderateGroupMessage(c)
	case tele.ChatPrivate:
		return a.handlePrivateText(c)
	}
	return nil
}

func (a *App) handlePrivateText(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "private_text")
	sender := c.Sender()
	uid := userKey(sender)
	text := c.Text()

	welcomed, err := a.eco.FirstContact(uid, sender.Username)
	if err != nil {
		return err
	}
	if welcomed {
		if err := tghelpers.SendText(c, fmt.Sprintf(
			"🎉 Welcome! First message bonus: +%d coins", economy.WelcomeReward)); err != nil {
			return err
		}
	}

	if handled, err := a.handleRecruitReply(c); handled || err != nil {
		return err
	}

	if _, err := a.xp.RecordMessage(uid, sender.Username); err != nil {
		logger.Warn(ctx, "xp", "xp.message.fail", slog.String("err", err.Error()))
	}
	if err := a.memory.Remember(uid, text); err != nil {
		logger.Warn(ctx, "mem", "memory.remember.fail", slog.String("err", err.Error()))
	}

	if ai.Blocked(text) {
		return tghelpers.SendText(c, "Ethical cyber only 👨‍💻")
	}

	history, err := a.memory.Recall(uid)
	if err != nil {
		return err
	}
	answer, err := a.assistant.Ask(ctx, text, history)
	if err != nil {
		return tghelpers.SendText(c, "Network error 😕")
	}
	if err := tghelpers.SendText(c, answer); err != nil {
		return err
	}

	granted, _, err := a.eco.GrantAIReward(uid)
	if err != nil {
		logger.Warn(ctx, "eco", "ai_reward.fail", slog.String("err", err.Error()))
		return nil
	}
	if granted {
		return tghelpers.SendText(c, fmt.Sprintf(
			"🤖 Thanks for chatting!\n+%d coins earned (once every 12hrs)", economy.AIReward))
	}
	return nil
}

func (a *App) handleSummarize(c tele.Context) error {
	a.trackCommand(c)
	a.fsm.SetState(c.Sender().ID, stateAwaitSummary)
	return tghelpers.SendText(c, "Send text to summarize")
}

func (a *App) handleSummaryText(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "summarize")
	a.fsm.ClearState(c.Sender().ID)

	answer, err := a.assistant.Ask(ctx, "Summarize:\n"+c.Text(), nil)
	if err != nil {
		return tghelpers.SendText(c, "Network error 😕")
	}
	return tghelpers.SendText(c, answer)
}

// hasLink catches plain URLs and bare domains. Good enough for group
// moderation, not a URL parser.
func hasLink(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "http://") ||
		strings.Contains(lower, "https://") ||
		strings.Contains(lower, ".com")
}

// moderateGroupMessage enforces the no-links rule: two warnings, then a
// 24-hour mute. Chat admins are exempt.
func (a *App) moderateGroupMessage(c tele.Context) error {
	if !hasLink(c.Text()) {
		return nil
	}
	ctx := tghelpers.WithHandler(c, "group_moderation")
	chat := c.Chat()
	sender := c.Sender()

	bot := a.bot.Load()
	if bot != nil {
		member, err := bot.ChatMemberOf(chat, sender)
		if err == nil && (member.Role == tele.Administrator || member.Role == tele.Creator) {
			return nil
		}
	}

	if msg := c.Message(); msg != nil && bot != nil {
		if err := bot.Delete(msg); err != nil {
			logger.Warn(ctx, "mod", "link.delete.fail", slog.String("err", err.Error()))
		}
	}

	count, muted, err := a.mod.WarnLink(strconv.FormatInt(chat.ID, 10), userKey(sender))
	if err != nil {
		return err
	}
	name := strings.TrimPrefix(displayName(sender), "@")

	if muted {
		if bot != nil {
			until := time.Now().Add(moderation.MuteDuration)
			err := bot.Restrict(chat, &tele.ChatMember{
				User:            sender,
				Rights:          tele.Rights{CanSendMessages: false},
				RestrictedUntil: until.Unix(),
			})
			if err != nil {
				logger.Warn(ctx, "mod", "link.mute.fail", slog.String("err", err.Error()))
			}
		}
		return tghelpers.SendText(c, fmt.Sprintf(
			"🚫 @%s has been muted for 24 hours for posting links!", name))
	}

	switch count {
	case 1:
		return tghelpers.SendText(c, fmt.Sprintf("⚠️ Warning 1: Links are not allowed, @%s!", name))
	default:
		return tghelpers.SendText(c, fmt.Sprintf(
			"⚠️ Warning %d: Second time posting links. Next time you'll be muted, @%s!", count, name))
	}
}
