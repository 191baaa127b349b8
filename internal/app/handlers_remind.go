package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/kariosv/collinsbot/core/telegram/helpers"
)

func (a *App) handleRemind(c tele.Context) error {
	a.trackCommand(c)

	payload := payloadOf(c)
	parts := strings.SplitN(payload, " ", 2)
	if len(parts) < 2 {
		return tghelpers.SendText(c, "Usage: /remind <minutes> <text>")
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil || minutes <= 0 {
		return tghelpers.SendText(c, "Usage: /remind <minutes> <text>")
	}
	text := strings.TrimSpace(parts[1])
	if text == "" {
		return tghelpers.SendText(c, "Usage: /remind <minutes> <text>")
	}

	if _, err := a.reminders.Schedule(c.Chat().ID, text, time.Duration(minutes)*time.Minute); err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf("⏰ Reminder set for %d minutes", minutes))
}
