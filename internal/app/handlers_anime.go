package app

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/kariosv/collinsbot/core/telegram/helpers"
	"github.com/kariosv/collinsbot/internal/anime"
)

func (a *App) handleAnimeGuide(c tele.Context) error {
	a.trackCommand(c)

	var b strings.Builder
	b.WriteString("✨ *Anime Character System* ✨\n\n")
	b.WriteString("You can search, recruit, and train anime characters! Here's how it works:\n\n")
	b.WriteString("📜 *Commands*\n")
	b.WriteString("• /search <verse> — Find a character in a verse and recruit them\n")
	b.WriteString("• /character — Show your recruited characters\n")
	b.WriteString("• /train — Level up your characters (cooldown: 1hr)\n")
	b.WriteString("• /remove <character> — Remove a character from your squad\n\n")
	b.WriteString("🎮 *Details*\n")
	b.WriteString("• Each verse has a list of characters you can find\n")
	b.WriteString("• Characters have levels and rarities (Common, Rare, Legendary)\n")
	fmt.Fprintf(&b, "• You can recruit up to %d characters\n", anime.SquadCap)
	fmt.Fprintf(&b, "• Train adds +%d levels per session\n\n", anime.TrainLevels)
	b.WriteString("📚 *Available Verses & Characters*\n")
	for _, verse := range anime.Verses() {
		_, roster, _ := anime.Roster(verse)
		fmt.Fprintf(&b, "• *%s*: %s\n", verse, strings.Join(roster, ", "))
	}
	return tghelpers.SendMD(c, b.String())
}

func (a *App) handleSearch(c tele.Context) error {
	a.trackCommand(c)
	verse := payloadOf(c)
	if verse == "" {
		return tghelpers.SendText(c, fmt.Sprintf(
			"Usage: /search <anime verse>\nAvailable: %s", strings.Join(anime.Verses(), ", ")))
	}

	found, err := a.squads.Search(userKey(c.Sender()), verse)
	if errors.Is(err, anime.ErrUnknownVerse) {
		return tghelpers.SendText(c, fmt.Sprintf(
			"❌ Verse not found. Available: %s", strings.Join(anime.Verses(), ", ")))
	}
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf(
		"Found: %s (%s) from %s\nReply with 'yes' to recruit or 'no' to reject.",
		found.Name, found.Rarity, found.Verse,
	))
}

// handleRecruitReply consumes a pending offer on a literal yes/no answer.
// It reports whether the message was part of the recruit dialog.
func (a *App) handleRecruitReply(c tele.Context) (bool, error) {
	uid := userKey(c.Sender())
	if !a.squads.HasOffer(uid) {
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Text())) {
	case "yes":
		recruited, err := a.squads.Accept(uid)
		if errors.Is(err, anime.ErrSquadFull) {
			return true, tghelpers.SendText(c, fmt.Sprintf(
				"❌ Your squad is full (max %d). Use /remove to free a slot.", anime.SquadCap))
		}
		if errors.Is(err, anime.ErrNoOffer) {
			return true, nil
		}
		if err != nil {
			return true, err
		}
		return true, tghelpers.SendText(c, fmt.Sprintf("✅ %s added to your squad!", recruited.Name))
	case "no":
		rejected, err := a.squads.Reject(uid)
		if errors.Is(err, anime.ErrNoOffer) {
			return true, nil
		}
		if err != nil {
			return true, err
		}
		return true, tghelpers.SendText(c, fmt.Sprintf("❌ %s rejected.", rejected.Name))
	}
	return false, nil
}

func (a *App) handleCharacter(c tele.Context) error {
	a.trackCommand(c)
	squad, err := a.squads.Squad(userKey(c.Sender()))
	if err != nil {
		return err
	}
	if len(squad) == 0 {
		return tghelpers.SendText(c,
			"😅 You haven't recruited any characters yet. Use /search <anime verse> to find some!")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👾 %s's Squad:\n\n", displayName(c.Sender()))
	for i, member := range squad {
		fmt.Fprintf(&b, "%d. %s (%s) — %s | Level %d\n",
			i+1, member.Name, member.Verse, member.Rarity, member.Level)
	}
	return tghelpers.SendText(c, b.String())
}

func (a *App) handleTrain(c tele.Context) error {
	a.trackCommand(c)
	_, remaining, err := a.squads.Train(userKey(c.Sender()))
	if errors.Is(err, anime.ErrEmptySquad) {
		return tghelpers.SendText(c,
			"😅 You have no characters to train. Use /search <anime verse> first!")
	}
	if errors.Is(err, anime.ErrTrainCooldown) {
		secs := int(remaining.Seconds())
		return tghelpers.SendText(c, fmt.Sprintf(
			"⏳ You need to wait %dm %ds before training again.", secs/60, secs%60))
	}
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf(
		"💪 Your squad trained! All characters gained %d levels. Come back in 1 hour for more.",
		anime.TrainLevels,
	))
}

func (a *App) handleRemove(c tele.Context) error {
	a.trackCommand(c)
	uid := userKey(c.Sender())
	name := payloadOf(c)

	if name == "" {
		squad, err := a.squads.Squad(uid)
		if err != nil {
			return err
		}
		if len(squad) == 0 {
			return tghelpers.SendText(c, "😅 Your squad is empty. Use /search <anime verse> first!")
		}
		lines := make([]string, 0, len(squad))
		for _, member := range squad {
			lines = append(lines, fmt.Sprintf("%s (Lvl %d)", member.Name, member.Level))
		}
		return tghelpers.SendText(c,
			"Your squad:\n"+strings.Join(lines, "\n")+"\n\nUsage: /remove <character name>")
	}

	removed, ok, err := a.squads.Remove(uid, name)
	if err != nil {
		return err
	}
	if !ok {
		return tghelpers.SendText(c, fmt.Sprintf("❌ Character '%s' not found in your squad.", name))
	}
	return tghelpers.SendText(c, fmt.Sprintf("🗑 %s removed from your squad.", removed.Name))
}

func rarityEmoji(rarity string) string {
	switch rarity {
	case anime.RarityRare:
		return "✨"
	case anime.RarityLegendary:
		return "🌟"
	}
	return "⚔"
}

func (a *App) handleSquadLeaderboard(c tele.Context) error {
	a.trackCommand(c)
	ranks, err := a.squads.Leaderboard(10)
	if err != nil {
		return err
	}
	if len(ranks) == 0 {
		return tghelpers.SendText(c, "No squads recruited yet 😅 Go search some anime heroes first!")
	}

	var b strings.Builder
	b.WriteString("🏆 *SQUAD LEADERBOARD* 🏆\n\n")
	for i, rank := range ranks {
		name := "User " + rank.UserID
		if acc, err := a.eco.Account(rank.UserID); err == nil && acc.Username != "" {
			name = "@" + acc.Username
		}
		fmt.Fprintf(&b, "%d. %s — 💪 %d strength\n", i+1, name, rank.Strength)
		for _, member := range rank.Characters {
			fmt.Fprintf(&b, "  %s %s (Lvl %d) [%s]\n",
				rarityEmoji(member.Rarity), member.Name, member.Level, member.Rarity)
		}
		b.WriteString("\n")
	}
	b.WriteString("🔥 Recruit, train, and dominate the anime world! 💪😎")
	return tghelpers.SendMD(c, b.String())
}
