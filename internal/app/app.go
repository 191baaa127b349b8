// Package app wires the bot together: it binds every ledger and engine to
// the store, registers all commands and callbacks, and owns the inbound
// update flows (private chat, group moderation, FSM dialogs).
package app

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/kariosv/collinsbot/core/config"
	"github.com/kariosv/collinsbot/core/logger"
	tg "github.com/kariosv/collinsbot/core/telegram"
	tghelpers "github.com/kariosv/collinsbot/core/telegram/helpers"
	"github.com/kariosv/collinsbot/core/telegram/middleware"
	"github.com/kariosv/collinsbot/core/telegram/router"
	"github.com/kariosv/collinsbot/core/telegram/state"
	"github.com/kariosv/collinsbot/internal/ai"
	"github.com/kariosv/collinsbot/internal/anime"
	"github.com/kariosv/collinsbot/internal/economy"
	"github.com/kariosv/collinsbot/internal/memory"
	"github.com/kariosv/collinsbot/internal/moderation"
	"github.com/kariosv/collinsbot/internal/progression"
	"github.com/kariosv/collinsbot/internal/reminder"
	"github.com/kariosv/collinsbot/internal/storage"
)

// FSM states for multi-step conversations.
const (
	stateAwaitPassword state.State = "admin_password"
	stateAwaitSummary  state.State = "summarize"
)

// App is the assembled bot.
type App struct {
	cfg *config.Config

	eco       *economy.Ledger
	xp        *progression.Tracker
	mod       *moderation.State
	squads    *anime.Engine
	memory    *memory.Log
	assistant *ai.Client
	reminders *reminder.Scheduler
	chats     *chatRegistry
	fsm       state.Manager

	bot         atomic.Pointer[tele.Bot]
	botUsername string
	startedAt   time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New assembles the application on top of an opened store.
func New(cfg *config.Config, store *storage.Store) *App {
	mod := moderation.NewState(store, cfg.Admin.Passphrase)

	a := &App{
		cfg:       cfg,
		eco:       economy.NewLedger(store),
		xp:        progression.NewTracker(store, mod.BanChecker()),
		mod:       mod,
		squads:    anime.NewEngine(store),
		memory:    memory.NewLog(store),
		assistant: ai.NewClient(cfg.AI, tg.BuildHTTPClient()),
		chats:     newChatRegistry(store),
		fsm:       state.NewMemoryManager(),
		startedAt: time.Now(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	a.reminders = reminder.NewScheduler(store, a.deliverReminder)

	state.RegisterHandler(stateAwaitPassword, a.handleAdminPassword)
	state.RegisterHandler(stateAwaitSummary, a.handleSummaryText)
	return a
}

// CoreConfig exposes the embedded core configuration for the runner.
func (a *App) CoreConfig() *config.Config {
	return a.cfg
}

// TelegramRunOptions assembles middleware, routes, and lifecycle hooks.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	a.registerCommands(reg)
	a.registerCallbacks(reg)
	reg.SetTextFallback(a.handleText)

	mws := tg.DefaultMiddlewares(a.cfg, nil)
	mws = append(mws, tg.Middleware{
		Name: "ban_gate",
		Use: middleware.BanGateMiddleware(middleware.BanGateOptions{
			IsBanned: a.mod.BanChecker(),
			OnReject: a.rejectBanned,
		}),
	})

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin:       a.isAdmin,
		OnAdminReject: a.rejectNonAdmin,
	})
	routes = append(routes, router.TextRoutes(a.fsm, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, tg.Route{Endpoint: tele.OnUserJoined, Handler: a.handleNewMembers})

	return tg.RunOptions{
		Config:   a.cfg,
		Registry: reg,

		Middlewares: mws,
		Routes:      routes,

		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.bot.Store(rt.Bot)
			if rt.Bot != nil && rt.Bot.Me != nil {
				a.botUsername = rt.Bot.Me.Username
			}
			_, err := a.reminders.Rearm()
			return err
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			a.reminders.Stop()
			return nil
		},
	}, nil
}

func (a *App) isAdmin(username string) bool {
	admin, err := a.mod.IsAdmin(username)
	if err != nil {
		return false
	}
	return admin
}

func (a *App) rejectBanned(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: "🚫 You've been banned", ShowAlert: true})
	}
	if chat := c.Chat(); chat != nil && chat.Type == tele.ChatPrivate {
		return tghelpers.SendText(c, "🚫 You've been banned")
	}
	return nil
}

func (a *App) rejectNonAdmin(c tele.Context) error {
	return tghelpers.SendText(c, "🚫 Admin only")
}

// deliverReminder is called by the scheduler, possibly long after the
// originating update, so it sends through the bot directly.
func (a *App) deliverReminder(chatID int64, text string) {
	bot := a.bot.Load()
	if bot == nil {
		logger.Warn(logger.Background(), "rem", "reminder.drop.no_bot",
			slog.Int64("chat_id", chatID),
		)
		return
	}
	if _, err := bot.Send(&tele.Chat{ID: chatID}, "🔔 Reminder: "+text); err != nil {
		logger.Warn(logger.Background(), "rem", "reminder.send.fail",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
}

// userKey is the store key for a Telegram user.
func userKey(user *tele.User) string {
	if user == nil {
		return ""
	}
	return strconv.FormatInt(user.ID, 10)
}

// displayName prefers the public @username, falling back to the first name.
func displayName(user *tele.User) string {
	if user == nil {
		return ""
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return user.FirstName
}

// trackCommand awards command XP and refreshes the cached username.
func (a *App) trackCommand(c tele.Context) {
	sender := c.Sender()
	if sender == nil {
		return
	}
	if _, err := a.xp.RecordCommand(userKey(sender), sender.Username); err != nil {
		logger.Warn(tghelpers.BuildContext(c), "xp", "xp.command.fail",
			slog.String("err", err.Error()),
		)
	}
}

func (a *App) roll(n int) int {
	a.rngMu.Lock()
	defer a.rngMu.Unlock()
	return a.rng.Intn(n)
}
