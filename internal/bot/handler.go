package bot

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
)

// Handler holds dependencies for the Telegram bot handlers.
type Handler struct {
	bot  *tgbot.Bot
	cmds *Commands
	log  logrus.FieldLogger
}

// NewHandler creates a new bot handler instance.
func NewHandler(token string, store ItemStore, logger logrus.FieldLogger) (*Handler, error) {
	log := logger.WithField("component", "bot_handler")

	h := &Handler{
		cmds: NewCommands(store),
		log:  log,
	}

	b, err := tgbot.New(token, tgbot.WithDefaultHandler(h.defaultHandler))
	if err != nil {
		log.WithError(err).Error("Failed to create Telegram bot instance")
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h.bot = b
	h.registerHandlers()

	log.Info("Telegram bot handler initialized")
	return h, nil
}

// registerHandlers sets up the command handlers.
func (h *Handler) registerHandlers() {
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypeExact, h.command("/start", func(string) string { return h.cmds.Help() }))
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/help", tgbot.MatchTypeExact, h.command("/help", func(string) string { return h.cmds.Help() }))
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/list", tgbot.MatchTypeExact, h.command("/list", func(string) string { return h.cmds.List() }))
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/done", tgbot.MatchTypePrefix, h.command("/done", h.cmds.Done))
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/delete", tgbot.MatchTypePrefix, h.command("/delete", h.cmds.Delete))
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/edit", tgbot.MatchTypePrefix, h.command("/edit", h.cmds.Edit))
	h.log.Info("Registered command handlers")
}

// Start begins polling for updates from Telegram.
// This function blocks until the context is cancelled.
func (h *Handler) Start(ctx context.Context) {
	h.log.Info("Starting Telegram bot polling...")
	h.bot.Start(ctx)
	h.log.Info("Telegram bot polling stopped.")
}

// command adapts a text command to a Telegram handler. run receives the
// message text after the command word.
func (h *Handler) command(name string, run func(args string) string) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		log := h.log.WithFields(logrus.Fields{
			"chat_id": update.Message.Chat.ID,
			"command": name,
		})
		log.Info("Received command")
		h.reply(ctx, b, update, log, run(commandArgs(update.Message.Text, name)))
	}
}

// defaultHandler adds any non-command text as a new item.
func (h *Handler) defaultHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	log := h.log.WithField("chat_id", update.Message.Chat.ID)
	if strings.HasPrefix(update.Message.Text, "/") {
		h.reply(ctx, b, update, log, h.cmds.Help())
		return
	}
	log.Debug("Adding item from message")
	h.reply(ctx, b, update, log, h.cmds.Add(update.Message.Text))
}

func (h *Handler) reply(ctx context.Context, b *tgbot.Bot, update *models.Update, log logrus.FieldLogger, text string) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
	if err != nil {
		log.WithError(err).Error("Failed to send reply")
	}
}

// commandArgs strips the command word, including any @botname suffix.
func commandArgs(text, name string) string {
	rest := strings.TrimPrefix(text, name)
	if strings.HasPrefix(rest, "@") {
		if i := strings.IndexAny(rest, " \n"); i >= 0 {
			rest = rest[i:]
		} else {
			rest = ""
		}
	}
	return strings.TrimSpace(rest)
}
