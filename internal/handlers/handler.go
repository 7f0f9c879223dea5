package handlers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mymmrac/telego"
	"github.com/rs/zerolog"

	"bgrelay/internal/bot"
	"bgrelay/internal/config"
	"bgrelay/internal/files"
	"bgrelay/internal/logging"
	"bgrelay/internal/metrics"
	"bgrelay/internal/services"
)

type Relay interface {
	RemoveBackground(ctx context.Context, inputPath string) (*services.Delivery, func(), error)
}

type Handler struct {
	bot         bot.Bot
	username    string
	fileManager files.FileManager
	relay       Relay
	logger      zerolog.Logger
	commands    map[string]reply
}

func NewHandler(
	cfg config.Config,
	bot bot.Bot,
	username string,
	fileManager files.FileManager,
	relay Relay,
	logger zerolog.Logger,
) *Handler {
	commands := map[string]reply{
		"start":  {text: startText},
		"help":   {text: helpText(cfg.KeyCommandEnabled), markdown: true},
		"status": {text: statusText},
	}
	if cfg.KeyCommandEnabled {
		commands["key"] = reply{text: keyText(cfg.RemoveBgKey), markdown: true}
	}

	return &Handler{
		bot:         bot,
		username:    username,
		fileManager: fileManager,
		relay:       relay,
		logger:      logger,
		commands:    commands,
	}
}

// HandleUpdate is safe to call concurrently; updates share no mutable state.
func (h *Handler) HandleUpdate(ctx context.Context, update telego.Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID

	ctx = logging.WithChatID(logging.WithRequestID(ctx, uuid.NewString()), chatID)
	log := logging.With(ctx, h.logger)

	if fileID, ok := extractImage(msg); ok {
		metrics.IncUpdate("photo")
		h.handlePhoto(ctx, log, chatID, fileID)
		return
	}

	if cmd, target, ok := parseCommand(msg.Text); ok {
		if !h.addressedToMe(target) {
			metrics.IncUpdate("other")
			return
		}
		if r, known := h.commands[cmd]; known {
			metrics.IncUpdate("command")
			log.Info().Str("command", cmd).Msg("command received")
			h.reply(ctx, log, chatID, r)
			return
		}
	}

	metrics.IncUpdate("other")
	if msg.Chat.Type == telego.ChatTypePrivate {
		h.reply(ctx, log, chatID, reply{text: hintText})
	}
}

// addressedToMe reports whether a command suffix names this bot. A bare
// command is addressed to every bot in the chat.
func (h *Handler) addressedToMe(target string) bool {
	return target == "" || strings.EqualFold(target, h.username)
}

func (h *Handler) reply(ctx context.Context, log zerolog.Logger, chatID int64, r reply) {
	var err error
	if r.markdown {
		err = h.bot.SendMarkdown(ctx, chatID, r.text)
	} else {
		err = h.bot.SendText(ctx, chatID, r.text)
	}
	if err != nil {
		log.Error().Err(err).Msg("send reply failed")
	}
}

func (h *Handler) fail(ctx context.Context, log zerolog.Logger, chatID int64, logMsg, userMsg string, err error) {
	log.Warn().Err(err).Msg(logMsg)
	h.reply(context.WithoutCancel(ctx), log, chatID, reply{text: userMsg})
}
