package bot

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/mymmrac/telego"
	"github.com/rs/zerolog"
)

type TelegramBot struct {
	client   *telego.Bot
	username string
	logger   zerolog.Logger
}

// NewTelegramBot creates the client and resolves the bot's own username,
// which group commands of the form /cmd@username are matched against.
func NewTelegramBot(ctx context.Context, token string, logger zerolog.Logger) (*TelegramBot, error) {
	tgLog := logger.With().Str("component", "telego").Logger()

	b, err := telego.NewBot(token, telego.WithLogger(telegoLogger{log: tgLog, token: token}))
	if err != nil {
		return nil, fmt.Errorf("failed to create telego bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}

	return &TelegramBot{
		client:   b,
		username: me.Username,
		logger:   logger,
	}, nil
}

func (tb *TelegramBot) Username() string {
	return tb.username
}

// Start long-polls for updates and runs handler for each one in its own
// goroutine. It returns after ctx is cancelled and every running handler
// has finished.
func (tb *TelegramBot) Start(ctx context.Context, handler func(context.Context, telego.Update)) error {
	updates, err := tb.client.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{Timeout: 30})
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	tb.logger.Info().Msg("bot started receiving updates")

	var wg sync.WaitGroup
	for update := range updates {
		wg.Add(1)
		go func(u telego.Update) {
			defer wg.Done()
			handler(ctx, u)
		}(update)
	}

	wg.Wait()
	tb.logger.Info().Msg("updates channel closed, bot stopped")
	return ctx.Err()
}

func (tb *TelegramBot) sendFileFromPath(
	ctx context.Context,
	chatID int64,
	filePath string,
	sender func(context.Context, telego.ChatID, telego.InputFile) (*telego.Message, error),
) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer func(file *os.File) {
		if closeErr := file.Close(); closeErr != nil {
			tb.logger.Warn().Err(closeErr).Str("path", filePath).Msg("failed to close file")
		}
	}(file)

	_, err = sender(ctx, telego.ChatID{ID: chatID}, telego.InputFile{File: file})
	if err != nil {
		return fmt.Errorf("failed to send file to chat %d: %w", chatID, err)
	}
	return nil
}

func (tb *TelegramBot) SendPhoto(ctx context.Context, chatID int64, filePath, caption string) error {
	return tb.sendFileFromPath(ctx, chatID, filePath,
		func(c context.Context, id telego.ChatID, f telego.InputFile) (*telego.Message, error) {
			return tb.client.SendPhoto(c, &telego.SendPhotoParams{
				ChatID:  id,
				Photo:   f,
				Caption: caption,
			})
		},
	)
}

func (tb *TelegramBot) SendDocument(ctx context.Context, chatID int64, filePath, caption, thumbPath string) error {
	var thumb *telego.InputFile
	if thumbPath != "" {
		tf, err := os.Open(thumbPath)
		if err != nil {
			return fmt.Errorf("failed to open thumbnail %s: %w", thumbPath, err)
		}
		defer tf.Close()
		thumb = &telego.InputFile{File: tf}
	}

	return tb.sendFileFromPath(ctx, chatID, filePath,
		func(c context.Context, id telego.ChatID, f telego.InputFile) (*telego.Message, error) {
			return tb.client.SendDocument(c, &telego.SendDocumentParams{
				ChatID:    id,
				Document:  f,
				Thumbnail: thumb,
				Caption:   caption,
			})
		},
	)
}

func (tb *TelegramBot) SendText(ctx context.Context, chatID int64, text string) error {
	return tb.sendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
}

func (tb *TelegramBot) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	return tb.sendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: telego.ModeMarkdown,
	})
}

func (tb *TelegramBot) sendMessage(ctx context.Context, params *telego.SendMessageParams) error {
	if _, err := tb.client.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", params.ChatID.ID, err)
	}
	return nil
}

func (tb *TelegramBot) SendChatAction(ctx context.Context, chatID int64, action string) error {
	err := tb.client.SendChatAction(ctx, &telego.SendChatActionParams{
		ChatID: telego.ChatID{ID: chatID},
		Action: action,
	})
	if err != nil {
		return fmt.Errorf("failed to send chat action: %w", err)
	}
	return nil
}

func (tb *TelegramBot) GetFile(ctx context.Context, fileID string) (*File, error) {
	f, err := tb.client.GetFile(ctx, &telego.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file info for ID %s: %w", fileID, err)
	}

	return &File{
		FileID:   f.FileID,
		FilePath: f.FilePath,
	}, nil
}

func (tb *TelegramBot) FileDownloadURL(filePath string) string {
	return tb.client.FileDownloadURL(filePath)
}
