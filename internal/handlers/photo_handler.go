package handlers

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"
	"github.com/rs/zerolog"
)

func (h *Handler) handlePhoto(ctx context.Context, log zerolog.Logger, chatID int64, fileID string) {
	log.Info().Msg("removing background")

	h.reply(ctx, log, chatID, reply{text: downloadingText})

	inputPath, cleanupIn, err := h.fileManager.DownloadToTemp(ctx, fileID)
	if err != nil {
		h.fail(ctx, log, chatID, "download failed", downloadErrorText, err)
		return
	}
	defer cleanupIn()

	h.reply(ctx, log, chatID, reply{text: processingText})
	if err := h.bot.SendChatAction(ctx, chatID, telego.ChatActionUploadPhoto); err != nil {
		log.Debug().Err(err).Msg("chat action failed")
	}

	d, cleanupOut, err := h.relay.RemoveBackground(ctx, inputPath)
	if err != nil {
		h.fail(ctx, log, chatID, "background removal failed", userMessage(err), err)
		return
	}
	defer cleanupOut()

	if d.AsPhoto {
		err = h.bot.SendPhoto(ctx, chatID, d.Path, doneCaption)
	} else {
		err = h.bot.SendDocument(ctx, chatID, d.Path, doneCaption, d.ThumbPath)
	}
	if err != nil {
		log.Error().Err(err).Bool("as_photo", d.AsPhoto).Msg("send result failed")
		return
	}

	log.Info().
		Str("format", d.Info.Format).
		Int("width", d.Info.Width).
		Int("height", d.Info.Height).
		Bool("as_photo", d.AsPhoto).
		Msg("background removed")
}

// extractImage picks the highest-resolution photo variant, or an image
// sent uncompressed as a document.
func extractImage(msg *telego.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		best := msg.Photo[0]
		for _, p := range msg.Photo[1:] {
			if p.Width*p.Height >= best.Width*best.Height {
				best = p
			}
		}
		return best.FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}
