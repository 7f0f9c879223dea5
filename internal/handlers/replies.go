package handlers

import (
	"errors"
	"fmt"
	"strings"

	"bgrelay/internal/removebg"
)

const (
	startText = "👋 Hello! Send me a photo, and I’ll remove the background for you.\n\n" +
		"📌 Type /help for more commands."
	helpHeader = "🛠 *Available Commands:*\n" +
		"/start - Start the bot\n" +
		"/help - List of commands\n" +
		"/status - Check if the bot is active"
	helpKeyLine   = "\n/key - Show your Remove.bg API Key"
	statusText    = "✅ I’m online and ready to remove backgrounds!"
	keyTextFormat = "🔑 Your current Remove.bg API Key is:\n`%s`"
	hintText      = "📷 Send me a photo to remove its background."

	downloadingText = "📥 Downloading image..."
	processingText  = "🎨 Removing background, please wait..."
	doneCaption     = "✅ Done! Here’s your image without background:"

	downloadErrorText  = "🚧 Error downloading image"
	transportErrorText = "🚧 Could not reach the background removal service. Please try again later."
	timeoutErrorText   = "⏳ The background removal service took too long to answer. Please try again later."
	malformedErrorText = "🚧 The background removal service returned an unreadable image."
	genericErrorText   = "🚧 Error processing image"
)

type reply struct {
	text     string
	markdown bool
}

func helpText(keyEnabled bool) string {
	if keyEnabled {
		return helpHeader + helpKeyLine
	}
	return helpHeader
}

func keyText(key string) string {
	return fmt.Sprintf(keyTextFormat, key)
}

// userMessage maps a relay failure to the text shown in the chat. Service
// rejections carry the service's own reason verbatim.
func userMessage(err error) string {
	var rerr *removebg.Error
	if !errors.As(err, &rerr) {
		return genericErrorText
	}
	switch rerr.Kind {
	case removebg.KindRejected:
		return rerr.Reason
	case removebg.KindTimeout:
		return timeoutErrorText
	case removebg.KindMalformed:
		return malformedErrorText
	default:
		return transportErrorText
	}
}

// parseCommand splits "/name", "/name@bot" and "/name args" into the command
// name and the bot username it is addressed to, if any.
func parseCommand(text string) (cmd, target string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	name := strings.Fields(text[1:])
	if len(name) == 0 {
		return "", "", false
	}
	cmd, target, _ = strings.Cut(name[0], "@")
	if cmd == "" {
		return "", "", false
	}
	return cmd, target, true
}
