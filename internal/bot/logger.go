package bot

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// telegoLogger routes telego's internal logging through zerolog and keeps
// the bot token out of request URLs it prints.
type telegoLogger struct {
	log   zerolog.Logger
	token string
}

func (l telegoLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msg(l.redact(fmt.Sprintf(format, args...)))
}

func (l telegoLogger) Errorf(format string, args ...any) {
	l.log.Error().Msg(l.redact(fmt.Sprintf(format, args...)))
}

func (l telegoLogger) redact(s string) string {
	if l.token == "" {
		return s
	}
	return strings.ReplaceAll(s, l.token, "BOT_TOKEN")
}
