package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// Nop returns a logger that drops every entry. Components fall back to it
// when no logger is configured.
func Nop() *ZerologLogger {
	return &ZerologLogger{zl: zerolog.Nop(), closers: &[]io.Closer{}}
}
