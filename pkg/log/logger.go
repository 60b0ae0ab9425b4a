package log

import (
	"os"

	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

// New builds the process logger. Development mode gets the human-readable
// console writer; everything else emits JSON lines for log shipping.
func New(env string) Logger {
	if env == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}
