// Package logging sets up the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the global logger with a console sink on stderr and, when
// file is set, a rotating file sink. It returns the configured logger.
func Init(level, file string) zerolog.Logger {
	return initWith(os.Stderr, level, file)
}

func initWith(stderr *os.File, level, file string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	isTerminal := isatty.IsTerminal(stderr.Fd()) || isatty.IsCygwinTerminal(stderr.Fd())
	consoleWriter := zerolog.ConsoleWriter{
		Out:        stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}

	var out io.Writer = consoleWriter
	if file != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    16, // megabytes
			MaxBackups: 8,
			MaxAge:     30, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(consoleWriter, fileWriter)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	lvl, err := ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("invalid log level, using info")
	}
	zerolog.SetGlobalLevel(lvl)

	return log.Logger
}

// ParseLevel parses a level name, falling back to info
func ParseLevel(level string) (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel, err
	}
	if lvl == zerolog.NoLevel {
		return zerolog.InfoLevel, nil
	}
	return lvl, nil
}
