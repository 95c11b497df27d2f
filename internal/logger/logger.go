package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Init(level string, format string, filePath string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var console io.Writer = os.Stderr
	if format == "console" {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	if filePath != "" {
		// Append to the log file alongside console output. A failure to
		// open the file is not fatal; console logging still works.
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			log.Logger = log.Output(zerolog.MultiLevelWriter(console, f))
			return
		}
	}

	log.Logger = log.Output(console)
}

func Get() zerolog.Logger {
	return log.Logger
}
