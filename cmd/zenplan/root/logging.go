package root

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging sends human-readable logs to out. --debug wins over the configured level.
func setupLogging(out io.Writer, level string, debug bool) {
	zerolog.SetGlobalLevel(parseLevel(level, debug))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, NoColor: true})
}

// addFileLog tees logs into a rotated JSON file for the long-running worker.
func addFileLog(console io.Writer, path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: console, NoColor: true},
		rotator,
	)).With().Timestamp().Logger()
	return rotator, nil
}

func parseLevel(level string, debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
