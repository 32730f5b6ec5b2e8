package app

import (
	"fmt"
	"io"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logMaxBackups = 3
	logMaxAgeDays = 28
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds the root logger writing to out and, when cfg.File is set,
// to a rotating log file. The returned closer releases the file.
func NewLogger(cfg LogConfig, out io.Writer) (log.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var closer io.Closer = nopCloser{}
	writer := out
	if cfg.File != "" {
		fileLogger := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
			Compress:   true,
		}
		writer = io.MultiWriter(out, fileLogger)
		closer = fileLogger
	}

	opts := []log.Option{log.LevelOption(level)}
	switch cfg.Format {
	case LogFormatJSON:
		opts = append(opts, log.OutputJSONOption())
	default:
		if cfg.File != "" {
			opts = append(opts, log.ColorOption(false))
		}
	}

	return log.NewLogger(writer, opts...), closer, nil
}
