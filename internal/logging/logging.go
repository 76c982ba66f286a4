package logging

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006-01-02 15:04:05"

// rotatedFiles is how many old daily files are kept next to the current one.
const rotatedFiles = 3

// encoderConfig renders "ts - LEVEL - message" lines with UTC timestamps.
func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " - ",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.UTC().Format(timeLayout))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

func consoleCore() zapcore.Core {
	enc := zapcore.NewConsoleEncoder(encoderConfig())
	return zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapcore.InfoLevel)
}

// Console returns a logger writing to stderr only. Used when the file sink
// cannot be set up; the process runs on without a persistent log.
func Console() *zap.Logger {
	return zap.New(consoleCore())
}

// Setup returns a logger teeing stderr and a file sink at logPath. The file
// rotates daily at UTC midnight with the last few rotated files retained,
// and logPath is kept as a symlink to the current file.
func Setup(logPath string) (*zap.Logger, error) {
	if logPath == "" {
		return nil, errors.New("no log path configured")
	}

	writer, err := rotatelogs.New(
		logPath+".%Y%m%d",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithClock(rotatelogs.UTC),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithRotationCount(rotatedFiles),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "opening log sink at %s", logPath)
	}

	enc := zapcore.NewConsoleEncoder(encoderConfig())
	core := zapcore.NewTee(
		consoleCore(),
		zapcore.NewCore(enc, zapcore.AddSync(writer), zapcore.InfoLevel),
	)
	return zap.New(core), nil
}
