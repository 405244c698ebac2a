package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// setupLogging appends everything to <dir>/log_<date>.txt and shows
// messages at or above level on stderr.
func setupLogging(dir string, level string) (*zap.SugaredLogger, func(), error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level configured: %s", level)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed creating log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, fmt.Sprintf("log_%s.txt", time.Now().Format("2006-01-02"))), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening log file for writing: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(f), zapcore.DebugLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), lvl),
	)
	logger := zap.New(core)
	restore := zap.ReplaceGlobals(logger)

	return logger.Sugar(), func() {
		logger.Sync()
		restore()
		f.Close()
	}, nil
}

// userLog prints results on stdout and keeps a copy in the log.
type userLog struct {
	log    *zap.SugaredLogger
	writer io.Writer
}

func (u *userLog) PrintToUser(msg string, args ...interface{}) {
	line := fmt.Sprintf(msg, args...)
	fmt.Fprintln(u.writer, line)
	u.log.Info(line)
}

func (u *userLog) GreenCheckmarkToUser(msg string, args ...interface{}) {
	green := color.New(color.FgHiGreen).SprintFunc()
	u.PrintToUser(green("✓")+" "+msg, args...)
}

func (u *userLog) RedXToUser(msg string, args ...interface{}) {
	red := color.New(color.FgHiRed).SprintFunc()
	u.PrintToUser(red("✗")+" "+msg, args...)
}
