package observability

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger пишет структурированные сообщения вида msg + пары ключ/значение.
type Logger struct {
	base *log.Logger
	file *lumberjack.Logger
}

func NewLogger(logPath, logLevel string) *Logger {
	var out io.Writer = os.Stderr
	var file *lumberjack.Logger
	if logPath != "" {
		file = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30,
		}
		out = io.MultiWriter(os.Stderr, file)
	}

	base := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Level:           parseLevel(logLevel),
	})

	return &Logger{base: base, file: file}
}

// NewNop возвращает логгер, который ничего не пишет (для тестов).
func NewNop() *Logger {
	return &Logger{base: log.New(io.Discard)}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.base.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.base.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.base.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.base.Error(msg, fields...)
}

// With возвращает логгер с постоянными полями.
func (l *Logger) With(fields ...interface{}) *Logger {
	return &Logger{base: l.base.With(fields...), file: l.file}
}

// Close закрывает файл ротации, если он был открыт
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
