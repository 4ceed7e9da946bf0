package bootstrap

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// customLogWriter routes logs to stderr if they contain "err" or "error", otherwise to stdout.
type customLogWriter struct{}

func (w *customLogWriter) Write(p []byte) (n int, err error) {
	logContent := strings.ToLower(string(p))
	if strings.Contains(logContent, "err") || strings.Contains(logContent, "error") || strings.Contains(logContent, "failed") {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

func NewLogger() *log.Logger {
	return log.NewWithOptions(&customLogWriter{}, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Level:           log.DebugLevel,
		TimeFormat:      time.Kitchen,
	})
}
