// Package logging provides the leveled, colored logger shared by the CLI
// commands, the Solana client and the dashboard server.
//
// INFO goes to stdout, WARN/ERROR/DEBUG go to stderr. Both can be redirected
// with SetOutput, which tests use to capture output.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	stdoutLogger = newLogger(os.Stdout)
	stderrLogger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "ogc",
	})
	l.SetStyles(levelStyles())
	return l
}

func levelStyles() *log.Styles {
	styles := log.DefaultStyles()

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Foreground(lipgloss.Color("#7F6DFF"))

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Foreground(lipgloss.Color("#42E7FF"))

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Foreground(lipgloss.Color("#FFE763"))

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Foreground(lipgloss.Color("#FF4473"))

	return styles
}

// SetLevel sets the minimum level for both loggers. Unknown levels fall back to INFO.
func SetLevel(level string) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	stdoutLogger.SetLevel(lvl)
	stderrLogger.SetLevel(lvl)
}

// GetLevel returns the current level name in upper case.
func GetLevel() string {
	return strings.ToUpper(stdoutLogger.GetLevel().String())
}

// SetOutput redirects every level to w.
func SetOutput(w io.Writer) {
	stdoutLogger.SetOutput(w)
	stderrLogger.SetOutput(w)
}

// RestoreOutput sends logs back to stdout/stderr.
func RestoreOutput() {
	stdoutLogger.SetOutput(os.Stdout)
	stderrLogger.SetOutput(os.Stderr)
}

// SuppressOutput discards all log output. CLI commands use it so that only
// the styled results reach the terminal.
func SuppressOutput() {
	SetOutput(io.Discard)
}

func Info(format string, v ...interface{}) {
	stdoutLogger.Info(fmt.Sprintf(format, v...))
}

func Warn(format string, v ...interface{}) {
	stderrLogger.Warn(fmt.Sprintf(format, v...))
}

func Error(format string, v ...interface{}) {
	stderrLogger.Error(fmt.Sprintf(format, v...))
}

func Debug(format string, v ...interface{}) {
	stderrLogger.Debug(fmt.Sprintf(format, v...))
}

// With returns a logger carrying the given key/value pairs, for call sites
// that log several related lines (one per submitted batch, for example).
func With(keyvals ...interface{}) *log.Logger {
	return stderrLogger.With(keyvals...)
}
