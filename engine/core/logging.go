package core

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

/**
 * @brief Options applied to the engine logger. Zero values keep
 * the current setting.
 */
type LoggerOptions struct {
	/** @brief One of debug, info, warn, error, fatal. */
	Level string
	/** @brief The prefix printed in front of every line. */
	Prefix string
	/** @brief Report the file and line of the caller. */
	ReportCaller bool
}

func getLogger() *logger {
	once.Do(
		func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    false,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "shaderbind",
			})
			l.SetLevel(log.InfoLevel)
			singleton = &logger{l}
		})
	return singleton
}

// ConfigureLogger applies opts to the engine logger.
func ConfigureLogger(opts LoggerOptions) error {
	l := getLogger()
	if opts.Level != "" {
		if err := SetLogLevel(opts.Level); err != nil {
			return err
		}
	}
	if opts.Prefix != "" {
		l.SetPrefix(opts.Prefix)
	}
	l.SetReportCaller(opts.ReportCaller)
	return nil
}

func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	getLogger().SetLevel(lvl)
	return nil
}

// SetLogOutput redirects the engine logger. Tests use it to capture diagnostics.
func SetLogOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
