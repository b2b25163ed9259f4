package config

import (
    "os"
    "strings"

    "github.com/sirupsen/logrus"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.  An
// unknown level falls back to info.
func NewLogger(cfg Config) *logrus.Logger {
    log := logrus.New()
    log.SetOutput(os.Stdout)

    level, err := logrus.ParseLevel(cfg.LogLevel)
    if err != nil {
        level = logrus.InfoLevel
    }
    log.SetLevel(level)

    if strings.EqualFold(cfg.LogFormat, "json") {
        log.SetFormatter(&logrus.JSONFormatter{})
    } else {
        log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
    }
    return log
}
