package logger

import "github.com/robfig/cron/v3"

// cronLogger adapts our Logger to robfig/cron's logging interface
type cronLogger struct {
	logger *Logger
}

// CronLogger returns a cron-compatible logger
func (l *Logger) CronLogger() cron.Logger {
	return &cronLogger{logger: l}
}

// Info is used by cron for its per-tick chatter, so it goes to debug
func (c *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Debugw(msg, keysAndValues...)
}

func (c *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
