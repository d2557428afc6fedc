package definition

import (
	"github.com/sirupsen/logrus"
)

// LogrusLogger adapts a *logrus.Logger to the types.Logger contract. This
// is the logger the CLI harness hands to the transport: it is
// structured, leveled and safe to fan out across the goroutines the
// transport spawns (one per machine), which the bare DefaultLogger
// was never meant to serve concurrently.
type LogrusLogger struct {
	entry *logrus.Logger
}

// NewLogrusLogger wraps the given logrus.Logger. If l is nil, a logger
// with logrus' default text formatter is created.
func NewLogrusLogger(l *logrus.Logger) *LogrusLogger {
	if l == nil {
		l = logrus.New()
	}
	return &LogrusLogger{entry: l}
}

func (l *LogrusLogger) Info(v ...interface{})                 { l.entry.Info(v...) }
func (l *LogrusLogger) Infof(format string, v ...interface{}) { l.entry.Infof(format, v...) }
func (l *LogrusLogger) Warn(v ...interface{})                 { l.entry.Warn(v...) }
func (l *LogrusLogger) Warnf(format string, v ...interface{}) { l.entry.Warnf(format, v...) }
func (l *LogrusLogger) Error(v ...interface{})                { l.entry.Error(v...) }
func (l *LogrusLogger) Errorf(format string, v ...interface{}) {
	l.entry.Errorf(format, v...)
}
func (l *LogrusLogger) Debug(v ...interface{}) { l.entry.Debug(v...) }
func (l *LogrusLogger) Debugf(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

func (l *LogrusLogger) ToggleDebug(value bool) bool {
	if value {
		l.entry.SetLevel(logrus.DebugLevel)
	} else {
		l.entry.SetLevel(logrus.InfoLevel)
	}
	return value
}
