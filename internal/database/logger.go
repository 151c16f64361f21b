package database

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// filteringLogger drops trace output for statements containing any ignored pattern.
type filteringLogger struct {
	logger.Interface
	ignoredPatterns []string
}

func newFilteringLogger(l logger.Interface, ignoredPatterns ...string) *filteringLogger {
	return &filteringLogger{
		Interface:       l,
		ignoredPatterns: ignoredPatterns,
	}
}

// LogMode implements logger.Interface
func (l *filteringLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &filteringLogger{
		Interface:       l.Interface.LogMode(level),
		ignoredPatterns: l.ignoredPatterns,
	}
}

// Trace implements logger.Interface. Errors are always passed through.
func (l *filteringLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if err == nil {
		sql, _ := fc()
		for _, pattern := range l.ignoredPatterns {
			if strings.Contains(sql, pattern) {
				return
			}
		}
	}
	l.Interface.Trace(ctx, begin, fc, err)
}
