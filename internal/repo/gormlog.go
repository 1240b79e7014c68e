package repo

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogOptions tunes the zerolog-backed GORM logger.
type GormLogOptions struct {
	// LogQueries emits every statement at debug level (development only).
	LogQueries bool
	// SlowThreshold marks statements slower than this as warnings.
	// Zero defaults to 500ms.
	SlowThreshold time.Duration
}

// gormLogger routes GORM diagnostics to the global zerolog logger.
type gormLogger struct {
	opts  GormLogOptions
	level gormlogger.LogLevel
}

// NewGormLogger returns a gorm logger.Interface writing through zerolog.
// Record-not-found results are not errors here; callers map them to 404s.
func NewGormLogger(opts GormLogOptions) gormlogger.Interface {
	if opts.SlowThreshold <= 0 {
		opts.SlowThreshold = 500 * time.Millisecond
	}
	return &gormLogger{opts: opts, level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		log.Info().Interface("args", args).Msg("db: " + msg)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		log.Warn().Interface("args", args).Msg("db: " + msg)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		log.Error().Interface("args", args).Msg("db: " + msg)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var ev *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		ev = log.Error().Err(err)
	case elapsed > l.opts.SlowThreshold && l.level >= gormlogger.Warn:
		ev = log.Warn().Bool("slow", true)
	case l.opts.LogQueries:
		ev = log.Debug()
	default:
		return
	}

	sql, rows := fc()
	ev.Str("sql", sql).
		Int64("rows", rows).
		Dur("duration", elapsed).
		Msg("db query")
}
