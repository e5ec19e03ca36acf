package logger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry is a one-shot log line carrying aggregatable metric fields
// (duration_ms, count, status, success/failed) on top of the context fields.
//
//	logger.With(logger.Fields{"skipped": 2}).
//		WithRunCounts(150, 1).
//		WithElapsed(start).
//		Info(ctx, "Generation sync finished")
type Entry struct {
	logger *Logger
	fields Fields
}

// With starts an Entry with the given metric fields.
func With(fields Fields) *Entry {
	e := &Entry{logger: getDefaultLogger(), fields: make(Fields, len(fields))}
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// With returns a copy of the Entry with fields merged in; later keys win.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{logger: e.logger, fields: merged}
}

// WithField returns a copy of the Entry with one more field.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	return e.With(Fields{key: value})
}

// WithElapsed records the milliseconds since start as duration_ms.
func (e *Entry) WithElapsed(start time.Time) *Entry {
	return e.WithField(FieldDurationMs, time.Since(start).Milliseconds())
}

// WithCount records the number of items a job touched.
func (e *Entry) WithCount(count int) *Entry {
	return e.WithField(FieldCount, count)
}

// WithStatus records a terminal status such as SUCCESS or FAILED.
func (e *Entry) WithStatus(status string) *Entry {
	return e.WithField(FieldStatus, status)
}

// WithRunCounts records the per-item outcome of a run; count is their sum.
func (e *Entry) WithRunCounts(success, failed int) *Entry {
	return e.With(Fields{
		FieldSuccess: success,
		FieldFailed:  failed,
		FieldCount:   success + failed,
	})
}

func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.logf(ctx, logrus.DebugLevel, format, args...)
}

func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.logf(ctx, logrus.InfoLevel, format, args...)
}

func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.logf(ctx, logrus.WarnLevel, format, args...)
}

func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.logf(ctx, logrus.ErrorLevel, format, args...)
}

// logf prefers the logger carried by ctx so request and run fields are kept.
func (e *Entry) logf(ctx context.Context, level logrus.Level, format string, args ...interface{}) {
	l := e.logger
	if ctx != nil {
		l = FromContext(ctx)
	}
	l.Entry.WithFields(logrus.Fields(e.fields)).Logf(level, format, args...)
}
