package log

// NoopLogger discards everything. It is what a Station logs to when no
// WithLogger option is given.
type NoopLogger struct{}

// NewNoopLogger creates a new no-op logger.
func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (NoopLogger) Debug(msg string, fields ...Field) {}
func (NoopLogger) Info(msg string, fields ...Field)  {}
func (NoopLogger) Warn(msg string, fields ...Field)  {}
func (NoopLogger) Error(msg string, fields ...Field) {}

// With returns l scoped to fields. Zerolog adapters attach them to their
// context; other loggers get them appended to every call. A NoopLogger
// is returned as is.
func With(l Logger, fields ...Field) Logger {
	switch v := l.(type) {
	case *ZerologAdapter:
		return v.With(fields...)
	case *NoopLogger, NoopLogger:
		return l
	case *scoped:
		return &scoped{next: v.next, fields: append(append([]Field(nil), v.fields...), fields...)}
	default:
		return &scoped{next: l, fields: append([]Field(nil), fields...)}
	}
}

type scoped struct {
	next   Logger
	fields []Field
}

func (s *scoped) with(fields []Field) []Field {
	return append(append(make([]Field, 0, len(s.fields)+len(fields)), s.fields...), fields...)
}

func (s *scoped) Debug(msg string, fields ...Field) { s.next.Debug(msg, s.with(fields)...) }
func (s *scoped) Info(msg string, fields ...Field)  { s.next.Info(msg, s.with(fields)...) }
func (s *scoped) Warn(msg string, fields ...Field)  { s.next.Warn(msg, s.with(fields)...) }
func (s *scoped) Error(msg string, fields ...Field) { s.next.Error(msg, s.with(fields)...) }

var (
	_ Logger = NoopLogger{}
	_ Logger = (*scoped)(nil)
)
