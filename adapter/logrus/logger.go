package logrus

import (
	"fmt"
	"io"
	"os"
	"strings"

	lr "github.com/sirupsen/logrus"

	"github.com/goliatone/go-gamerdb/pkg/types"
)

// Logger adapts a logrus entry to types.Logger.
type Logger struct {
	entry *lr.Entry
}

// Options configures New.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New builds a logrus backed logger. Level falls back to info and Format
// accepts "json" or "text".
func New(opts Options) *Logger {
	base := lr.New()
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	base.SetOutput(out)
	level, err := lr.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = lr.InfoLevel
	}
	base.SetLevel(level)
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		base.SetFormatter(&lr.JSONFormatter{})
	} else {
		base.SetFormatter(&lr.TextFormatter{FullTimestamp: true})
	}
	return Wrap(base)
}

// Wrap adapts an existing logrus logger.
func Wrap(base *lr.Logger) *Logger {
	if base == nil {
		base = lr.StandardLogger()
	}
	return &Logger{entry: lr.NewEntry(base)}
}

var _ types.Logger = (*Logger)(nil)

// With returns a logger that always carries the given key/value pairs.
func (l *Logger) With(fields ...any) *Logger {
	return &Logger{entry: l.entry.WithFields(toFields(fields))}
}

// Debug implements types.Logger.
func (l *Logger) Debug(msg string, fields ...any) {
	l.entry.WithFields(toFields(fields)).Debug(msg)
}

// Info implements types.Logger.
func (l *Logger) Info(msg string, fields ...any) {
	l.entry.WithFields(toFields(fields)).Info(msg)
}

// Error implements types.Logger.
func (l *Logger) Error(msg string, err error, fields ...any) {
	entry := l.entry.WithFields(toFields(fields))
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}

// toFields pairs up alternating keys and values. A trailing key without a
// value is kept under "_extra"; non string keys are stringified.
func toFields(kv []any) lr.Fields {
	fields := make(lr.Fields, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if i+1 >= len(kv) {
			fields["_extra"] = kv[i]
			break
		}
		fields[key] = kv[i+1]
	}
	return fields
}
