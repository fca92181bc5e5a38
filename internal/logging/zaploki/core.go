// Package zaploki bridges the application's zap logger into the batching
// log shipper: every entry written through the core becomes one LogEntry
// on the shipper's queue.
package zaploki

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"

	"produto-api/internal/logging"
)

// Enqueuer is the single coupling point with the shipper.
type Enqueuer interface {
	Enqueue(entry logging.LogEntry)
}

// Core is a zapcore.Core that renders entries through enc and enqueues the
// result. It is normally combined with a console core via zapcore.NewTee.
type Core struct {
	zapcore.LevelEnabler
	enc     zapcore.Encoder
	shipper Enqueuer
	labels  map[string]string
}

var _ zapcore.Core = (*Core)(nil)

// NewCore builds a shipping core. labels are attached to every entry on top
// of the per-entry level and logger labels; typically job and application.
func NewCore(enab zapcore.LevelEnabler, enc zapcore.Encoder, shipper Enqueuer, labels map[string]string) *Core {
	base := make(map[string]string, len(labels))
	for k, v := range labels {
		base[k] = v
	}
	return &Core{
		LevelEnabler: enab,
		enc:          enc,
		shipper:      shipper,
		labels:       base,
	}
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.enc = c.enc.Clone()
	for _, field := range fields {
		field.AddTo(clone.enc)
	}
	return &clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write converts one entry into a LogEntry and hands it to the shipper.
// An entry that cannot be encoded is dropped; the error surfaces through
// zap's internal error output and nothing else is affected.
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return fmt.Errorf("failed to encode log entry for shipping: %w", err)
	}
	message := strings.TrimRight(buf.String(), "\n")
	buf.Free()

	labels := make(map[string]string, len(c.labels)+2)
	for k, v := range c.labels {
		labels[k] = v
	}
	labels["level"] = ent.Level.String()
	labels["logger"] = loggerName(ent.LoggerName)

	c.shipper.Enqueue(logging.LogEntry{
		Timestamp: ent.Time,
		Level:     ent.Level.String(),
		Logger:    loggerName(ent.LoggerName),
		Message:   message,
		Labels:    labels,
	})
	return nil
}

func (c *Core) Sync() error {
	return nil
}

func loggerName(name string) string {
	if name == "" {
		return "main"
	}
	return name
}
