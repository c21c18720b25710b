package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// pinnedCore overrides the level of the core it wraps, so a single logger
// can be louder or quieter than the shared atomic level.
type pinnedCore struct {
	zapcore.Core

	level zapcore.Level
}

func (c *pinnedCore) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l)
}

// Check consults the pinned level only; the wrapped core's own level is ignored.
//
//nolint:gocritic // AddCore requires ent to be passed by value.
func (c *pinnedCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(ent.Level) {
		return ce
	}

	return ce.AddCore(ent, c)
}

// With keeps the pinned level on derived cores, so named and key-value
// children of a pinned logger stay pinned.
//
//nolint:ireturn,nolintlint // zap requires the interface type.
func (c *pinnedCore) With(fields []zapcore.Field) zapcore.Core {
	return &pinnedCore{Core: c.Core.With(fields), level: c.level}
}

// WithLevel pins the logger to lvl. The checker uses it to log every poll
// in verbose mode without touching the global level.
//
//nolint:ireturn,nolintlint // zap.Option is an interface.
func WithLevel(lvl zapcore.Level) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &pinnedCore{Core: core, level: lvl}
	})
}
