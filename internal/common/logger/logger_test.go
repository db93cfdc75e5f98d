package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestZapAdapter_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"component": "scoring"})

	log.Warn("unknown sector", map[string]interface{}{
		"sector": "Space_mining",
		"cause":  errors.New("not in table"),
	})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "scoring", ctx["component"])
		assert.Equal(t, "Space_mining", ctx["sector"])
		assert.Equal(t, "not in table", ctx["cause"])
	}
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger().WithError(errors.New("ignored"))
	assert.NotPanics(t, func() { log.Info("hello", nil) })
}
