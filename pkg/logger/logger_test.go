package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLogger_BeforeInitIsNop(t *testing.T) {
	log = nil
	assert.NotNil(t, Logger())
}

func TestInit_Level(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zapcore.Level
	}{
		{name: "debug", level: "debug", expected: zapcore.DebugLevel},
		{name: "warn", level: "warn", expected: zapcore.WarnLevel},
		{name: "desconocido cae a info", level: "verbose", expected: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.level)
			assert.True(t, Logger().Core().Enabled(tt.expected))
			if tt.expected > zapcore.DebugLevel {
				assert.False(t, Logger().Core().Enabled(tt.expected-1))
			}
		})
	}
}
