package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// Init inicializa el logger global con el nivel indicado ("debug", "info", "warn", "error").
// Un nivel desconocido se trata como "info".
func Init(level string) {
	var err error
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"            // Logs estructurados en JSON
	cfg.EncoderConfig.TimeKey = "ts" // timestamp
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl, parseErr := zapcore.ParseLevel(level)
	if parseErr != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	log, err = cfg.Build()
	if err != nil {
		panic(err)
	}
}

// Logger retorna el logger estructurado. Si Init no se llamó devuelve un logger nop.
func Logger() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
