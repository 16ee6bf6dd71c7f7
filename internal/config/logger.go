package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger пишет в stderr: stdout у CLI занят JSON-результатом
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	logger, err := logConfig(cfg).Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("component", "serpclient")), nil
}

func logConfig(cfg LogConfig) zap.Config {
	level := parseLogLevel(cfg.Level)

	zc := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}

	// batch пишет много строк подряд, сэмплинг бы их терял
	zc.Sampling = nil
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	switch strings.ToLower(cfg.Format) {
	case "console":
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zc.Encoding = "json"
		zc.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}

	return zc
}

// parseLogLevel: неизвестный уровень не ошибка, а info
func parseLogLevel(level string) zapcore.Level {
	if strings.EqualFold(level, "warning") {
		return zapcore.WarnLevel
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil || lvl < zapcore.DebugLevel || lvl > zapcore.ErrorLevel {
		return zapcore.InfoLevel
	}
	return lvl
}
