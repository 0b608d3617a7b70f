package logger

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"research-approval/backend/config"
)

const serviceName = "research-approval"

// NewLogger 根据配置初始化 Zap 日志实例，输出到 stderr
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	return build(cfg, zapcore.Lock(os.Stderr))
}

func build(cfg *config.LogConfig, out zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var core zapcore.Core
	if cfg.Format == "console" {
		enc := zapcore.NewConsoleEncoder(encoderConfig(true))
		core = zapcore.NewCore(enc, out, level)
	} else {
		enc := zapcore.NewJSONEncoder(encoderConfig(false))
		// 同一条消息每秒前 100 条全量，之后每 100 条取 1
		core = zapcore.NewSamplerWithOptions(zapcore.NewCore(enc, out, level), time.Second, 100, 100)
	}

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(out),
		zap.Fields(zap.String("service", serviceName)),
	), nil
}

// 空级别按 info 处理
func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("无效的日志级别 %q: %w", s, err)
	}
	return level, nil
}

func encoderConfig(console bool) zapcore.EncoderConfig {
	ec := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if console {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeDuration = zapcore.StringDurationEncoder
	}
	return ec
}
