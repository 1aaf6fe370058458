package logger

import (
	"fmt"
	"os"

	"webagent/internal/application/port/output"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var _ output.LoggerPort = (*ZapAdapter)(nil)

// ZapAdapter backs LoggerPort with zap: JSON lines to a rotated file, plus
// a console echo at warn level (debug level when verbose).
type ZapAdapter struct {
	sugar *zap.SugaredLogger
}

type Config struct {
	FilePath   string
	Verbose    bool
	MaxSizeMB  int
	MaxBackups int
}

func DefaultConfig() Config {
	return Config{
		FilePath:   "log/webagent.log",
		MaxSizeMB:  20,
		MaxBackups: 5,
	}
}

func NewZapAdapter(cfg Config) (*ZapAdapter, error) {
	if cfg.FilePath == "" {
		cfg.FilePath = DefaultConfig().FilePath
	}

	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleLevel := zapcore.WarnLevel
	if cfg.Verbose {
		consoleLevel = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), fileSink, zapcore.DebugLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.AddSync(os.Stderr), consoleLevel),
	)

	return &ZapAdapter{sugar: zap.New(core).Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *ZapAdapter {
	return &ZapAdapter{sugar: zap.NewNop().Sugar()}
}

func (l *ZapAdapter) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *ZapAdapter) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *ZapAdapter) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *ZapAdapter) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

func (l *ZapAdapter) WithField(key string, value any) output.LoggerPort {
	return &ZapAdapter{sugar: l.sugar.With(fmt.Sprintf("%v", key), value)}
}

func (l *ZapAdapter) Close() error {
	return l.sugar.Sync()
}
