package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the process logger. With an empty logDir everything
// goes to stdout (the usual sidecar setup); otherwise log files are
// written to logDir with rotation.
func NewLogger(logDir string) (*zap.Logger, error) {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	enc := zapcore.NewJSONEncoder(cfg)

	if logDir == "" {
		core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), zap.InfoLevel)
		return zap.New(core), nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, "easycheck.log"),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	core := zapcore.NewCore(enc, w, zap.InfoLevel)
	return zap.New(core), nil
}
