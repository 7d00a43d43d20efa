package main

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// buildLogger returns a console logger at debug level when verbose,
// otherwise a no-op logger. Phase timing from the render pipeline shows
// up only in verbose mode.
func buildLogger(verbose bool, w io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}
