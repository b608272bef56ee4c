// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package commons provides the structured logger used across the audio
// engine and its callers. It wraps zap's SugaredLogger behind a narrow
// interface so packages never import zap directly.
package commons

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging contract used throughout the engine. The stream
// logs only its creation (Debugw) and a failed device close on Destroy
// (Warnw); track flushes, rollbacks and skipped callbacks are not logged,
// and nothing logs per-sample.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})

	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})

	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})

	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	Fatalf(template string, args ...interface{})
}

type sugaredLogger struct {
	*zap.SugaredLogger
}

// LogFile, when non-empty, routes output through lumberjack for rotation
// in addition to stderr. Zero value disables file rotation.
type Options struct {
	Level   zapcore.Level
	LogFile string
}

// NewApplicationLogger builds the default engine logger: JSON to stderr,
// plus an optional rotating file sink.
func NewApplicationLogger(opts ...Options) (Logger, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), opt.Level),
	}
	if opt.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   opt.LogFile,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), opt.Level))
	}

	core := zapcore.NewTee(cores...)
	base := zap.New(core, zap.AddCaller())
	return &sugaredLogger{base.Sugar()}, nil
}

// NopLogger discards everything; used as the engine's default when the
// caller doesn't supply one.
func NopLogger() Logger {
	return &sugaredLogger{zap.NewNop().Sugar()}
}
