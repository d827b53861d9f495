/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package logging provides module-named loggers backed by zap.
//
//  Basic Flow:
//  1) Initialize the provider (optional, defaults to a production zap logger)
//  2) Create a new logger for a specific module
//  3) Call log info
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging API used throughout the subsystem.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

// provider singleton - access only via root()
var rootInstance *zap.Logger
var rootOnce sync.Once

// Initialize sets the zap logger which takes over logging operations.
// It must be called before the first log output if a custom logger is
// wanted; otherwise a production zap logger is used.
func Initialize(l *zap.Logger) {
	rootOnce.Do(func() {
		rootInstance = l
	})
}

func root() *zap.Logger {
	rootOnce.Do(func() {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		rootInstance = logger
	})
	return rootInstance
}

type moduleLogger struct {
	module string
	once   sync.Once
	sugar  *zap.SugaredLogger
}

// NewLogger creates and returns a Logger for the given module name.
// The underlying zap instance is lazy initialized on first use.
func NewLogger(module string) Logger {
	return &moduleLogger{module: module}
}

func (l *moduleLogger) logger() *zap.SugaredLogger {
	l.once.Do(func() {
		l.sugar = root().Named(l.module).WithOptions(zap.AddCallerSkip(1)).Sugar()
	})
	return l.sugar
}

func (l *moduleLogger) Debug(args ...interface{}) { l.logger().Debug(args...) }

func (l *moduleLogger) Debugf(format string, args ...interface{}) {
	l.logger().Debugf(format, args...)
}

func (l *moduleLogger) Info(args ...interface{}) { l.logger().Info(args...) }

func (l *moduleLogger) Infof(format string, args ...interface{}) {
	l.logger().Infof(format, args...)
}

func (l *moduleLogger) Warn(args ...interface{}) { l.logger().Warn(args...) }

func (l *moduleLogger) Warnf(format string, args ...interface{}) {
	l.logger().Warnf(format, args...)
}

func (l *moduleLogger) Error(args ...interface{}) { l.logger().Error(args...) }

func (l *moduleLogger) Errorf(format string, args ...interface{}) {
	l.logger().Errorf(format, args...)
}

// IsEnabledFor reports whether the root logger emits records at the given level.
func IsEnabledFor(level zapcore.Level) bool {
	return root().Core().Enabled(level)
}
