/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestModuleLoggerNaming(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	Initialize(zap.New(core))

	logger := NewLogger("cardstore")
	logger.Infof("retrieving card %s", "alice")
	logger.Debug("lookup done")

	entries := observed.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "cardstore", entries[0].LoggerName)
	assert.Equal(t, "retrieving card alice", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

func TestIsEnabledFor(t *testing.T) {
	assert.True(t, IsEnabledFor(zapcore.ErrorLevel))
}
