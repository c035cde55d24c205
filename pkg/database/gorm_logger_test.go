package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObserved(level gormlogger.LogLevel) (*ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLogger(zap.New(core), level), logs
}

func statement() (string, int64) { return "SELECT 1", 1 }

func TestZapLogger_TraceFailure(t *testing.T) {
	l, logs := newObserved(gormlogger.Warn)

	l.Trace(context.Background(), time.Now(), statement, errors.New("connection reset"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "query failed", entry.Message)
	assert.Equal(t, "SELECT 1", entry.ContextMap()["sql"])
	assert.Equal(t, "gorm", entry.LoggerName)
}

func TestZapLogger_RecordNotFoundIsQuiet(t *testing.T) {
	l, logs := newObserved(gormlogger.Warn)

	l.Trace(context.Background(), time.Now(), statement, gorm.ErrRecordNotFound)

	assert.Equal(t, 0, logs.Len())
}

func TestZapLogger_SlowQuery(t *testing.T) {
	l, logs := newObserved(gormlogger.Warn)

	l.Trace(context.Background(), time.Now().Add(-time.Second), statement, nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, "slow query", logs.All()[0].Message)
}

func TestZapLogger_LogModeAndSilent(t *testing.T) {
	l, logs := newObserved(gormlogger.Warn)

	l.Trace(context.Background(), time.Now(), statement, nil)
	l.Info(context.Background(), "hidden %d", 1)
	assert.Equal(t, 0, logs.Len())

	verbose := l.LogMode(gormlogger.Info)
	verbose.Info(context.Background(), "visible %d", 2)
	verbose.Trace(context.Background(), time.Now(), statement, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "visible 2", logs.All()[0].Message)
	assert.Equal(t, zapcore.DebugLevel, logs.All()[1].Level)

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), statement, errors.New("boom"))
	assert.Equal(t, 2, logs.Len())
}
