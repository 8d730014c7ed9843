package zlog

import (
	"os"
	"strings"
	"sync"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger *zap.Logger
)

func init() {
	logger = zap.New(newCore(nil, zapcore.InfoLevel), zap.AddCaller(), zap.AddCallerSkip(1))
}

// Setup 根据日志路径与级别重建全局 logger。
// logPath 为空时只输出到 stdout；否则同时写入按大小滚动的文件。
func Setup(logPath string, level string) {
	var file zapcore.WriteSyncer
	if p := strings.TrimSpace(logPath); p != "" {
		file = zapcore.AddSync(&lumberjack.Logger{
			Filename:   p,
			MaxSize:    100, // MB
			MaxBackups: 7,
			MaxAge:     30,
			Compress:   true,
		})
	}

	l := zap.New(newCore(file, parseLevel(level)), zap.AddCaller(), zap.AddCallerSkip(1))

	mu.Lock()
	old := logger
	logger = l
	mu.Unlock()
	if old != nil {
		_ = old.Sync()
	}
}

func newCore(file zapcore.WriteSyncer, level zapcore.Level) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	console := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), level)
	if file == nil {
		return console
	}
	return zapcore.NewTee(console, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), file, level))
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// L 返回底层 zap.Logger，供需要 *zap.Logger 的第三方组件使用
func L() *zap.Logger {
	return current()
}

func Debug(msg string, fields ...zap.Field) {
	current().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	current().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	current().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	current().Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	current().Fatal(msg, fields...)
}

func Sync() {
	_ = current().Sync()
}
