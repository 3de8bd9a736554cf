package dndice

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger 设置包内使用的日志记录器，传入 nil 时恢复为空记录器
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

func getLogger() *zap.Logger {
	return logger.Load()
}
