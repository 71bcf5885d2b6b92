package server

import (
	"github.com/TheZeroSlave/zapsentry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// loggerWithSentry attaches a sentry core so error level logs
// propagate as sentry events
func loggerWithSentry(logger *zap.Logger, dsn string) *zap.Logger {
	core, err := zapsentry.NewCore(zapsentry.Configuration{
		Level:             zapcore.ErrorLevel,
		EnableBreadcrumbs: true,
		BreadcrumbLevel:   zapcore.InfoLevel,
	}, zapsentry.NewSentryClientFromDSN(dsn))
	if err != nil {
		logger.Error("sentry init", zap.Error(err))
		return logger
	}
	return zapsentry.AttachCoreToLogger(core, logger)
}
