package logging

import (
	"github.com/nikolayk812/agrocart/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Notifier records user notices in the process log.
type Notifier struct {
	logger *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{logger: logger.Named("notice")}
}

func (n *Notifier) Notify(notice domain.Notice) {
	n.logger.Log(levelOf(notice.Level), notice.Message)
}

func levelOf(level domain.NoticeLevel) zapcore.Level {
	switch level {
	case domain.NoticeWarning:
		return zapcore.WarnLevel
	case domain.NoticeError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
