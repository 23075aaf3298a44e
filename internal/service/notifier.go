package service

import "go.uber.org/zap"

// LogNotifier показывает уведомления через журнал — серверный аналог тостов.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier создаёт Notifier поверх журнала.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Success показывает уведомление об успехе.
func (n *LogNotifier) Success(text string) {
	n.logger.Info("notice", zap.String("text", text))
}

// Error показывает уведомление о сбое.
func (n *LogNotifier) Error(text string) {
	n.logger.Error("notice", zap.String("text", text))
}

func (s *Service) notifySuccess(text string) {
	if s.notifier != nil {
		s.notifier.Success(text)
	}
}

func (s *Service) notifyError(text string) {
	if s.notifier != nil {
		s.notifier.Error(text)
	}
}
