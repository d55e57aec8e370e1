package log

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// sentryHook envia para o Sentry as entradas de nível error ou superior
type sentryHook struct {
	levels []logrus.Level
}

// EnableSentry inicializa o cliente do Sentry e registra o hook no logrus.
// Retorna uma função de flush para ser chamada no desligamento.
func EnableSentry(dsn, environment string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		return nil, errors.Wrap(err, "erro ao inicializar o Sentry")
	}

	logrus.AddHook(&sentryHook{
		levels: []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel},
	})

	return func() { sentry.Flush(2 * time.Second) }, nil
}

func (h *sentryHook) Levels() []logrus.Level {
	return h.levels
}

func (h *sentryHook) Fire(entry *logrus.Entry) error {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentryLevel(entry.Level))
		for k, v := range entry.Data {
			if k == logrus.ErrorKey {
				continue
			}
			scope.SetExtra(k, v)
		}

		if err, ok := entry.Data[logrus.ErrorKey].(error); ok {
			sentry.CaptureException(errors.New(entry.Message + ": " + err.Error()))
			return
		}
		sentry.CaptureMessage(entry.Message)
	})
	return nil
}

func sentryLevel(level logrus.Level) sentry.Level {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return sentry.LevelFatal
	default:
		return sentry.LevelError
	}
}
