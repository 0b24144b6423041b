package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// serviceHook stamps every entry with the service name and environment so the
// API, the seeder and the email worker can share one log stream.
type serviceHook struct {
	app, env string
}

func (h serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h serviceHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["app"]; !ok {
		e.Data["app"] = h.app
	}
	if _, ok := e.Data["env"]; !ok {
		e.Data["env"] = h.env
	}
	return nil
}

// NewLogger returns a stdout logger: text at debug level in development,
// JSON at info level elsewhere.
func NewLogger(appName, env string) *logrus.Logger {
	return newLogger(os.Stdout, appName, env)
}

func newLogger(out io.Writer, appName, env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.AddHook(serviceHook{app: appName, env: env})
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.Debug("logger initialized")
	return logger
}

// LogError logs msg at error level with err under the "error" field.
// fields is not modified.
func LogError(logger *logrus.Logger, msg string, err error, fields logrus.Fields) {
	entry := logger.WithFields(fields)
	if err != nil {
		entry = entry.WithField("error", err.Error())
	}
	entry.Error(msg)
}
