package logging

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Entry
)

type Fields = logrus.Fields

func SetLevel(l logrus.Level) {
	logger.Logger.SetLevel(l)
}

// SetFormat switches between the text and json formatters.
func SetFormat(f string) error {
	switch f {
	case "", "text":
		logger.Logger.SetFormatter(&logrus.TextFormatter{})
	case "json":
		logger.Logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("unknown log format %q", f)
	}

	return nil
}

func init() {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
}

func WithError(e error) *logrus.Entry {
	return logger.WithError(e)
}

func WithField(k string, v interface{}) *logrus.Entry {
	return logger.WithField(k, v)
}

func WithFields(f Fields) *logrus.Entry {
	return logger.WithFields(f)
}

func Entry() *logrus.Entry {
	return logger
}
