package commands

import (
	"fmt"
	"io"

	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LogrusLogger adapts logrus to adminapi.Logger.
type LogrusLogger struct {
	logger *logrus.Logger
}

var _ adminapi.Logger = (*LogrusLogger)(nil)

// NewLogger creates a logger writing to out. format is "text" or "json".
func NewLogger(out io.Writer, level, format string) (*LogrusLogger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	if format == constants.FormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	if level == "" {
		level = logrus.WarnLevel.String()
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	logger.SetLevel(parsed)

	return &LogrusLogger{logger: logger}, nil
}

func (l *LogrusLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Warn(msg)
}

func (l *LogrusLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.WithFields(fields).Error(msg)
}

// newCommandLogger builds the logger from --log-level, --log-format and --debug.
func newCommandLogger(out io.Writer) (*LogrusLogger, error) {
	level := viper.GetString("log_level")
	if viper.GetBool("debug") {
		level = logrus.DebugLevel.String()
	}

	return NewLogger(out, level, viper.GetString("log_format"))
}
