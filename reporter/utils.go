package reporter

import (
	"github.com/sirupsen/logrus"
)

// MessageWithContext reports the message; failures of the reporter itself are only logged.
func MessageWithContext(reporter Reporter, message string, context Context) {
	if reporter == nil {
		return
	}

	if err := reporter.ReportMessageWithContext(message, context); err != nil {
		logrus.WithError(err).Error("Failed to report message")
	}
}

// ExceptionWithContext reports the exception; failures of the reporter itself are only logged.
func ExceptionWithContext(reporter Reporter, info any, context Context) {
	if reporter == nil {
		return
	}

	if err := reporter.ReportExceptionWithContext(info, context); err != nil {
		logrus.WithError(err).Error("Failed to report exception")
	}
}
