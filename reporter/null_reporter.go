// Package reporter lets hosts forward unexpected message store conditions to an external reporting tool.
package reporter

//go:generate mockgen -destination mock_reporter/reporter.go . Reporter

// NullReporter discards everything it is given. It is the default reporter of a message store.
type NullReporter struct{}

func (NullReporter) ReportException(any) error {
	return nil
}

func (NullReporter) ReportMessage(string) error {
	return nil
}

func (NullReporter) ReportMessageWithContext(string, Context) error {
	return nil
}

func (NullReporter) ReportExceptionWithContext(any, Context) error {
	return nil
}
