package reporter_test

import (
	"errors"
	"testing"

	"github.com/ProtonMail/announce/reporter"
	"github.com/ProtonMail/announce/reporter/mock_reporter"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestExceptionWithContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rep := mock_reporter.NewMockReporter(ctrl)

	rep.EXPECT().ReportExceptionWithContext("boom", reporter.Context{"key": "value"}).Return(nil)
	rep.EXPECT().ReportMessageWithContext("hello", gomock.Any()).Return(errors.New("reporter offline"))

	require.NotPanics(t, func() {
		reporter.ExceptionWithContext(rep, "boom", reporter.Context{"key": "value"})
		reporter.MessageWithContext(rep, "hello", nil)
	})
}

func TestNilReporter(t *testing.T) {
	require.NotPanics(t, func() {
		reporter.ExceptionWithContext(nil, "boom", nil)
		reporter.MessageWithContext(nil, "hello", nil)
	})
}

func TestNullReporter(t *testing.T) {
	var rep reporter.Reporter = reporter.NullReporter{}

	require.NoError(t, rep.ReportException("boom"))
	require.NoError(t, rep.ReportMessage("hello"))
}
