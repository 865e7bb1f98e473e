package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNew() {
	err := New(ErrCodeInvalidParameter, "bad value")

	suite.Require().NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("[100] bad value", err.Error())
	suite.Nil(err.Unwrap())
}

func (suite *ErrorTestSuite) TestNewf() {
	err := Newf(ErrCodeObjectNotFound, "object %s not found", "logs/a.json.gz")

	suite.Equal(ErrCodeObjectNotFound, err.Code)
	suite.Contains(err.Error(), "logs/a.json.gz")
}

func (suite *ErrorTestSuite) TestWrapPreservesCause() {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeUploadFailed, "failed to write object", cause)

	suite.Equal(ErrCodeUploadFailed, err.Code)
	suite.Contains(err.Error(), "disk full")
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeQueryFailed, GetCode(New(ErrCodeQueryFailed, "boom")))
	suite.Equal(ErrCodeUnknown, GetCode(stderrors.New("plain error")))
	suite.Equal(ErrCodeUnknown, GetCode(nil))
}

func (suite *ErrorTestSuite) TestGetCodeThroughWrapping() {
	inner := New(ErrCodeRecordNotFound, "missing")
	outer := Wrap(ErrCodeMigrationFailed, "migration failed", inner)

	// The outermost code wins; the inner one is still reachable via As.
	suite.Equal(ErrCodeMigrationFailed, GetCode(outer))

	var e *Error
	suite.True(As(outer, &e))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeLoggerClosed, "closed")

	suite.True(HasCode(err, ErrCodeLoggerClosed))
	suite.False(HasCode(err, ErrCodeFlushFailed))
}

func (suite *ErrorTestSuite) TestIsPermanentValidationCodes() {
	for _, code := range []ErrorCode{
		ErrCodeInvalidParameter,
		ErrCodeInvalidConfiguration,
		ErrCodePayloadMismatch,
		ErrCodeInvalidLevel,
		ErrCodeInvalidCategory,
		ErrCodeInvalidRoutingClass,
		ErrCodeMissingParameter,
	} {
		suite.True(IsPermanent(New(code, "validation")), "code %d should be permanent", code)
	}
}

func (suite *ErrorTestSuite) TestIsPermanentSpecialCases() {
	suite.True(IsPermanent(New(ErrCodeRecordNotFound, "missing record")))
	suite.True(IsPermanent(New(ErrCodeObjectNotFound, "missing object")))
	suite.True(IsPermanent(New(ErrCodeSerializeFailed, "bad payload")))
	suite.True(IsPermanent(New(ErrCodeLoggerClosed, "closed")))
}

func (suite *ErrorTestSuite) TestIsPermanentTransientCodes() {
	for _, code := range []ErrorCode{
		ErrCodeHotStoreUnavailable,
		ErrCodeUpsertFailed,
		ErrCodeBatchUpsertFailed,
		ErrCodeUploadFailed,
		ErrCodeFlushFailed,
	} {
		suite.False(IsPermanent(New(code, "transient")), "code %d should be retriable", code)
	}

	suite.False(IsPermanent(stderrors.New("plain error")))
}
