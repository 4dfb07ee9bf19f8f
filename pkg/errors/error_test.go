package errors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeInvalidParameter, "invalid parameter: %s", "test")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter: test", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.NotNil(err)
	suite.Equal(ErrCodeDataNotFound, err.Code)
	suite.Equal("data not found", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("underlying error")
	err := Wrapf(ErrCodeDataNotFound, cause, "data not found for symbol: %s", "AAPL")
	suite.NotNil(err)
	suite.Equal(ErrCodeDataNotFound, err.Code)
	suite.Equal("data not found for symbol: AAPL", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.Equal("[300] data not found: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestUnwrapNil() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Nil(err.Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal(ErrCodeInvalidParameter, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromWrapped() {
	cause := New(ErrCodeDataNotFound, "data not found")
	err := Wrap(ErrCodeIndicatorNotFound, "indicator not found", cause)
	// GetCode should return the outermost error's code
	suite.Equal(ErrCodeIndicatorNotFound, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromNonArgoError() {
	err := errors.New("standard error")
	suite.Equal(ErrCodeUnknown, GetCode(err))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.True(HasCode(err, ErrCodeInvalidParameter))
	suite.False(HasCode(err, ErrCodeDataNotFound))
}

func (suite *ErrorTestSuite) TestIsError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDataNotFound, "data not found", cause)
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestAsError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	var argoErr *Error
	suite.True(As(err, &argoErr))
	suite.Equal(ErrCodeInvalidParameter, argoErr.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(200), ErrCodeInputShape)
	suite.Equal(ErrorCode(300), ErrCodeDataNotFound)
	suite.Equal(ErrorCode(400), ErrCodeIndicatorNotFound)
	suite.Equal(ErrorCode(500), ErrCodeWriteFailed)
}

func (suite *ErrorTestSuite) TestInputShapeError() {
	err := NewInputShapeError("low", 10, 9)
	suite.Equal("low", err.Column)
	suite.Equal(10, err.Expected)
	suite.Equal(9, err.Actual)
	suite.Equal("[200] column low has length 9, expected 10", err.Error())
	suite.Equal(ErrCodeInputShape, GetCode(err))
}

func (suite *ErrorTestSuite) TestIsInputShapeError() {
	suite.True(IsInputShapeError(NewInputShapeError("high", 3, 2)))
	suite.True(IsInputShapeError(Wrap(ErrCodeIndicatorCalculation, "kd failed", NewInputShapeError("high", 3, 2))))
	suite.False(IsInputShapeError(errors.New("standard error")))
	suite.False(IsInputShapeError(New(ErrCodeInvalidParameter, "invalid parameter")))
	suite.False(IsInputShapeError(nil))
}

func (suite *ErrorTestSuite) TestOutOfOrderError() {
	prev := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	curr := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := NewOutOfOrderError(5, prev, curr)
	suite.Equal(5, err.Index)
	suite.Contains(err.Error(), "bar 5")
	suite.Contains(err.Error(), "2024-01-01T00:00:00Z")
	suite.True(IsOutOfOrderError(err))
	suite.True(HasCode(err, ErrCodeOutOfOrder))
	suite.False(IsOutOfOrderError(NewInputShapeError("close", 1, 2)))
}

func (suite *ErrorTestSuite) TestGetCodePrefersOuterError() {
	err := Wrap(ErrCodeDataNotFound, "load failed", NewOutOfOrderError(1, time.Time{}, time.Time{}))
	suite.Equal(ErrCodeDataNotFound, GetCode(err))
}
