package testutils

import (
	"errors"
	"testing"

	"github.com/labstack/echo/v4"
)

// AssertHTTPError fails the test unless err is an *echo.HTTPError with
// the wanted status code.
func AssertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Errorf("error should be reported (expected status %d)", code)
		return
	}
	httpErr := new(echo.HTTPError)
	if !errors.As(err, &httpErr) {
		t.Errorf("unexpected error type: %v", err)
		return
	}
	if httpErr.Code != code {
		t.Errorf("unmatch status: %d, expected: %d", httpErr.Code, code)
	}
}
