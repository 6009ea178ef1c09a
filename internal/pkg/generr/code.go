package generr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Error is a user-presentable failure. Code identifies the kind and never
// changes; Msg is the reason shown to the user.
type Error struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Msg)
}

// Is matches on the kind so a detailed copy still satisfies errors.Is
// against the base value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// With derives an error of the same kind with a specific reason.
func (e *Error) With(format string, args ...interface{}) *Error {
	return &Error{Code: e.Code, Msg: fmt.Sprintf(format, args...)}
}

var (
	ParseParam  = &Error{400, "invalid parameters"}
	Validation  = &Error{422, "validation failed"}
	NotFound    = &Error{404, "not found"}
	ServerError = &Error{500, "server error"}
)

var (
	SignMiss     = &Error{601, "signature missing"}
	SignNotMatch = &Error{602, "signature mismatch"}
	TimestampErr = &Error{603, "bad timestamp"}
	TimestampOut = &Error{604, "timestamp expired"}
	Persistence  = &Error{699, "storage unavailable, please retry"}

	AlreadyCheckedIn = &Error{701, "already checked in today"}
	NotEligible      = &Error{702, "task not available"}

	InvalidCode     = &Error{801, "referral code not found"}
	SelfReferral    = &Error{802, "you cannot use your own referral code"}
	AlreadyReferred = &Error{803, "a referral code was already applied"}
)

// From finds the generr value in err's chain; anything else is reported
// as a persistence failure so raw storage errors never leak.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Persistence
}

// HTTPStatus maps an error kind to a response status.
func HTTPStatus(err error) int {
	switch e := From(err); {
	case e == nil:
		return http.StatusOK
	case e.Is(ParseParam):
		return http.StatusBadRequest
	case e.Is(Validation):
		return http.StatusUnprocessableEntity
	case e.Is(NotFound), e.Is(InvalidCode):
		return http.StatusNotFound
	case e.Is(SignMiss), e.Is(SignNotMatch), e.Is(TimestampErr), e.Is(TimestampOut):
		return http.StatusUnauthorized
	case e.Is(AlreadyCheckedIn), e.Is(NotEligible), e.Is(SelfReferral), e.Is(AlreadyReferred):
		return http.StatusConflict
	case e.Is(Persistence):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
