package rpcserver

import (
	"errors"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cory-johannsen/combicalc/internal/combinatorics"
	"github.com/cory-johannsen/combicalc/internal/formula"
	"github.com/cory-johannsen/combicalc/internal/i18n"
)

// Domain is the ErrorInfo domain attached to every failed call.
const Domain = "combicalc"

// ReasonInternal is the ErrorInfo reason for errors outside the calculator's
// vocabulary.
const ReasonInternal = "INTERNAL"

// Code maps a calculator error onto a gRPC status code.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, formula.ErrUnknownFormula):
		return codes.NotFound
	case errors.Is(err, combinatorics.ErrInvalidArgument),
		errors.Is(err, formula.ErrArity),
		errors.Is(err, formula.ErrNotInteger),
		errors.Is(err, formula.ErrOperandTooLarge),
		errors.Is(err, formula.ErrEmptyInput):
		return codes.InvalidArgument
	}
	return codes.Internal
}

// Reason returns the ErrorInfo reason for err, e.g. "K_EXCEEDS_N".
func Reason(err error) string {
	key, ok := i18n.ErrorKey(err)
	if !ok {
		return ReasonInternal
	}
	return strings.ToUpper(strings.TrimPrefix(key, "error."))
}

// statusError converts err into a status. The status message keeps the
// internal error text; the LocalizedMessage detail carries the user-facing
// text in the caller's language.
func statusError(loc *i18n.Localizer, err error) error {
	st := status.New(Code(err), err.Error())
	detailed, detailErr := st.WithDetails(
		&errdetails.ErrorInfo{
			Reason: Reason(err),
			Domain: Domain,
		},
		&errdetails.LocalizedMessage{
			Locale:  loc.Locale(),
			Message: loc.ErrorMessage(err),
		},
	)
	if detailErr != nil {
		return st.Err()
	}
	return detailed.Err()
}
