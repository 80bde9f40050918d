package billinggate

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// FailureKind classifies why a shop write was refused.
type FailureKind string

const (
	FailUnauthenticated   FailureKind = "unauthenticated"
	FailElevationRequired FailureKind = "elevation_required"
	FailAccessDenied      FailureKind = "access_denied"
	FailBillingRequired   FailureKind = "billing_required"
	FailShopNotFound      FailureKind = "shop_not_found"
	FailInvalidShopID     FailureKind = "invalid_shop_id"
)

// Error is a typed gate failure carrying its HTTP mapping.
type Error struct {
	Kind    FailureKind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// HTTPStatus maps the failure kind onto a response status. BillingRequired is
// always 402 in this deployment.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case FailUnauthenticated:
		return fiber.StatusUnauthorized
	case FailElevationRequired, FailAccessDenied:
		return fiber.StatusForbidden
	case FailBillingRequired:
		return fiber.StatusPaymentRequired
	case FailShopNotFound:
		return fiber.StatusNotFound
	case FailInvalidShopID:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func newError(kind FailureKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf extracts the failure kind from err, or "" if err is not a gate error.
func KindOf(err error) FailureKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
