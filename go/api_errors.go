package portalserver

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	appointmentapp "github.com/Apurer/petcare-portal/internal/domains/appointments/application"
	cartapp "github.com/Apurer/petcare-portal/internal/domains/cart/application"
	cartdomain "github.com/Apurer/petcare-portal/internal/domains/cart/domain"
	cartports "github.com/Apurer/petcare-portal/internal/domains/cart/ports"
	"github.com/Apurer/petcare-portal/internal/shared/datetime"
	apierrors "github.com/Apurer/petcare-portal/internal/shared/errors"
)

// PickupDateMessage is the detail returned for a pickup or start time that cannot be read.
const PickupDateMessage = "Dates must look like 2024-06-01T10:00, 2024-06-01T10:00:00 or RFC 3339."

var responder = apierrors.NewChainedResponder("",
	mapCheckoutRejection,
	apierrors.MapSentinel(cartapp.ErrCheckoutUnavailable, apierrors.ErrBadGateway, constant("The store is unreachable right now. Your cart was kept, please try again.")),
	apierrors.MapSentinel(cartports.ErrNotFound, apierrors.ErrNotFound, innermost),
	apierrors.MapSentinel(cartapp.ErrInvalidInput, apierrors.ErrValidation, innermost),
	apierrors.MapSentinel(datetime.ErrInvalidDateTime, apierrors.ErrBadRequest, constant(PickupDateMessage)),
	apierrors.MapSentinel(appointmentapp.ErrValidation, apierrors.ErrValidation, appointmentapp.UserMessage),
	apierrors.MapSentinel(appointmentapp.ErrLoadFailed, apierrors.ErrBadGateway, appointmentapp.UserMessage),
	apierrors.MapSentinel(appointmentapp.ErrNotLoaded, apierrors.ErrBadGateway, appointmentapp.UserMessage),
	apierrors.MapSentinel(appointmentapp.ErrSubmitFailed, apierrors.ErrBadGateway, appointmentapp.UserMessage),
)

func mapCheckoutRejection(err error) (apierrors.ProblemDetail, bool) {
	var rejection *cartapp.RejectionError
	if !errors.As(err, &rejection) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.NewCheckoutRejectedProblem(rejection.Message), true
}

func constant(message string) func(error) string {
	return func(error) string { return message }
}

// innermost strips the sentinel prefixes and keeps the domain reason, e.g. "item is not in the cart".
func innermost(err error) string {
	for _, reason := range []error{
		cartdomain.ErrItemNotFound,
		cartdomain.ErrEmptyOwner,
		cartdomain.ErrEmptyProductID,
		cartdomain.ErrEmptyName,
		cartdomain.ErrNegativePrice,
		cartdomain.ErrInvalidQuantity,
		cartdomain.ErrAddQuantity,
		cartdomain.ErrEmptyCart,
	} {
		if errors.Is(err, reason) {
			return reason.Error()
		}
	}
	return err.Error()
}

func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

// respondBindError reports binding failures, listing fields when the validator produced them.
func respondBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[lowerFirst(fe.Field())] = fe.Tag()
		}
		responder.ValidationFailed(c, fields)
		return
	}
	responder.BadRequest(c, err.Error())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
