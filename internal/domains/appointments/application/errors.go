package application

import "errors"

var (
	// ErrValidation blocks a submission locally; no request is sent.
	ErrValidation = errors.New("appointment is incomplete")
	// ErrSubmitFailed wraps a failed create or update call.
	ErrSubmitFailed = errors.New("appointment could not be saved")
	// ErrLoadFailed wraps a failed reference-data fetch.
	ErrLoadFailed = errors.New("appointment form data could not be loaded")
	// ErrNotLoaded is returned by selections that need reference data before Load succeeded.
	ErrNotLoaded = errors.New("appointment form data not loaded")

	ErrUnknownPet          = errors.New("unknown pet")
	ErrUnknownService      = errors.New("unknown service")
	ErrAssigneeNotEligible = errors.New("staff member cannot be assigned to this service")
)

// User-facing messages shown by the mobile screens.
const (
	MissingSelectionMessage = "Please select a pet and a service."
	IneligibleMessage       = "The selected staff member cannot perform this service."
	UnknownSelectionMessage = "The selected pet or service is no longer available."
	SubmitFailedMessage     = "Unable to save the appointment. Please try again."
	LoadFailedMessage       = "Unable to load pets, services and staff. Please try again."
)

// UserMessage picks the message the screen shows for err.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrAssigneeNotEligible):
		return IneligibleMessage
	case errors.Is(err, ErrUnknownPet), errors.Is(err, ErrUnknownService):
		return UnknownSelectionMessage
	case errors.Is(err, ErrValidation):
		return MissingSelectionMessage
	case errors.Is(err, ErrLoadFailed), errors.Is(err, ErrNotLoaded):
		return LoadFailedMessage
	default:
		return SubmitFailedMessage
	}
}
