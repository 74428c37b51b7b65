// Package types holds the appointment use-case inputs and outputs shared by adapters.
package types

import (
	"time"

	"github.com/Apurer/petcare-portal/internal/domains/appointments/domain"
)

// DraftInput carries the form fields submitted by the mobile app. A zero Start means "now".
type DraftInput struct {
	PetID        *int64
	ServiceID    *int64
	AssignedToID *int64
	Start        time.Time
	Note         string
}

// AssigneeOptions is the assignee picker content for one service.
type AssigneeOptions struct {
	Label string
	Staff []domain.StaffMember
}
