package ports

import (
	"context"

	apptypes "github.com/Apurer/petcare-portal/internal/domains/appointments/application/types"
	"github.com/Apurer/petcare-portal/internal/domains/appointments/domain"
)

// Service exposes the appointment form use cases to adapters.
type Service interface {
	References(ctx context.Context) (*domain.References, error)
	AssigneeOptions(ctx context.Context, serviceID int64) (*apptypes.AssigneeOptions, error)
	Create(ctx context.Context, input apptypes.DraftInput) (*domain.Appointment, error)
	Update(ctx context.Context, id int64, input apptypes.DraftInput) (*domain.Appointment, error)
}
