package ports

import (
	"context"

	"github.com/Apurer/petcare-portal/internal/domains/appointments/domain"
)

// Directory reads the reference data the form is built from.
type Directory interface {
	ListPets(ctx context.Context) ([]domain.Pet, error)
	ListServices(ctx context.Context) ([]domain.Service, error)
	ListStaff(ctx context.Context) ([]domain.StaffMember, error)
}

// Gateway persists appointments in the backend.
type Gateway interface {
	Create(ctx context.Context, submission domain.Submission) (*domain.Appointment, error)
	Update(ctx context.Context, id int64, submission domain.Submission) (*domain.Appointment, error)
}
