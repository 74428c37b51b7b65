// Package backend adapts the pet-care backend client to the appointment ports.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Apurer/petcare-portal/internal/clients/http/petcare"
	"github.com/Apurer/petcare-portal/internal/domains/appointments/domain"
	"github.com/Apurer/petcare-portal/internal/domains/appointments/ports"
	"github.com/Apurer/petcare-portal/internal/shared/datetime"
)

var (
	_ ports.Directory = (*Backend)(nil)
	_ ports.Gateway   = (*Backend)(nil)
)

// Backend reads reference data from and writes appointments to the pet-care backend.
type Backend struct {
	client *petcare.Client
}

func New(client *petcare.Client) *Backend {
	return &Backend{client: client}
}

func (b *Backend) ListPets(ctx context.Context) ([]domain.Pet, error) {
	if err := b.ensureClient(); err != nil {
		return nil, err
	}
	pets, err := b.client.ListPets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Pet, 0, len(pets))
	for _, pet := range pets {
		out = append(out, domain.Pet{ID: pet.ID, Name: pet.Name, Species: pet.Species})
	}
	return out, nil
}

func (b *Backend) ListServices(ctx context.Context) ([]domain.Service, error) {
	if err := b.ensureClient(); err != nil {
		return nil, err
	}
	services, err := b.client.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Service, 0, len(services))
	for _, service := range services {
		out = append(out, domain.Service{ID: service.ID, Name: service.Name, RequiresVeterinarian: service.RequiresVeterinarian})
	}
	return out, nil
}

func (b *Backend) ListStaff(ctx context.Context) ([]domain.StaffMember, error) {
	if err := b.ensureClient(); err != nil {
		return nil, err
	}
	users, err := b.client.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.StaffMember, 0, len(users))
	for _, user := range users {
		out = append(out, domain.StaffMember{ID: user.ID, DisplayName: user.DisplayName(), Role: domain.ParseRole(user.Role)})
	}
	return out, nil
}

func (b *Backend) Create(ctx context.Context, submission domain.Submission) (*domain.Appointment, error) {
	if err := b.ensureClient(); err != nil {
		return nil, err
	}
	created, err := b.client.CreateAppointment(ctx, toPayload(submission))
	if err != nil {
		return nil, err
	}
	return toDomain(created)
}

func (b *Backend) Update(ctx context.Context, id int64, submission domain.Submission) (*domain.Appointment, error) {
	if err := b.ensureClient(); err != nil {
		return nil, err
	}
	updated, err := b.client.UpdateAppointment(ctx, id, toPayload(submission))
	if err != nil {
		return nil, err
	}
	return toDomain(updated)
}

func (b *Backend) ensureClient() error {
	if b == nil || b.client == nil {
		return errors.New("pet-care backend client not configured")
	}
	return nil
}

func toPayload(s domain.Submission) petcare.AppointmentPayload {
	return petcare.AppointmentPayload{
		PetID:         s.PetID,
		ServiceID:     s.ServiceID,
		AssignedToID:  s.AssignedToID,
		StartDateTime: s.StartDateTime,
		Note:          s.Note,
	}
}

func toDomain(a *petcare.Appointment) (*domain.Appointment, error) {
	if a == nil {
		return nil, errors.New("empty appointment response")
	}
	out := &domain.Appointment{
		ID:           a.ID,
		PetID:        a.PetID,
		ServiceID:    a.ServiceID,
		AssignedToID: a.AssignedToID,
		Note:         a.Note,
	}
	if raw := strings.TrimSpace(a.StartDateTime); raw != "" {
		start, err := datetime.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("appointment %d: %w", a.ID, err)
		}
		out.Start = start
	}
	return out, nil
}
