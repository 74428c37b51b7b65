package mapper

import (
	"strings"

	apptypes "github.com/Apurer/petcare-portal/internal/domains/appointments/application/types"
	"github.com/Apurer/petcare-portal/internal/domains/appointments/domain"
	"github.com/Apurer/petcare-portal/internal/shared/datetime"
)

type Pet struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Species *string `json:"species,omitempty"`
}

type Service struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	RequiresVeterinarian bool   `json:"requiresVeterinarian"`
	AssigneeLabel        string `json:"assigneeLabel"`
}

type StaffMember struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// References is the body of GET /v1/appointment-form.
type References struct {
	Pets          []Pet         `json:"pets"`
	Services      []Service     `json:"services"`
	Veterinarians []StaffMember `json:"veterinarians"`
	Employees     []StaffMember `json:"employees"`
}

// AssigneeOptions is the body of GET /v1/appointment-form/assignees.
type AssigneeOptions struct {
	Label string        `json:"label"`
	Staff []StaffMember `json:"staff"`
}

// AppointmentRequest is the create/update body. Every field is optional so that
// missing selections reach the form validation instead of the binder.
type AppointmentRequest struct {
	PetID         *int64 `json:"petId"`
	ServiceID     *int64 `json:"serviceId"`
	AssignedToID  *int64 `json:"assignedToId"`
	StartDateTime string `json:"startDateTime,omitempty"`
	Note          string `json:"note"`
}

type Appointment struct {
	ID            int64  `json:"id"`
	PetID         int64  `json:"petId"`
	ServiceID     int64  `json:"serviceId"`
	AssignedToID  *int64 `json:"assignedToId"`
	StartDateTime string `json:"startDateTime"`
	Note          string `json:"note"`
}

// ToDraftInput parses the optional start in any accepted layout. An empty start means now.
func ToDraftInput(req AppointmentRequest) (apptypes.DraftInput, error) {
	input := apptypes.DraftInput{
		PetID:        req.PetID,
		ServiceID:    req.ServiceID,
		AssignedToID: req.AssignedToID,
		Note:         req.Note,
	}
	if raw := strings.TrimSpace(req.StartDateTime); raw != "" {
		start, err := datetime.Parse(raw)
		if err != nil {
			return apptypes.DraftInput{}, err
		}
		input.Start = start
	}
	return input, nil
}

func FromReferences(refs *domain.References) References {
	out := References{Pets: []Pet{}, Services: []Service{}, Veterinarians: []StaffMember{}, Employees: []StaffMember{}}
	if refs == nil {
		return out
	}
	for _, pet := range refs.Pets {
		out.Pets = append(out.Pets, Pet{ID: pet.ID, Name: pet.Name, Species: pet.Species})
	}
	for _, service := range refs.Services {
		out.Services = append(out.Services, Service{
			ID:                   service.ID,
			Name:                 service.Name,
			RequiresVeterinarian: service.RequiresVeterinarian,
			AssigneeLabel:        service.AssigneeRole().Label(),
		})
	}
	out.Veterinarians = fromStaff(refs.Veterinarians)
	out.Employees = fromStaff(refs.Employees)
	return out
}

func FromAssigneeOptions(options *apptypes.AssigneeOptions) AssigneeOptions {
	if options == nil {
		return AssigneeOptions{Staff: []StaffMember{}}
	}
	return AssigneeOptions{Label: options.Label, Staff: fromStaff(options.Staff)}
}

// FromDomainAppointment renders the start with formatter, the same way it is sent to the backend.
func FromDomainAppointment(a *domain.Appointment, formatter datetime.Formatter) Appointment {
	if a == nil {
		return Appointment{}
	}
	if formatter == nil {
		formatter = datetime.LocalFormatter
	}
	out := Appointment{
		ID:           a.ID,
		PetID:        a.PetID,
		ServiceID:    a.ServiceID,
		AssignedToID: a.AssignedToID,
		Note:         a.Note,
	}
	if !a.Start.IsZero() {
		out.StartDateTime = formatter(a.Start)
	}
	return out
}

func fromStaff(members []domain.StaffMember) []StaffMember {
	out := make([]StaffMember, 0, len(members))
	for _, member := range members {
		out = append(out, StaffMember{ID: member.ID, DisplayName: member.DisplayName, Role: member.Role.String()})
	}
	return out
}
