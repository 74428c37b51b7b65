package domain

// Pet is read-only reference data.
type Pet struct {
	ID      int64
	Name    string
	Species *string
}

// Service is a bookable service. RequiresVeterinarian selects the assignee branch.
type Service struct {
	ID                   int64
	Name                 string
	RequiresVeterinarian bool
}

// AssigneeRole is the staff role eligible to perform the service.
func (s Service) AssigneeRole() Role {
	if s.RequiresVeterinarian {
		return RoleVeterinarian
	}
	return RoleEmployee
}

// References is the reference data the form needs, with staff partitioned by role.
type References struct {
	Pets          []Pet
	Services      []Service
	Veterinarians []StaffMember
	Employees     []StaffMember
}

// NewReferences partitions staff into veterinarian and employee pools, preserving order.
// Staff with any other role are dropped.
func NewReferences(pets []Pet, services []Service, staff []StaffMember) References {
	refs := References{
		Pets:          pets,
		Services:      services,
		Veterinarians: []StaffMember{},
		Employees:     []StaffMember{},
	}
	for _, member := range staff {
		switch member.Role {
		case RoleVeterinarian:
			refs.Veterinarians = append(refs.Veterinarians, member)
		case RoleEmployee:
			refs.Employees = append(refs.Employees, member)
		case RoleOther:
		}
	}
	return refs
}

func (r References) Pet(id int64) (Pet, bool) {
	for _, pet := range r.Pets {
		if pet.ID == id {
			return pet, true
		}
	}
	return Pet{}, false
}

func (r References) Service(id int64) (Service, bool) {
	for _, service := range r.Services {
		if service.ID == id {
			return service, true
		}
	}
	return Service{}, false
}

// Pool returns the staff eligible for role.
func (r References) Pool(role Role) []StaffMember {
	switch role {
	case RoleVeterinarian:
		return r.Veterinarians
	case RoleEmployee:
		return r.Employees
	case RoleOther:
		return nil
	default:
		return nil
	}
}

// Eligible reports whether staff member id may be assigned to service.
func (r References) Eligible(service Service, id int64) bool {
	for _, member := range r.Pool(service.AssigneeRole()) {
		if member.ID == id {
			return true
		}
	}
	return false
}
