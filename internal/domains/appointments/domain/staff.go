package domain

import "strings"

// Role is the closed set of staff roles the scheduling form distinguishes.
type Role int

const (
	RoleOther Role = iota
	RoleVeterinarian
	RoleEmployee
)

// ParseRole maps the backend role string. Unrecognised roles are RoleOther.
func ParseRole(raw string) Role {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "VETERINARIAN":
		return RoleVeterinarian
	case "EMPLOYEE":
		return RoleEmployee
	default:
		return RoleOther
	}
}

func (r Role) String() string {
	switch r {
	case RoleVeterinarian:
		return "VETERINARIAN"
	case RoleEmployee:
		return "EMPLOYEE"
	case RoleOther:
		return "OTHER"
	default:
		return "OTHER"
	}
}

// Label is the assignee picker caption for the role.
func (r Role) Label() string {
	switch r {
	case RoleVeterinarian:
		return "Veterinarian"
	case RoleEmployee:
		return "Employee"
	case RoleOther:
		return ""
	default:
		return ""
	}
}

// StaffMember is a user that may be assigned to an appointment.
type StaffMember struct {
	ID          int64
	DisplayName string
	Role        Role
}
