package domain

import "time"

// Appointment is a persisted appointment as returned by the backend.
type Appointment struct {
	ID           int64
	PetID        int64
	ServiceID    int64
	AssignedToID *int64
	Start        time.Time
	Note         string
}

// Draft is the unsubmitted form state. A nil ID means the draft creates a new appointment.
type Draft struct {
	ID           *int64
	PetID        *int64
	ServiceID    *int64
	AssignedToID *int64
	Start        time.Time
	Note         string
}

// Submission is the wire-ready draft, with the start already rendered by the injected formatter.
type Submission struct {
	PetID         int64
	ServiceID     int64
	AssignedToID  *int64
	StartDateTime string
	Note          string
}
