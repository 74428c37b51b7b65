package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Apurer/petcare-portal/internal/domains/appointments/domain"
	"github.com/Apurer/petcare-portal/internal/domains/appointments/ports"
	"github.com/Apurer/petcare-portal/internal/shared/datetime"
)

// Form is the state behind one appointment screen. It is not safe for concurrent use.
type Form struct {
	directory  ports.Directory
	gateway    ports.Gateway
	formatter  datetime.Formatter
	onComplete func(*domain.Appointment)

	refs *domain.References

	id         *int64
	petID      *int64
	serviceID  *int64
	assigneeID *int64
	start      datetime.Value
	note       string
}

// FormOption configures a Form.
type FormOption func(*formConfig)

type formConfig struct {
	clock      func() time.Time
	formatter  datetime.Formatter
	onComplete func(*domain.Appointment)
	refs       *domain.References
}

// WithFormClock sets the source of the default start moment.
func WithFormClock(clock func() time.Time) FormOption {
	return func(c *formConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithFormFormatter sets how the start moment is rendered for the backend.
func WithFormFormatter(f datetime.Formatter) FormOption {
	return func(c *formConfig) {
		if f != nil {
			c.formatter = f
		}
	}
}

// WithCompletion registers the callback invoked with the saved record.
func WithCompletion(fn func(*domain.Appointment)) FormOption {
	return func(c *formConfig) { c.onComplete = fn }
}

// WithReferences supplies already loaded reference data, so Load is not needed.
func WithReferences(refs *domain.References) FormOption {
	return func(c *formConfig) { c.refs = refs }
}

// NewForm starts a form. With an existing appointment every field is pre-populated from it;
// otherwise nothing is selected, the start is the current moment and the note is empty.
func NewForm(directory ports.Directory, gateway ports.Gateway, existing *domain.Appointment, opts ...FormOption) *Form {
	cfg := formConfig{clock: time.Now, formatter: datetime.LocalFormatter}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	f := &Form{
		directory:  directory,
		gateway:    gateway,
		formatter:  cfg.formatter,
		onComplete: cfg.onComplete,
		refs:       cfg.refs,
	}
	if existing == nil {
		f.start = datetime.Now(cfg.clock)
		return f
	}
	id, petID, serviceID := existing.ID, existing.PetID, existing.ServiceID
	f.id = &id
	f.petID = &petID
	f.serviceID = &serviceID
	if existing.AssignedToID != nil {
		assignee := *existing.AssignedToID
		f.assigneeID = &assignee
	}
	f.start = datetime.NewValue(existing.Start)
	f.note = existing.Note
	return f
}

// Load fetches pets, services and staff concurrently. The first failure cancels the others.
func (f *Form) Load(ctx context.Context) error {
	if f.directory == nil {
		return errors.New("appointment directory not configured")
	}
	var (
		pets     []domain.Pet
		services []domain.Service
		staff    []domain.StaffMember
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if pets, err = f.directory.ListPets(gctx); err != nil {
			return fmt.Errorf("list pets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if services, err = f.directory.ListServices(gctx); err != nil {
			return fmt.Errorf("list services: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if staff, err = f.directory.ListStaff(gctx); err != nil {
			return fmt.Errorf("list staff: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	refs := domain.NewReferences(pets, services, staff)
	f.refs = &refs
	return nil
}

// Loaded reports whether reference data is available.
func (f *Form) Loaded() bool {
	return f.refs != nil
}

// References returns the loaded reference data, or an empty set before Load.
func (f *Form) References() domain.References {
	if f.refs == nil {
		return domain.NewReferences(nil, nil, nil)
	}
	return *f.refs
}

func (f *Form) SelectPet(id int64) error {
	if f.refs != nil {
		if _, ok := f.refs.Pet(id); !ok {
			return fmt.Errorf("%w: %d", ErrUnknownPet, id)
		}
	}
	f.petID = &id
	return nil
}

// SelectService switches the service. An assignee that is not eligible for the new
// service is cleared and must be picked again.
func (f *Form) SelectService(id int64) error {
	if f.refs == nil {
		return ErrNotLoaded
	}
	service, ok := f.refs.Service(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownService, id)
	}
	f.serviceID = &id
	if f.assigneeID != nil && !f.refs.Eligible(service, *f.assigneeID) {
		f.assigneeID = nil
	}
	return nil
}

// SelectAssignee picks a staff member from the current assignee options.
func (f *Form) SelectAssignee(id int64) error {
	service, ok := f.selectedService()
	if !ok {
		if f.refs == nil {
			return ErrNotLoaded
		}
		return fmt.Errorf("%w: select a service first", ErrAssigneeNotEligible)
	}
	if !f.refs.Eligible(service, id) {
		return fmt.Errorf("%w: %d", ErrAssigneeNotEligible, id)
	}
	f.assigneeID = &id
	return nil
}

func (f *Form) ClearAssignee() {
	f.assigneeID = nil
}

// AssigneeOptions lists veterinarians when the selected service requires one, employees otherwise.
func (f *Form) AssigneeOptions() []domain.StaffMember {
	service, ok := f.selectedService()
	if !ok {
		return nil
	}
	return f.refs.Pool(service.AssigneeRole())
}

// AssigneeLabel is "Veterinarian" when the selected service requires one, "Employee" otherwise.
func (f *Form) AssigneeLabel() string {
	service, ok := f.selectedService()
	if !ok {
		return domain.RoleEmployee.Label()
	}
	return service.AssigneeRole().Label()
}

// SetDate changes the calendar date and keeps the time of day.
func (f *Form) SetDate(date time.Time) {
	f.start = f.start.WithDate(date)
}

// SetTime changes the time of day and keeps the calendar date.
func (f *Form) SetTime(clock time.Time) {
	f.start = f.start.WithTime(clock)
}

// SetStart replaces the whole start moment.
func (f *Form) SetStart(start time.Time) {
	f.start = datetime.NewValue(start)
}

func (f *Form) SetNote(note string) {
	f.note = note
}

// Draft snapshots the current form state.
func (f *Form) Draft() domain.Draft {
	return domain.Draft{
		ID:           copyID(f.id),
		PetID:        copyID(f.petID),
		ServiceID:    copyID(f.serviceID),
		AssignedToID: copyID(f.assigneeID),
		Start:        f.start.Time(),
		Note:         f.note,
	}
}

// Submit validates locally and then creates or updates the appointment in a single attempt.
// On success the completion callback receives the saved record.
func (f *Form) Submit(ctx context.Context) (*domain.Appointment, error) {
	if f.petID == nil || f.serviceID == nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, MissingSelectionMessage)
	}
	if err := f.validateSelection(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if f.gateway == nil {
		return nil, fmt.Errorf("%w: appointment gateway not configured", ErrSubmitFailed)
	}
	submission := domain.Submission{
		PetID:         *f.petID,
		ServiceID:     *f.serviceID,
		AssignedToID:  copyID(f.assigneeID),
		StartDateTime: f.start.Format(f.formatter),
		Note:          f.note,
	}
	var (
		saved *domain.Appointment
		err   error
	)
	if f.id == nil {
		saved, err = f.gateway.Create(ctx, submission)
	} else {
		saved, err = f.gateway.Update(ctx, *f.id, submission)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	if saved != nil {
		id := saved.ID
		f.id = &id
	}
	if f.onComplete != nil {
		f.onComplete(saved)
	}
	return saved, nil
}

func (f *Form) validateSelection() error {
	if f.refs == nil {
		return nil
	}
	if _, ok := f.refs.Pet(*f.petID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPet, *f.petID)
	}
	service, ok := f.refs.Service(*f.serviceID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownService, *f.serviceID)
	}
	if f.assigneeID != nil && !f.refs.Eligible(service, *f.assigneeID) {
		return fmt.Errorf("%w: %d", ErrAssigneeNotEligible, *f.assigneeID)
	}
	return nil
}

func (f *Form) selectedService() (domain.Service, bool) {
	if f.refs == nil || f.serviceID == nil {
		return domain.Service{}, false
	}
	return f.refs.Service(*f.serviceID)
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
