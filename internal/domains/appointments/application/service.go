package application

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	apptypes "github.com/Apurer/petcare-portal/internal/domains/appointments/application/types"
	"github.com/Apurer/petcare-portal/internal/domains/appointments/domain"
	"github.com/Apurer/petcare-portal/internal/domains/appointments/ports"
	"github.com/Apurer/petcare-portal/internal/shared/datetime"
)

const (
	referencesKey = "references"

	defaultLoadTimeout = 15 * time.Second
)

// Service runs the appointment form on behalf of HTTP callers.
type Service struct {
	directory ports.Directory
	gateway   ports.Gateway
	clock     func() time.Time
	formatter datetime.Formatter
	loads     singleflight.Group
	// loadTimeout bounds a shared reference load, which outlives any one caller.
	loadTimeout time.Duration
}

type Option func(*Service)

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithFormatter(f datetime.Formatter) Option {
	return func(s *Service) {
		if f != nil {
			s.formatter = f
		}
	}
}

// WithLoadTimeout bounds the shared reference load.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

func NewService(directory ports.Directory, gateway ports.Gateway, opts ...Option) *Service {
	s := &Service{
		directory:   directory,
		gateway:     gateway,
		clock:       time.Now,
		formatter:   datetime.LocalFormatter,
		loadTimeout: defaultLoadTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// References loads pets, services and staff. Concurrent callers share one
// load, detached from any single caller's cancellation and bounded by the
// load timeout. Each caller still stops waiting when its own ctx ends.
func (s *Service) References(ctx context.Context) (*domain.References, error) {
	ch := s.loads.DoChan(referencesKey, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		form := s.newForm(nil)
		if err := form.Load(loadCtx); err != nil {
			return nil, err
		}
		refs := form.References()
		return &refs, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.References), nil
	}
}

// AssigneeOptions returns the picker label and staff eligible for serviceID.
func (s *Service) AssigneeOptions(ctx context.Context, serviceID int64) (*apptypes.AssigneeOptions, error) {
	refs, err := s.References(ctx)
	if err != nil {
		return nil, err
	}
	form := s.newForm(nil, WithReferences(refs))
	if err := form.SelectService(serviceID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return &apptypes.AssigneeOptions{Label: form.AssigneeLabel(), Staff: form.AssigneeOptions()}, nil
}

// Create submits a new appointment.
func (s *Service) Create(ctx context.Context, input apptypes.DraftInput) (*domain.Appointment, error) {
	if err := requireSelection(input); err != nil {
		return nil, err
	}
	refs, err := s.References(ctx)
	if err != nil {
		return nil, err
	}
	form := s.newForm(nil, WithReferences(refs))
	if err := applyDraft(form, input); err != nil {
		return nil, err
	}
	return form.Submit(ctx)
}

// Update replaces appointment id with the submitted fields.
func (s *Service) Update(ctx context.Context, id int64, input apptypes.DraftInput) (*domain.Appointment, error) {
	if err := requireSelection(input); err != nil {
		return nil, err
	}
	refs, err := s.References(ctx)
	if err != nil {
		return nil, err
	}
	start := input.Start
	if start.IsZero() {
		start = s.clock()
	}
	existing := &domain.Appointment{
		ID:           id,
		PetID:        *input.PetID,
		ServiceID:    *input.ServiceID,
		AssignedToID: input.AssignedToID,
		Start:        start,
		Note:         input.Note,
	}
	return s.newForm(existing, WithReferences(refs)).Submit(ctx)
}

func (s *Service) newForm(existing *domain.Appointment, opts ...FormOption) *Form {
	opts = append([]FormOption{WithFormClock(s.clock), WithFormFormatter(s.formatter)}, opts...)
	return NewForm(s.directory, s.gateway, existing, opts...)
}

func requireSelection(input apptypes.DraftInput) error {
	if input.PetID == nil || input.ServiceID == nil {
		return fmt.Errorf("%w: %s", ErrValidation, MissingSelectionMessage)
	}
	return nil
}

func applyDraft(form *Form, input apptypes.DraftInput) error {
	if err := form.SelectPet(*input.PetID); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := form.SelectService(*input.ServiceID); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if input.AssignedToID != nil {
		if err := form.SelectAssignee(*input.AssignedToID); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}
	if !input.Start.IsZero() {
		form.SetStart(input.Start)
	}
	form.SetNote(input.Note)
	return nil
}

var _ ports.Service = (*Service)(nil)
