package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	appointmentapp "github.com/Apurer/petcare-portal/internal/domains/appointments/application"
	apptypes "github.com/Apurer/petcare-portal/internal/domains/appointments/application/types"
	"github.com/Apurer/petcare-portal/internal/domains/appointments/domain"
	"github.com/Apurer/petcare-portal/internal/domains/appointments/ports"
)

const tracerName = "github.com/Apurer/petcare-portal/internal/domains/appointments/adapters/observability"

// Service decorates the appointment service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) References(ctx context.Context) (*domain.References, error) {
	ctx, span := s.tracer.Start(ctx, "AppointmentService.References")
	defer span.End()

	refs, err := s.inner.References(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load appointment references")
	}
	span.SetAttributes(
		attribute.Int("appointment.pets", len(refs.Pets)),
		attribute.Int("appointment.services", len(refs.Services)),
		attribute.Int("appointment.veterinarians", len(refs.Veterinarians)),
		attribute.Int("appointment.employees", len(refs.Employees)),
	)
	return refs, nil
}

func (s *Service) AssigneeOptions(ctx context.Context, serviceID int64) (*apptypes.AssigneeOptions, error) {
	ctx, span := s.tracer.Start(ctx, "AppointmentService.AssigneeOptions", trace.WithAttributes(attribute.Int64("appointment.service_id", serviceID)))
	defer span.End()

	options, err := s.inner.AssigneeOptions(ctx, serviceID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list assignees", slog.Int64("service.id", serviceID))
	}
	span.SetAttributes(attribute.String("appointment.assignee_label", options.Label), attribute.Int("appointment.assignees", len(options.Staff)))
	return options, nil
}

func (s *Service) Create(ctx context.Context, input apptypes.DraftInput) (*domain.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "AppointmentService.Create", draftAttributes(input))
	defer span.End()
	return s.submit(ctx, span, "create", input, s.inner.Create)
}

func (s *Service) Update(ctx context.Context, id int64, input apptypes.DraftInput) (*domain.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "AppointmentService.Update", draftAttributes(input), trace.WithAttributes(attribute.Int64("appointment.id", id)))
	defer span.End()
	return s.submit(ctx, span, "update", input, func(ctx context.Context, input apptypes.DraftInput) (*domain.Appointment, error) {
		return s.inner.Update(ctx, id, input)
	})
}

func (s *Service) submit(
	ctx context.Context,
	span trace.Span,
	kind string,
	input apptypes.DraftInput,
	fn func(context.Context, apptypes.DraftInput) (*domain.Appointment, error),
) (*domain.Appointment, error) {
	s.logInfo(ctx, "submitting appointment", slog.String("kind", kind))
	result, err := fn(ctx, input)
	if err != nil {
		s.metrics.recordSubmission(ctx, kind, submissionOutcome(err))
		if errors.Is(err, appointmentapp.ErrValidation) {
			span.SetAttributes(attribute.Bool("appointment.invalid", true))
			s.logInfo(ctx, "appointment rejected locally", slog.String("kind", kind), slog.String("reason", err.Error()))
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "appointment submission failed", slog.String("kind", kind))
	}
	s.metrics.recordSubmission(ctx, kind, "saved")
	span.SetAttributes(attribute.Int64("appointment.id", result.ID))
	s.logInfo(ctx, "appointment saved", slog.String("kind", kind), slog.Int64("appointment.id", result.ID))
	return result, nil
}

func submissionOutcome(err error) string {
	switch {
	case errors.Is(err, appointmentapp.ErrValidation):
		return "invalid"
	case errors.Is(err, appointmentapp.ErrLoadFailed):
		return "load_failed"
	default:
		return "failed"
	}
}

func draftAttributes(input apptypes.DraftInput) trace.SpanStartEventOption {
	attrs := make([]attribute.KeyValue, 0, 3)
	if input.PetID != nil {
		attrs = append(attrs, attribute.Int64("appointment.pet_id", *input.PetID))
	}
	if input.ServiceID != nil {
		attrs = append(attrs, attribute.Int64("appointment.service_id", *input.ServiceID))
	}
	if input.AssignedToID != nil {
		attrs = append(attrs, attribute.Int64("appointment.assigned_to_id", *input.AssignedToID))
	}
	return trace.WithAttributes(attrs...)
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	submissions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	submissions, _ := m.Int64Counter("appointments.service.submissions", metric.WithDescription("Number of appointment submissions by kind and outcome"))
	return serviceMetrics{submissions: submissions}
}

func (m serviceMetrics) recordSubmission(ctx context.Context, kind, outcome string) {
	if m.submissions != nil {
		m.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("appointment.kind", kind), attribute.String("appointment.outcome", outcome)))
	}
}

var _ ports.Service = (*Service)(nil)
