package observability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	appointmentapp "github.com/Apurer/petcare-portal/internal/domains/appointments/application"
	apptypes "github.com/Apurer/petcare-portal/internal/domains/appointments/application/types"
	"github.com/Apurer/petcare-portal/internal/domains/appointments/domain"
)

type stubService struct {
	createErr error
}

func (s *stubService) References(context.Context) (*domain.References, error) {
	refs := domain.NewReferences(nil, nil, nil)
	return &refs, nil
}

func (s *stubService) AssigneeOptions(context.Context, int64) (*apptypes.AssigneeOptions, error) {
	return &apptypes.AssigneeOptions{Label: domain.RoleEmployee.Label()}, nil
}

func (s *stubService) Create(context.Context, apptypes.DraftInput) (*domain.Appointment, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &domain.Appointment{ID: 55}, nil
}

func (s *stubService) Update(_ context.Context, id int64, _ apptypes.DraftInput) (*domain.Appointment, error) {
	return &domain.Appointment{ID: id}, nil
}

type harness struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *bytes.Buffer
}

func newHarness(t *testing.T, inner *stubService) (*Service, harness) {
	t.Helper()
	h := harness{spans: tracetest.NewSpanRecorder(), reader: sdkmetric.NewManualReader(), logs: &bytes.Buffer{}}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(h.spans))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(h.reader))
	logger := slog.New(slog.NewTextHandler(h.logs, nil))
	svc := New(inner, WithTracer(tp.Tracer("test")), WithMeter(mp.Meter("test")), WithLogger(logger))
	return svc.(*Service), h
}

func (h harness) submissions(t *testing.T) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))
	out := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "appointments.service.submissions" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				kind, _ := dp.Attributes.Value("appointment.kind")
				outcome, _ := dp.Attributes.Value("appointment.outcome")
				out[fmt.Sprintf("%s/%s", kind.AsString(), outcome.AsString())] += dp.Value
			}
		}
	}
	return out
}

func TestService_CreateRecordsSpanAndMetric(t *testing.T) {
	svc, h := newHarness(t, &stubService{})
	petID, serviceID := int64(3), int64(2)

	saved, err := svc.Create(context.Background(), apptypes.DraftInput{PetID: &petID, ServiceID: &serviceID})
	require.NoError(t, err)
	assert.Equal(t, int64(55), saved.ID)

	spans := h.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "AppointmentService.Create", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, map[string]int64{"create/saved": 1}, h.submissions(t))
	assert.Contains(t, h.logs.String(), "appointment saved")
}

func TestService_ValidationIsNotAnErrorSpan(t *testing.T) {
	svc, h := newHarness(t, &stubService{createErr: fmt.Errorf("%w: pet missing", appointmentapp.ErrValidation)})

	_, err := svc.Create(context.Background(), apptypes.DraftInput{})
	require.ErrorIs(t, err, appointmentapp.ErrValidation)

	spans := h.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, map[string]int64{"create/invalid": 1}, h.submissions(t))
	assert.NotContains(t, h.logs.String(), "level=ERROR")
}

func TestService_RemoteFailureMarksSpan(t *testing.T) {
	remote := fmt.Errorf("%w: %w", appointmentapp.ErrSubmitFailed, errors.New("boom"))
	svc, h := newHarness(t, &stubService{createErr: remote})

	_, err := svc.Create(context.Background(), apptypes.DraftInput{})
	require.ErrorIs(t, err, appointmentapp.ErrSubmitFailed)

	spans := h.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, map[string]int64{"create/failed": 1}, h.submissions(t))
	assert.Contains(t, h.logs.String(), "level=ERROR")
}

func TestService_UpdateCarriesID(t *testing.T) {
	svc, h := newHarness(t, &stubService{})

	saved, err := svc.Update(context.Background(), 42, apptypes.DraftInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.ID)
	assert.Equal(t, map[string]int64{"update/saved": 1}, h.submissions(t))
}
