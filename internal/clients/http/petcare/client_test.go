package petcare

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAbsoluteURL(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
	_, err = NewClient("/api")
	require.Error(t, err)
}

func TestListReferenceData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/pets":
			_, _ = io.WriteString(w, `[{"id":3,"name":"Rex"},{"id":4,"name":"Tom","species":"cat"}]`)
		case "/api/services":
			_, _ = io.WriteString(w, `[{"id":1,"name":"Grooming","requiresVeterinarian":false}]`)
		case "/api/admin/users":
			_, _ = io.WriteString(w, `[{"id":7,"firstName":"Ana","lastName":"Silva","role":"EMPLOYEE"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, WithToken("secret"))
	ctx := context.Background()

	pets, err := client.ListPets(ctx)
	require.NoError(t, err)
	require.Len(t, pets, 2)
	assert.Equal(t, int64(3), pets[0].ID)
	require.NotNil(t, pets[1].Species)
	assert.Equal(t, "cat", *pets[1].Species)

	services, err := client.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.False(t, services[0].RequiresVeterinarian)

	users, err := client.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana Silva", users[0].DisplayName())
	assert.Equal(t, "EMPLOYEE", users[0].Role)
}

func TestCreateAppointment_SendsNullableFields(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/appointments", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":55,"petId":3,"serviceId":1,"assignedToId":null,"startDateTime":"2024-06-01T10:00:00","note":""}`)
	})

	created, err := client.CreateAppointment(context.Background(), AppointmentPayload{
		PetID:         3,
		ServiceID:     1,
		StartDateTime: "2024-06-01T10:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(55), created.ID)
	assert.Nil(t, created.AssignedToID)

	assert.Contains(t, body, "assignedToId")
	assert.Nil(t, body["assignedToId"])
	assert.Equal(t, "", body["note"])
	assert.Equal(t, float64(3), body["petId"])
}

func TestUpdateAppointment_UsesPathID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/appointments/42", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":42,"petId":3,"serviceId":1,"startDateTime":"2024-06-01T10:00:00","note":"x"}`)
	})

	updated, err := client.UpdateAppointment(context.Background(), 42, AppointmentPayload{PetID: 3, ServiceID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(42), updated.ID)
	assert.Equal(t, "x", updated.Note)
}

func TestCheckout_RejectedIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/cart/checkout", r.URL.Path)
		require.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
		_, _ = io.WriteString(w, `{"ok":false,"message":"store closed"}`)
	})

	resp, err := client.Checkout(context.Background(), CheckoutRequest{PickupDate: "2024-06-01T10:00:00"}, WithIdempotencyKey("key-1"))
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, "store closed", resp.Message)
}

func TestErrors_MapProblemDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		if r.Method == http.MethodPut {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"title":"Resource Not Found","status":404,"detail":"appointment 9 not found"}`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"message":"upstream down"}`)
	})

	_, err := client.UpdateAppointment(context.Background(), 9, AppointmentPayload{})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsClientError(err))
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.Contains(t, err.Error(), "appointment 9 not found")

	_, err = client.ListPets(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithBreakerSettings(gobreaker.Settings{
		Name:    "test",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	}))

	for i := 0; i < 2; i++ {
		_, err := client.ListServices(context.Background())
		require.ErrorIs(t, err, ErrUnavailable)
	}
	_, err := client.ListServices(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}, WithBreakerSettings(gobreaker.Settings{
		Name: "test",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	}))

	for i := 0; i < 3; i++ {
		_, err := client.ListPets(context.Background())
		require.True(t, IsClientError(err))
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestBreaker_IgnoresAbandonedCalls(t *testing.T) {
	var slow atomic.Bool
	slow.Store(true)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if slow.Load() {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":3,"name":"Rex"}]`)
	}, WithBreakerSettings(gobreaker.Settings{
		Name:    "test",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	}))

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		_, err := client.ListPets(ctx)
		cancel()
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, errors.Is(err, ErrUnavailable))
	}

	slow.Store(false)
	pets, err := client.ListPets(context.Background())
	require.NoError(t, err)
	require.Len(t, pets, 1)
}
