//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/petcare-portal/internal/clients/http/petcare"
	pacttest "github.com/Apurer/petcare-portal/test/pact"
)

func TestPetcareBackendContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.PortalName,
		Provider: pacttest.BackendName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json", "application\\/json(?:;\\s?charset=utf-8)?")
	employeeID := pacttest.EmployeeID
	appointmentBody := matchers.Map{
		"petId":         matchers.Like(pacttest.PetID),
		"serviceId":     matchers.Like(pacttest.GroomingServiceID),
		"assignedToId":  matchers.Like(employeeID),
		"startDateTime": matchers.Term(pacttest.ExampleStartDateTime, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`),
		"note":          matchers.Like(""),
	}
	appointmentResponse := matchers.Map{
		"id":            matchers.Like(int64(55)),
		"petId":         matchers.Like(pacttest.PetID),
		"serviceId":     matchers.Like(pacttest.GroomingServiceID),
		"assignedToId":  matchers.Like(employeeID),
		"startDateTime": matchers.Term(pacttest.ExampleStartDateTime, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`),
		"note":          matchers.Like(""),
	}

	pact.AddInteraction().
		Given(pacttest.StateReferenceData).
		UponReceiving("a request for pets").
		WithRequest(http.MethodGet, "/api/pets").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Map{
				"id":   matchers.Like(pacttest.PetID),
				"name": matchers.Like("Rex"),
			}, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateReferenceData).
		UponReceiving("a request for services").
		WithRequest(http.MethodGet, "/api/services").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Map{
				"id":                   matchers.Like(pacttest.GroomingServiceID),
				"name":                 matchers.Like("Grooming"),
				"requiresVeterinarian": matchers.Like(false),
			}, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateReferenceData).
		UponReceiving("a request for staff accounts").
		WithRequest(http.MethodGet, "/api/admin/users").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(matchers.Map{
				"id":        matchers.Like(employeeID),
				"firstName": matchers.Like("Ana"),
				"lastName":  matchers.Like("Silva"),
				"role":      matchers.Term("EMPLOYEE", "^(VETERINARIAN|EMPLOYEE|ADMIN|CUSTOMER)$"),
			}, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateReferenceData).
		UponReceiving("a request to create a grooming appointment").
		WithRequest(http.MethodPost, "/api/appointments", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(appointmentBody)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(appointmentResponse)
		})

	pact.AddInteraction().
		Given(pacttest.StateAppointmentExists).
		UponReceiving("a request to update an appointment").
		WithRequest(http.MethodPut, fmt.Sprintf("/api/appointments/%d", pacttest.ExistingAppointmentID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(appointmentBody)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":            matchers.Like(pacttest.ExistingAppointmentID),
				"petId":         matchers.Like(pacttest.PetID),
				"serviceId":     matchers.Like(pacttest.GroomingServiceID),
				"assignedToId":  matchers.Like(employeeID),
				"startDateTime": matchers.Term(pacttest.ExampleStartDateTime, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`),
				"note":          matchers.Like(""),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateStoreOpen).
		UponReceiving("a checkout the store accepts").
		WithRequest(http.MethodPost, "/api/cart/checkout", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Idempotency-Key", matchers.Like("order-1"))
			b.JSONBody(matchers.Map{
				"pickupDate": matchers.S("2024-06-01T10:00:00"),
				"items": matchers.EachLike(matchers.Map{
					"productId": matchers.Like("kibble-2kg"),
					"quantity":  matchers.Like(2),
				}, 1),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{"ok": true})
		})

	pact.AddInteraction().
		Given(pacttest.StateStoreClosed).
		UponReceiving("a checkout the store rejects").
		WithRequest(http.MethodPost, "/api/cart/checkout", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"pickupDate": matchers.S("2024-12-25T10:00:00"),
				"items": matchers.EachLike(matchers.Map{
					"productId": matchers.Like("kibble-2kg"),
					"quantity":  matchers.Like(2),
				}, 1),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"ok":      false,
				"message": matchers.Like(pacttest.ExampleRejectionReason),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		host := config.Host
		if host == "" {
			host = "localhost"
		}
		client, err := petcare.NewClient(fmt.Sprintf("http://%s:%d", host, config.Port))
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := client.ListPets(ctx); err != nil {
			return fmt.Errorf("list pets: %w", err)
		}
		if _, err := client.ListServices(ctx); err != nil {
			return fmt.Errorf("list services: %w", err)
		}
		users, err := client.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if len(users) == 0 || users[0].DisplayName() == "" {
			return fmt.Errorf("expected a named staff member, got %+v", users)
		}

		payload := petcare.AppointmentPayload{
			PetID:         pacttest.PetID,
			ServiceID:     pacttest.GroomingServiceID,
			AssignedToID:  &employeeID,
			StartDateTime: pacttest.ExampleStartDateTime,
			Note:          "",
		}
		created, err := client.CreateAppointment(ctx, payload)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		if created.ID == 0 {
			return fmt.Errorf("expected created appointment id")
		}
		updated, err := client.UpdateAppointment(ctx, pacttest.ExistingAppointmentID, payload)
		if err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		if updated.ID != pacttest.ExistingAppointmentID {
			return fmt.Errorf("expected appointment %d, got %d", pacttest.ExistingAppointmentID, updated.ID)
		}

		items := []petcare.CheckoutItem{{ProductID: "kibble-2kg", Quantity: 2}}
		accepted, err := client.Checkout(ctx, petcare.CheckoutRequest{PickupDate: "2024-06-01T10:00:00", Items: items}, petcare.WithIdempotencyKey("order-1"))
		if err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		if !accepted.OK {
			return fmt.Errorf("expected accepted checkout")
		}
		rejected, err := client.Checkout(ctx, petcare.CheckoutRequest{PickupDate: "2024-12-25T10:00:00", Items: items})
		if err != nil {
			return fmt.Errorf("rejected checkout: %w", err)
		}
		if rejected.OK || rejected.Message == "" {
			return fmt.Errorf("expected a rejection with a reason, got %+v", rejected)
		}
		return nil
	})
	require.NoError(t, err)
}
