//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// The portal sits between two contracts: the mobile app consumes the portal API,
// and the portal consumes the pet-care backend.
const (
	MobileConsumerName = "petcare-mobile"
	PortalName         = "petcare-portal"
	BackendName        = "petcare-backend"
)

// Backend provider states.
const (
	StateReferenceData     = "pets, services and staff exist"
	StateAppointmentExists = "appointment 42 exists"
	StateStoreOpen         = "the store accepts pickups"
	StateStoreClosed       = "the store rejects pickups"
)

// Portal provider states.
const (
	StateCartWithTwoLines = "cart pact-owner holds two lines"
	StateCartEmpty        = "cart pact-owner is empty"
	StateCartRejected     = "cart pact-owner holds two lines and the store rejects pickups"
)

const (
	CartOwnerID                  = "pact-owner"
	ExistingAppointmentID  int64 = 42
	GroomingServiceID      int64 = 2
	SurgeryServiceID       int64 = 1
	EmployeeID             int64 = 7
	VeterinarianID         int64 = 5
	PetID                  int64 = 3
	ExampleStartDateTime         = "2024-06-01T10:00:00"
	ExampleRejectionReason       = "The store is closed on that day."
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file path for one consumer/provider pair.
func PactFile(t testing.TB, consumer, provider string) string {
	t.Helper()
	return filepath.Join(PactDir(t), consumer+"-"+provider+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleCartLines seeds the two-line cart used by the mobile contract.
func ExampleCartLines() []map[string]any {
	return []map[string]any{
		{"productId": "kibble-2kg", "name": "Kibble 2kg", "price": "10", "quantity": 2},
		{"productId": "shampoo", "name": "Oat Shampoo", "price": "5", "quantity": 1},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
