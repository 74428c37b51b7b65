package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/Apurer/petcare-portal/internal/domains/appointments/domain"
	"github.com/Apurer/petcare-portal/internal/shared/datetime"
)

type formFeature struct {
	directory *fakeDirectory
	gateway   *fakeGateway
	form      *Form
	err       error
}

func (f *formFeature) reset() {
	f.directory = &fakeDirectory{}
	f.gateway = newFakeGateway()
	f.form = nil
	f.err = nil
}

func (f *formFeature) theServices(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		requiresVet, err := strconv.ParseBool(row.Cells[2].Value)
		if err != nil {
			return err
		}
		f.directory.services = append(f.directory.services, domain.Service{ID: id, Name: row.Cells[1].Value, RequiresVeterinarian: requiresVet})
	}
	return nil
}

func (f *formFeature) theStaff(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		f.directory.staff = append(f.directory.staff, domain.StaffMember{ID: id, DisplayName: row.Cells[1].Value, Role: domain.ParseRole(row.Cells[2].Value)})
	}
	return nil
}

func (f *formFeature) thePets(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		f.directory.pets = append(f.directory.pets, domain.Pet{ID: id, Name: row.Cells[1].Value})
	}
	return nil
}

func (f *formFeature) theFormIsLoaded() error {
	f.form = NewForm(f.directory, f.gateway, nil)
	return f.form.Load(context.Background())
}

func (f *formFeature) iSelectService(id int64) error {
	return f.form.SelectService(id)
}

func (f *formFeature) iSelectAssignee(id int64) error {
	return f.form.SelectAssignee(id)
}

func (f *formFeature) iSelectPet(id int64) error {
	return f.form.SelectPet(id)
}

func (f *formFeature) iSetTheStartTo(raw string) error {
	start, err := datetime.Parse(raw)
	if err != nil {
		return err
	}
	f.form.SetStart(start)
	return nil
}

func (f *formFeature) iSubmitTheForm() error {
	_, f.err = f.form.Submit(context.Background())
	return nil
}

func (f *formFeature) theAssigneeLabelIs(label string) error {
	if got := f.form.AssigneeLabel(); got != label {
		return fmt.Errorf("expected label %q, got %q", label, got)
	}
	return nil
}

func (f *formFeature) theAssigneeOptionsAre(list string) error {
	var got []string
	for _, member := range f.form.AssigneeOptions() {
		got = append(got, strconv.FormatInt(member.ID, 10))
	}
	if strings.Join(got, ", ") != list {
		return fmt.Errorf("expected assignees %s, got %s", list, strings.Join(got, ", "))
	}
	return nil
}

func (f *formFeature) noAssigneeIsSelected() error {
	if id := f.form.Draft().AssignedToID; id != nil {
		return fmt.Errorf("expected no assignee, got %d", *id)
	}
	return nil
}

func (f *formFeature) aCreateRequestIsSent(petID, serviceID, assigneeID int64, start string) error {
	if f.err != nil {
		return fmt.Errorf("submit failed: %w", f.err)
	}
	if len(f.gateway.created) != 1 {
		return fmt.Errorf("expected one create request, got %d", len(f.gateway.created))
	}
	got := f.gateway.created[0]
	if got.PetID != petID || got.ServiceID != serviceID || got.AssignedToID == nil || *got.AssignedToID != assigneeID {
		return fmt.Errorf("unexpected submission %+v", got)
	}
	if got.StartDateTime != start {
		return fmt.Errorf("expected start %q, got %q", start, got.StartDateTime)
	}
	if got.Note != "" {
		return fmt.Errorf("expected empty note, got %q", got.Note)
	}
	return nil
}

func (f *formFeature) theSubmissionFailsWith(message string) error {
	if f.err == nil {
		return fmt.Errorf("expected submission to fail")
	}
	if got := UserMessage(f.err); got != message {
		return fmt.Errorf("expected message %q, got %q", message, got)
	}
	return nil
}

func (f *formFeature) noRequestIsSent() error {
	if n := f.gateway.calls(); n != 0 {
		return fmt.Errorf("expected no requests, got %d", n)
	}
	return nil
}

func InitializeFormScenario(ctx *godog.ScenarioContext) {
	f := &formFeature{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		f.reset()
		return ctx, nil
	})

	ctx.Step(`^the services$`, f.theServices)
	ctx.Step(`^the staff$`, f.theStaff)
	ctx.Step(`^the pets$`, f.thePets)
	ctx.Step(`^the appointment form is loaded$`, f.theFormIsLoaded)

	ctx.Step(`^I select service (\d+)$`, f.iSelectService)
	ctx.Step(`^I select assignee (\d+)$`, f.iSelectAssignee)
	ctx.Step(`^I select pet (\d+)$`, f.iSelectPet)
	ctx.Step(`^I set the start to "([^"]*)"$`, f.iSetTheStartTo)
	ctx.Step(`^I submit the form$`, f.iSubmitTheForm)

	ctx.Step(`^the assignee label is "([^"]*)"$`, f.theAssigneeLabelIs)
	ctx.Step(`^the assignee options are ([\d, ]+)$`, f.theAssigneeOptionsAre)
	ctx.Step(`^no assignee is selected$`, f.noAssigneeIsSelected)
	ctx.Step(`^a create request is sent with pet (\d+), service (\d+), assignee (\d+) and start "([^"]*)"$`, f.aCreateRequestIsSent)
	ctx.Step(`^the submission fails with "([^"]*)"$`, f.theSubmissionFailsWith)
	ctx.Step(`^no request is sent$`, f.noRequestIsSent)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeFormScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
