package portalserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appointmenthttpmapper "github.com/Apurer/petcare-portal/internal/domains/appointments/adapters/http/mapper"
	appointmentports "github.com/Apurer/petcare-portal/internal/domains/appointments/ports"
	"github.com/Apurer/petcare-portal/internal/shared/datetime"
)

// AppointmentAPI wires HTTP transport with the appointment form use cases.
type AppointmentAPI struct {
	service   appointmentports.Service
	formatter datetime.Formatter
}

func NewAppointmentAPI(service appointmentports.Service, formatter datetime.Formatter) AppointmentAPI {
	if formatter == nil {
		formatter = datetime.LocalFormatter
	}
	return AppointmentAPI{service: service, formatter: formatter}
}

// Get /v1/appointment-form
// Returns pets, services and the staff pools the form picks from.
func (api *AppointmentAPI) GetForm(c *gin.Context) {
	refs, err := api.service.References(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmenthttpmapper.FromReferences(refs))
}

// Get /v1/appointment-form/assignees?serviceId=
func (api *AppointmentAPI) ListAssignees(c *gin.Context) {
	serviceID, err := strconv.ParseInt(c.Query("serviceId"), 10, 64)
	if err != nil {
		responder.BadRequest(c, "serviceId must be an integer")
		return
	}
	options, err := api.service.AssigneeOptions(c.Request.Context(), serviceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmenthttpmapper.FromAssigneeOptions(options))
}

// Post /v1/appointments
func (api *AppointmentAPI) CreateAppointment(c *gin.Context) {
	var payload appointmenthttpmapper.AppointmentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input, err := appointmenthttpmapper.ToDraftInput(payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	created, err := api.service.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appointmenthttpmapper.FromDomainAppointment(created, api.formatter))
}

// Put /v1/appointments/:id
func (api *AppointmentAPI) UpdateAppointment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload appointmenthttpmapper.AppointmentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input, err := appointmenthttpmapper.ToDraftInput(payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	updated, err := api.service.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointmenthttpmapper.FromDomainAppointment(updated, api.formatter))
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		responder.BadRequest(c, name+" must be an integer")
		return 0, false
	}
	return id, true
}
