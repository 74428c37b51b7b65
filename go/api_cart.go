package portalserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	carthttpmapper "github.com/Apurer/petcare-portal/internal/domains/cart/adapters/http/mapper"
	carttypes "github.com/Apurer/petcare-portal/internal/domains/cart/application/types"
	cartdomain "github.com/Apurer/petcare-portal/internal/domains/cart/domain"
	cartports "github.com/Apurer/petcare-portal/internal/domains/cart/ports"
	"github.com/Apurer/petcare-portal/internal/shared/datetime"
)

// IdempotencyKeyHeader lets the mobile app retry a checkout without ordering twice.
const IdempotencyKeyHeader = "Idempotency-Key"

// CartAPI wires HTTP transport with the cart service and checkout orchestration.
type CartAPI struct {
	service   cartports.Service
	workflows cartports.CheckoutOrchestrator
	formatter datetime.Formatter
}

// NewCartAPI creates a CartAPI. A nil orchestrator checks out through the service directly.
func NewCartAPI(service cartports.Service, workflows cartports.CheckoutOrchestrator, formatter datetime.Formatter) CartAPI {
	if formatter == nil {
		formatter = datetime.LocalFormatter
	}
	return CartAPI{service: service, workflows: workflows, formatter: formatter}
}

// Get /v1/carts/:ownerId
func (api *CartAPI) GetCart(c *gin.Context) {
	cart, err := api.service.GetCart(c.Request.Context(), c.Param("ownerId"))
	api.respondCart(c, cart, err)
}

// Delete /v1/carts/:ownerId
func (api *CartAPI) ClearCart(c *gin.Context) {
	if err := api.service.Clear(c.Request.Context(), c.Param("ownerId")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /v1/carts/:ownerId/items
func (api *CartAPI) AddItem(c *gin.Context) {
	var payload carthttpmapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	cart, err := api.service.AddItem(c.Request.Context(), carthttpmapper.ToAddItemInput(c.Param("ownerId"), payload))
	api.respondCart(c, cart, err)
}

// Patch /v1/carts/:ownerId/items/:productId
// A quantity of zero removes the line.
func (api *CartAPI) UpdateQuantity(c *gin.Context) {
	var payload carthttpmapper.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input := carttypes.UpdateQuantityInput{ItemIdentifier: itemIdentifier(c), Quantity: *payload.Quantity}
	cart, err := api.service.UpdateQuantity(c.Request.Context(), input)
	api.respondCart(c, cart, err)
}

// Delete /v1/carts/:ownerId/items/:productId
func (api *CartAPI) RemoveItem(c *gin.Context) {
	cart, err := api.service.RemoveItem(c.Request.Context(), itemIdentifier(c))
	api.respondCart(c, cart, err)
}

// Post /v1/carts/:ownerId/items/:productId/increment
func (api *CartAPI) Increment(c *gin.Context) {
	cart, err := api.service.Increment(c.Request.Context(), itemIdentifier(c))
	api.respondCart(c, cart, err)
}

// Post /v1/carts/:ownerId/items/:productId/decrement
func (api *CartAPI) Decrement(c *gin.Context) {
	cart, err := api.service.Decrement(c.Request.Context(), itemIdentifier(c))
	api.respondCart(c, cart, err)
}

// Post /v1/carts/:ownerId/checkout
// The body is optional; without a pickup date the order is for now. A chunked
// request may announce a body and send none, so io.EOF also means no body.
func (api *CartAPI) Checkout(c *gin.Context) {
	var payload carthttpmapper.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
			respondBindError(c, err)
			return
		}
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	input, err := carthttpmapper.ToCheckoutInput(c.Param("ownerId"), key, payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var confirmation *carttypes.CheckoutConfirmation
	if api.workflows != nil {
		confirmation, err = api.workflows.Checkout(c.Request.Context(), input)
	} else {
		confirmation, err = api.service.Checkout(c.Request.Context(), input)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromConfirmation(confirmation, api.formatter))
}

func (api *CartAPI) respondCart(c *gin.Context, cart *cartdomain.Cart, err error) {
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainCart(cart))
}

func itemIdentifier(c *gin.Context) carttypes.ItemIdentifier {
	return carttypes.ItemIdentifier{OwnerID: c.Param("ownerId"), ProductID: c.Param("productId")}
}
