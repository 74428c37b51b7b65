// Package portalserver exposes the cart and appointment screens to the mobile app over REST.
package portalserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader correlates a mobile request with portal logs and backend calls.
const RequestIDHeader = "X-Request-ID"

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every screen.
type ApiHandleFunctions struct {
	CartAPI        CartAPI
	AppointmentAPI AppointmentAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	return NewRouterWithGinEngine(router, handleFunctions)
}

// NewRouterWithGinEngine adds the portal routes to an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.Use(requestID())
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", Healthz},
		{"GetCart", http.MethodGet, "/v1/carts/:ownerId", handleFunctions.CartAPI.GetCart},
		{"ClearCart", http.MethodDelete, "/v1/carts/:ownerId", handleFunctions.CartAPI.ClearCart},
		{"AddCartItem", http.MethodPost, "/v1/carts/:ownerId/items", handleFunctions.CartAPI.AddItem},
		{"UpdateCartItemQuantity", http.MethodPatch, "/v1/carts/:ownerId/items/:productId", handleFunctions.CartAPI.UpdateQuantity},
		{"RemoveCartItem", http.MethodDelete, "/v1/carts/:ownerId/items/:productId", handleFunctions.CartAPI.RemoveItem},
		{"IncrementCartItem", http.MethodPost, "/v1/carts/:ownerId/items/:productId/increment", handleFunctions.CartAPI.Increment},
		{"DecrementCartItem", http.MethodPost, "/v1/carts/:ownerId/items/:productId/decrement", handleFunctions.CartAPI.Decrement},
		{"CheckoutCart", http.MethodPost, "/v1/carts/:ownerId/checkout", handleFunctions.CartAPI.Checkout},
		{"GetAppointmentForm", http.MethodGet, "/v1/appointment-form", handleFunctions.AppointmentAPI.GetForm},
		{"ListAssignees", http.MethodGet, "/v1/appointment-form/assignees", handleFunctions.AppointmentAPI.ListAssignees},
		{"CreateAppointment", http.MethodPost, "/v1/appointments", handleFunctions.AppointmentAPI.CreateAppointment},
		{"UpdateAppointment", http.MethodPut, "/v1/appointments/:id", handleFunctions.AppointmentAPI.UpdateAppointment},
	}
}
