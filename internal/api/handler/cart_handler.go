package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/afripulse/storefront-session/internal/api/metrics"
	"github.com/afripulse/storefront-session/internal/api/middleware"
	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

// CartHandler exposes the device's cart. Guest and member carts share the
// same endpoints; the cart engine picks the store from the identity.
type CartHandler struct {
	identity ports.IdentityService
	cart     ports.CartService
}

func NewCartHandler(identity ports.IdentityService, cart ports.CartService) *CartHandler {
	return &CartHandler{identity: identity, cart: cart}
}

// Get handles GET /v1/cart.
//
// @Summary      Get the cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  cartResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	return h.run(c, "sync", func(session *domain.Session) (domain.CartState, error) {
		return h.cart.Sync(c.Request().Context(), middleware.DeviceID(c), session)
	})
}

// AddItem handles POST /v1/cart/items.
//
// @Summary      Add a product to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      addItemRequest  true  "Line to add"
// @Success      200   {object}  cartResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/cart/items [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item := domain.CartItem{
		ProductID:   req.ProductID,
		Name:        req.Name,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Image:       req.Image,
		AffiliateID: req.AffiliateID,
	}
	return h.run(c, "add", func(session *domain.Session) (domain.CartState, error) {
		return h.cart.AddItem(c.Request().Context(), middleware.DeviceID(c), session, item)
	})
}

// UpdateQuantity handles PATCH /v1/cart/items/:product_id.
//
// @Summary      Set the quantity of a cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        product_id  path      string                 true  "Product id"
// @Param        body        body      updateQuantityRequest  true  "New quantity"
// @Success      200         {object}  cartResponse
// @Failure      400         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Failure      502         {object}  errorResponse
// @Router       /v1/cart/items/{product_id} [patch]
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	productID := c.Param("product_id")
	return h.run(c, "update", func(session *domain.Session) (domain.CartState, error) {
		return h.cart.UpdateQuantity(c.Request().Context(), middleware.DeviceID(c), session, productID, req.Quantity)
	})
}

// RemoveItem handles DELETE /v1/cart/items/:product_id.
//
// @Summary      Remove a product from the cart
// @Tags         cart
// @Produce      json
// @Param        product_id  path      string  true  "Product id"
// @Success      200         {object}  cartResponse
// @Failure      502         {object}  errorResponse
// @Router       /v1/cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	productID := c.Param("product_id")
	return h.run(c, "remove", func(session *domain.Session) (domain.CartState, error) {
		return h.cart.RemoveItem(c.Request().Context(), middleware.DeviceID(c), session, productID)
	})
}

// Clear handles DELETE /v1/cart.
//
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  cartResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/cart [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	return h.run(c, "clear", func(session *domain.Session) (domain.CartState, error) {
		return h.cart.Clear(c.Request().Context(), middleware.DeviceID(c), session)
	})
}

// run resolves the caller's session, applies op and records the outcome.
func (h *CartHandler) run(c echo.Context, op string, apply func(*domain.Session) (domain.CartState, error)) error {
	session, err := currentSession(c, h.identity)
	if err != nil {
		return err
	}

	mode := "guest"
	if session.Valid() {
		mode = "member"
	}

	state, err := apply(session)
	if err != nil {
		metrics.CartMutationsTotal.WithLabelValues(op, mode, "error").Inc()
		return err
	}
	metrics.CartMutationsTotal.WithLabelValues(op, mode, "ok").Inc()

	return c.JSON(http.StatusOK, newCartResponse(state))
}
