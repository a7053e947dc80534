package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/afripulse/storefront-session/internal/api/middleware"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

type AffiliateHandler struct {
	identity ports.IdentityService
	tracker  ports.AffiliateService
}

func NewAffiliateHandler(identity ports.IdentityService, tracker ports.AffiliateService) *AffiliateHandler {
	return &AffiliateHandler{identity: identity, tracker: tracker}
}

// Track handles POST /v1/affiliate/track.
//
// @Summary      Record an affiliate link visit
// @Description  Repeat visits with the same code from one device are counted once per hour.
// @Tags         affiliate
// @Accept       json
// @Produce      json
// @Param        body  body      trackRequest  true  "Affiliate code from the link"
// @Success      200   {object}  trackResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/affiliate/track [post]
func (h *AffiliateHandler) Track(c echo.Context) error {
	var req trackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := currentSession(c, h.identity)
	if err != nil {
		return err
	}

	productID, err := h.tracker.Track(c.Request().Context(), middleware.DeviceID(c), session, req.Code)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, trackResponse{ProductID: productID})
}
