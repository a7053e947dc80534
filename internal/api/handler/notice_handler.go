package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/afripulse/storefront-session/internal/api/metrics"
	"github.com/afripulse/storefront-session/internal/api/middleware"
	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

// NoticeHandler hands pending notices to the device. Each notice is
// delivered once.
type NoticeHandler struct {
	notices ports.NoticeStore
}

func NewNoticeHandler(notices ports.NoticeStore) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

// Drain handles GET /v1/notices.
//
// @Summary      Take pending notices
// @Tags         notices
// @Produce      json
// @Success      200  {object}  noticesResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/notices [get]
func (h *NoticeHandler) Drain(c echo.Context) error {
	notices, err := h.notices.Drain(c.Request().Context(), middleware.DeviceID(c))
	if err != nil {
		return err
	}
	if notices == nil {
		notices = []domain.Notice{}
	}
	metrics.NoticesDrainedTotal.Add(float64(len(notices)))

	return c.JSON(http.StatusOK, noticesResponse{Notices: notices})
}
