package controllers

import (
	"net/http"

	"github.com/edupay/tuitionhub/lib/service"
	"github.com/labstack/echo/v4"
)

type HealthController struct {
	svc *service.LedgerService
}

func NewHealthController(svc *service.LedgerService) *HealthController {
	return &HealthController{svc: svc}
}

type HealthResponse struct {
	Result string `json:"result"`
}

// Health godoc
// @Summary      Check system health
// @Description  Check system health
// @Produce      json
// @Tags         Health
// @Success      200  {object}  HealthResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /health [get]
func (controller *HealthController) Health(c echo.Context) error {
	if err := controller.svc.DB.PingContext(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &HealthResponse{
		Result: "OK",
	})
}
