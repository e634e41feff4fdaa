package controllers

import (
	"net/http"

	"github.com/edupay/tuitionhub/lib/service"
	"github.com/labstack/echo/v4"
)

// DebtorController : Debtor report controller struct
type DebtorController struct {
	svc *service.LedgerService
}

func NewDebtorController(svc *service.LedgerService) *DebtorController {
	return &DebtorController{svc: svc}
}

type GetDebtorsResponseBody struct {
	Debtors []service.DebtorRow `json:"debtors"`
}

// GetDebtors godoc
// @Summary      List debtor students
// @Description  Returns students with outstanding debt ranked by total debt descending
// @Produce      json
// @Tags         Debtor
// @Success      200  {object}  GetDebtorsResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /debtors [get]
func (controller *DebtorController) GetDebtors(c echo.Context) error {
	debtors, err := controller.svc.Debtors(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, &GetDebtorsResponseBody{Debtors: debtors})
}
