package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/edupay/tuitionhub/db/models"
	"github.com/edupay/tuitionhub/lib/responses"
	"github.com/edupay/tuitionhub/lib/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// SnapshotController : Debt snapshot controller struct
type SnapshotController struct {
	svc *service.LedgerService
}

func NewSnapshotController(svc *service.LedgerService) *SnapshotController {
	return &SnapshotController{svc: svc}
}

type DebtSnapshot struct {
	ID           int64           `json:"id"`
	SnapshotDate string          `json:"snapshot_date"`
	StudentID    int64           `json:"student_id"`
	TotalDebt    decimal.Decimal `json:"total_debt"`
	OverdueDebt  decimal.Decimal `json:"overdue_debt"`
	OverdueDays  int             `json:"overdue_days"`
}

type CreateDailySnapshotsResponseBody struct {
	Date      string `json:"date"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

type GetSnapshotsResponseBody struct {
	Snapshots []DebtSnapshot `json:"snapshots"`
}

// CreateDailySnapshots godoc
// @Summary      Run the debt snapshot batch
// @Description  Snapshots every student with outstanding debt for the given date. Idempotent.
// @Produce      json
// @Tags         Snapshot
// @Param        date  query  string  false  "Snapshot date (YYYY-MM-DD), default today"
// @Success      200  {object}  CreateDailySnapshotsResponseBody
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /snapshots/daily [post]
func (controller *SnapshotController) CreateDailySnapshots(c echo.Context) error {
	date := time.Now()
	if c.QueryParams().Has("date") {
		parsed, err := time.Parse("2006-01-02", c.QueryParam("date"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		date = parsed
	}

	c.Logger().Infof("Running daily debt snapshots: date:%s", date.Format("2006-01-02"))

	result, err := controller.svc.CreateDailySnapshots(c.Request().Context(), date)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, &CreateDailySnapshotsResponseBody{
		Date:      result.Date.Format("2006-01-02"),
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	})
}

// GetSnapshots godoc
// @Summary      List debt snapshots
// @Description  Returns snapshots filtered by student and/or date
// @Produce      json
// @Tags         Snapshot
// @Param        student_id  query  int     false  "Student id"
// @Param        date        query  string  false  "Snapshot date (YYYY-MM-DD)"
// @Success      200  {object}  GetSnapshotsResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /snapshots [get]
func (controller *SnapshotController) GetSnapshots(c echo.Context) error {
	filter := service.SnapshotFilter{}
	if c.QueryParams().Has("student_id") {
		studentID, err := strconv.ParseInt(c.QueryParam("student_id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		filter.StudentID = studentID
	}
	if c.QueryParams().Has("date") {
		date, err := time.Parse("2006-01-02", c.QueryParam("date"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		filter.Date = date
	}

	snapshots, err := controller.svc.SnapshotsFor(c.Request().Context(), filter)
	if err != nil {
		return writeServiceError(c, err)
	}

	response := GetSnapshotsResponseBody{Snapshots: make([]DebtSnapshot, len(snapshots))}
	for i := range snapshots {
		response.Snapshots[i] = newSnapshotResponse(&snapshots[i])
	}
	return c.JSON(http.StatusOK, &response)
}

func newSnapshotResponse(snapshot *models.DebtSnapshot) DebtSnapshot {
	return DebtSnapshot{
		ID:           snapshot.ID,
		SnapshotDate: snapshot.SnapshotDate.Format("2006-01-02"),
		StudentID:    snapshot.StudentID,
		TotalDebt:    snapshot.TotalDebt,
		OverdueDebt:  snapshot.OverdueDebt,
		OverdueDays:  snapshot.OverdueDays,
	}
}
