package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/edupay/tuitionhub/db/models"
	"github.com/edupay/tuitionhub/lib/responses"
	"github.com/edupay/tuitionhub/lib/service"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// InvoiceController : Invoice management controller struct
type InvoiceController struct {
	svc *service.LedgerService
}

func NewInvoiceController(svc *service.LedgerService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

type Invoice struct {
	ID              int64           `json:"id"`
	StudentID       int64           `json:"student_id"`
	GroupID         int64           `json:"group_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	DueDate         string          `json:"due_date"`
	Status          string          `json:"status"`
	IssuedAt        time.Time       `json:"issued_at"`
	Description     string          `json:"description,omitempty"`
	IsOverdue       bool            `json:"is_overdue"`
	DaysOverdue     int             `json:"days_overdue"`
	Payments        []Payment       `json:"payments,omitempty"`
}

func newInvoiceResponse(invoice *models.Invoice) Invoice {
	today := time.Now()
	response := Invoice{
		ID:              invoice.ID,
		StudentID:       invoice.StudentID,
		GroupID:         invoice.GroupID,
		Amount:          invoice.Amount,
		DiscountAmount:  invoice.DiscountAmount,
		FinalAmount:     invoice.FinalAmount(),
		PaidAmount:      invoice.PaidAmount(),
		RemainingAmount: invoice.RemainingAmount(),
		DueDate:         invoice.DueDate.Format("2006-01-02"),
		Status:          invoice.Status,
		IssuedAt:        invoice.IssuedAt,
		Description:     invoice.Description,
		IsOverdue:       invoice.IsOverdue(today),
		DaysOverdue:     invoice.DaysOverdue(today),
	}
	for i := range invoice.Payments {
		response.Payments = append(response.Payments, newPaymentResponse(&invoice.Payments[i]))
	}
	return response
}

type CreateInvoiceRequestBody struct {
	StudentID      int64           `json:"student_id" validate:"required"`
	GroupID        int64           `json:"group_id"`
	Amount         decimal.Decimal `json:"amount" validate:"required"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DueDate        string          `json:"due_date" validate:"required,datetime=2006-01-02"`
	Description    string          `json:"description"`
}

type GetInvoicesResponseBody struct {
	Invoices []Invoice `json:"invoices"`
}

// CreateInvoice godoc
// @Summary      Create a new invoice
// @Description  Creates a billable obligation for a student
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        invoice  body      CreateInvoiceRequestBody  True  "Create Invoice"
// @Success      200      {object}  Invoice
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      500      {object}  responses.ErrorResponse
// @Router       /invoices [post]
func (controller *InvoiceController) CreateInvoice(c echo.Context) error {
	var body CreateInvoiceRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create invoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid create invoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	dueDate, err := time.Parse("2006-01-02", body.DueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	c.Logger().Infof("Creating invoice: student_id:%v amount:%s due_date:%s",
		body.StudentID, body.Amount, body.DueDate)

	invoice, err := controller.svc.CreateInvoice(c.Request().Context(), service.CreateInvoiceParams{
		StudentID:      body.StudentID,
		GroupID:        body.GroupID,
		Amount:         body.Amount,
		DiscountAmount: body.DiscountAmount,
		DueDate:        dueDate,
		Description:    body.Description,
	})
	if err != nil {
		c.Logger().Errorf("Error creating invoice: student_id:%v error: %v", body.StudentID, err)
		return writeServiceError(c, err)
	}

	response := newInvoiceResponse(invoice)
	return c.JSON(http.StatusOK, &response)
}

// GetInvoices godoc
// @Summary      List invoices
// @Description  Returns invoices filtered by student, group or status
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        student_id  query     int     false  "Student id"
// @Param        group_id    query     int     false  "Group id"
// @Param        status      query     string  false  "Invoice status"
// @Success      200  {object}  GetInvoicesResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /invoices [get]
func (controller *InvoiceController) GetInvoices(c echo.Context) error {
	filter := service.InvoiceFilter{Limit: 100}
	if c.QueryParams().Has("student_id") {
		studentID, err := strconv.ParseInt(c.QueryParam("student_id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		filter.StudentID = studentID
	}
	if c.QueryParams().Has("group_id") {
		groupID, err := strconv.ParseInt(c.QueryParam("group_id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		filter.GroupID = groupID
	}
	if c.QueryParams().Has("status") {
		filter.Statuses = []string{c.QueryParam("status")}
	}

	invoices, err := controller.svc.InvoicesFor(c.Request().Context(), filter)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, newInvoiceListResponse(invoices))
}

// GetPendingInvoices godoc
// @Summary      List unsettled invoices
// @Description  Returns invoices still awaiting full settlement
// @Produce      json
// @Tags         Invoice
// @Success      200  {object}  GetInvoicesResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /invoices/pending [get]
func (controller *InvoiceController) GetPendingInvoices(c echo.Context) error {
	invoices, err := controller.svc.PendingInvoices(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, newInvoiceListResponse(invoices))
}

// GetOverdueInvoices godoc
// @Summary      List overdue invoices
// @Description  Returns unsettled invoices past their due date
// @Produce      json
// @Tags         Invoice
// @Success      200  {object}  GetInvoicesResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /invoices/overdue [get]
func (controller *InvoiceController) GetOverdueInvoices(c echo.Context) error {
	invoices, err := controller.svc.OverdueInvoices(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, newInvoiceListResponse(invoices))
}

// GetStatistics godoc
// @Summary      Invoice statistics
// @Description  Returns aggregate counts and amounts for the invoice book
// @Produce      json
// @Tags         Invoice
// @Success      200  {object}  service.InvoiceStatistics
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /invoices/statistics [get]
func (controller *InvoiceController) GetStatistics(c echo.Context) error {
	stats, err := controller.svc.Statistics(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// GetInvoice godoc
// @Summary      Get a specific invoice
// @Description  Retrieve an invoice with its payments and computed amounts
// @Produce      json
// @Tags         Invoice
// @Param        id  path  int  true  "Invoice id"
// @Success      200  {object}  Invoice
// @Failure      404  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /invoices/{id} [get]
func (controller *InvoiceController) GetInvoice(c echo.Context) error {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoice, err := controller.svc.FindInvoice(c.Request().Context(), invoiceID)
	if err != nil {
		return writeServiceError(c, err)
	}
	response := newInvoiceResponse(invoice)
	return c.JSON(http.StatusOK, &response)
}

type UpdateInvoiceRequestBody struct {
	GroupID     int64  `json:"group_id"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Description string `json:"description"`
}

// UpdateInvoice godoc
// @Summary      Update an invoice
// @Description  Updates due date, description or group. Amounts are immutable.
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        id       path      int                       true  "Invoice id"
// @Param        invoice  body      UpdateInvoiceRequestBody  True  "Update Invoice"
// @Success      200      {object}  Invoice
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Router       /invoices/{id} [put]
func (controller *InvoiceController) UpdateInvoice(c echo.Context) error {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	var body UpdateInvoiceRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	params := service.UpdateInvoiceParams{
		GroupID:     body.GroupID,
		Description: body.Description,
	}
	if body.DueDate != "" {
		dueDate, err := time.Parse("2006-01-02", body.DueDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
		}
		params.DueDate = dueDate
	}

	invoice, err := controller.svc.UpdateInvoice(c.Request().Context(), invoiceID, params)
	if err != nil {
		return writeServiceError(c, err)
	}
	response := newInvoiceResponse(invoice)
	return c.JSON(http.StatusOK, &response)
}

// CancelInvoice godoc
// @Summary      Cancel an invoice
// @Description  Puts the invoice in its terminal cancelled status
// @Produce      json
// @Tags         Invoice
// @Param        id  path  int  true  "Invoice id"
// @Success      200  {object}  Invoice
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /invoices/{id}/cancel [post]
func (controller *InvoiceController) CancelInvoice(c echo.Context) error {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	invoice, err := controller.svc.CancelInvoice(c.Request().Context(), invoiceID)
	if err != nil {
		c.Logger().Errorf("Error cancelling invoice: invoice_id:%v error: %v", invoiceID, err)
		sentry.CaptureException(err)
		return writeServiceError(c, err)
	}
	response := newInvoiceResponse(invoice)
	return c.JSON(http.StatusOK, &response)
}

// DeleteInvoice godoc
// @Summary      Delete an invoice
// @Description  Soft-deletes the invoice, payments are kept for audit
// @Produce      json
// @Tags         Invoice
// @Param        id  path  int  true  "Invoice id"
// @Success      204
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /invoices/{id} [delete]
func (controller *InvoiceController) DeleteInvoice(c echo.Context) error {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := controller.svc.DeleteInvoice(c.Request().Context(), invoiceID); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func newInvoiceListResponse(invoices []models.Invoice) *GetInvoicesResponseBody {
	response := GetInvoicesResponseBody{Invoices: make([]Invoice, len(invoices))}
	for i := range invoices {
		response.Invoices[i] = newInvoiceResponse(&invoices[i])
	}
	return &response
}
