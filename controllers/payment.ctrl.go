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

// PaymentController : Payment management controller struct
type PaymentController struct {
	svc *service.LedgerService
}

func NewPaymentController(svc *service.LedgerService) *PaymentController {
	return &PaymentController{svc: svc}
}

type Payment struct {
	ID            int64           `json:"id"`
	InvoiceID     int64           `json:"invoice_id"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaidAt        time.Time       `json:"paid_at"`
	Method        string          `json:"method"`
	Note          string          `json:"note,omitempty"`
	ReceiptNumber string          `json:"receipt_number"`
}

func newPaymentResponse(payment *models.Payment) Payment {
	return Payment{
		ID:            payment.ID,
		InvoiceID:     payment.InvoiceID,
		PaidAmount:    payment.PaidAmount,
		PaidAt:        payment.PaidAt,
		Method:        payment.Method,
		Note:          payment.Note,
		ReceiptNumber: payment.ReceiptNumber,
	}
}

type AddPaymentRequestBody struct {
	PaidAmount    decimal.Decimal `json:"paid_amount" validate:"required"`
	Method        string          `json:"method" validate:"required,oneof=cash card transfer online"`
	Note          string          `json:"note"`
	ReceiptNumber string          `json:"receipt_number"`
}

type GetPaymentsResponseBody struct {
	Payments []Payment `json:"payments"`
}

// AddPayment godoc
// @Summary      Record a payment
// @Description  Applies a payment against an invoice, rejecting over-payment
// @Accept       json
// @Produce      json
// @Tags         Payment
// @Param        id       path      int                    true  "Invoice id"
// @Param        payment  body      AddPaymentRequestBody  True  "Add Payment"
// @Success      200      {object}  Payment
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      409      {object}  responses.ErrorResponse
// @Router       /invoices/{id}/payments [post]
func (controller *PaymentController) AddPayment(c echo.Context) error {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	var body AddPaymentRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load add payment request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid add payment request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	c.Logger().Infof("Adding payment: invoice_id:%v amount:%s method:%s",
		invoiceID, body.PaidAmount, body.Method)

	payment, err := controller.svc.AddPayment(c.Request().Context(), service.AddPaymentParams{
		InvoiceID:     invoiceID,
		PaidAmount:    body.PaidAmount,
		Method:        body.Method,
		Note:          body.Note,
		ReceiptNumber: body.ReceiptNumber,
	})
	if err != nil {
		c.Logger().Errorf("Error adding payment: invoice_id:%v error: %v", invoiceID, err)
		return writeServiceError(c, err)
	}

	response := newPaymentResponse(payment)
	return c.JSON(http.StatusOK, &response)
}

// GetPayments godoc
// @Summary      List payments for an invoice
// @Description  Returns the active payments applied against an invoice
// @Produce      json
// @Tags         Payment
// @Param        id  path  int  true  "Invoice id"
// @Success      200  {object}  GetPaymentsResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /invoices/{id}/payments [get]
func (controller *PaymentController) GetPayments(c echo.Context) error {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	payments, err := controller.svc.PaymentsFor(c.Request().Context(), invoiceID)
	if err != nil {
		return writeServiceError(c, err)
	}

	response := GetPaymentsResponseBody{Payments: make([]Payment, len(payments))}
	for i := range payments {
		response.Payments[i] = newPaymentResponse(&payments[i])
	}
	return c.JSON(http.StatusOK, &response)
}

// DeletePayment godoc
// @Summary      Delete a payment
// @Description  Soft-deletes a payment and re-derives the invoice status
// @Produce      json
// @Tags         Payment
// @Param        id  path  int  true  "Payment id"
// @Success      204
// @Failure      404  {object}  responses.ErrorResponse
// @Failure      409  {object}  responses.ErrorResponse
// @Router       /payments/{id} [delete]
func (controller *PaymentController) DeletePayment(c echo.Context) error {
	paymentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	c.Logger().Infof("Deleting payment: payment_id:%v", paymentID)

	if err := controller.svc.DeletePayment(c.Request().Context(), paymentID); err != nil {
		c.Logger().Errorf("Error deleting payment: payment_id:%v error: %v", paymentID, err)
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
