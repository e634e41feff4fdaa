package integration_tests

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/edupay/tuitionhub/common"
	"github.com/edupay/tuitionhub/controllers"
	"github.com/edupay/tuitionhub/db/models"
	"github.com/edupay/tuitionhub/lib"
	"github.com/edupay/tuitionhub/lib/responses"
	"github.com/edupay/tuitionhub/lib/service"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PaymentTestSuite struct {
	TestSuite
	service *service.LedgerService
	student *models.User
}

func (suite *PaymentTestSuite) SetupSuite() {
	svc, err := LedgerTestServiceInit()
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	suite.service = svc
	student, err := createStudent(svc, "bob", "+998901234567", "")
	if err != nil {
		log.Fatalf("Error creating test student: %v", err)
	}
	suite.student = student

	e := echo.New()
	e.HTTPErrorHandler = responses.HTTPErrorHandler
	e.Validator = &lib.CustomValidator{Validator: validator.New()}
	suite.echo = e

	invoiceCtrl := controllers.NewInvoiceController(svc)
	paymentCtrl := controllers.NewPaymentController(svc)
	suite.echo.POST("/invoices", invoiceCtrl.CreateInvoice)
	suite.echo.GET("/invoices/:id", invoiceCtrl.GetInvoice)
	suite.echo.POST("/invoices/:id/cancel", invoiceCtrl.CancelInvoice)
	suite.echo.POST("/invoices/:id/payments", paymentCtrl.AddPayment)
	suite.echo.GET("/invoices/:id/payments", paymentCtrl.GetPayments)
	suite.echo.DELETE("/payments/:id", paymentCtrl.DeletePayment)
}

func (suite *PaymentTestSuite) TearDownTest() {
	clearTable(suite.service, "payments")
	clearTable(suite.service, "invoices")
}

func (suite *PaymentTestSuite) TestPartialThenFullSettlement() {
	invoice := suite.createInvoiceReq(suite.student.ID, "500000", "0", dateString(time.Now().AddDate(0, 0, 14)))

	payment := suite.addPaymentReq(invoice.ID, "200000", common.PaymentMethodCash)
	assert.NotEmpty(suite.T(), payment.ReceiptNumber)

	afterPartial := suite.getInvoiceReq(invoice.ID)
	assert.Equal(suite.T(), common.InvoiceStatusPartial, afterPartial.Status)
	assert.True(suite.T(), decimal.RequireFromString("300000").Equal(afterPartial.RemainingAmount))

	suite.addPaymentReq(invoice.ID, "300000", common.PaymentMethodCard)

	afterFull := suite.getInvoiceReq(invoice.ID)
	assert.Equal(suite.T(), common.InvoiceStatusPaid, afterFull.Status)
	assert.True(suite.T(), afterFull.RemainingAmount.IsZero())
}

func (suite *PaymentTestSuite) TestOverPaymentRejected() {
	invoice := suite.createInvoiceReq(suite.student.ID, "500000", "0", dateString(time.Now().AddDate(0, 0, 14)))
	suite.addPaymentReq(invoice.ID, "400000", common.PaymentMethodCash)

	rec := suite.addPaymentRaw(invoice.ID, "200000", common.PaymentMethodCash)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)

	// exact settlement still goes through
	suite.addPaymentReq(invoice.ID, "100000", common.PaymentMethodCash)
	final := suite.getInvoiceReq(invoice.ID)
	assert.Equal(suite.T(), common.InvoiceStatusPaid, final.Status)
}

func (suite *PaymentTestSuite) TestOverPaymentAgainstDiscountedAmount() {
	// settles at 450000 net of discount, not the 500000 gross
	invoice := suite.createInvoiceReq(suite.student.ID, "500000", "50000", dateString(time.Now().AddDate(0, 0, 14)))

	rec := suite.addPaymentRaw(invoice.ID, "500000", common.PaymentMethodTransfer)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)

	suite.addPaymentReq(invoice.ID, "450000", common.PaymentMethodTransfer)
	final := suite.getInvoiceReq(invoice.ID)
	assert.Equal(suite.T(), common.InvoiceStatusPaid, final.Status)
}

func (suite *PaymentTestSuite) TestPaymentOnCancelledInvoiceRejected() {
	invoice := suite.createInvoiceReq(suite.student.ID, "500000", "0", dateString(time.Now().AddDate(0, 0, 14)))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/invoices/%d/cancel", invoice.ID), nil)
	suite.echo.ServeHTTP(rec, req)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	rec = suite.addPaymentRaw(invoice.ID, "100000", common.PaymentMethodCash)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *PaymentTestSuite) TestUnknownPaymentMethodRejected() {
	invoice := suite.createInvoiceReq(suite.student.ID, "500000", "0", dateString(time.Now().AddDate(0, 0, 14)))
	rec := suite.addPaymentRaw(invoice.ID, "100000", "barter")
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *PaymentTestSuite) TestDeletePaymentRevertsStatus() {
	invoice := suite.createInvoiceReq(suite.student.ID, "500000", "0", dateString(time.Now().AddDate(0, 0, 14)))
	payment := suite.addPaymentReq(invoice.ID, "500000", common.PaymentMethodOnline)

	paid := suite.getInvoiceReq(invoice.ID)
	assert.Equal(suite.T(), common.InvoiceStatusPaid, paid.Status)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/payments/%d", payment.ID), nil)
	suite.echo.ServeHTTP(rec, req)
	assert.Equal(suite.T(), http.StatusNoContent, rec.Code)

	reverted := suite.getInvoiceReq(invoice.ID)
	assert.Equal(suite.T(), common.InvoiceStatusPending, reverted.Status)
	assert.True(suite.T(), decimal.RequireFromString("500000").Equal(reverted.RemainingAmount))

	// the freed balance can be paid again
	suite.addPaymentReq(invoice.ID, "500000", common.PaymentMethodCash)
}

// Two clients racing to settle the same remaining balance: at most one
// payment may be admitted, and the ledger total must never exceed the
// invoice's final amount.
func (suite *PaymentTestSuite) TestConcurrentPaymentsNeverOverpay() {
	invoice := suite.createInvoiceReq(suite.student.ID, "500000", "0", dateString(time.Now().AddDate(0, 0, 14)))

	const attempts = 4
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			rec := suite.addPaymentRaw(invoice.ID, "400000", common.PaymentMethodCash)
			codes[slot] = rec.Code
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, code := range codes {
		if code == http.StatusOK {
			succeeded++
		} else {
			assert.Contains(suite.T(), []int{http.StatusBadRequest, http.StatusConflict}, code)
		}
	}
	assert.Equal(suite.T(), 1, succeeded)

	final := suite.getInvoiceReq(invoice.ID)
	assert.True(suite.T(), decimal.RequireFromString("400000").Equal(final.PaidAmount))
	assert.False(suite.T(), final.PaidAmount.GreaterThan(final.FinalAmount))
}

func TestPaymentSuite(t *testing.T) {
	suite.Run(t, new(PaymentTestSuite))
}
