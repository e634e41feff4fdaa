package integration_tests

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/edupay/tuitionhub/db/models"
	"github.com/edupay/tuitionhub/lib/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type DebtorTestSuite struct {
	suite.Suite
	service *service.LedgerService
	alice   *models.User
	bob     *models.User
}

func (suite *DebtorTestSuite) SetupSuite() {
	svc, err := LedgerTestServiceInit()
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	suite.service = svc
	suite.alice, err = createStudent(svc, "debtor_alice", "+998903000001", "+998904000001")
	if err != nil {
		log.Fatalf("Error creating test student: %v", err)
	}
	suite.bob, err = createStudent(svc, "debtor_bob", "+998903000002", "")
	if err != nil {
		log.Fatalf("Error creating test student: %v", err)
	}
}

func (suite *DebtorTestSuite) TearDownTest() {
	clearTable(suite.service, "payments")
	clearTable(suite.service, "invoices")
}

func (suite *DebtorTestSuite) createInvoice(studentID int64, amt string, dueDate time.Time) *models.Invoice {
	invoice, err := suite.service.CreateInvoice(context.Background(), service.CreateInvoiceParams{
		StudentID: studentID,
		Amount:    decimal.RequireFromString(amt),
		DueDate:   dueDate,
	})
	assert.NoError(suite.T(), err)
	return invoice
}

func (suite *DebtorTestSuite) TestDebtorsRankedByTotalDebt() {
	today := time.Now()
	suite.createInvoice(suite.alice.ID, "200000", today.AddDate(0, 0, 5))
	suite.createInvoice(suite.bob.ID, "700000", today.AddDate(0, 0, -3))

	debtors, err := suite.service.Debtors(context.Background())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, len(debtors))

	// biggest debt first
	assert.Equal(suite.T(), suite.bob.ID, debtors[0].StudentID)
	assert.True(suite.T(), decimal.RequireFromString("700000").Equal(debtors[0].TotalDebt))
	assert.True(suite.T(), decimal.RequireFromString("700000").Equal(debtors[0].OverdueDebt))
	assert.Equal(suite.T(), 3, debtors[0].OverdueDays)

	assert.Equal(suite.T(), suite.alice.ID, debtors[1].StudentID)
	assert.True(suite.T(), debtors[1].OverdueDebt.IsZero())
	assert.Equal(suite.T(), "+998904000001", debtors[1].ParentPhone)
}

func (suite *DebtorTestSuite) TestSettledStudentDropsOffTheReport() {
	today := time.Now()
	invoice := suite.createInvoice(suite.alice.ID, "500000", today.AddDate(0, 0, 5))

	debtors, err := suite.service.Debtors(context.Background())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, len(debtors))

	_, err = suite.service.AddPayment(context.Background(), service.AddPaymentParams{
		InvoiceID:  invoice.ID,
		PaidAmount: decimal.RequireFromString("500000"),
		Method:     "cash",
	})
	assert.NoError(suite.T(), err)

	debtors, err = suite.service.Debtors(context.Background())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, len(debtors))
}

func (suite *DebtorTestSuite) TestSoftDeletedInvoiceExcluded() {
	today := time.Now()
	invoice := suite.createInvoice(suite.alice.ID, "500000", today.AddDate(0, 0, 5))

	err := suite.service.DeleteInvoice(context.Background(), invoice.ID)
	assert.NoError(suite.T(), err)

	debtors, err := suite.service.Debtors(context.Background())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, len(debtors))
}

func TestDebtorSuite(t *testing.T) {
	suite.Run(t, new(DebtorTestSuite))
}
