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

type ReminderTestSuite struct {
	suite.Suite
	service    *service.LedgerService
	dispatcher *mockDispatcher
	alice      *models.User
}

func (suite *ReminderTestSuite) SetupSuite() {
	svc, err := LedgerTestServiceInit()
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	suite.dispatcher = &mockDispatcher{}
	svc.Dispatcher = suite.dispatcher
	suite.service = svc
	suite.alice, err = createStudent(svc, "reminder_alice", "+998905000001", "+998906000001")
	if err != nil {
		log.Fatalf("Error creating test student: %v", err)
	}
}

func (suite *ReminderTestSuite) SetupTest() {
	suite.dispatcher.mutex.Lock()
	suite.dispatcher.sent = nil
	suite.dispatcher.mutex.Unlock()
}

func (suite *ReminderTestSuite) TearDownTest() {
	clearTable(suite.service, "payments")
	clearTable(suite.service, "invoices")
}

func (suite *ReminderTestSuite) createInvoice(amt string, dueDate time.Time) *models.Invoice {
	invoice, err := suite.service.CreateInvoice(context.Background(), service.CreateInvoiceParams{
		StudentID: suite.alice.ID,
		Amount:    decimal.RequireFromString(amt),
		DueDate:   dueDate,
	})
	assert.NoError(suite.T(), err)
	return invoice
}

func (suite *ReminderTestSuite) TestPaymentReminderForUpcomingDueDate() {
	leadDays := suite.service.Config.ReminderLeadDays
	suite.createInvoice("500000", time.Now().AddDate(0, 0, leadDays))
	// not due in exactly leadDays, must not be reminded
	suite.createInvoice("300000", time.Now().AddDate(0, 0, leadDays+5))

	sent, err := suite.service.SendPaymentReminders(context.Background())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, sent)

	messages := suite.dispatcher.Sent()
	assert.Equal(suite.T(), 1, len(messages))
	assert.Equal(suite.T(), suite.alice.Phone, messages[0].Phone)
	assert.Equal(suite.T(), "payment_reminder", messages[0].TemplateID)
	assert.Contains(suite.T(), messages[0].Text, "500000.00")
}

func (suite *ReminderTestSuite) TestReminderFanOutCoversEveryDueInvoice() {
	leadDays := suite.service.Config.ReminderLeadDays
	const invoices = 120
	for i := 0; i < invoices; i++ {
		suite.createInvoice("1000", time.Now().AddDate(0, 0, leadDays))
	}

	sent, err := suite.service.SendPaymentReminders(context.Background())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), invoices, sent)
}

func (suite *ReminderTestSuite) TestDebtNotificationGoesToParent() {
	suite.createInvoice("400000", time.Now().AddDate(0, 0, -7))

	sent, err := suite.service.SendDebtNotifications(context.Background())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, sent)

	messages := suite.dispatcher.Sent()
	assert.Equal(suite.T(), 1, len(messages))
	assert.Equal(suite.T(), suite.alice.Profile.ParentPhone, messages[0].Phone)
	assert.Equal(suite.T(), "debt_notification", messages[0].TemplateID)
}

func (suite *ReminderTestSuite) TestNoNotificationWithoutOverdueDebt() {
	suite.createInvoice("400000", time.Now().AddDate(0, 0, 10))

	sent, err := suite.service.SendDebtNotifications(context.Background())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, sent)
	assert.Equal(suite.T(), 0, len(suite.dispatcher.Sent()))
}

func TestReminderSuite(t *testing.T) {
	suite.Run(t, new(ReminderTestSuite))
}
