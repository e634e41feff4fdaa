package service

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SendPaymentReminders messages students whose invoices fall due in exactly
// ReminderLeadDays days. Returns the number of reminders enqueued.
func (svc *LedgerService) SendPaymentReminders(ctx context.Context) (int, error) {
	if svc.Dispatcher == nil {
		svc.Logger.Debug("No dispatcher configured, skipping payment reminders")
		return 0, nil
	}

	dueDate := time.Now().AddDate(0, 0, svc.Config.ReminderLeadDays)
	invoices, err := svc.InvoicesFor(ctx, InvoiceFilter{
		Statuses: unpaidStatuses(),
		DueOn:    dueDate,
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range invoices {
		student, err := svc.FindStudent(ctx, invoices[i].StudentID)
		if err != nil {
			svc.Logger.Errorf("Error resolving student for reminder: invoice_id:%v error: %v", invoices[i].ID, err)
			sentry.CaptureException(err)
			continue
		}
		if student.Phone == "" {
			continue
		}
		sms := SMS{
			Phone:      student.Phone,
			TemplateID: "payment_reminder",
			Text: fmt.Sprintf("Dear %s, your payment of %s is due on %s. %s %s",
				student.FullName(),
				invoices[i].RemainingAmount().StringFixed(2),
				invoices[i].DueDate.Format("02.01.2006"),
				svc.Config.CenterName,
				svc.Config.CenterPhone),
		}
		if err := svc.Dispatcher.Dispatch(ctx, sms); err != nil {
			svc.Logger.Errorf("Error dispatching reminder: invoice_id:%v error: %v", invoices[i].ID, err)
			sentry.CaptureException(err)
			continue
		}
		sent++
	}
	svc.Logger.Infof("Payment reminders queued for %d invoices", sent)
	return sent, nil
}

// SendDebtNotifications messages the parent contact of every student with
// overdue debt. One message per student, not per invoice.
func (svc *LedgerService) SendDebtNotifications(ctx context.Context) (int, error) {
	if svc.Dispatcher == nil {
		svc.Logger.Debug("No dispatcher configured, skipping debt notifications")
		return 0, nil
	}

	debtors, err := svc.Debtors(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, debtor := range debtors {
		if debtor.OverdueDebt.IsZero() {
			continue
		}
		phone := debtor.ParentPhone
		if phone == "" {
			phone = debtor.StudentPhone
		}
		if phone == "" {
			continue
		}
		sms := SMS{
			Phone:      phone,
			TemplateID: "debt_notification",
			Text: fmt.Sprintf("Outstanding debt of %s for %s, %d day(s) overdue. Please settle soon. %s %s",
				debtor.OverdueDebt.StringFixed(2),
				debtor.StudentName,
				debtor.OverdueDays,
				svc.Config.CenterName,
				svc.Config.CenterPhone),
		}
		if err := svc.Dispatcher.Dispatch(ctx, sms); err != nil {
			svc.Logger.Errorf("Error dispatching debt notification: student_id:%v error: %v", debtor.StudentID, err)
			sentry.CaptureException(err)
			continue
		}
		sent++
	}
	svc.Logger.Infof("Debt notifications queued for %d students", sent)
	return sent, nil
}
