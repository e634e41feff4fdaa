package common

const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPartial   = "partial"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"

	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodOnline   = "online"

	RoleStudent    = "student"
	RoleTeacher    = "teacher"
	RoleAccountant = "accountant"
	RoleAdmin      = "admin"

	// pubsub topic for invoice lifecycle events
	TopicInvoiceStatus = "invoice_status"
)
