package transport

import (
	"github.com/edupay/tuitionhub/controllers"
	"github.com/edupay/tuitionhub/lib/service"
	"github.com/labstack/echo/v4"
)

func RegisterEndpoints(svc *service.LedgerService, e *echo.Echo, secured *echo.Group, securedWithStrictRateLimit *echo.Group, logMw echo.MiddlewareFunc) {
	invoiceCtrl := controllers.NewInvoiceController(svc)
	paymentCtrl := controllers.NewPaymentController(svc)
	snapshotCtrl := controllers.NewSnapshotController(svc)
	debtorCtrl := controllers.NewDebtorController(svc)

	e.GET("/health", controllers.NewHealthController(svc).Health, logMw)

	secured.POST("/invoices", invoiceCtrl.CreateInvoice)
	secured.GET("/invoices", invoiceCtrl.GetInvoices)
	secured.GET("/invoices/pending", invoiceCtrl.GetPendingInvoices)
	secured.GET("/invoices/overdue", invoiceCtrl.GetOverdueInvoices)
	secured.GET("/invoices/statistics", invoiceCtrl.GetStatistics)
	secured.GET("/invoices/:id", invoiceCtrl.GetInvoice)
	secured.PUT("/invoices/:id", invoiceCtrl.UpdateInvoice)
	secured.POST("/invoices/:id/cancel", invoiceCtrl.CancelInvoice)
	secured.DELETE("/invoices/:id", invoiceCtrl.DeleteInvoice)

	securedWithStrictRateLimit.POST("/invoices/:id/payments", paymentCtrl.AddPayment)
	secured.GET("/invoices/:id/payments", paymentCtrl.GetPayments)
	securedWithStrictRateLimit.DELETE("/payments/:id", paymentCtrl.DeletePayment)

	cacheClient := CreateCacheClient()
	secured.GET("/debtors", debtorCtrl.GetDebtors, cacheClient.Middleware())

	securedWithStrictRateLimit.POST("/snapshots/daily", snapshotCtrl.CreateDailySnapshots)
	secured.GET("/snapshots", snapshotCtrl.GetSnapshots)
}
