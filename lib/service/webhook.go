package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/edupay/tuitionhub/common"
	"github.com/edupay/tuitionhub/db/models"
)

// StartWebhookSubscription posts every invoice status change to the
// configured webhook URL until the context is cancelled.
func (svc *LedgerService) StartWebhookSubscription(ctx context.Context, url string) {

	svc.Logger.Infof("Starting webhook subscription with webhook url %s", url)
	// buffered so a slow webhook endpoint does not cost us events
	statusEvents := make(chan models.Invoice, 64)
	subId := svc.InvoicePubSub.Subscribe(common.TopicInvoiceStatus, statusEvents)
	defer svc.InvoicePubSub.Unsubscribe(subId, common.TopicInvoiceStatus)
	for {
		select {
		case <-ctx.Done():
			return
		case invoice := <-statusEvents:
			svc.postToWebhook(invoice, url)
		}
	}
}

func (svc *LedgerService) postToWebhook(invoice models.Invoice, url string) {

	payload := new(bytes.Buffer)
	err := json.NewEncoder(payload).Encode(invoice)
	if err != nil {
		svc.Logger.Error(err)
		return
	}

	resp, err := http.Post(url, "application/json", payload)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			svc.Logger.Error(err)
		}
		svc.Logger.Errorf("Webhook status code was %d, body: %s", resp.StatusCode, msg)
	}
}
