package rabbitmq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/edupay/tuitionhub/lib/service"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ziflex/lecho/v3"
)

// bufPool reuses encode buffers between publishes instead of allocating a
// fresh one per message.
var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

const (
	contentTypeJSON = "application/json"

	routingKeySms = "sms.outgoing"
)

// Client publishes outbound SMS messages for the external delivery worker.
// It is the ledger's notification dispatcher; delivery success is not our
// concern.
type Client interface {
	service.Dispatcher
	// Close will close all connections to rabbitmq
	Close() error
}

type DefaultClient struct {
	amqpClient AMQPClient

	logger *lecho.Logger

	smsExchange string
}

type ClientOption = func(client *DefaultClient)

func WithSmsExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.smsExchange = exchange
	}
}

func WithLogger(logger *lecho.Logger) ClientOption {
	return func(client *DefaultClient) {
		client.logger = logger
	}
}

// NewClient declares the SMS exchange and returns a publish-only client.
func NewClient(amqpClient AMQPClient, options ...ClientOption) (Client, error) {
	client := &DefaultClient{
		amqpClient: amqpClient,
		logger: lecho.New(
			os.Stdout,
			lecho.WithLevel(log.DEBUG),
			lecho.WithTimestamp(),
		),
		smsExchange: "tuitionhub_sms",
	}
	for _, opt := range options {
		opt(client)
	}

	err := client.amqpClient.ExchangeDeclare(
		client.smsExchange,
		// topic exchange, the delivery worker binds per provider
		"topic",
		// durable
		true,
		// auto-deleted
		false,
		// internal
		false,
		// no-wait
		false,
		// arguments
		nil,
	)
	if err != nil {
		return nil, err
	}

	return client, nil
}

func (client *DefaultClient) Dispatch(ctx context.Context, sms service.SMS) error {
	buf := bufPool.Get().(*bytes.Buffer)
	defer bufPool.Put(buf)
	buf.Reset()

	if err := json.NewEncoder(buf).Encode(sms); err != nil {
		return fmt.Errorf("could not encode sms: %w", err)
	}

	err := client.amqpClient.PublishWithContext(ctx,
		client.smsExchange,
		routingKeySms,
		false,
		false,
		amqp.Publishing{
			ContentType: contentTypeJSON,
			Body:        buf.Bytes(),
		},
	)
	if err != nil {
		return err
	}
	client.logger.Debugf("Published sms to %s", sms.Phone)
	return nil
}

func (client *DefaultClient) Close() error {
	return client.amqpClient.Close()
}
