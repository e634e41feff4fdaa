package service

import (
	"testing"

	"github.com/edupay/tuitionhub/db/models"
	"github.com/stretchr/testify/assert"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	ps := NewPubsub()
	ch := make(chan models.Invoice, 1)
	ps.Subscribe("topic", ch)

	ps.Publish("topic", models.Invoice{ID: 42})

	delivered := <-ch
	assert.Equal(t, int64(42), delivered.ID)
}

func TestPublishDoesNotBlockOnStalledSubscriber(t *testing.T) {
	ps := NewPubsub()
	ch := make(chan models.Invoice, 1)
	ps.Subscribe("topic", ch)

	// fill the buffer, nobody is reading
	ps.Publish("topic", models.Invoice{ID: 1})
	// must return instead of waiting on the stalled consumer
	ps.Publish("topic", models.Invoice{ID: 2})

	assert.Equal(t, 1, len(ch))
	delivered := <-ch
	assert.Equal(t, int64(1), delivered.ID)
}

func TestPublishToUnknownTopicIsNoop(t *testing.T) {
	ps := NewPubsub()
	ps.Publish("nobody-listens", models.Invoice{ID: 1})
}
