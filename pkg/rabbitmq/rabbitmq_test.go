package rabbitmq

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAcknowledger struct {
	mock.Mock
}

func (m *mockAcknowledger) Ack(tag uint64, multiple bool) error {
	return m.Called(tag, multiple).Error(0)
}

func (m *mockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	return m.Called(tag, multiple, requeue).Error(0)
}

func (m *mockAcknowledger) Reject(tag uint64, requeue bool) error {
	return m.Called(tag, requeue).Error(0)
}

func testClient() *Client {
	return &Client{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func delivery(ack amqp.Acknowledger, body string, redelivered bool) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(body), Redelivered: redelivered}
}

func TestHandlePresenceDelivery_Ack(t *testing.T) {
	ack := new(mockAcknowledger)
	ack.On("Ack", uint64(1), false).Return(nil).Once()

	var got PresenceMessage
	testClient().handlePresenceDelivery(delivery(ack, `{"user_id":3,"active":true}`, false), func(msg PresenceMessage) error {
		got = msg
		return nil
	})

	assert.Equal(t, PresenceMessage{UserID: 3, Active: true}, got)
	ack.AssertExpectations(t)
}

func TestHandlePresenceDelivery_RejectsMalformed(t *testing.T) {
	ack := new(mockAcknowledger)
	ack.On("Reject", uint64(1), false).Return(nil).Once()

	called := false
	testClient().handlePresenceDelivery(delivery(ack, `{"active":true}`, false), func(PresenceMessage) error {
		called = true
		return nil
	})

	assert.False(t, called)
	ack.AssertExpectations(t)
}

func TestHandlePresenceDelivery_RequeuesOnce(t *testing.T) {
	failing := func(PresenceMessage) error { return errors.New("database unavailable") }

	ack := new(mockAcknowledger)
	ack.On("Nack", uint64(1), false, true).Return(nil).Once()
	testClient().handlePresenceDelivery(delivery(ack, `{"user_id":3,"active":false}`, false), failing)
	ack.AssertExpectations(t)

	ack = new(mockAcknowledger)
	ack.On("Nack", uint64(1), false, false).Return(nil).Once()
	testClient().handlePresenceDelivery(delivery(ack, `{"user_id":3,"active":false}`, true), failing)
	ack.AssertExpectations(t)
}

func TestPublishWithoutChannel(t *testing.T) {
	err := testClient().Publish(UserExchange, "user.registered", []byte(`{}`))
	assert.Error(t, err)
}
