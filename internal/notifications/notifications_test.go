package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logger.Logger {
	return logger.FromSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleMessage() *BookingMessage {
	return &BookingMessage{
		Type:          BookingEventCreated,
		BookingID:     uuid.New(),
		BookingNumber: "BK20261019ABC123",
		EventID:       uuid.New(),
		TierID:        uuid.New(),
		UserID:        uuid.New(),
		Quantity:      2,
		TotalAmount:   100000,
		Status:        "pending",
		OccurredAt:    time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_SendsKeyedByTier(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	msg := sampleMessage()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(pm *sarama.ProducerMessage) error {
		key, err := pm.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != msg.TierID.String() {
			return errors.New("message not keyed by tier id")
		}
		if pm.Topic != "booking-events" {
			return errors.New("unexpected topic " + pm.Topic)
		}
		return nil
	})

	pub := NewKafkaPublisherWithProducer(producer, "booking-events", quietLogger())
	require.NoError(t, pub.PublishBookingEvent(context.Background(), msg))
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_PropagatesSendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisherWithProducer(producer, "booking-events", quietLogger())
	err := pub.PublishBookingEvent(context.Background(), sampleMessage())

	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

type fakeRefresher struct {
	invalidated []uuid.UUID
	refreshed   []uuid.UUID
	failures    int
}

func (f *fakeRefresher) Invalidate(_ context.Context, tierID uuid.UUID) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("redis unavailable")
	}
	f.invalidated = append(f.invalidated, tierID)
	return nil
}

func (f *fakeRefresher) RefreshEvent(_ context.Context, eventID uuid.UUID) error {
	f.refreshed = append(f.refreshed, eventID)
	return nil
}

func TestHandleMessage_RefreshesTierAndEvent(t *testing.T) {
	refresher := &fakeRefresher{}
	h := NewConsumerGroupHandler(refresher, 2, time.Millisecond, quietLogger())
	msg := sampleMessage()
	payload, err := msg.ToJSON()
	require.NoError(t, err)

	require.NoError(t, h.HandleMessage(context.Background(), &sarama.ConsumerMessage{Value: payload}))

	assert.Equal(t, []uuid.UUID{msg.TierID}, refresher.invalidated)
	assert.Equal(t, []uuid.UUID{msg.EventID}, refresher.refreshed)
}

func TestHandleMessage_RetriesTransientFailure(t *testing.T) {
	refresher := &fakeRefresher{failures: 2}
	h := NewConsumerGroupHandler(refresher, 2, time.Millisecond, quietLogger())
	payload, err := sampleMessage().ToJSON()
	require.NoError(t, err)

	require.NoError(t, h.HandleMessage(context.Background(), &sarama.ConsumerMessage{Value: payload}))
	assert.Len(t, refresher.invalidated, 1)
}

func TestHandleMessage_RejectsMalformedPayload(t *testing.T) {
	h := NewConsumerGroupHandler(&fakeRefresher{}, 0, time.Millisecond, quietLogger())

	assert.Error(t, h.HandleMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("{")}))
	assert.Error(t, h.HandleMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte(`{"type":"BOOKING_CREATED"}`)}))
}
