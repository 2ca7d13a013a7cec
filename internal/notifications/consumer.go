package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NguyenZak/longhai-ticket-sub001/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Refresher rebuilds derived availability after another instance changed the ledger
type Refresher interface {
	Invalidate(ctx context.Context, tierID uuid.UUID) error
	RefreshEvent(ctx context.Context, eventID uuid.UUID) error
}

type ConsumerConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	SessionTimeout    time.Duration
	Heartbeat         time.Duration
	RetryBackoff      time.Duration
	MaxProcessingTime time.Duration
	MaxRetries        int
	OffsetOldest      bool
}

func DefaultConsumerConfig(brokers []string, groupID, topic string) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topics:            []string{topic},
		SessionTimeout:    30 * time.Second,
		Heartbeat:         3 * time.Second,
		RetryBackoff:      100 * time.Millisecond,
		MaxProcessingTime: time.Minute,
		MaxRetries:        3,
	}
}

// AvailabilityConsumer keeps this instance's availability cache and event
// counters in step with bookings written elsewhere.
type AvailabilityConsumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler *ConsumerGroupHandler
	log     *logger.Logger
}

func NewAvailabilityConsumer(config *ConsumerConfig, refresher Refresher, log *logger.Logger) (*AvailabilityConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.Retry.Backoff = config.RetryBackoff
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	log = log.WithComponent("availability-consumer")
	return &AvailabilityConsumer{
		group:   group,
		topics:  config.Topics,
		handler: NewConsumerGroupHandler(refresher, config.MaxRetries, config.RetryBackoff, log),
		log:     log,
	}, nil
}

// Run consumes until ctx is cancelled, then closes the group.
func (c *AvailabilityConsumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			c.log.WarnContext(ctx, "Consumer group error", "error", err.Error())
		}
	}()

	c.log.InfoContext(ctx, "Availability consumer started", "topics", c.topics)
	defer func() {
		if err := c.group.Close(); err != nil {
			c.log.WarnContext(context.Background(), "Failed to close consumer group", "error", err.Error())
		}
	}()

	for {
		if err := c.group.Consume(ctx, c.topics, c.handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.log.WarnContext(ctx, "Error consuming booking messages", "error", err.Error())
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// ConsumerGroupHandler applies booking messages to the local availability view
type ConsumerGroupHandler struct {
	refresher  Refresher
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func NewConsumerGroupHandler(refresher Refresher, maxRetries int, backoff time.Duration, log *logger.Logger) *ConsumerGroupHandler {
	return &ConsumerGroupHandler{
		refresher:  refresher,
		maxRetries: maxRetries,
		backoff:    backoff,
		log:        log,
	}
}

func (h *ConsumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *ConsumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *ConsumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.HandleMessage(session.Context(), message); err != nil {
				// the reconciler repairs anything a skipped message leaves stale
				h.log.WarnContext(session.Context(), "Dropping booking message",
					"partition", message.Partition,
					"offset", message.Offset,
					"error", err.Error(),
				)
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// HandleMessage decodes one message and refreshes the tier and event it names.
func (h *ConsumerGroupHandler) HandleMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	msg, err := FromJSON(message.Value)
	if err != nil {
		return fmt.Errorf("failed to unmarshal booking message: %w", err)
	}
	if msg.TierID == uuid.Nil {
		return errors.New("booking message has no tier_id")
	}

	return h.executeWithRetry(ctx, func() error {
		if err := h.refresher.Invalidate(ctx, msg.TierID); err != nil {
			return err
		}
		if msg.EventID == uuid.Nil {
			return nil
		}
		return h.refresher.RefreshEvent(ctx, msg.EventID)
	})
}

func (h *ConsumerGroupHandler) executeWithRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == h.maxRetries {
			break
		}

		delay := h.backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
