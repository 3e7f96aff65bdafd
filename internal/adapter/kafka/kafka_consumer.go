package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"

	"github.com/giftnest/storefront/internal/logging"
	"github.com/giftnest/storefront/internal/usecase"
)

// HandlerFunc processes a decoded settlement event.
type HandlerFunc func(ctx context.Context, ev usecase.SettlementMsg) error

// Consumer consumes the settlement topic with a single handler.
type Consumer struct {
	Group  sarama.ConsumerGroup
	Topics []string
	Handle HandlerFunc
}

func NewConsumer(group sarama.ConsumerGroup, topics []string, h HandlerFunc) *Consumer {
	return &Consumer{Group: group, Topics: topics, Handle: h}
}

func (c *Consumer) Start(ctx context.Context) error {
	handler := &cgHandler{handle: c.Handle}
	for {
		if err := c.Group.Consume(ctx, c.Topics, handler); err != nil {
			return err
		}
		// Consume returns on ctx cancellation or a rebalance.
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

type cgHandler struct {
	handle HandlerFunc
}

func (h *cgHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *cgHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *cgHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log := logging.New("kafka-settlements")
	for msg := range claim.Messages() {
		var ev usecase.SettlementMsg
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.Error("settlement decode error", "error", err, "offset", msg.Offset)
			// mark to avoid reprocessing poison
			sess.MarkMessage(msg, "decode-error")
			continue
		}
		if err := h.handle(sess.Context(), ev); err != nil {
			log.Error("settlement handler error",
				"error", err, "key", string(msg.Key), "offset", msg.Offset)
			// do not mark; let it retry on next poll
			continue
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
