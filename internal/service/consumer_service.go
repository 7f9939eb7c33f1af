package service

import (
	"context"

	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/events"
	"docqa-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
)

// IConsumerService runs the background consumers for post-ingest events.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	store      *vectorstore.Store
	log        logger.ILogger
}

func NewConsumerService(subscriber message.Subscriber, store *vectorstore.Store, log logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		store:      store,
		log:        log,
	}
}

// Consume handles document.stored events: it warms the vector index so the
// first query after an upload does not pay the lazy load, and writes the
// ingest audit line. Blocks until ctx is cancelled.
func (s *consumerService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, events.TopicDocumentStored)
	if err != nil {
		return err
	}

	for msg := range messages {
		evt, err := events.DocumentStoredFromMessage(msg)
		if err != nil {
			s.log.Warn("consumer", "malformed stored event", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			continue
		}

		size, err := s.store.Size(ctx)
		if err != nil {
			s.log.Warn("consumer", "index warm failed", map[string]interface{}{"error": err.Error()})
		}

		s.log.Info("consumer", "document stored", map[string]interface{}{
			"sha256":     evt.SHA256,
			"ext":        evt.Ext,
			"index_size": size,
		})
		msg.Ack()
	}
	return nil
}
