package repository

import (
	"context"
	"time"

	"SentiPull/internal/domain/models"
	pkgkafka "SentiPull/pkg/kafka"
)

// rowMessage is the wire form of one scored row on the rows topic.
type rowMessage struct {
	RunID string `json:"run_id"`
	models.ScoredRow
}

// summaryMessage is published once per run after the rows.
type summaryMessage struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	models.MarketSummary
}

type batchPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaSink publishes one message per row, keyed by ticker, and an optional summary message.
type KafkaSink struct {
	producer     batchPublisher
	topic        string
	summaryTopic string
}

func NewKafkaSink(producer *pkgkafka.Producer, topic, summaryTopic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic, summaryTopic: summaryTopic}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, rc models.RunContext, rows []models.ScoredRow, summary models.MarketSummary) error {
	if len(rows) == 0 {
		return nil
	}
	id := rc.RunID()
	msgs := make([]pkgkafka.Message, len(rows))
	for i, r := range rows {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(r.Ticker),
			Value: rowMessage{RunID: id, ScoredRow: r},
		}
	}
	if err := s.producer.PublishBatch(ctx, s.topic, msgs); err != nil {
		return err
	}
	if s.summaryTopic == "" {
		return nil
	}
	return s.producer.PublishBatch(ctx, s.summaryTopic, []pkgkafka.Message{{
		Key:   []byte(id),
		Value: summaryMessage{RunID: id, Timestamp: rc.Now, MarketSummary: summary},
	}})
}

func (s *KafkaSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
