package kafka

import (
	"context"
	"fmt"
	"sort"

	"github.com/IBM/sarama"

	"rentavail/internal/domain/shared/apperr"
)

// Producer publishes outbox events with an idempotent, fully acknowledged
// sync producer. Messages of one key land on one partition.
type Producer struct {
	sync sarama.SyncProducer
}

func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	// Idempotent producers require a single in-flight request.
	cfg.Net.MaxOpenRequests = 1
	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, apperr.CodeBrokerUnavailable, fmt.Errorf("kafka: producer: %w", err))
	}
	return newProducer(sp), nil
}

func newProducer(sp sarama.SyncProducer) *Producer {
	return &Producer{sync: sp}
}

// Publish sends one message. A context that is already done is returned as
// is; broker failures are Upstream so the relay treats them as retryable.
func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: recordHeaders(headers),
	}
	if _, _, err := p.sync.SendMessage(msg); err != nil {
		return apperr.Wrap(apperr.KindUpstream, apperr.CodeBrokerUnavailable, fmt.Errorf("kafka: publish %s: %w", topic, err))
	}
	return nil
}

// recordHeaders orders headers by name so retries produce identical records.
func recordHeaders(headers map[string]string) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]sarama.RecordHeader, 0, len(names))
	for _, k := range names {
		out = append(out, sarama.RecordHeader{Key: []byte(k), Value: []byte(headers[k])})
	}
	return out
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}
