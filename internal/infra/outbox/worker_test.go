package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceQueue struct {
	docs   []*EventDocument
	sent   []string
	failed map[string]string
}

func (q *sliceQueue) Claim(context.Context, string) (*EventDocument, error) {
	if len(q.docs) == 0 {
		return nil, nil
	}
	doc := q.docs[0]
	q.docs = q.docs[1:]
	return doc, nil
}

func (q *sliceQueue) MarkSent(_ context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *sliceQueue) MarkFailed(_ context.Context, id string, _ time.Time, msg string) error {
	if q.failed == nil {
		q.failed = map[string]string{}
	}
	q.failed[id] = msg
	return nil
}

type published struct {
	topic, key string
	payload    []byte
}

type captureProducer struct {
	out []published
	err error
}

func (p *captureProducer) Publish(_ context.Context, topic, key string, payload []byte, _ map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.out = append(p.out, published{topic: topic, key: key, payload: payload})
	return nil
}

func TestWorkerRelaysCloudEvents(t *testing.T) {
	q := &sliceQueue{docs: []*EventDocument{{
		ID:         "evt-1",
		Name:       "calendar.blocked",
		Aggregate:  "u1",
		Payload:    []byte(`{"unit_id":"u1","start":"2030-02-10"}`),
		OccurredAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}}}
	p := &captureProducer{}
	w := &Worker{Store: q, Producer: p, TopicPrefix: "dev."}

	more, err := w.processOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, more)
	require.Len(t, p.out, 1)
	assert.Equal(t, "dev.calendar.events.v1", p.out[0].topic)
	assert.Equal(t, "u1", p.out[0].key)
	assert.Equal(t, []string{"evt-1"}, q.sent)

	var ce map[string]any
	require.NoError(t, json.Unmarshal(p.out[0].payload, &ce))
	assert.Equal(t, "calendar.blocked.v1", ce["type"])
	assert.Equal(t, "app://rentavail", ce["source"])
	assert.Equal(t, "u1", ce["subject"])

	more, err = w.processOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, more)
}

func TestWorkerMarksFailedDeliveries(t *testing.T) {
	q := &sliceQueue{docs: []*EventDocument{
		{ID: "bad-json", Name: "booking.requested", Payload: []byte(`{`)},
		{ID: "evt-2", Name: "booking.requested", Payload: []byte(`{}`)},
	}}
	p := &captureProducer{err: errors.New("broker unavailable")}
	w := &Worker{Store: q, Producer: p, Backoff: []time.Duration{time.Second}}

	for i := 0; i < 2; i++ {
		_, err := w.processOnce(context.Background())
		require.NoError(t, err)
	}
	assert.Empty(t, q.sent)
	assert.Contains(t, q.failed, "bad-json")
	assert.Equal(t, "broker unavailable", q.failed["evt-2"])
}

func TestWorkerRequiresDependencies(t *testing.T) {
	require.ErrorIs(t, (&Worker{}).Run(context.Background()), ErrWorkerNotConfigured)
}
