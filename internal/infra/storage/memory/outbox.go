package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	appoutbox "rentavail/internal/app/outbox"
	infraoutbox "rentavail/internal/infra/outbox"
)

const (
	outboxNew     = "NEW"
	outboxClaimed = "CLAIMED"
	outboxSent    = "SENT"
	outboxFailed  = "FAILED"
)

// Outbox keeps staged events in process and serves them to the relay worker.
type Outbox struct {
	mu    sync.Mutex
	docs  map[string]*infraoutbox.EventDocument
	order []string
	now   func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{docs: make(map[string]*infraoutbox.EventDocument), now: time.Now}
}

func (o *Outbox) Add(_ context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.docs[record.ID]; exists {
		return nil
	}
	headers := make(map[string]string, len(record.Headers))
	for k, v := range record.Headers {
		headers[k] = v
	}
	o.docs[record.ID] = &infraoutbox.EventDocument{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     append([]byte(nil), record.Payload...),
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     headers,
		State:       outboxNew,
		NextAttempt: o.now().UTC(),
	}
	o.order = append(o.order, record.ID)
	return nil
}

func (o *Outbox) Flush(context.Context) error {
	return nil
}

// Claim hands out the oldest due event.
func (o *Outbox) Claim(_ context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now().UTC()
	for _, id := range o.order {
		doc := o.docs[id]
		if doc.State != outboxNew && doc.State != outboxFailed {
			continue
		}
		if doc.NextAttempt.After(now) {
			continue
		}
		doc.State = outboxClaimed
		doc.ClaimedBy = workerID
		doc.ClaimedAt = now
		cp := *doc
		return &cp, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if doc, ok := o.docs[id]; ok {
		doc.State = outboxSent
		doc.SentAt = o.now().UTC()
	}
	o.compact()
	return nil
}

func (o *Outbox) MarkFailed(_ context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if doc, ok := o.docs[id]; ok {
		doc.State = outboxFailed
		doc.NextAttempt = next
		doc.LastError = errMsg
		doc.Attempts++
	}
	return nil
}

// Pending lists undelivered events in staging order.
func (o *Outbox) Pending() []infraoutbox.EventDocument {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]infraoutbox.EventDocument, 0, len(o.order))
	for _, id := range o.order {
		if doc := o.docs[id]; doc.State != outboxSent {
			out = append(out, *doc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out
}

// compact drops delivered events. Callers hold mu.
func (o *Outbox) compact() {
	kept := o.order[:0]
	for _, id := range o.order {
		if o.docs[id].State == outboxSent {
			delete(o.docs, id)
			continue
		}
		kept = append(kept, id)
	}
	o.order = kept
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Queue = (*Outbox)(nil)
)
