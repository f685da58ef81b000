package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "rentavail/internal/app/outbox"
)

func TestOutboxClaimCycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	box := NewOutbox()
	box.now = func() time.Time { return now }

	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "a", Name: "unit.registered", Payload: []byte(`{}`), OccurredAt: now}))
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "b", Name: "calendar.blocked", Payload: []byte(`{}`), OccurredAt: now.Add(time.Second)}))
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "a", Name: "dup"}))
	require.Len(t, box.Pending(), 2)

	doc, err := box.Claim(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "a", doc.ID)
	assert.Equal(t, "w1", doc.ClaimedBy)

	require.NoError(t, box.MarkFailed(ctx, "a", now.Add(time.Minute), "broker down"))
	doc, err = box.Claim(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "b", doc.ID, "failed event waits for its retry time")
	require.NoError(t, box.MarkSent(ctx, "b"))

	doc, err = box.Claim(ctx, "w1")
	require.NoError(t, err)
	assert.Nil(t, doc)

	now = now.Add(2 * time.Minute)
	doc, err = box.Claim(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "a", doc.ID)
	assert.Equal(t, 1, doc.Attempts)
	require.NoError(t, box.MarkSent(ctx, "a"))
	assert.Empty(t, box.Pending())
}
