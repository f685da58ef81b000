package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentavail/internal/app/commands"
	channelhandlers "rentavail/internal/app/handlers/channels"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/infra/storage/memory"
)

type recordingBus struct {
	seen []channelhandlers.ImportChannelEventCommand
	err  error
}

func (b *recordingBus) Dispatch(_ context.Context, cmd commands.Command) (any, error) {
	c := cmd.(channelhandlers.ImportChannelEventCommand)
	b.seen = append(b.seen, c)
	if b.err != nil {
		return nil, b.err
	}
	return &channelhandlers.ImportChannelEventResult{Key: c.UnitID + "/" + c.Channel + "/" + c.ExternalID}, nil
}

func message(value string, offset int64) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "channel.events.v1", Partition: 2, Offset: offset, Value: []byte(value)}
}

func TestDecodeChannelRecord(t *testing.T) {
	rec, err := decodeChannelRecord(message(`{"event_id":"e1","unit_id":"u1","channel":"airbnb","external_id":"HM1","start_date":"2030-01-20","end_date":"2030-01-22"}`, 7))
	require.NoError(t, err)
	assert.Equal(t, "e1", rec.EventID)
	assert.Equal(t, "HM1", rec.ExternalID)

	rec, err = decodeChannelRecord(message(`{"specversion":"1.0","id":"ce-9","data":{"unit_id":"u1","channel":"vrbo","external_id":"V1","kind":"blocked"}}`, 8))
	require.NoError(t, err)
	assert.Equal(t, "ce-9", rec.EventID, "envelope id is used when the record has none")
	assert.Equal(t, "vrbo", rec.Channel)

	rec, err = decodeChannelRecord(message(`{"unit_id":"u1","channel":"vrbo","external_id":"V2"}`, 42))
	require.NoError(t, err)
	assert.Equal(t, "channel.events.v1/2/42", rec.EventID)

	_, err = decodeChannelRecord(message(`not json`, 1))
	require.Error(t, err)
}

func TestChannelImportSkipsDuplicates(t *testing.T) {
	bus := &recordingBus{}
	h := &ChannelImportHandler{Bus: bus, Inbox: memory.NewInbox()}
	msg := message(`{"event_id":"e1","unit_id":"u1","channel":"airbnb","external_id":"HM1","start_date":"2030-01-20","end_date":"2030-01-22"}`, 1)

	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg))
	require.Len(t, bus.seen, 1)
	assert.Equal(t, "2030-01-22", bus.seen[0].EndDate)
}

func TestChannelImportDropsRejectedRecords(t *testing.T) {
	bus := &recordingBus{err: apperr.NotFound(apperr.CodeUnitNotFound, "unit missing")}
	h := &ChannelImportHandler{Bus: bus, Inbox: memory.NewInbox()}

	require.NoError(t, h.Handle(context.Background(), message(`{"event_id":"e2","unit_id":"gone","channel":"airbnb","external_id":"x"}`, 1)))
	require.NoError(t, h.Handle(context.Background(), message(`garbage`, 2)), "undecodable records are skipped")
}

func TestChannelImportForgetsOnTransientFailure(t *testing.T) {
	bus := &recordingBus{err: apperr.Upstream(errors.New("mongo down"))}
	h := &ChannelImportHandler{Bus: bus, Inbox: memory.NewInbox()}
	msg := message(`{"event_id":"e3","unit_id":"u1","channel":"airbnb","external_id":"x"}`, 1)

	require.Error(t, h.Handle(context.Background(), msg))
	bus.err = nil
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Len(t, bus.seen, 2, "a forgotten id is processed again")
}
