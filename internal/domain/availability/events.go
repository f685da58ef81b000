package availability

import (
	"time"
)

type BlockCreated struct {
	BlockID string
	UnitID  string
	Span    BlockSpan
	Label   string
	At      time.Time
}

func (e BlockCreated) EventName() string     { return "calendar.blocked" }
func (e BlockCreated) AggregateID() string   { return e.UnitID }
func (e BlockCreated) OccurredAt() time.Time { return e.At }

type BlockUpdated struct {
	BlockID string
	UnitID  string
	Span    BlockSpan
	At      time.Time
}

func (e BlockUpdated) EventName() string     { return "calendar.block_updated" }
func (e BlockUpdated) AggregateID() string   { return e.UnitID }
func (e BlockUpdated) OccurredAt() time.Time { return e.At }

type BlockReleased struct {
	BlockID string
	UnitID  string
	Span    BlockSpan
	At      time.Time
}

func (e BlockReleased) EventName() string     { return "calendar.released" }
func (e BlockReleased) AggregateID() string   { return e.UnitID }
func (e BlockReleased) OccurredAt() time.Time { return e.At }

type ChannelEventImported struct {
	UnitID     string
	Channel    string
	ExternalID string
	Removed    bool
	At         time.Time
}

func (e ChannelEventImported) EventName() string     { return "calendar.channel_imported" }
func (e ChannelEventImported) AggregateID() string   { return e.UnitID }
func (e ChannelEventImported) OccurredAt() time.Time { return e.At }
