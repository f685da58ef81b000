package dto

import (
	"time"

	domainavailability "rentavail/internal/domain/availability"
)

type Block struct {
	ID        string     `json:"id"`
	UnitID    string     `json:"unit_id"`
	Kind      string     `json:"kind"`
	StartDate string     `json:"start_date,omitempty"`
	EndDate   string     `json:"end_date,omitempty"`
	StartAt   *time.Time `json:"start_at,omitempty"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	Label     string     `json:"label"`
	Notes     string     `json:"notes,omitempty"`
	Color     string     `json:"color,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BlockResult carries the block plus booked days it overlaps. Conflicts are
// advisory; the block is stored regardless.
type BlockResult struct {
	Block     Block    `json:"block"`
	Conflicts []string `json:"conflicts"`
}

type BlockCollection struct {
	Items []Block `json:"items"`
}

func MapBlock(b *domainavailability.ManualBlock) Block {
	out := Block{
		ID:        string(b.ID),
		UnitID:    b.UnitID,
		Kind:      string(b.Span.Kind),
		Label:     b.Label,
		Notes:     b.Notes,
		Color:     b.Color,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	switch b.Span.Kind {
	case domainavailability.SpanDates:
		out.StartDate = b.Span.StartDate.String()
		out.EndDate = b.Span.EndDate.String()
	case domainavailability.SpanInstants:
		start, end := b.Span.StartAt, b.Span.EndAt
		out.StartAt = &start
		out.EndAt = &end
	}
	return out
}
