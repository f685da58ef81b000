package availability

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"rentavail/internal/domain/shared/daterange"
	"rentavail/internal/domain/shared/events"
)

var (
	ErrBlockNotFound   = errors.New("availability: block not found")
	ErrLabelRequired   = errors.New("availability: block label is required")
	ErrReversedSpan    = errors.New("availability: block end must not precede its start")
	ErrSpanRequired    = errors.New("availability: block needs a date range or an instant range")
	ErrInvalidColor    = errors.New("availability: color must be a #RRGGBB hex value")
	ErrUnitIDRequired  = errors.New("availability: unit id is required")
	ErrBlockIDRequired = errors.New("availability: block id is required")
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type BlockID string

type SpanKind string

const (
	SpanDates    SpanKind = "dates"
	SpanInstants SpanKind = "instants"
)

// BlockSpan is either an inclusive calendar-date range [StartDate, EndDate]
// or a half-open instant range [StartAt, EndAt).
type BlockSpan struct {
	Kind      SpanKind
	StartDate daterange.Day
	EndDate   daterange.Day
	StartAt   time.Time
	EndAt     time.Time
}

func DateSpan(start, end daterange.Day) (BlockSpan, error) {
	span := BlockSpan{Kind: SpanDates, StartDate: start, EndDate: end}
	return span, span.Validate()
}

func InstantSpan(start, end time.Time) (BlockSpan, error) {
	span := BlockSpan{Kind: SpanInstants, StartAt: start.UTC(), EndAt: end.UTC()}
	return span, span.Validate()
}

func (s BlockSpan) Validate() error {
	switch s.Kind {
	case SpanDates:
		if s.EndDate < s.StartDate {
			return ErrReversedSpan
		}
	case SpanInstants:
		if s.StartAt.IsZero() || s.EndAt.IsZero() {
			return ErrSpanRequired
		}
		if !s.EndAt.After(s.StartAt) {
			return ErrReversedSpan
		}
	default:
		return ErrSpanRequired
	}
	return nil
}

// Days returns the unit-local days the span covers. Instant spans cover every
// day they touch.
func (s BlockSpan) Days(loc *time.Location) daterange.DayRange {
	if s.Kind == SpanDates {
		return daterange.Inclusive(s.StartDate, s.EndDate)
	}
	return daterange.DayRange{From: daterange.DayOf(s.StartAt, loc), To: daterange.CeilDayOf(s.EndAt, loc)}
}

// maxZoneOffset bounds how far any IANA zone sits from UTC.
const maxZoneOffset = 14 * time.Hour

// Bounds returns instants that contain the span in every zone. Stores index
// blocks by them so a range query needs no location.
func (s BlockSpan) Bounds() (time.Time, time.Time) {
	if s.Kind == SpanInstants {
		return s.StartAt, s.EndAt
	}
	return s.StartDate.Midnight(time.UTC).Add(-maxZoneOffset), s.EndDate.AddDays(1).Midnight(time.UTC).Add(maxZoneOffset)
}

// ManualBlock is a host or staff hold on a unit's calendar.
type ManualBlock struct {
	ID        BlockID
	UnitID    string
	Span      BlockSpan
	Label     string
	Notes     string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type BlockRepository interface {
	ByID(ctx context.Context, id BlockID) (*ManualBlock, error)
	Save(ctx context.Context, block *ManualBlock) error
	Delete(ctx context.Context, id BlockID) error
	// ListByUnit returns blocks that may intersect [from, to).
	ListByUnit(ctx context.Context, unitID string, from, to time.Time) ([]*ManualBlock, error)
}

type CreateBlockParams struct {
	ID     BlockID
	UnitID string
	Span   BlockSpan
	Label  string
	Notes  string
	Color  string
	Now    time.Time
}

func NewManualBlock(params CreateBlockParams) (*ManualBlock, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrBlockIDRequired
	}
	if strings.TrimSpace(params.UnitID) == "" {
		return nil, ErrUnitIDRequired
	}
	if err := params.Span.Validate(); err != nil {
		return nil, err
	}
	label := strings.TrimSpace(params.Label)
	if label == "" {
		return nil, ErrLabelRequired
	}
	color, err := normalizeColor(params.Color)
	if err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	b := &ManualBlock{
		ID:        params.ID,
		UnitID:    params.UnitID,
		Span:      params.Span,
		Label:     label,
		Notes:     strings.TrimSpace(params.Notes),
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(BlockCreated{BlockID: string(b.ID), UnitID: b.UnitID, Span: b.Span, Label: b.Label, At: now})
	return b, nil
}

// UpdateBlockParams holds optional changes; nil fields are left untouched.
type UpdateBlockParams struct {
	Span  *BlockSpan
	Label *string
	Notes *string
	Color *string
	Now   time.Time
}

func (b *ManualBlock) Update(params UpdateBlockParams) error {
	if params.Span != nil {
		if err := params.Span.Validate(); err != nil {
			return err
		}
	}
	label := b.Label
	if params.Label != nil {
		label = strings.TrimSpace(*params.Label)
		if label == "" {
			return ErrLabelRequired
		}
	}
	color := b.Color
	if params.Color != nil {
		normalized, err := normalizeColor(*params.Color)
		if err != nil {
			return err
		}
		color = normalized
	}
	if params.Span != nil {
		b.Span = *params.Span
	}
	if params.Notes != nil {
		b.Notes = strings.TrimSpace(*params.Notes)
	}
	b.Label = label
	b.Color = color
	b.UpdatedAt = params.Now.UTC()
	b.Record(BlockUpdated{BlockID: string(b.ID), UnitID: b.UnitID, Span: b.Span, At: b.UpdatedAt})
	return nil
}

// Release marks the block as removed; the repository deletes it.
func (b *ManualBlock) Release(now time.Time) {
	b.Record(BlockReleased{BlockID: string(b.ID), UnitID: b.UnitID, Span: b.Span, At: now.UTC()})
}

func normalizeColor(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if !colorPattern.MatchString(raw) {
		return "", ErrInvalidColor
	}
	return strings.ToLower(raw), nil
}
