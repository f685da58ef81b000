package booking

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"rentavail/internal/app/dto"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/queries"
	"rentavail/internal/app/uow"
	domainbooking "rentavail/internal/domain/booking"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/daterange"
)

const (
	listGuestBookingsKey   = "booking.list_guest"
	listUnitBookingsKey    = "booking.list_unit"
	allStatusesFilterValue = "ALL"
)

type ListGuestBookingsQuery struct {
	GuestID string `validate:"required"`
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

type ListGuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) (dto.BookingCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	guestID := strings.TrimSpace(q.GuestID)
	bookings, err := unit.Bookings().ListByGuest(execCtx, guestID)
	if err != nil {
		return dto.BookingCollection{}, handlersupport.Classify(err)
	}
	items := summaries(bookings, allStatusesFilterValue)
	if h.Logger != nil {
		h.Logger.Debug("guest bookings listed", "guest_id", guestID, "count", len(items))
	}
	return dto.BookingCollection{Items: items}, nil
}

// ListUnitBookingsQuery lists bookings of a unit whose stay meets [From, To).
// Status defaults to PENDING; ALL disables the filter.
type ListUnitBookingsQuery struct {
	UnitID string `validate:"required"`
	From   string `validate:"required"`
	To     string `validate:"required"`
	Status string
}

func (q ListUnitBookingsQuery) Key() string { return listUnitBookingsKey }

type ListUnitBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListUnitBookingsHandler) Handle(ctx context.Context, q ListUnitBookingsQuery) (dto.BookingCollection, error) {
	from, err := daterange.ParseDay(q.From)
	if err != nil {
		return dto.BookingCollection{}, apperr.Validation(apperr.CodeInvalidDate, "from must be a YYYY-MM-DD date")
	}
	to, err := daterange.ParseDay(q.To)
	if err != nil {
		return dto.BookingCollection{}, apperr.Validation(apperr.CodeInvalidDate, "to must be a YYYY-MM-DD date")
	}
	if to < from {
		return dto.BookingCollection{}, apperr.Validation(apperr.CodeReversedRange, "to must not precede from")
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	u, loc, err := handlersupport.LoadUnit(execCtx, unit, q.UnitID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	bookings, err := unit.Bookings().ListByUnit(execCtx, u.ID, from.Midnight(loc), to.Midnight(loc))
	if err != nil {
		return dto.BookingCollection{}, handlersupport.Classify(err)
	}

	statusFilter := strings.ToUpper(strings.TrimSpace(q.Status))
	if statusFilter == "" {
		statusFilter = string(domainbooking.StatePending)
	}
	items := summaries(bookings, statusFilter)
	if h.Logger != nil {
		h.Logger.Debug("unit bookings listed", "unit_id", u.ID, "count", len(items), "status", statusFilter)
	}
	return dto.BookingCollection{Items: items}, nil
}

func summaries(bookings []*domainbooking.Booking, statusFilter string) []dto.BookingSummary {
	items := make([]dto.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		if statusFilter != allStatusesFilterValue && string(b.State) != statusFilter {
			continue
		}
		items = append(items, dto.MapBookingSummary(b))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

var _ queries.Handler[ListGuestBookingsQuery, dto.BookingCollection] = (*ListGuestBookingsHandler)(nil)
var _ queries.Handler[ListUnitBookingsQuery, dto.BookingCollection] = (*ListUnitBookingsHandler)(nil)
