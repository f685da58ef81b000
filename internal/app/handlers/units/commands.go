package units

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/dto"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/outbox"
	"rentavail/internal/app/uow"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/money"
	domainunits "rentavail/internal/domain/units"
)

const (
	registerUnitKey = "units.register"
	changeRateKey   = "units.change_rate"
	suspendUnitKey  = "units.suspend"
)

// RegisterUnitCommand adds a unit to the directory. NightlyRate is a decimal
// string in major units of Currency. Without a Timezone the zone is resolved
// from Lat/Lon.
type RegisterUnitCommand struct {
	ID          string
	HostID      string `validate:"required"`
	Title       string `validate:"required,max=200"`
	Currency    string `validate:"required,len=3"`
	NightlyRate string `validate:"required"`
	Timezone    string
	Lat         float64 `validate:"gte=-90,lte=90"`
	Lon         float64 `validate:"gte=-180,lte=180"`
	MinNights   int     `validate:"gte=0"`
	MaxNights   int     `validate:"gte=0"`
}

func (c RegisterUnitCommand) Key() string { return registerUnitKey }

type RegisterUnitHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *RegisterUnitHandler) Handle(ctx context.Context, cmd RegisterUnitCommand) (*dto.Unit, error) {
	rate, err := money.ParseMajor(cmd.NightlyRate, cmd.Currency)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidMoney, err)
	}
	id := strings.TrimSpace(cmd.ID)
	if id == "" {
		id = uuid.NewString()
	}
	u, err := domainunits.NewUnit(domainunits.CreateUnitParams{
		ID:          domainunits.UnitID(id),
		Host:        domainunits.HostID(strings.TrimSpace(cmd.HostID)),
		Title:       cmd.Title,
		Currency:    cmd.Currency,
		NightlyRate: rate,
		Timezone:    cmd.Timezone,
		Lat:         cmd.Lat,
		Lon:         cmd.Lon,
		MinNights:   cmd.MinNights,
		MaxNights:   cmd.MaxNights,
		Now:         now(h.Now),
	})
	if err != nil {
		return nil, handlersupport.Classify(err)
	}
	return apply(ctx, h.UoWFactory, h.Outbox, h.Encoder, h.Logger, "unit registered", func(ctx context.Context, unit uow.UnitOfWork) (*domainunits.Unit, error) {
		_, err := unit.Units().ByID(ctx, u.ID)
		switch {
		case err == nil:
			return nil, apperr.Conflict(apperr.CodeUnitExists, fmt.Sprintf("unit %s already exists", u.ID))
		case errors.Is(err, domainunits.ErrUnitNotFound):
			return u, nil
		default:
			return nil, handlersupport.Classify(err)
		}
	})
}

type ChangeRateCommand struct {
	UnitID      string `validate:"required"`
	NightlyRate string `validate:"required"`
}

func (c ChangeRateCommand) Key() string { return changeRateKey }

// ChangeRateHandler sets a unit's nightly rate. Issued quotes keep the rate
// they were priced with.
type ChangeRateHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *ChangeRateHandler) Handle(ctx context.Context, cmd ChangeRateCommand) (*dto.Unit, error) {
	return apply(ctx, h.UoWFactory, h.Outbox, h.Encoder, h.Logger, "unit rate changed", func(ctx context.Context, unit uow.UnitOfWork) (*domainunits.Unit, error) {
		u, _, err := handlersupport.LoadUnit(ctx, unit, cmd.UnitID)
		if err != nil {
			return nil, err
		}
		rate, err := money.ParseMajor(cmd.NightlyRate, u.Currency)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidMoney, err)
		}
		return u, handlersupport.Classify(u.ChangeRate(rate, now(h.Now)))
	})
}

type SuspendUnitCommand struct {
	UnitID string `validate:"required"`
	Reason string `validate:"max=500"`
}

func (c SuspendUnitCommand) Key() string { return suspendUnitKey }

// SuspendUnitHandler stops a unit from taking new quotes and bookings.
type SuspendUnitHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *SuspendUnitHandler) Handle(ctx context.Context, cmd SuspendUnitCommand) (*dto.Unit, error) {
	return apply(ctx, h.UoWFactory, h.Outbox, h.Encoder, h.Logger, "unit suspended", func(ctx context.Context, unit uow.UnitOfWork) (*domainunits.Unit, error) {
		u, _, err := handlersupport.LoadUnit(ctx, unit, cmd.UnitID)
		if err != nil {
			return nil, err
		}
		return u, handlersupport.Classify(u.Suspend(strings.TrimSpace(cmd.Reason), now(h.Now)))
	})
}

// apply runs change inside a unit of work and stores the unit it returns
// together with the events it recorded.
func apply(ctx context.Context, factory uow.UoWFactory, box outbox.Outbox, encoder outbox.EventEncoder, logger *slog.Logger, msg string, change func(context.Context, uow.UnitOfWork) (*domainunits.Unit, error)) (*dto.Unit, error) {
	unit, ctx, managed, err := handlersupport.BeginWriteUnit(ctx, factory)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}
	u, err := change(ctx, unit)
	if err != nil {
		return nil, err
	}
	if err := unit.Units().Save(ctx, u); err != nil {
		return nil, handlersupport.Classify(err)
	}
	if err := outbox.Drain(ctx, box, encoder, u); err != nil {
		return nil, err
	}
	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, handlersupport.Classify(err)
		}
		committed = true
	}
	if logger != nil {
		logger.Info(msg, "unit_id", u.ID, "timezone", u.Timezone, "rate_minor", u.NightlyRate, "state", u.State)
	}
	out := dto.MapUnit(u)
	return &out, nil
}

func now(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock().UTC()
}

var _ commands.Handler[RegisterUnitCommand, *dto.Unit] = (*RegisterUnitHandler)(nil)
var _ commands.Handler[ChangeRateCommand, *dto.Unit] = (*ChangeRateHandler)(nil)
var _ commands.Handler[SuspendUnitCommand, *dto.Unit] = (*SuspendUnitHandler)(nil)
