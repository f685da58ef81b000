package units

import (
	"context"
	"sort"

	"rentavail/internal/app/dto"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/queries"
	"rentavail/internal/app/uow"
)

const (
	getUnitKey   = "units.get"
	listUnitsKey = "units.list"
)

type GetUnitQuery struct {
	UnitID string `validate:"required"`
}

func (q GetUnitQuery) Key() string { return getUnitKey }

type GetUnitHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetUnitHandler) Handle(ctx context.Context, q GetUnitQuery) (dto.Unit, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Unit{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	u, _, err := handlersupport.LoadUnit(execCtx, unit, q.UnitID)
	if err != nil {
		return dto.Unit{}, err
	}
	return dto.MapUnit(u), nil
}

type ListUnitsQuery struct{}

func (q ListUnitsQuery) Key() string { return listUnitsKey }

type ListUnitsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListUnitsHandler) Handle(ctx context.Context, _ ListUnitsQuery) (dto.UnitCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UnitCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	rows, err := unit.Units().List(execCtx)
	if err != nil {
		return dto.UnitCollection{}, handlersupport.Classify(err)
	}
	items := make([]dto.Unit, 0, len(rows))
	for _, u := range rows {
		items = append(items, dto.MapUnit(u))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return dto.UnitCollection{Items: items}, nil
}

var _ queries.Handler[GetUnitQuery, dto.Unit] = (*GetUnitHandler)(nil)
var _ queries.Handler[ListUnitsQuery, dto.UnitCollection] = (*ListUnitsHandler)(nil)
