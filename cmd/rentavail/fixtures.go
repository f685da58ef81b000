package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/dto"
	unitsapp "rentavail/internal/app/handlers/units"
	"rentavail/internal/domain/shared/apperr"
)

type unitFixture struct {
	ID          string  `json:"id"`
	HostID      string  `json:"host_id"`
	Title       string  `json:"title"`
	Currency    string  `json:"currency"`
	NightlyRate string  `json:"nightly_rate"`
	Timezone    string  `json:"timezone"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	MinNights   int     `json:"min_nights"`
	MaxNights   int     `json:"max_nights"`
}

// seedUnits registers the units listed in path through the command bus.
// Units already present are left alone.
func (a *application) seedUnits(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("unit seed file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read seed: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	var fixtures []unitFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}

	imported := 0
	for _, fx := range fixtures {
		cmd := unitsapp.RegisterUnitCommand{
			ID:          fx.ID,
			HostID:      fx.HostID,
			Title:       fx.Title,
			Currency:    fx.Currency,
			NightlyRate: fx.NightlyRate,
			Timezone:    fx.Timezone,
			Lat:         fx.Lat,
			Lon:         fx.Lon,
			MinNights:   fx.MinNights,
			MaxNights:   fx.MaxNights,
		}
		if _, err := commands.Dispatch[unitsapp.RegisterUnitCommand, *dto.Unit](ctx, a.commands, cmd); err != nil {
			if apperr.KindOf(err) == apperr.KindConflict {
				continue
			}
			logger.Error("seed unit rejected", "unit_id", fx.ID, "error", err)
			continue
		}
		imported++
	}
	logger.Info("unit seed imported", "path", path, "count", imported)
	return nil
}

func seedUnitsPath(configured string) string {
	if configured != "" {
		return configured
	}
	candidates := []string{
		filepath.Join("data", "units.json"),
		filepath.Join("..", "..", "data", "units.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
