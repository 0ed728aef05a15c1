/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Seeds the repository with recognizable asset fleets so the API can be
  explored without hand-crafting registrations. Each scenario is a named
  loader; loading is additive and skips codes that already exist.

SCENARIOS:
  factory-floor: machinery on several methods, mid-life, one disposal
  office:        fixtures, vehicles and software on defaults
  property:      land (non-depreciating) and a building with salvage

SEE ALSO:
  - handlers.go: scenario endpoints are registered in server.go
  - asset/catalog.go: the category constructors scenarios build on
*/
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/asset"
	"github.com/warp/asset-engine/money"
)

type scenario struct {
	ID          string
	Name        string
	Description string
	Load        func(ctx context.Context, h *Handler) error
}

func scenarios() []scenario {
	return []scenario{
		{
			ID:          "factory-floor",
			Name:        "Factory Floor",
			Description: "Machinery on straight-line, double-declining and units-of-production, with history",
			Load:        loadFactoryFloor,
		},
		{
			ID:          "office",
			Name:        "Office Fit-Out",
			Description: "Fixtures, a vehicle and software licenses on category defaults",
			Load:        loadOffice,
		},
		{
			ID:          "property",
			Name:        "Property Portfolio",
			Description: "Land (never depreciates) and a building with salvage value",
			Load:        loadProperty,
		},
	}
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	var dtos []ScenarioDTO
	for _, s := range scenarios() {
		dtos = append(dtos, ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario seeds the repository with one scenario's assets.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	for _, s := range scenarios() {
		if s.ID != req.ScenarioID {
			continue
		}
		if err := s.Load(r.Context(), h); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		h.currentScenario = s.ID
		h.Log.WithField("scenario", s.ID).Info("scenario loaded")
		writeJSON(w, http.StatusOK, map[string]string{"loaded": s.ID})
		return
	}
	writeError(w, http.StatusNotFound, "Unknown scenario", nil)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func loadFactoryFloor(ctx context.Context, h *Handler) error {
	acquired := time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)

	press, err := asset.NewMachinery(asset.ID(uuid.NewString()), "MCH-001",
		"Hydraulic Press", acquired, money.MustParse("120000.00", "USD"))
	if err != nil {
		return err
	}
	if err := press.SetSalvageValue(money.MustParse("20000.00", "USD")); err != nil {
		return err
	}
	if err := press.SetDepreciationMethod(asset.StraightLine, 5, nil); err != nil {
		return err
	}
	if err := press.PlaceInService(time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		return err
	}
	// A year of monthly history
	for m := time.February; m <= time.December; m++ {
		if _, err := press.ApplyPeriod(time.Date(2023, m, 15, 0, 0, 0, 0, time.UTC), nil); err != nil {
			return err
		}
	}

	lathe, err := asset.NewMachinery(asset.ID(uuid.NewString()), "MCH-002",
		"CNC Lathe", acquired, money.MustParse("80000.00", "USD"))
	if err != nil {
		return err
	}
	if err := lathe.SetDepreciationMethod(asset.DoubleDecliningBalance, 5, nil); err != nil {
		return err
	}
	if err := lathe.SetDepreciationPeriod(asset.Annually); err != nil {
		return err
	}
	if err := lathe.PlaceInService(time.Date(2023, time.January, 20, 0, 0, 0, 0, time.UTC)); err != nil {
		return err
	}

	cutter, err := asset.NewMachinery(asset.ID(uuid.NewString()), "MCH-003",
		"Laser Cutter", acquired, money.MustParse("50000.00", "USD"))
	if err != nil {
		return err
	}
	if err := cutter.SetDepreciationMethod(asset.UnitsOfProduction, 10, nil); err != nil {
		return err
	}
	if err := cutter.SetTotalExpectedUnits(decimal.NewFromInt(100000)); err != nil {
		return err
	}
	if err := cutter.PlaceInService(time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		return err
	}

	return createAll(ctx, h, press, lathe, cutter)
}

func loadOffice(ctx context.Context, h *Handler) error {
	acquired := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	desks, err := asset.NewFixture(asset.ID(uuid.NewString()), "FIX-001",
		"Workstation Desks", acquired, money.MustParse("18000.00", "USD"))
	if err != nil {
		return err
	}
	if err := desks.PlaceInService(acquired); err != nil {
		return err
	}

	van, err := asset.NewVehicle(asset.ID(uuid.NewString()), "VEH-001",
		"Delivery Van", acquired, money.MustParse("42000.00", "USD"))
	if err != nil {
		return err
	}
	if err := van.SetSalvageValue(money.MustParse("6000.00", "USD")); err != nil {
		return err
	}
	if err := van.PlaceInService(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)); err != nil {
		return err
	}

	erp, err := asset.NewSoftware(asset.ID(uuid.NewString()), "SW-001",
		"ERP License", acquired, money.MustParse("30000.00", "USD"))
	if err != nil {
		return err
	}
	if err := erp.PlaceInService(acquired); err != nil {
		return err
	}

	return createAll(ctx, h, desks, van, erp)
}

func loadProperty(ctx context.Context, h *Handler) error {
	acquired := time.Date(2020, time.September, 1, 0, 0, 0, 0, time.UTC)

	land, err := asset.NewLand(asset.ID(uuid.NewString()), "LND-001",
		"Industrial Plot", acquired, money.MustParse("500000.00", "USD"))
	if err != nil {
		return err
	}

	warehouse, err := asset.NewBuilding(asset.ID(uuid.NewString()), "BLD-001",
		"Warehouse", acquired, money.MustParse("900000.00", "USD"))
	if err != nil {
		return err
	}
	if err := warehouse.SetSalvageValue(money.MustParse("100000.00", "USD")); err != nil {
		return err
	}
	if err := warehouse.SetDepreciationPeriod(asset.Annually); err != nil {
		return err
	}
	if err := warehouse.PlaceInService(acquired); err != nil {
		return err
	}

	return createAll(ctx, h, land, warehouse)
}

// createAll persists the seeds, skipping codes already registered so a
// scenario can be loaded twice without erroring.
func createAll(ctx context.Context, h *Handler, assets ...*asset.FixedAsset) error {
	for _, a := range assets {
		if err := h.Repo.Create(ctx, a); err != nil {
			if errors.Is(err, asset.ErrCodeTaken) {
				continue
			}
			return err
		}
	}
	return nil
}
