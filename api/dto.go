/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ON THE WIRE:
  Amounts travel as decimal strings ("120000.00"), never floats. The
  currency rides alongside; parsing happens once at the boundary and the
  rest of the system works on money.Amount.

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  the validator before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
  - asset/snapshot.go: The exported aggregate state DTOs are built from
*/
package api

import (
	"time"

	"github.com/warp/asset-engine/asset"
	"github.com/warp/asset-engine/money"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// RegisterAssetRequest creates a new asset in the Acquired state.
type RegisterAssetRequest struct {
	Code            string `json:"code" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category" validate:"required"`
	SubCategory     string `json:"sub_category,omitempty"`
	AcquisitionDate string `json:"acquisition_date" validate:"required"`
	AcquisitionCost string `json:"acquisition_cost" validate:"required"`
	Currency        string `json:"currency" validate:"required,len=3"`
	SalvageValue    string `json:"salvage_value,omitempty"`
	Method          string `json:"method,omitempty"`
	UsefulLifeYears int    `json:"useful_life_years,omitempty" validate:"gte=0"`
	Granularity     string `json:"granularity,omitempty"`
	SerialNumber    string `json:"serial_number,omitempty"`
	Location        string `json:"location,omitempty"`
	Custodian       string `json:"custodian,omitempty"`
	WarrantyEnd     string `json:"warranty_end,omitempty"`
}

// ConfigureAssetRequest adjusts depreciation configuration. Nil fields
// are left untouched.
type ConfigureAssetRequest struct {
	SalvageValue         *string `json:"salvage_value,omitempty"`
	Method               *string `json:"method,omitempty"`
	UsefulLifeYears      *int    `json:"useful_life_years,omitempty"`
	CustomRate           *string `json:"custom_rate,omitempty"`
	Granularity          *string `json:"granularity,omitempty"`
	PartialYearProration *bool   `json:"partial_year_proration,omitempty"`
	TotalExpectedUnits   *string `json:"total_expected_units,omitempty"`
}

// PlaceInServiceRequest starts the depreciation clock.
type PlaceInServiceRequest struct {
	Date string `json:"date" validate:"required"`
}

// ChangeStatusRequest drives the lifecycle state machine.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Date   string `json:"date,omitempty"`
}

// CostAdditionRequest capitalizes an improvement into the cost basis.
type CostAdditionRequest struct {
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date" validate:"required"`
}

// DepreciationRequest computes or applies one period.
type DepreciationRequest struct {
	AsOf  string  `json:"as_of" validate:"required"`
	Units *string `json:"units,omitempty"` // units-of-production only
}

// SellAssetRequest disposes of the asset by sale.
type SellAssetRequest struct {
	Date       string `json:"date" validate:"required"`
	SaleAmount string `json:"sale_amount" validate:"required"`
	Buyer      string `json:"buyer,omitempty"`
	InvoiceRef string `json:"invoice_ref,omitempty"`
}

// ScrapAssetRequest writes the asset off.
type ScrapAssetRequest struct {
	Date   string `json:"date" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

// TransferAssetRequest moves the asset to another unit.
type TransferAssetRequest struct {
	Date   string `json:"date" validate:"required"`
	Target string `json:"target" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

// DisposeAssetRequest runs a disposal of an arbitrary type.
type DisposeAssetRequest struct {
	Type       string  `json:"type" validate:"required"`
	Date       string  `json:"date" validate:"required"`
	SaleAmount *string `json:"sale_amount,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// RevalueAssetRequest adjusts the asset to an appraised net book value.
type RevalueAssetRequest struct {
	TargetNetBookValue string `json:"target_net_book_value" validate:"required"`
	Date               string `json:"date" validate:"required"`
	Reason             string `json:"reason,omitempty"`
}

// RunDepreciationRequest triggers a bulk depreciation run.
type RunDepreciationRequest struct {
	AsOf string `json:"as_of" validate:"required"`
}

// LoadScenarioRequest loads a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// AssetDTO is the full asset representation in API responses.
type AssetDTO struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	AssetType    string `json:"asset_type"`
	Category     string `json:"category"`
	SubCategory  string `json:"sub_category,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Location     string `json:"location,omitempty"`
	Custodian    string `json:"custodian,omitempty"`
	AccountGroup string `json:"account_group"`
	Status       string `json:"status"`

	AcquisitionDate string  `json:"acquisition_date"`
	InServiceDate   *string `json:"in_service_date,omitempty"`
	WarrantyEnd     *string `json:"warranty_end,omitempty"`

	Currency                string `json:"currency"`
	AcquisitionCost         string `json:"acquisition_cost"`
	CostValue               string `json:"cost_value"`
	SalvageValue            string `json:"salvage_value"`
	AccumulatedDepreciation string `json:"accumulated_depreciation"`
	NetBookValue            string `json:"net_book_value"`

	Method               string  `json:"method"`
	UsefulLifeYears      int     `json:"useful_life_years"`
	CustomRate           *string `json:"custom_rate,omitempty"`
	Granularity          string  `json:"granularity"`
	PartialYearProration bool    `json:"partial_year_proration"`
	TotalExpectedUnits   *string `json:"total_expected_units,omitempty"`

	DepreciationStartDate *string `json:"depreciation_start_date,omitempty"`
	LastDepreciationDate  *string `json:"last_depreciation_date,omitempty"`
	FullyDepreciated      bool    `json:"fully_depreciated"`

	Disposal    *DisposalDTO    `json:"disposal,omitempty"`
	Revaluation *RevaluationDTO `json:"revaluation,omitempty"`
}

// DepreciationRecordDTO is one period of depreciation.
type DepreciationRecordDTO struct {
	Period             string `json:"period"`
	PeriodStart        string `json:"period_start"`
	PeriodEnd          string `json:"period_end"`
	Amount             string `json:"amount"`
	AccumulatedAfter   string `json:"accumulated_after"`
	NetBookValueAfter  string `json:"net_book_value_after"`
	IsPosted           bool   `json:"is_posted"`
	CalculationDate    string `json:"calculation_date"`
}

// DisposalDTO is the realized disposal outcome.
type DisposalDTO struct {
	Type       string  `json:"type"`
	Date       string  `json:"date"`
	SaleAmount *string `json:"sale_amount,omitempty"`
	GainLoss   string  `json:"gain_loss"`
	Reason     string  `json:"reason,omitempty"`
	Buyer      string  `json:"buyer,omitempty"`
	InvoiceRef string  `json:"invoice_ref,omitempty"`
}

// RevaluationDTO is the latest revaluation applied to the asset.
type RevaluationDTO struct {
	Amount string `json:"amount"`
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}

// RevaluationResultDTO is returned by the revalue endpoint.
type RevaluationResultDTO struct {
	RevaluationAmount string `json:"revaluation_amount"`
	NewCostValue      string `json:"new_cost_value"`
	NewNetBookValue   string `json:"new_net_book_value"`
	Date              string `json:"date"`
}

// RunResultDTO summarizes a bulk depreciation run.
type RunResultDTO struct {
	Period    string                  `json:"period_as_of"`
	Processed int                     `json:"processed"`
	Skipped   int                     `json:"skipped"`
	Failed    int                     `json:"failed"`
	Records   []RunRecordDTO          `json:"records,omitempty"`
	Errors    []RunErrorDTO           `json:"errors,omitempty"`
}

// RunRecordDTO is one asset's outcome within a bulk run.
type RunRecordDTO struct {
	AssetID string `json:"asset_id"`
	Code    string `json:"code"`
	Period  string `json:"period"`
	Amount  string `json:"amount"`
}

// RunErrorDTO is one asset's failure within a bulk run.
type RunErrorDTO struct {
	AssetID string `json:"asset_id"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toAssetDTO(a *asset.FixedAsset) AssetDTO {
	s := a.Snapshot()
	dto := AssetDTO{
		ID:           string(s.ID),
		Code:         s.Code,
		Name:         s.Name,
		Description:  s.Description,
		AssetType:    string(s.AssetType),
		Category:     string(s.Category),
		SubCategory:  s.SubCategory,
		SerialNumber: s.SerialNumber,
		Location:     s.Location,
		Custodian:    s.Custodian,
		AccountGroup: s.AccountGroup,
		Status:       string(s.Status),

		AcquisitionDate: s.AcquisitionDate.Format("2006-01-02"),
		InServiceDate:   formatDatePtr(s.InServiceDate),
		WarrantyEnd:     formatDatePtr(s.WarrantyEnd),

		Currency:                s.Currency,
		AcquisitionCost:         s.AcquisitionCost.Value().StringFixed(money.Precision),
		CostValue:               s.CostValue.Value().StringFixed(money.Precision),
		SalvageValue:            s.SalvageValue.Value().StringFixed(money.Precision),
		AccumulatedDepreciation: s.AccumulatedDepreciation.Value().StringFixed(money.Precision),
		NetBookValue:            s.NetBookValue.Value().StringFixed(money.Precision),

		Method:               string(s.Method),
		UsefulLifeYears:      s.UsefulLifeYears,
		Granularity:          string(s.Granularity),
		PartialYearProration: s.PartialYearProration,

		DepreciationStartDate: formatDatePtr(s.DepreciationStartDate),
		LastDepreciationDate:  formatDatePtr(s.LastDepreciationDate),
		FullyDepreciated:      a.IsFullyDepreciated(),
	}

	if s.CustomRate != nil {
		r := s.CustomRate.String()
		dto.CustomRate = &r
	}
	if !s.TotalExpectedUnits.IsZero() {
		u := s.TotalExpectedUnits.String()
		dto.TotalExpectedUnits = &u
	}
	if s.Disposal != nil {
		dto.Disposal = toDisposalDTO(s.Disposal)
	}
	if s.LastRevaluation != nil {
		dto.Revaluation = &RevaluationDTO{
			Amount: s.LastRevaluation.Amount.Value().StringFixed(money.Precision),
			Date:   s.LastRevaluation.Date.Format("2006-01-02"),
			Reason: s.LastRevaluation.Reason,
		}
	}
	return dto
}

func toDisposalDTO(d *asset.DisposalOutcome) *DisposalDTO {
	dto := &DisposalDTO{
		Type:       string(d.Type),
		Date:       d.Date.Format("2006-01-02"),
		GainLoss:   d.GainLoss.Value().StringFixed(money.Precision),
		Reason:     d.Reason,
		Buyer:      d.Buyer,
		InvoiceRef: d.InvoiceRef,
	}
	if d.SaleAmount != nil {
		s := d.SaleAmount.Value().StringFixed(money.Precision)
		dto.SaleAmount = &s
	}
	return dto
}

func toRecordDTO(r asset.DepreciationRecord) DepreciationRecordDTO {
	return DepreciationRecordDTO{
		Period:            r.Period,
		PeriodStart:       r.PeriodStart.Format("2006-01-02"),
		PeriodEnd:         r.PeriodEnd.Format("2006-01-02"),
		Amount:            r.DepreciationAmount.Value().StringFixed(money.Precision),
		AccumulatedAfter:  r.AccumulatedDepreciationAfter.Value().StringFixed(money.Precision),
		NetBookValueAfter: r.NetBookValueAfter.Value().StringFixed(money.Precision),
		IsPosted:          r.IsPosted,
		CalculationDate:   r.CalculationDate.Format(time.RFC3339),
	}
}

func toRecordDTOs(records []asset.DepreciationRecord) []DepreciationRecordDTO {
	dtos := make([]DepreciationRecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toRecordDTO(r)
	}
	return dtos
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
