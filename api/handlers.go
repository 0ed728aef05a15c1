/*
handlers.go - HTTP API handlers for the asset engine

PURPOSE:
  Exposes the valuation and depreciation engine via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to the asset
  aggregate and repository.

ENDPOINTS:
  Assets:
    GET    /api/assets                     List (filter: status, category, currency)
    POST   /api/assets                     Register a new asset
    GET    /api/assets/{id}                Get asset details
    DELETE /api/assets/{id}                Delete (only without financial history)
    PUT    /api/assets/{id}/config         Adjust depreciation configuration
    POST   /api/assets/{id}/in-service     Place in service
    POST   /api/assets/{id}/status         Lifecycle transitions
    POST   /api/assets/{id}/cost-additions Capitalize an addition

  Depreciation:
    GET    /api/assets/{id}/depreciation          List applied records
    GET    /api/assets/{id}/depreciation/preview  Preview one period (no effect)
    POST   /api/assets/{id}/depreciation          Apply one period
    POST   /api/assets/{id}/depreciation/{period}/posted  Mark journal-posted
    POST   /api/depreciation/run                  Bulk run across assets

  Disposal / Revaluation:
    POST   /api/assets/{id}/sell
    POST   /api/assets/{id}/scrap
    POST   /api/assets/{id}/transfer
    POST   /api/assets/{id}/dispose
    POST   /api/assets/{id}/revalue

ERROR HANDLING:
  Domain errors map to HTTP status by category:
  - 400: Validation errors, configuration errors, numeric errors
  - 404: Asset not found
  - 409: State errors (disposed, duplicate period, code taken)
  - 500: Internal errors (logged with full context)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scheduler.go: Bulk depreciation runner
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/asset-engine/asset"
	"github.com/warp/asset-engine/money"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo asset.Repository
	Log  *logrus.Logger

	validate *validator.Validate

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given repository.
func NewHandler(repo asset.Repository, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{
		Repo:     repo,
		Log:      log,
		validate: validator.New(),
	}
}

// =============================================================================
// ASSET HANDLERS
// =============================================================================

// ListAssets returns assets matching the query filters.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	var filter asset.ListFilter
	if v := r.URL.Query().Get("status"); v != "" {
		s := asset.Status(v)
		filter.Status = &s
	}
	if v := r.URL.Query().Get("category"); v != "" {
		c := asset.Category(v)
		filter.Category = &c
	}
	if v := r.URL.Query().Get("currency"); v != "" {
		filter.Currency = &v
	}

	assets, err := h.Repo.List(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dtos := make([]AssetDTO, len(assets))
	for i, a := range assets {
		dtos[i] = toAssetDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RegisterAsset creates a new asset in the Acquired state.
func (h *Handler) RegisterAsset(w http.ResponseWriter, r *http.Request) {
	var req RegisterAssetRequest
	if !h.decode(w, r, &req) {
		return
	}

	acquired, err := parseDate(req.AcquisitionDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid acquisition_date format (use YYYY-MM-DD)", err)
		return
	}
	cost, err := money.NewFromString(req.AcquisitionCost, req.Currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid acquisition_cost", err)
		return
	}

	category := asset.Category(req.Category)
	method := asset.StraightLine
	if req.Method != "" {
		method = asset.Method(req.Method)
	}
	years := req.UsefulLifeYears
	if years == 0 && method != asset.MethodNone {
		years = asset.DefaultUsefulLifeYears(category)
	}
	if category == asset.CategoryLand {
		method = asset.MethodNone
		years = 0
	}

	a, err := asset.New(asset.ID(uuid.NewString()), req.Code, req.Name,
		asset.CategoryType(category), category, acquired, cost, years, method)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	a.SetDescription(req.Description)
	a.SetSubCategory(req.SubCategory)
	a.SetSerialNumber(req.SerialNumber)
	a.SetLocation(req.Location)
	a.SetCustodian(req.Custodian)
	if req.SalvageValue != "" {
		salvage, err := money.NewFromString(req.SalvageValue, req.Currency)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid salvage_value", err)
			return
		}
		if err := a.SetSalvageValue(salvage); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	}
	if req.Granularity != "" {
		if err := a.SetDepreciationPeriod(asset.PeriodGranularity(req.Granularity)); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	}
	if req.WarrantyEnd != "" {
		we, err := parseDate(req.WarrantyEnd)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid warranty_end format (use YYYY-MM-DD)", err)
			return
		}
		a.SetWarrantyEnd(&we)
	}

	if err := h.Repo.Create(r.Context(), a); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"asset_id": a.ID(),
		"code":     a.Code(),
		"category": a.Category(),
	}).Info("asset registered")

	writeJSON(w, http.StatusCreated, toAssetDTO(a))
}

// GetAsset returns a single asset.
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(a))
}

// DeleteAsset removes an asset registered by mistake.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := asset.ID(chi.URLParam(r, "id"))
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConfigureAsset adjusts depreciation configuration.
func (h *Handler) ConfigureAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	var req ConfigureAssetRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.SalvageValue != nil {
		salvage, err := money.NewFromString(*req.SalvageValue, a.Currency())
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid salvage_value", err)
			return
		}
		if err := a.SetSalvageValue(salvage); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	}
	if req.Method != nil || req.UsefulLifeYears != nil || req.CustomRate != nil {
		method := a.DepreciationMethod()
		if req.Method != nil {
			method = asset.Method(*req.Method)
		}
		years := a.UsefulLifeYears()
		if req.UsefulLifeYears != nil {
			years = *req.UsefulLifeYears
		}
		rate := a.CustomRate()
		if req.CustomRate != nil {
			d, err := decimal.NewFromString(*req.CustomRate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid custom_rate", err)
				return
			}
			rate = &d
		}
		if err := a.SetDepreciationMethod(method, years, rate); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	}
	if req.Granularity != nil {
		if err := a.SetDepreciationPeriod(asset.PeriodGranularity(*req.Granularity)); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	}
	if req.PartialYearProration != nil {
		if err := a.SetPartialYearProration(*req.PartialYearProration); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	}
	if req.TotalExpectedUnits != nil {
		units, err := decimal.NewFromString(*req.TotalExpectedUnits)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid total_expected_units", err)
			return
		}
		if err := a.SetTotalExpectedUnits(units); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	}

	if err := h.Repo.Save(r.Context(), a); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(a))
}

// PlaceInService moves an asset into service and starts depreciation.
func (h *Handler) PlaceInService(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	var req PlaceInServiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if err := a.PlaceInService(date); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.Repo.Save(r.Context(), a); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.Log.WithFields(logrus.Fields{"asset_id": a.ID(), "date": req.Date}).
		Info("asset placed in service")
	writeJSON(w, http.StatusOK, toAssetDTO(a))
}

// ChangeStatus drives the lifecycle state machine.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	var err error
	switch asset.Status(req.Status) {
	case asset.StatusInService:
		if a.Status() == asset.StatusUnderMaintenance {
			err = a.ReturnFromMaintenance()
		} else {
			date := time.Now().UTC()
			if req.Date != "" {
				if date, err = parseDate(req.Date); err != nil {
					writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
					return
				}
			}
			err = a.PlaceInService(date)
		}
	case asset.StatusUnderMaintenance:
		err = a.MarkUnderMaintenance()
	case asset.StatusOutOfService:
		err = a.MarkOutOfService()
	case asset.StatusLost:
		err = a.MarkLost()
	default:
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Status %q cannot be set directly", req.Status), nil)
		return
	}
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	if err := h.Repo.Save(r.Context(), a); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(a))
}

// AddCostAddition capitalizes an improvement into the cost basis.
func (h *Handler) AddCostAddition(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	var req CostAdditionRequest
	if !h.decode(w, r, &req) {
		return
	}
	amount, err := money.NewFromString(req.Amount, a.Currency())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if err := a.AddToCost(amount, req.Description, date); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.Repo.Save(r.Context(), a); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(a))
}

// =============================================================================
// DEPRECIATION HANDLERS
// =============================================================================

// ListDepreciation returns the applied depreciation records.
func (h *Handler) ListDepreciation(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(a.Records()))
}

// PreviewDepreciation computes one period without applying it.
func (h *Handler) PreviewDepreciation(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	asOf, usage, ok := h.depreciationInputs(w,
		r.URL.Query().Get("as_of"), r.URL.Query().Get("units"))
	if !ok {
		return
	}

	rec, err := asset.ComputePeriod(a, asOf, usage)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// ApplyDepreciation computes and commits one period atomically.
func (h *Handler) ApplyDepreciation(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	var req DepreciationRequest
	if !h.decode(w, r, &req) {
		return
	}
	units := ""
	if req.Units != nil {
		units = *req.Units
	}
	asOf, usage, ok := h.depreciationInputs(w, req.AsOf, units)
	if !ok {
		return
	}

	rec, err := a.ApplyPeriod(asOf, usage)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.Repo.Save(r.Context(), a); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"asset_id": a.ID(),
		"period":   rec.Period,
		"amount":   rec.DepreciationAmount.String(),
	}).Info("depreciation applied")
	writeJSON(w, http.StatusCreated, toRecordDTO(rec))
}

// MarkDepreciationPosted flips a record's posted flag after the external
// journal entry has been accepted.
func (h *Handler) MarkDepreciationPosted(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	period := chi.URLParam(r, "period")
	if err := a.MarkPeriodPosted(period); err != nil {
		writeError(w, http.StatusNotFound, "Depreciation record not found", err)
		return
	}
	if err := h.Repo.Save(r.Context(), a); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// depreciationInputs parses the as-of date and optional usage units.
func (h *Handler) depreciationInputs(w http.ResponseWriter, asOfStr, unitsStr string) (time.Time, *asset.Usage, bool) {
	asOf, err := parseDate(asOfStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return time.Time{}, nil, false
	}
	var usage *asset.Usage
	if unitsStr != "" {
		units, err := decimal.NewFromString(unitsStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid units", err)
			return time.Time{}, nil, false
		}
		usage = &asset.Usage{Units: units}
	}
	return asOf, usage, true
}

// =============================================================================
// DISPOSAL HANDLERS
// =============================================================================

// SellAsset disposes of the asset by sale.
func (h *Handler) SellAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	var req SellAssetRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	sale, err := money.NewFromString(req.SaleAmount, a.Currency())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sale_amount", err)
		return
	}

	out, err := a.Sell(date, sale, req.Buyer, req.InvoiceRef)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.Repo.Save(r.Context(), a); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"asset_id":  a.ID(),
		"sale":      sale.String(),
		"gain_loss": out.GainLoss.String(),
	}).Info("asset sold")
	writeJSON(w, http.StatusOK, toDisposalDTO(out))
}

// ScrapAsset writes the asset off with no proceeds.
func (h *Handler) ScrapAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	var req ScrapAssetRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	out, err := a.Scrap(date, req.Reason)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.Repo.Save(r.Context(), a); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDisposalDTO(out))
}

// TransferAsset moves the asset to another unit.
func (h *Handler) TransferAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	var req TransferAssetRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	out, err := a.Transfer(date, req.Target, req.Reason)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.Repo.Save(r.Context(), a); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDisposalDTO(out))
}

// DisposeAsset runs a disposal of an arbitrary type.
func (h *Handler) DisposeAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	var req DisposeAssetRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	var sale *money.Amount
	if req.SaleAmount != nil {
		s, err := money.NewFromString(*req.SaleAmount, a.Currency())
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid sale_amount", err)
			return
		}
		sale = &s
	}

	out, err := a.Dispose(asset.DisposalType(req.Type), date, sale, req.Reason)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.Repo.Save(r.Context(), a); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDisposalDTO(out))
}

// =============================================================================
// REVALUATION HANDLER
// =============================================================================

// RevalueAsset adjusts the asset to an appraised net book value.
func (h *Handler) RevalueAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadAsset(w, r)
	if !ok {
		return
	}
	var req RevalueAssetRequest
	if !h.decode(w, r, &req) {
		return
	}
	target, err := money.NewFromString(req.TargetNetBookValue, a.Currency())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid target_net_book_value", err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	result, err := a.Revalue(target, date, req.Reason)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.Repo.Save(r.Context(), a); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"asset_id": a.ID(),
		"delta":    result.RevaluationAmount.String(),
	}).Info("asset revalued")
	writeJSON(w, http.StatusOK, RevaluationResultDTO{
		RevaluationAmount: result.RevaluationAmount.Value().StringFixed(money.Precision),
		NewCostValue:      result.NewCostValue.Value().StringFixed(money.Precision),
		NewNetBookValue:   result.NewNetBookValue.Value().StringFixed(money.Precision),
		Date:              result.Date.Format("2006-01-02"),
	})
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadAsset fetches the asset named by the {id} URL parameter, writing
// the error response itself when the load fails.
func (h *Handler) loadAsset(w http.ResponseWriter, r *http.Request) (*asset.FixedAsset, bool) {
	id := asset.ID(chi.URLParam(r, "id"))
	a, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return nil, false
	}
	return a, true
}

// decode parses and validates a JSON request body.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// writeDomainError maps engine errors to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, asset.ErrNotFound):
		writeError(w, http.StatusNotFound, "Asset not found", err)
	case errors.Is(err, asset.ErrCodeTaken), errors.Is(err, asset.ErrHasHistory):
		writeError(w, http.StatusConflict, err.Error(), err)
	case asset.IsStateError(err):
		writeError(w, http.StatusConflict, err.Error(), err)
	case asset.IsConfigError(err):
		writeError(w, http.StatusBadRequest, err.Error(), err)
	case asset.IsNumericError(err):
		h.Log.WithField("path", r.URL.Path).WithError(err).Error("numeric error")
		writeError(w, http.StatusBadRequest, err.Error(), err)
	default:
		h.Log.WithField("path", r.URL.Path).WithError(err).Error("internal error")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
