/*
scheduler.go - Bulk depreciation runner

PURPOSE:
  Runs one depreciation period across every eligible asset, either on a
  timer (month-end style batch) or on demand via POST /api/depreciation/run.

ELIGIBILITY:
  An asset is picked up when it is InService or UnderMaintenance, has a
  depreciation start date, and its method is time-based. Units-of-production
  assets are skipped: their usage arrives from an external feed per asset,
  so bulk runs cannot compute them.

IDEMPOTENCY:
  Assets whose current period is already recorded are skipped, so a run
  can be repeated for the same as-of date without double-charging anyone.

USAGE:
  runner := NewDepreciationRunner(repo, log)
  runner.Start()
  // ... later
  runner.Stop()

SEE ALSO:
  - handlers.go: RunDepreciation endpoint (manual runs)
  - asset/depreciation.go: per-asset period computation
*/
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/asset-engine/asset"
	"github.com/warp/asset-engine/money"
)

// DepreciationRunner applies the current period across all eligible assets.
type DepreciationRunner struct {
	Repo          asset.Repository
	Log           *logrus.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDepreciationRunner creates a runner with a daily check interval.
func NewDepreciationRunner(repo asset.Repository, log *logrus.Logger) *DepreciationRunner {
	if log == nil {
		log = logrus.New()
	}
	return &DepreciationRunner{
		Repo:          repo,
		Log:           log,
		CheckInterval: 24 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the background runner.
func (dr *DepreciationRunner) Start() {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if !dr.Enabled {
		dr.Log.Info("depreciation runner disabled, not starting")
		return
	}

	dr.ticker = time.NewTicker(dr.CheckInterval)
	dr.wg.Add(1)
	go dr.run()

	dr.Log.WithField("interval", dr.CheckInterval).Info("depreciation runner started")
}

// Stop stops the background runner.
func (dr *DepreciationRunner) Stop() {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if dr.ticker != nil {
		dr.ticker.Stop()
		close(dr.stop)
		dr.wg.Wait()
		dr.Log.Info("depreciation runner stopped")
	}
}

func (dr *DepreciationRunner) run() {
	defer dr.wg.Done()

	for {
		select {
		case <-dr.ticker.C:
			result := dr.RunOnce(context.Background(), time.Now().UTC())
			if result.Processed > 0 || result.Failed > 0 {
				dr.Log.WithFields(logrus.Fields{
					"processed": result.Processed,
					"skipped":   result.Skipped,
					"failed":    result.Failed,
				}).Info("scheduled depreciation run completed")
			}
		case <-dr.stop:
			return
		}
	}
}

// RunOnce applies the period containing asOf to every eligible asset and
// returns a per-asset summary. Safe to repeat for the same as-of date.
func (dr *DepreciationRunner) RunOnce(ctx context.Context, asOf time.Time) RunResultDTO {
	result := RunResultDTO{Period: asOf.Format("2006-01-02")}

	assets, err := dr.Repo.List(ctx, asset.ListFilter{})
	if err != nil {
		dr.Log.WithError(err).Error("failed to list assets for depreciation run")
		result.Errors = append(result.Errors, RunErrorDTO{Error: err.Error()})
		result.Failed++
		return result
	}

	for _, a := range assets {
		if !eligibleForBulkRun(a) {
			result.Skipped++
			continue
		}

		rec, err := a.ApplyPeriod(asOf, nil)
		if err != nil {
			// Already-recorded periods and exhausted schedules are the
			// normal idempotent path, not failures.
			if errors.Is(err, asset.ErrDuplicatePeriod) ||
				errors.Is(err, asset.ErrAlreadyFullyDepreciated) {
				result.Skipped++
				continue
			}
			result.Failed++
			result.Errors = append(result.Errors, RunErrorDTO{
				AssetID: string(a.ID()),
				Code:    a.Code(),
				Error:   err.Error(),
			})
			continue
		}

		if err := dr.Repo.Save(ctx, a); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RunErrorDTO{
				AssetID: string(a.ID()),
				Code:    a.Code(),
				Error:   err.Error(),
			})
			continue
		}

		result.Processed++
		result.Records = append(result.Records, RunRecordDTO{
			AssetID: string(a.ID()),
			Code:    a.Code(),
			Period:  rec.Period,
			Amount:  rec.DepreciationAmount.Value().StringFixed(money.Precision),
		})
	}

	return result
}

func eligibleForBulkRun(a *asset.FixedAsset) bool {
	switch a.Status() {
	case asset.StatusInService, asset.StatusUnderMaintenance:
	default:
		return false
	}
	switch a.DepreciationMethod() {
	case asset.MethodNone, asset.UnitsOfProduction:
		return false
	}
	return a.DepreciationStartDate() != nil && !a.IsFullyDepreciated()
}

// RunDepreciation is the HTTP endpoint for a manual bulk run.
func (h *Handler) RunDepreciation(w http.ResponseWriter, r *http.Request) {
	var req RunDepreciationRequest
	if !h.decode(w, r, &req) {
		return
	}
	asOf, err := parseDate(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of format (use YYYY-MM-DD)", err)
		return
	}

	runner := &DepreciationRunner{Repo: h.Repo, Log: h.Log}
	result := runner.RunOnce(r.Context(), asOf)

	h.Log.WithFields(logrus.Fields{
		"as_of":     req.AsOf,
		"processed": result.Processed,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
	}).Info("manual depreciation run completed")
	writeJSON(w, http.StatusOK, result)
}
