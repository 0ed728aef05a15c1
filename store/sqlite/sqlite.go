/*
Package sqlite provides a SQLite-backed implementation of asset.Repository.

PURPOSE:
  Persists asset aggregates in SQLite. In production, the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  fixed_assets:         One row per aggregate (cost basis, config, status)
  depreciation_records: One row per applied period
  cost_additions:       Capitalized additions to the cost basis

UNIQUENESS:
  - idx_assets_code: one asset per code
  - idx_records_asset_period: at most one depreciation record per
    (asset, period key); the database backs the duplicate-period invariant
    the aggregate already enforces in memory

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  repo, err := sqlite.New("./data/assets.db")
  if err != nil {
      log.Fatal(err)
  }
  defer repo.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - asset/store.go: Interface definition
  - asset/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/asset-engine/asset"
	"github.com/warp/asset-engine/money"
)

// Repository implements asset.Repository using SQLite.
type Repository struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite repository at the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the database schema.
func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fixed_assets (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		sub_category TEXT,
		serial_number TEXT,
		location TEXT,
		custodian TEXT,
		asset_type TEXT NOT NULL,
		category TEXT NOT NULL,
		account_group TEXT NOT NULL,
		acquisition_date TEXT NOT NULL,
		in_service_date TEXT,
		warranty_end TEXT,
		currency TEXT NOT NULL,
		acquisition_cost TEXT NOT NULL,
		cost_value TEXT NOT NULL,
		salvage_value TEXT NOT NULL,
		accumulated_depreciation TEXT NOT NULL,
		net_book_value TEXT NOT NULL,
		method TEXT NOT NULL,
		useful_life_years INTEGER NOT NULL,
		custom_rate TEXT,
		granularity TEXT NOT NULL,
		prorate_partial_year BOOLEAN NOT NULL,
		total_expected_units TEXT,
		depreciation_start_date TEXT,
		last_depreciation_date TEXT,
		status TEXT NOT NULL,
		disposal_type TEXT,
		disposal_date TEXT,
		disposal_sale_amount TEXT,
		disposal_gain_loss TEXT,
		disposal_reason TEXT,
		disposal_buyer TEXT,
		disposal_invoice_ref TEXT,
		revaluation_amount TEXT,
		revaluation_date TEXT,
		revaluation_reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_code ON fixed_assets(code);
	CREATE INDEX IF NOT EXISTS idx_assets_status ON fixed_assets(status);
	CREATE INDEX IF NOT EXISTS idx_assets_category ON fixed_assets(category);

	-- One depreciation record per asset per period key
	CREATE TABLE IF NOT EXISTS depreciation_records (
		asset_id TEXT NOT NULL REFERENCES fixed_assets(id) ON DELETE CASCADE,
		period TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		amount TEXT NOT NULL,
		accumulated_after TEXT NOT NULL,
		net_book_value_after TEXT NOT NULL,
		is_posted BOOLEAN NOT NULL DEFAULT FALSE,
		calculation_date TEXT NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_records_asset_period
		ON depreciation_records(asset_id, period);
	CREATE INDEX IF NOT EXISTS idx_records_asset_seq
		ON depreciation_records(asset_id, seq);

	CREATE TABLE IF NOT EXISTS cost_additions (
		asset_id TEXT NOT NULL REFERENCES fixed_assets(id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		description TEXT,
		date TEXT NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_additions_asset
		ON cost_additions(asset_id, seq);
	`

	_, err := r.db.Exec(schema)
	return err
}

// =============================================================================
// REPOSITORY (asset.Repository interface)
// =============================================================================

// Create persists a new asset. Fails with asset.ErrCodeTaken when the
// code is already registered.
func (r *Repository) Create(ctx context.Context, a *asset.FixedAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := a.Snapshot()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	if err := insertAsset(ctx, tx, snap, now, now); err != nil {
		if isUniqueConstraintError(err) {
			return asset.ErrCodeTaken
		}
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	if err := writeChildren(ctx, tx, snap); err != nil {
		return err
	}
	return tx.Commit()
}

// Save overwrites the stored state of an existing asset. The whole
// aggregate is rewritten in one transaction.
func (r *Repository) Save(ctx context.Context, a *asset.FixedAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := a.Snapshot()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM fixed_assets WHERE id = ?`, string(snap.ID))
	if err != nil {
		return fmt.Errorf("failed to replace asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return asset.ErrNotFound
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := insertAsset(ctx, tx, snap, now, now); err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	if err := writeChildren(ctx, tx, snap); err != nil {
		return err
	}
	return tx.Commit()
}

// Get loads one asset by id.
func (r *Repository) Get(ctx context.Context, id asset.ID) (*asset.FixedAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getWhere(ctx, "id = ?", string(id))
}

// GetByCode loads one asset by its code.
func (r *Repository) GetByCode(ctx context.Context, code string) (*asset.FixedAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getWhere(ctx, "code = ?", code)
}

// List returns assets matching the filter, ordered by code.
func (r *Repository) List(ctx context.Context, filter asset.ListFilter) ([]*asset.FixedAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	where := []string{"1=1"}
	var args []any
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Category != nil {
		where = append(where, "category = ?")
		args = append(args, string(*filter.Category))
	}
	if filter.Currency != nil {
		where = append(where, "currency = ?")
		args = append(args, *filter.Currency)
	}

	query := `SELECT ` + assetColumns + ` FROM fixed_assets WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY code ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var snaps []asset.Snapshot
	for rows.Next() {
		snap, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	assets := make([]*asset.FixedAsset, 0, len(snaps))
	for i := range snaps {
		if err := r.loadChildren(ctx, &snaps[i]); err != nil {
			return nil, err
		}
		a, err := asset.FromSnapshot(snaps[i])
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// Delete removes an asset only when it has no financial history.
func (r *Repository) Delete(ctx context.Context, id asset.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var records int
	var disposalType sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM depreciation_records WHERE asset_id = ?), disposal_type
		FROM fixed_assets WHERE id = ?`,
		string(id), string(id),
	).Scan(&records, &disposalType)
	if err == sql.ErrNoRows {
		return asset.ErrNotFound
	}
	if err != nil {
		return err
	}
	if records > 0 || disposalType.Valid {
		return asset.ErrHasHistory
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM fixed_assets WHERE id = ?`, string(id)); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// ROW MAPPING
// =============================================================================

const assetColumns = `
	id, code, name, description, sub_category, serial_number, location, custodian,
	asset_type, category, account_group,
	acquisition_date, in_service_date, warranty_end,
	currency, acquisition_cost, cost_value, salvage_value, accumulated_depreciation, net_book_value,
	method, useful_life_years, custom_rate, granularity, prorate_partial_year, total_expected_units,
	depreciation_start_date, last_depreciation_date, status,
	disposal_type, disposal_date, disposal_sale_amount, disposal_gain_loss,
	disposal_reason, disposal_buyer, disposal_invoice_ref,
	revaluation_amount, revaluation_date, revaluation_reason`

func insertAsset(ctx context.Context, tx *sql.Tx, s asset.Snapshot, createdAt, updatedAt string) error {
	var disposalType, disposalDate, disposalSale, disposalGainLoss,
		disposalReason, disposalBuyer, disposalInvoice sql.NullString
	if s.Disposal != nil {
		disposalType = nullString(string(s.Disposal.Type))
		disposalDate = nullString(s.Disposal.Date.Format(time.RFC3339))
		if s.Disposal.SaleAmount != nil {
			disposalSale = nullString(s.Disposal.SaleAmount.Value().String())
		}
		disposalGainLoss = nullString(s.Disposal.GainLoss.Value().String())
		disposalReason = nullString(s.Disposal.Reason)
		disposalBuyer = nullString(s.Disposal.Buyer)
		disposalInvoice = nullString(s.Disposal.InvoiceRef)
	}

	var revalAmount, revalDate, revalReason sql.NullString
	if s.LastRevaluation != nil {
		revalAmount = nullString(s.LastRevaluation.Amount.Value().String())
		revalDate = nullString(s.LastRevaluation.Date.Format(time.RFC3339))
		revalReason = nullString(s.LastRevaluation.Reason)
	}

	var customRate sql.NullString
	if s.CustomRate != nil {
		customRate = nullString(s.CustomRate.String())
	}
	var expectedUnits sql.NullString
	if !s.TotalExpectedUnits.IsZero() {
		expectedUnits = nullString(s.TotalExpectedUnits.String())
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO fixed_assets (
			id, code, name, description, sub_category, serial_number, location, custodian,
			asset_type, category, account_group,
			acquisition_date, in_service_date, warranty_end,
			currency, acquisition_cost, cost_value, salvage_value, accumulated_depreciation, net_book_value,
			method, useful_life_years, custom_rate, granularity, prorate_partial_year, total_expected_units,
			depreciation_start_date, last_depreciation_date, status,
			disposal_type, disposal_date, disposal_sale_amount, disposal_gain_loss,
			disposal_reason, disposal_buyer, disposal_invoice_ref,
			revaluation_amount, revaluation_date, revaluation_reason,
			created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		string(s.ID), s.Code, s.Name, s.Description, s.SubCategory,
		s.SerialNumber, s.Location, s.Custodian,
		string(s.AssetType), string(s.Category), s.AccountGroup,
		s.AcquisitionDate.Format(time.RFC3339),
		nullTime(s.InServiceDate), nullTime(s.WarrantyEnd),
		s.Currency,
		s.AcquisitionCost.Value().String(),
		s.CostValue.Value().String(),
		s.SalvageValue.Value().String(),
		s.AccumulatedDepreciation.Value().String(),
		s.NetBookValue.Value().String(),
		string(s.Method), s.UsefulLifeYears, customRate, string(s.Granularity),
		s.PartialYearProration, expectedUnits,
		nullTime(s.DepreciationStartDate), nullTime(s.LastDepreciationDate),
		string(s.Status),
		disposalType, disposalDate, disposalSale, disposalGainLoss,
		disposalReason, disposalBuyer, disposalInvoice,
		revalAmount, revalDate, revalReason,
		createdAt, updatedAt,
	)
	return err
}

func writeChildren(ctx context.Context, tx *sql.Tx, s asset.Snapshot) error {
	for i, rec := range s.Records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO depreciation_records
			(asset_id, period, period_start, period_end, amount, accumulated_after,
			 net_book_value_after, is_posted, calculation_date, seq)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			string(s.ID), rec.Period,
			rec.PeriodStart.Format(time.RFC3339), rec.PeriodEnd.Format(time.RFC3339),
			rec.DepreciationAmount.Value().String(),
			rec.AccumulatedDepreciationAfter.Value().String(),
			rec.NetBookValueAfter.Value().String(),
			rec.IsPosted,
			rec.CalculationDate.Format(time.RFC3339),
			i,
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return &asset.DuplicatePeriodError{AssetID: s.ID, Period: rec.Period}
			}
			return fmt.Errorf("failed to insert depreciation record: %w", err)
		}
	}
	for i, add := range s.CostAdditions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cost_additions (asset_id, amount, description, date, seq)
			VALUES (?,?,?,?,?)`,
			string(s.ID), add.Amount.Value().String(), add.Description,
			add.Date.Format(time.RFC3339), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cost addition: %w", err)
		}
	}
	return nil
}

func (r *Repository) getWhere(ctx context.Context, where string, arg any) (*asset.FixedAsset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM fixed_assets WHERE `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, asset.ErrNotFound
	}
	snap, err := scanAsset(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.loadChildren(ctx, &snap); err != nil {
		return nil, err
	}
	return asset.FromSnapshot(snap)
}

func (r *Repository) loadChildren(ctx context.Context, s *asset.Snapshot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT period, period_start, period_end, amount, accumulated_after,
		       net_book_value_after, is_posted, calculation_date
		FROM depreciation_records WHERE asset_id = ? ORDER BY seq ASC`,
		string(s.ID))
	if err != nil {
		return fmt.Errorf("failed to query depreciation records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec asset.DepreciationRecord
		var start, end, amount, accumulated, nbv, calcDate string
		if err := rows.Scan(&rec.Period, &start, &end, &amount, &accumulated,
			&nbv, &rec.IsPosted, &calcDate); err != nil {
			return err
		}
		rec.PeriodStart, _ = time.Parse(time.RFC3339, start)
		rec.PeriodEnd, _ = time.Parse(time.RFC3339, end)
		rec.DepreciationAmount, err = money.NewFromString(amount, s.Currency)
		if err != nil {
			return err
		}
		rec.AccumulatedDepreciationAfter, err = money.NewFromString(accumulated, s.Currency)
		if err != nil {
			return err
		}
		rec.NetBookValueAfter, err = money.NewFromString(nbv, s.Currency)
		if err != nil {
			return err
		}
		rec.CalculationDate, _ = time.Parse(time.RFC3339, calcDate)
		s.Records = append(s.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	addRows, err := r.db.QueryContext(ctx, `
		SELECT amount, description, date FROM cost_additions
		WHERE asset_id = ? ORDER BY seq ASC`,
		string(s.ID))
	if err != nil {
		return fmt.Errorf("failed to query cost additions: %w", err)
	}
	defer addRows.Close()

	for addRows.Next() {
		var add asset.CostAddition
		var amount, date string
		var description sql.NullString
		if err := addRows.Scan(&amount, &description, &date); err != nil {
			return err
		}
		add.Amount, err = money.NewFromString(amount, s.Currency)
		if err != nil {
			return err
		}
		add.Description = description.String
		add.Date, _ = time.Parse(time.RFC3339, date)
		s.CostAdditions = append(s.CostAdditions, add)
	}
	return addRows.Err()
}

func scanAsset(rows *sql.Rows) (asset.Snapshot, error) {
	var s asset.Snapshot
	var (
		id, assetType, category, method, granularity, status       string
		acquisitionDate                                            string
		inServiceDate, warrantyEnd, deprStart, lastDepr            sql.NullString
		description, subCategory, serialNumber, location, custodian sql.NullString
		acquisitionCost, costValue, salvage, accumulated, nbv      string
		customRate, expectedUnits                                  sql.NullString
		disposalType, disposalDate, disposalSale, disposalGainLoss sql.NullString
		disposalReason, disposalBuyer, disposalInvoice             sql.NullString
		revalAmount, revalDate, revalReason                        sql.NullString
	)

	err := rows.Scan(
		&id, &s.Code, &s.Name, &description, &subCategory,
		&serialNumber, &location, &custodian,
		&assetType, &category, &s.AccountGroup,
		&acquisitionDate, &inServiceDate, &warrantyEnd,
		&s.Currency, &acquisitionCost, &costValue, &salvage, &accumulated, &nbv,
		&method, &s.UsefulLifeYears, &customRate, &granularity, &s.PartialYearProration, &expectedUnits,
		&deprStart, &lastDepr, &status,
		&disposalType, &disposalDate, &disposalSale, &disposalGainLoss,
		&disposalReason, &disposalBuyer, &disposalInvoice,
		&revalAmount, &revalDate, &revalReason,
	)
	if err != nil {
		return s, fmt.Errorf("failed to scan asset: %w", err)
	}

	s.ID = asset.ID(id)
	s.Description = description.String
	s.SubCategory = subCategory.String
	s.SerialNumber = serialNumber.String
	s.Location = location.String
	s.Custodian = custodian.String
	s.AssetType = asset.Type(assetType)
	s.Category = asset.Category(category)
	s.Method = asset.Method(method)
	s.Granularity = asset.PeriodGranularity(granularity)
	s.Status = asset.Status(status)

	s.AcquisitionDate, _ = time.Parse(time.RFC3339, acquisitionDate)
	s.InServiceDate = parseNullTime(inServiceDate)
	s.WarrantyEnd = parseNullTime(warrantyEnd)
	s.DepreciationStartDate = parseNullTime(deprStart)
	s.LastDepreciationDate = parseNullTime(lastDepr)

	if s.AcquisitionCost, err = money.NewFromString(acquisitionCost, s.Currency); err != nil {
		return s, err
	}
	if s.CostValue, err = money.NewFromString(costValue, s.Currency); err != nil {
		return s, err
	}
	if s.SalvageValue, err = money.NewFromString(salvage, s.Currency); err != nil {
		return s, err
	}
	if s.AccumulatedDepreciation, err = money.NewFromString(accumulated, s.Currency); err != nil {
		return s, err
	}
	if s.NetBookValue, err = money.NewFromString(nbv, s.Currency); err != nil {
		return s, err
	}

	if customRate.Valid {
		d, err := decimal.NewFromString(customRate.String)
		if err != nil {
			return s, fmt.Errorf("failed to parse custom rate: %w", err)
		}
		s.CustomRate = &d
	}
	if expectedUnits.Valid {
		d, err := decimal.NewFromString(expectedUnits.String)
		if err != nil {
			return s, fmt.Errorf("failed to parse expected units: %w", err)
		}
		s.TotalExpectedUnits = d
	}

	if disposalType.Valid {
		out := &asset.DisposalOutcome{
			Type:       asset.DisposalType(disposalType.String),
			Reason:     disposalReason.String,
			Buyer:      disposalBuyer.String,
			InvoiceRef: disposalInvoice.String,
		}
		out.Date, _ = time.Parse(time.RFC3339, disposalDate.String)
		if disposalSale.Valid {
			sale, err := money.NewFromString(disposalSale.String, s.Currency)
			if err != nil {
				return s, err
			}
			out.SaleAmount = &sale
		}
		if out.GainLoss, err = money.NewFromString(disposalGainLoss.String, s.Currency); err != nil {
			return s, err
		}
		s.Disposal = out
	}

	if revalAmount.Valid {
		rev := &asset.Revaluation{Reason: revalReason.String}
		if rev.Amount, err = money.NewFromString(revalAmount.String, s.Currency); err != nil {
			return s, err
		}
		rev.Date, _ = time.Parse(time.RFC3339, revalDate.String)
		s.LastRevaluation = rev
	}

	return s, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
