// Package sqlite is the durable Store used when the daemon is configured with
// a database path. A single connection keeps writes serialized, matching the
// totally ordered mutation model the engines assume.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fieldsure/fieldsure/internal/domain"
)

type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and runs migrations. Use
// ":memory:" for an ephemeral store in tests.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SavePolicy(ctx context.Context, p domain.Policy) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO policies (
			id, holder, lat_micro, lon_micro, location_id, trigger_type,
			trigger_threshold, premium, coverage_amount, start_time, end_time,
			status, crop_type, farm_size
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status
	`,
		p.ID,
		string(p.Holder),
		p.Location.LatMicro,
		p.Location.LonMicro,
		p.LocationID,
		string(p.TriggerType),
		p.TriggerThreshold,
		p.Premium,
		p.CoverageAmount,
		p.StartTime.UTC().Format(time.RFC3339Nano),
		p.EndTime.UTC().Format(time.RFC3339Nano),
		string(p.Status),
		p.CropType,
		p.FarmSize,
	)
	return err
}

func (s *Store) GetPolicy(ctx context.Context, id string) (domain.Policy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, holder, lat_micro, lon_micro, location_id, trigger_type,
			trigger_threshold, premium, coverage_amount, start_time, end_time,
			status, crop_type, farm_size
		FROM policies WHERE id = ?
	`, id)

	p, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Policy{}, domain.ErrPolicyNotFound
	}
	return p, err
}

func (s *Store) PoliciesByHolder(ctx context.Context, holder domain.Address) ([]domain.Policy, error) {
	return s.queryPolicies(ctx, `holder = ?`, string(holder))
}

func (s *Store) PoliciesByStatus(ctx context.Context, status domain.PolicyStatus) ([]domain.Policy, error) {
	return s.queryPolicies(ctx, `status = ?`, string(status))
}

func (s *Store) CountPolicies(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM policies`).Scan(&n)
	return n, err
}

func (s *Store) SaveClaim(ctx context.Context, c domain.Claim) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (
			id, policy_id, filed_at, oracle_request_id, actual_value,
			payout_amount, processed
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			actual_value = excluded.actual_value,
			payout_amount = excluded.payout_amount,
			processed = excluded.processed
	`,
		c.ID,
		c.PolicyID,
		c.FiledAt.UTC().Format(time.RFC3339Nano),
		c.OracleRequestID,
		c.ActualValue,
		c.PayoutAmount,
		c.Processed,
	)
	return err
}

func (s *Store) GetClaim(ctx context.Context, id string) (domain.Claim, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, policy_id, filed_at, oracle_request_id, actual_value,
			payout_amount, processed
		FROM claims WHERE id = ?
	`, id)

	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Claim{}, domain.ErrClaimNotFound
	}
	return c, err
}

func (s *Store) ClaimsByPolicy(ctx context.Context, policyID string) ([]domain.Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, policy_id, filed_at, oracle_request_id, actual_value,
			payout_amount, processed
		FROM claims WHERE policy_id = ? ORDER BY rowid
	`, policyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) AddRefund(ctx context.Context, holder domain.Address, amount int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refunds (holder, amount) VALUES (?, ?)
		ON CONFLICT(holder) DO UPDATE SET amount = amount + excluded.amount
	`, string(holder), amount)
	return err
}

func (s *Store) RefundBalance(ctx context.Context, holder domain.Address) (int64, error) {
	var amount int64
	err := s.db.QueryRowContext(ctx,
		`SELECT amount FROM refunds WHERE holder = ?`, string(holder)).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return amount, err
}

func (s *Store) SetRefundBalance(ctx context.Context, holder domain.Address, amount int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refunds (holder, amount) VALUES (?, ?)
		ON CONFLICT(holder) DO UPDATE SET amount = excluded.amount
	`, string(holder), amount)
	return err
}

func (s *Store) queryPolicies(ctx context.Context, where string, arg any) ([]domain.Policy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, holder, lat_micro, lon_micro, location_id, trigger_type,
			trigger_threshold, premium, coverage_amount, start_time, end_time,
			status, crop_type, farm_size
		FROM policies WHERE `+where+` ORDER BY rowid
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row scanner) (domain.Policy, error) {
	var (
		p                  domain.Policy
		holder             string
		triggerType        string
		status             string
		startTime, endTime string
	)
	err := row.Scan(
		&p.ID, &holder, &p.Location.LatMicro, &p.Location.LonMicro,
		&p.LocationID, &triggerType, &p.TriggerThreshold, &p.Premium,
		&p.CoverageAmount, &startTime, &endTime, &status, &p.CropType,
		&p.FarmSize,
	)
	if err != nil {
		return domain.Policy{}, err
	}

	p.Holder = domain.Address(holder)
	p.TriggerType = domain.TriggerType(triggerType)
	p.Status = domain.PolicyStatus(status)
	if p.StartTime, err = time.Parse(time.RFC3339Nano, startTime); err != nil {
		return domain.Policy{}, err
	}
	if p.EndTime, err = time.Parse(time.RFC3339Nano, endTime); err != nil {
		return domain.Policy{}, err
	}
	return p, nil
}

func scanClaim(row scanner) (domain.Claim, error) {
	var (
		c       domain.Claim
		filedAt string
	)
	err := row.Scan(
		&c.ID, &c.PolicyID, &filedAt, &c.OracleRequestID, &c.ActualValue,
		&c.PayoutAmount, &c.Processed,
	)
	if err != nil {
		return domain.Claim{}, err
	}

	if c.FiledAt, err = time.Parse(time.RFC3339Nano, filedAt); err != nil {
		return domain.Claim{}, err
	}
	return c, nil
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS policies (
			id TEXT PRIMARY KEY,
			holder TEXT NOT NULL,
			lat_micro INTEGER NOT NULL,
			lon_micro INTEGER NOT NULL,
			location_id TEXT NOT NULL,
			trigger_type TEXT NOT NULL,
			trigger_threshold INTEGER NOT NULL,
			premium INTEGER NOT NULL,
			coverage_amount INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			status TEXT NOT NULL,
			crop_type TEXT NOT NULL,
			farm_size INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_policies_holder ON policies(holder);`,
		`CREATE INDEX IF NOT EXISTS idx_policies_status ON policies(status);`,
		`CREATE TABLE IF NOT EXISTS claims (
			id TEXT PRIMARY KEY,
			policy_id TEXT NOT NULL,
			filed_at TEXT NOT NULL,
			oracle_request_id TEXT NOT NULL,
			actual_value INTEGER NOT NULL,
			payout_amount INTEGER NOT NULL,
			processed INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_claims_policy ON claims(policy_id);`,
		`CREATE TABLE IF NOT EXISTS refunds (
			holder TEXT PRIMARY KEY,
			amount INTEGER NOT NULL
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}
