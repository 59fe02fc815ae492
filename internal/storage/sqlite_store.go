package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/denisok6893-rgb/property-investment/internal/domain"
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) EnsureSchema() error {
	const createReports = `
CREATE TABLE IF NOT EXISTS reports (
  id TEXT PRIMARY KEY,
  property_type TEXT NOT NULL,
  district TEXT NOT NULL,
  land_area REAL NOT NULL,
  num_floors INTEGER NOT NULL,
  total_investment REAL NOT NULL,
  rental_roi REAL NOT NULL,
  created_at INTEGER NOT NULL,
  report_json TEXT NOT NULL
);
`
	const createDataset = `
CREATE TABLE IF NOT EXISTS dataset_rows (
  batch_id TEXT NOT NULL,
  seq INTEGER NOT NULL,
  property_type TEXT NOT NULL,
  district TEXT NOT NULL,
  land_area REAL NOT NULL,
  num_floors INTEGER NOT NULL,
  total_investment REAL NOT NULL,
  total_revenue REAL NOT NULL,
  gross_profit REAL NOT NULL,
  annual_rent REAL NOT NULL,
  roi REAL NOT NULL,
  PRIMARY KEY (batch_id, seq)
);
`
	for _, stmt := range []string{
		createReports,
		createDataset,
		`CREATE INDEX IF NOT EXISTS idx_reports_property_type ON reports(property_type);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveReport stores rep under a new id.
func (s *SQLiteStore) SaveReport(ctx context.Context, req domain.ReportRequest, rep domain.InvestmentReport) (domain.StoredReport, error) {
	stored := domain.StoredReport{
		ID:        uuid.NewString(),
		Request:   req,
		Report:    rep,
		CreatedAt: s.now().UTC(),
	}
	body, err := json.Marshal(stored)
	if err != nil {
		return domain.StoredReport{}, fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO reports
(id, property_type, district, land_area, num_floors, total_investment, rental_roi, created_at, report_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		stored.ID, rep.PropertyType, rep.District, req.LandArea, req.NumFloors,
		rep.Figures.TotalInvestment, rep.Figures.RentalROI, stored.CreatedAt.UnixNano(), string(body),
	)
	if err != nil {
		return domain.StoredReport{}, fmt.Errorf("insert report: %w", err)
	}
	return stored, nil
}

func (s *SQLiteStore) GetReport(ctx context.Context, id string) (domain.StoredReport, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT report_json FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredReport{}, false, nil
	}
	if err != nil {
		return domain.StoredReport{}, false, err
	}
	var out domain.StoredReport
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return domain.StoredReport{}, false, fmt.Errorf("unmarshal report %s: %w", id, err)
	}
	return out, true, nil
}

func (s *SQLiteStore) DeleteReport(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

const (
	SortCreatedDesc    = "created_desc"
	SortROIDesc        = "roi_desc"
	SortInvestmentDesc = "investment_desc"
)

type ListFilter struct {
	Limit        int
	Offset       int
	PropertyType string
	Sort         string
}

// ListReports returns one page of stored reports and the total number of
// reports matching the filter.
func (s *SQLiteStore) ListReports(ctx context.Context, f ListFilter) ([]domain.StoredReport, int, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := make([]string, 0, 1)
	args := make([]any, 0, 3)
	if pt := strings.TrimSpace(f.PropertyType); pt != "" {
		where = append(where, "property_type = ?")
		args = append(args, pt)
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	orderSQL := "ORDER BY created_at DESC, id"
	switch f.Sort {
	case SortROIDesc:
		orderSQL = "ORDER BY rental_roi DESC, id"
	case SortInvestmentDesc:
		orderSQL = "ORDER BY total_investment DESC, id"
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rowsSQL := "SELECT report_json FROM reports " + whereSQL + "\n" + orderSQL + "\nLIMIT ? OFFSET ?"
	rowsArgs := append(append([]any{}, args...), f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, rowsSQL, rowsArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.StoredReport, 0, f.Limit)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, 0, err
		}
		var r domain.StoredReport
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return nil, 0, fmt.Errorf("unmarshal stored report: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// SaveDatasetRows inserts rows in one transaction under batchID, or a new
// batch id when batchID is empty, and returns the id used.
func (s *SQLiteStore) SaveDatasetRows(ctx context.Context, batchID string, items []domain.DatasetRow) (string, error) {
	if batchID == "" {
		batchID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO dataset_rows
(batch_id, seq, property_type, district, land_area, num_floors, total_investment, total_revenue, gross_profit, annual_rent, roi)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, r := range items {
		if _, err := stmt.ExecContext(ctx,
			batchID, i, r.PropertyType, r.District, r.LandArea, r.NumFloors,
			r.TotalInvestment, r.TotalRevenue, r.GrossProfit, r.AnnualRent, r.ROI,
		); err != nil {
			return "", fmt.Errorf("insert dataset row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return batchID, nil
}

// LoadDatasetRows returns the rows of one batch in insertion order, or of
// every batch when batchID is empty.
func (s *SQLiteStore) LoadDatasetRows(ctx context.Context, batchID string) ([]domain.DatasetRow, error) {
	q := `
SELECT property_type, district, land_area, num_floors, total_investment, total_revenue, gross_profit, annual_rent, roi
FROM dataset_rows
`
	var args []any
	if batchID != "" {
		q += "WHERE batch_id = ?\n"
		args = append(args, batchID)
	}
	q += "ORDER BY batch_id, seq"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DatasetRow
	for rows.Next() {
		var r domain.DatasetRow
		if err := rows.Scan(
			&r.PropertyType, &r.District, &r.LandArea, &r.NumFloors,
			&r.TotalInvestment, &r.TotalRevenue, &r.GrossProfit, &r.AnnualRent, &r.ROI,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
