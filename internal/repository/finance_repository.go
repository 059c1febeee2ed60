package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type pgFinanceRepository struct {
	db Pool
}

func NewFinanceRepository(db Pool) FinanceRepository {
	return &pgFinanceRepository{db: db}
}

func (r *pgFinanceRepository) Create(ctx context.Context, e *FinanceEntry) error {
	query := `
		INSERT INTO finance_entries (farm_id, kind, entry_date, description, category, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		e.FarmID, e.Kind, e.EntryDate, e.Description, e.Category, e.Amount,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *pgFinanceRepository) FindByID(ctx context.Context, id string) (*FinanceEntry, error) {
	query := `
		SELECT id, farm_id, kind, entry_date, description, category, amount, created_at
		FROM finance_entries WHERE id = $1
	`
	e := &FinanceEntry{}
	err := r.db.QueryRow(ctx, query, id).
		Scan(&e.ID, &e.FarmID, &e.Kind, &e.EntryDate, &e.Description, &e.Category, &e.Amount, &e.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *pgFinanceRepository) ListByFarm(ctx context.Context, farmID, kind string) ([]*FinanceEntry, error) {
	query := `
		SELECT id, farm_id, kind, entry_date, description, category, amount, created_at
		FROM finance_entries
		WHERE farm_id = $1 AND kind = $2
		ORDER BY entry_date DESC
	`
	rows, err := r.db.Query(ctx, query, farmID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*FinanceEntry
	for rows.Next() {
		e := &FinanceEntry{}
		if err := rows.Scan(&e.ID, &e.FarmID, &e.Kind, &e.EntryDate, &e.Description, &e.Category, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *pgFinanceRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM finance_entries WHERE id = $1`, id)
	return err
}

func (r *pgFinanceRepository) Summary(ctx context.Context, farmID string) (*FinanceSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE kind = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'), 0)
		FROM finance_entries WHERE farm_id = $1
	`
	var income, expenses decimal.Decimal
	if err := r.db.QueryRow(ctx, query, farmID).Scan(&income, &expenses); err != nil {
		return nil, err
	}
	return &FinanceSummary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Net:           income.Sub(expenses),
	}, nil
}
