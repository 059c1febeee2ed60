package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type pgFieldRepository struct {
	db Pool
}

func NewFieldRepository(db Pool) FieldRepository {
	return &pgFieldRepository{db: db}
}

func (r *pgFieldRepository) Create(ctx context.Context, f *Field) error {
	query := `
		INSERT INTO fields (farm_id, name, size_acres, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, f.FarmID, f.Name, f.SizeAcres, f.Notes).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

func (r *pgFieldRepository) FindByID(ctx context.Context, id string) (*Field, error) {
	query := `SELECT id, farm_id, name, size_acres, notes, created_at, updated_at FROM fields WHERE id = $1`
	f := &Field{}
	err := r.db.QueryRow(ctx, query, id).
		Scan(&f.ID, &f.FarmID, &f.Name, &f.SizeAcres, &f.Notes, &f.CreatedAt, &f.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *pgFieldRepository) ListByFarm(ctx context.Context, farmID string) ([]*Field, error) {
	query := `
		SELECT id, farm_id, name, size_acres, notes, created_at, updated_at
		FROM fields WHERE farm_id = $1 ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []*Field
	for rows.Next() {
		f := &Field{}
		if err := rows.Scan(&f.ID, &f.FarmID, &f.Name, &f.SizeAcres, &f.Notes, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func (r *pgFieldRepository) Update(ctx context.Context, f *Field) error {
	query := `UPDATE fields SET name = $1, size_acres = $2, notes = $3, updated_at = NOW() WHERE id = $4`
	_, err := r.db.Exec(ctx, query, f.Name, f.SizeAcres, f.Notes, f.ID)
	return err
}

func (r *pgFieldRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM fields WHERE id = $1`, id)
	return err
}

func (r *pgFieldRepository) CountByFarm(ctx context.Context, farmID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM fields WHERE farm_id = $1`, farmID).Scan(&count)
	return count, err
}

// Soil tests

func (r *pgFieldRepository) CreateSoilTest(ctx context.Context, st *SoilTest) error {
	query := `
		INSERT INTO soil_tests (farm_id, field_id, test_date, ph, organic_matter, nitrogen, phosphorus, potassium, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		st.FarmID, st.FieldID, st.TestDate, st.PH, st.OrganicMatter,
		st.Nitrogen, st.Phosphorus, st.Potassium, st.Notes,
	).Scan(&st.ID, &st.CreatedAt)
}

const soilTestColumns = `id, farm_id, field_id, test_date, ph, organic_matter, nitrogen, phosphorus, potassium, notes, created_at`

func (r *pgFieldRepository) querySoilTests(ctx context.Context, query string, args ...any) ([]*SoilTest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []*SoilTest
	for rows.Next() {
		st := &SoilTest{}
		if err := rows.Scan(
			&st.ID, &st.FarmID, &st.FieldID, &st.TestDate, &st.PH, &st.OrganicMatter,
			&st.Nitrogen, &st.Phosphorus, &st.Potassium, &st.Notes, &st.CreatedAt,
		); err != nil {
			return nil, err
		}
		tests = append(tests, st)
	}
	return tests, rows.Err()
}

func (r *pgFieldRepository) ListSoilTests(ctx context.Context, fieldID string) ([]*SoilTest, error) {
	query := `SELECT ` + soilTestColumns + ` FROM soil_tests WHERE field_id = $1 ORDER BY test_date DESC`
	return r.querySoilTests(ctx, query, fieldID)
}

func (r *pgFieldRepository) RecentSoilTests(ctx context.Context, fieldID string, limit int) ([]*SoilTest, error) {
	query := `SELECT ` + soilTestColumns + ` FROM soil_tests WHERE field_id = $1 ORDER BY test_date DESC LIMIT $2`
	return r.querySoilTests(ctx, query, fieldID, limit)
}

func (r *pgFieldRepository) DeleteSoilTest(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM soil_tests WHERE id = $1`, id)
	return err
}
