package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type pgPlantingRepository struct {
	db Pool
}

func NewPlantingRepository(db Pool) PlantingRepository {
	return &pgPlantingRepository{db: db}
}

const plantingColumns = `id, farm_id, field_id, field_name, crop_name, variety,
	seeding_date, planting_date, quantity, quantity_unit, notes, created_at, updated_at`

func (r *pgPlantingRepository) Create(ctx context.Context, p *Planting) error {
	query := `
		INSERT INTO plantings (farm_id, field_id, field_name, crop_name, variety,
			seeding_date, planting_date, quantity, quantity_unit, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		p.FarmID, p.FieldID, p.FieldName, p.CropName, p.Variety,
		p.SeedingDate, p.PlantingDate, p.Quantity, p.QuantityUnit, p.Notes,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *pgPlantingRepository) FindByID(ctx context.Context, id string) (*Planting, error) {
	query := `SELECT ` + plantingColumns + ` FROM plantings WHERE id = $1`
	p := &Planting{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.FarmID, &p.FieldID, &p.FieldName, &p.CropName, &p.Variety,
		&p.SeedingDate, &p.PlantingDate, &p.Quantity, &p.QuantityUnit, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgPlantingRepository) ListByFarm(ctx context.Context, farmID string) ([]*Planting, error) {
	query := `SELECT ` + plantingColumns + ` FROM plantings WHERE farm_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plantings []*Planting
	for rows.Next() {
		p := &Planting{}
		if err := rows.Scan(
			&p.ID, &p.FarmID, &p.FieldID, &p.FieldName, &p.CropName, &p.Variety,
			&p.SeedingDate, &p.PlantingDate, &p.Quantity, &p.QuantityUnit, &p.Notes,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		plantings = append(plantings, p)
	}
	return plantings, rows.Err()
}

func (r *pgPlantingRepository) Update(ctx context.Context, p *Planting) error {
	query := `
		UPDATE plantings
		SET field_id = $1, field_name = $2, crop_name = $3, variety = $4,
			seeding_date = $5, planting_date = $6, quantity = $7, quantity_unit = $8,
			notes = $9, updated_at = NOW()
		WHERE id = $10
	`
	_, err := r.db.Exec(ctx, query,
		p.FieldID, p.FieldName, p.CropName, p.Variety,
		p.SeedingDate, p.PlantingDate, p.Quantity, p.QuantityUnit, p.Notes, p.ID,
	)
	return err
}

func (r *pgPlantingRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM plantings WHERE id = $1`, id)
	return err
}

func (r *pgPlantingRepository) CountByFarm(ctx context.Context, farmID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM plantings WHERE farm_id = $1`, farmID).Scan(&count)
	return count, err
}

// Harvests

const harvestColumns = `id, farm_id, planting_id, crop_name, harvest_date, yield_quantity, yield_unit, notes, created_at`

func (r *pgPlantingRepository) CreateHarvest(ctx context.Context, h *Harvest) error {
	query := `
		INSERT INTO harvests (farm_id, planting_id, crop_name, harvest_date, yield_quantity, yield_unit, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		h.FarmID, h.PlantingID, h.CropName, h.HarvestDate, h.YieldQuantity, h.YieldUnit, h.Notes,
	).Scan(&h.ID, &h.CreatedAt)
}

func (r *pgPlantingRepository) queryHarvests(ctx context.Context, query string, args ...any) ([]*Harvest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var harvests []*Harvest
	for rows.Next() {
		h := &Harvest{}
		if err := rows.Scan(
			&h.ID, &h.FarmID, &h.PlantingID, &h.CropName, &h.HarvestDate,
			&h.YieldQuantity, &h.YieldUnit, &h.Notes, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		harvests = append(harvests, h)
	}
	return harvests, rows.Err()
}

func (r *pgPlantingRepository) ListHarvests(ctx context.Context, farmID string) ([]*Harvest, error) {
	query := `SELECT ` + harvestColumns + ` FROM harvests WHERE farm_id = $1 ORDER BY harvest_date DESC`
	return r.queryHarvests(ctx, query, farmID)
}

func (r *pgPlantingRepository) RecentHarvests(ctx context.Context, farmID string, limit int) ([]*Harvest, error) {
	query := `SELECT ` + harvestColumns + ` FROM harvests WHERE farm_id = $1 ORDER BY harvest_date DESC LIMIT $2`
	return r.queryHarvests(ctx, query, farmID, limit)
}

func (r *pgPlantingRepository) DeleteHarvest(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM harvests WHERE id = $1`, id)
	return err
}
