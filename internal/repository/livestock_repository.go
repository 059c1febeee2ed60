package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type pgLivestockRepository struct {
	db Pool
}

func NewLivestockRepository(db Pool) LivestockRepository {
	return &pgLivestockRepository{db: db}
}

func (r *pgLivestockRepository) Create(ctx context.Context, a *Animal) error {
	query := `
		INSERT INTO animals (farm_id, tag, species, breed, birth_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, a.FarmID, a.Tag, a.Species, a.Breed, a.BirthDate, a.Notes).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *pgLivestockRepository) FindByID(ctx context.Context, id string) (*Animal, error) {
	query := `SELECT id, farm_id, tag, species, breed, birth_date, notes, created_at, updated_at FROM animals WHERE id = $1`
	a := &Animal{}
	err := r.db.QueryRow(ctx, query, id).
		Scan(&a.ID, &a.FarmID, &a.Tag, &a.Species, &a.Breed, &a.BirthDate, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *pgLivestockRepository) ListByFarm(ctx context.Context, farmID string) ([]*Animal, error) {
	query := `
		SELECT id, farm_id, tag, species, breed, birth_date, notes, created_at, updated_at
		FROM animals WHERE farm_id = $1 ORDER BY tag
	`
	rows, err := r.db.Query(ctx, query, farmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var animals []*Animal
	for rows.Next() {
		a := &Animal{}
		if err := rows.Scan(&a.ID, &a.FarmID, &a.Tag, &a.Species, &a.Breed, &a.BirthDate, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		animals = append(animals, a)
	}
	return animals, rows.Err()
}

func (r *pgLivestockRepository) Update(ctx context.Context, a *Animal) error {
	query := `
		UPDATE animals SET tag = $1, species = $2, breed = $3, birth_date = $4, notes = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, a.Tag, a.Species, a.Breed, a.BirthDate, a.Notes, a.ID)
	return err
}

func (r *pgLivestockRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM animals WHERE id = $1`, id)
	return err
}

func (r *pgLivestockRepository) CountByFarm(ctx context.Context, farmID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM animals WHERE farm_id = $1`, farmID).Scan(&count)
	return count, err
}

// Health logs

func (r *pgLivestockRepository) CreateHealthLog(ctx context.Context, l *HealthLog) error {
	query := `
		INSERT INTO animal_health_logs (farm_id, animal_id, animal_tag, log_date, condition, treatment, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		l.FarmID, l.AnimalID, l.AnimalTag, l.LogDate, l.Condition, l.Treatment, l.Notes,
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *pgLivestockRepository) ListHealthLogs(ctx context.Context, animalID string) ([]*HealthLog, error) {
	query := `
		SELECT id, farm_id, animal_id, animal_tag, log_date, condition, treatment, notes, created_at
		FROM animal_health_logs WHERE animal_id = $1 ORDER BY log_date DESC
	`
	rows, err := r.db.Query(ctx, query, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*HealthLog
	for rows.Next() {
		l := &HealthLog{}
		if err := rows.Scan(&l.ID, &l.FarmID, &l.AnimalID, &l.AnimalTag, &l.LogDate, &l.Condition, &l.Treatment, &l.Notes, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *pgLivestockRepository) DeleteHealthLog(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM animal_health_logs WHERE id = $1`, id)
	return err
}
