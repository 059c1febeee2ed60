package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type pgTaskRepository struct {
	db Pool
}

func NewTaskRepository(db Pool) TaskRepository {
	return &pgTaskRepository{db: db}
}

const taskColumns = `id, farm_id, title, notes, status, due_date, assignee_id, reminder_sent_at, created_by, created_at, updated_at`

func (r *pgTaskRepository) Create(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO tasks (farm_id, title, notes, status, due_date, assignee_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		t.FarmID, t.Title, t.Notes, t.Status, t.DueDate, t.AssigneeID, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func scanTask(row pgx.Row) (*Task, error) {
	t := &Task{}
	err := row.Scan(
		&t.ID, &t.FarmID, &t.Title, &t.Notes, &t.Status, &t.DueDate,
		&t.AssigneeID, &t.ReminderSentAt, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *pgTaskRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.db.QueryRow(ctx, query, id))
}

func (r *pgTaskRepository) ListByFarm(ctx context.Context, farmID string) ([]*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE farm_id = $1 ORDER BY due_date NULLS LAST, created_at DESC`
	return r.queryMany(ctx, query, farmID)
}

func (r *pgTaskRepository) queryMany(ctx context.Context, query string, args ...any) ([]*Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t := &Task{}
		if err := rows.Scan(
			&t.ID, &t.FarmID, &t.Title, &t.Notes, &t.Status, &t.DueDate,
			&t.AssigneeID, &t.ReminderSentAt, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *pgTaskRepository) Update(ctx context.Context, t *Task) error {
	query := `
		UPDATE tasks
		SET title = $1, notes = $2, status = $3, due_date = $4, assignee_id = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, t.Title, t.Notes, t.Status, t.DueDate, t.AssigneeID, t.ID)
	return err
}

func (r *pgTaskRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func (r *pgTaskRepository) CountOpenByFarm(ctx context.Context, farmID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE farm_id = $1 AND status != 'done'`, farmID).Scan(&count)
	return count, err
}

// FindDueSoon returns open tasks due within the window that have not yet been
// sent a reminder.
func (r *pgTaskRepository) FindDueSoon(ctx context.Context, within time.Duration) ([]*Task, error) {
	cutoff := time.Now().Add(within)
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status != 'done'
			AND due_date IS NOT NULL AND due_date <= $1
			AND reminder_sent_at IS NULL
	`
	return r.queryMany(ctx, query, cutoff)
}

func (r *pgTaskRepository) MarkReminderSent(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE tasks SET reminder_sent_at = NOW() WHERE id = $1`, id)
	return err
}
